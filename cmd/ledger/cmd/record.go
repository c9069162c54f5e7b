package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/qahwahub/cafe-ledger/pkg/access"
	"github.com/qahwahub/cafe-ledger/pkg/balance"
	"github.com/qahwahub/cafe-ledger/pkg/ledger"
)

var (
	recordBranch      string
	recordAmount      float64
	recordDate        string
	recordDescription string
	recordCategory    string
	partnerName       string
	partnerShare      float64
)

// recordCmd groups the event-recording subcommands.
var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record a financial event",
	Long: `Record an immutable financial event in the ledger.

Every write is authorized against the caller's role and branch before it
is appended.

Example:
  ledger record sale --branch main_branch --amount 250 --date 2024-01-05
  ledger record expense --branch main_branch --amount 80 --date 2024-01-07 --category rent
  ledger record withdraw --branch main_branch --amount 100 --date 2024-01-08
  ledger record partner --name "Khalid" --share 25`,
}

func init() {
	recordCmd.PersistentFlags().StringVar(&recordBranch, "branch", "", "branch ID")
	recordCmd.PersistentFlags().Float64Var(&recordAmount, "amount", 0, "amount (positive)")
	recordCmd.PersistentFlags().StringVar(&recordDate, "date", time.Now().Format(ledger.DateLayout), "business date (YYYY-MM-DD)")
	recordCmd.PersistentFlags().StringVar(&recordDescription, "description", "", "description")

	saleCmd := &cobra.Command{
		Use:   "sale",
		Short: "Record a sale",
		Run: func(cmd *cobra.Command, args []string) {
			runRecordEvent(access.ResourceSales, ledger.Event{
				Kind:        ledger.KindSale,
				Amount:      recordAmount,
				Date:        recordDate,
				Description: recordDescription,
				BranchID:    recordBranch,
			})
		},
	}

	expenseCmd := &cobra.Command{
		Use:   "expense",
		Short: "Record an expense",
		Run: func(cmd *cobra.Command, args []string) {
			runRecordEvent(access.ResourceExpenses, ledger.Event{
				Kind:        ledger.KindExpense,
				Amount:      recordAmount,
				Date:        recordDate,
				Category:    ledger.ExpenseCategory(recordCategory),
				Description: recordDescription,
				BranchID:    recordBranch,
			})
		},
	}
	expenseCmd.Flags().StringVar(&recordCategory, "category", "", "expense category")

	depositCmd := &cobra.Command{
		Use:   "deposit",
		Short: "Record a bank deposit",
		Run:   func(cmd *cobra.Command, args []string) { runBank(false) },
	}

	withdrawCmd := &cobra.Command{
		Use:   "withdraw",
		Short: "Record a bank withdrawal (rejected when it exceeds the balance)",
		Run:   func(cmd *cobra.Command, args []string) { runBank(true) },
	}

	partnerCmd := &cobra.Command{
		Use:   "partner",
		Short: "Register a partner share",
		Run:   func(cmd *cobra.Command, args []string) { runPartner() },
	}
	partnerCmd.Flags().StringVar(&partnerName, "name", "", "partner name")
	partnerCmd.Flags().Float64Var(&partnerShare, "share", 0, "share percentage in (0,100]")

	recordCmd.AddCommand(saleCmd, expenseCmd, depositCmd, withdrawCmd, partnerCmd)
}

func runRecordEvent(resource access.Resource, evt ledger.Event) {
	eng, err := openEngine()
	exitOnError(err, "failed to initialize")
	defer eng.close()

	ctx := context.Background()
	err = eng.resolver.Authorize(ctx, eng.user, resource, evt.BranchID, true)
	exitOnError(err, "not authorized")

	id, err := eng.events.Append(ctx, evt)
	exitOnError(err, "failed to record event")

	slog.Info("event recorded", "kind", evt.Kind, "id", id)
	fmt.Printf("Recorded %s %s\n", evt.Kind, id)
}

func runBank(withdrawal bool) {
	eng, err := openEngine()
	exitOnError(err, "failed to initialize")
	defer eng.close()

	ctx := context.Background()
	err = eng.resolver.Authorize(ctx, eng.user, access.ResourceBank, recordBranch, true)
	exitOnError(err, "not authorized")

	scope := balance.BankScope(recordBranch)
	evt := ledger.Event{
		Amount:      recordAmount,
		Date:        recordDate,
		Description: recordDescription,
	}

	var id string
	if withdrawal {
		id, err = eng.balances.Withdraw(ctx, scope, evt)
	} else {
		id, err = eng.balances.Deposit(ctx, scope, evt)
	}
	exitOnError(err, "failed to record bank transaction")

	current, err := eng.balances.CurrentBalance(ctx, scope)
	exitOnError(err, "failed to read balance")

	fmt.Printf("Recorded bank transaction %s, balance is now %.2f\n", id, current)
}

func runPartner() {
	eng, err := openEngine()
	exitOnError(err, "failed to initialize")
	defer eng.close()

	ctx := context.Background()
	err = eng.resolver.Authorize(ctx, eng.user, access.ResourcePartners, "", true)
	exitOnError(err, "not authorized")

	id, err := eng.shares.Add(ctx, partnerName, partnerShare)
	exitOnError(err, "failed to register partner")

	total, err := eng.shares.Total(ctx)
	exitOnError(err, "failed to sum shares")

	fmt.Printf("Registered partner %s (%s), total allocated %.2f%%\n", partnerName, id, total)
}
