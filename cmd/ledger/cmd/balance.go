package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qahwahub/cafe-ledger/pkg/access"
	"github.com/qahwahub/cafe-ledger/pkg/balance"
)

var balanceBranch string

// balanceCmd displays current running balances.
var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Display running balances",
	Long: `Display the branch bank balance, or the global capital balance
when no branch is given. Balances are computed by folding the ledger
events, never read from stored state.

Example:
  ledger balance --branch main_branch
  ledger balance`,
	Run: runBalance,
}

func init() {
	balanceCmd.Flags().StringVar(&balanceBranch, "branch", "", "branch ID (omit for the capital balance)")
}

func runBalance(cmd *cobra.Command, args []string) {
	eng, err := openEngine()
	exitOnError(err, "failed to initialize")
	defer eng.close()

	ctx := context.Background()

	resource := access.ResourceBank
	scope := balance.BankScope(balanceBranch)
	label := fmt.Sprintf("Bank balance (%s)", balanceBranch)
	if balanceBranch == "" {
		resource = access.ResourceCapital
		scope = balance.CapitalScope()
		label = "Capital balance"
	}

	err = eng.resolver.Authorize(ctx, eng.user, resource, balanceBranch, false)
	exitOnError(err, "not authorized")

	current, err := eng.balances.CurrentBalance(ctx, scope)
	exitOnError(err, "failed to compute balance")

	fmt.Printf("%s: %.2f\n", label, current)
}
