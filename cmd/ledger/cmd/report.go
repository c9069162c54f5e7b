package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qahwahub/cafe-ledger/pkg/access"
	"github.com/qahwahub/cafe-ledger/pkg/export"
	"github.com/qahwahub/cafe-ledger/pkg/report"
)

var (
	reportBranch string
	reportFrom   string
	reportTo     string
)

// reportCmd renders a financial report for a branch and window.
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render a financial report",
	Long: `Aggregate a branch's sales and expenses over an inclusive date
window into totals, net profit, a monthly trend series, an expense
category breakdown and the most recent transactions. The bank balance
shown is the current one; it is intentionally not filtered by the window.

Example:
  ledger report --branch main_branch --from 2024-01-01 --to 2024-01-31`,
	Run: runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportBranch, "branch", "", "branch ID (required)")
	reportCmd.Flags().StringVar(&reportFrom, "from", "", "window start (YYYY-MM-DD) (required)")
	reportCmd.Flags().StringVar(&reportTo, "to", "", "window end (YYYY-MM-DD) (required)")

	reportCmd.MarkFlagRequired("branch")
	reportCmd.MarkFlagRequired("from")
	reportCmd.MarkFlagRequired("to")
}

func runReport(cmd *cobra.Command, args []string) {
	eng, err := openEngine()
	exitOnError(err, "failed to initialize")
	defer eng.close()

	ctx := context.Background()
	err = eng.resolver.Authorize(ctx, eng.user, access.ResourceReports, reportBranch, false)
	exitOnError(err, "not authorized")

	rng := report.Range{From: reportFrom, To: reportTo}
	rep, err := eng.reports.Aggregate(ctx, reportBranch, rng, nil)
	exitOnError(err, "failed to aggregate report")

	fmt.Println("\n=== Financial Report ===")
	for _, row := range export.SummaryRows(eng.labels, rep) {
		fmt.Printf("%-24s %s\n", row.Label+":", row.Value)
	}

	if len(rep.MonthlySeries) > 0 {
		fmt.Println("\nMonthly performance:")
		for _, p := range rep.MonthlySeries {
			fmt.Printf("  %s  sales %10.2f  expenses %10.2f\n", p.Month, p.Sales, p.Expenses)
		}
	}

	if len(rep.CategoryBreakdown) > 0 {
		fmt.Println("\nExpenses by category:")
		for _, row := range export.BreakdownRows(eng.labels, rep.CategoryBreakdown) {
			fmt.Printf("  %-24s %s\n", row.Label, row.Value)
		}
	}

	if len(rep.RecentTransactions) > 0 {
		fmt.Println("\nRecent transactions:")
		for _, row := range export.TransactionRows(eng.labels, rep.RecentTransactions) {
			fmt.Printf("  %-18s %s  %-28s %s\n", row.Kind, row.Date, row.Detail, row.Amount)
		}
	}

	fmt.Println()
}
