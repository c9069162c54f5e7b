package export

import (
	"fmt"

	"github.com/qahwahub/cafe-ledger/pkg/ledger"
	"github.com/qahwahub/cafe-ledger/pkg/report"
)

// SummaryRow is one label/value pair of the report summary sheet.
type SummaryRow struct {
	Label string
	Value string
}

// TransactionRow is one line of the transactions sheet.
type TransactionRow struct {
	Kind   string
	Date   string
	Detail string
	Amount string
}

// SummaryRows shapes a report into the summary sheet the original exporters
// produce: the period, the three totals, and the current bank balance.
// Amounts are rounded to 2 decimal places here, at presentation time.
func SummaryRows(l *Labels, r *report.Report) []SummaryRow {
	return []SummaryRow{
		{Label: l.Summary(SummaryPeriodFrom), Value: r.Range.From},
		{Label: l.Summary(SummaryPeriodTo), Value: r.Range.To},
		{Label: l.Summary(SummaryTotalSales), Value: money(r.TotalSales)},
		{Label: l.Summary(SummaryTotalExpenses), Value: money(r.TotalExpenses)},
		{Label: l.Summary(SummaryNetProfit), Value: money(r.NetProfit)},
		{Label: l.Summary(SummaryBankBalance), Value: money(r.BankBalance)},
	}
}

// TransactionRows shapes events into the transactions sheet: kind label,
// business date, category label for expenses or description otherwise, and
// the amount. Events of any kind are accepted.
func TransactionRows(l *Labels, events []ledger.Event) []TransactionRow {
	rows := make([]TransactionRow, 0, len(events))
	for i := range events {
		evt := &events[i]

		detail := evt.Description
		if evt.Kind == ledger.KindExpense {
			category := evt.Category
			if category == "" {
				category = ledger.CategoryUnspecified
			}
			detail = l.Category(category)
		}
		if detail == "" {
			detail = "-"
		}

		rows = append(rows, TransactionRow{
			Kind:   l.Kind(evt.Kind),
			Date:   evt.Date,
			Detail: detail,
			Amount: money(evt.Amount),
		})
	}
	return rows
}

// BreakdownRows shapes a category breakdown for display, sorted by total
// descending.
func BreakdownRows(l *Labels, breakdown []report.CategoryTotal) []SummaryRow {
	sorted := make([]report.CategoryTotal, len(breakdown))
	copy(sorted, breakdown)
	report.SortByTotalDesc(sorted)

	rows := make([]SummaryRow, 0, len(sorted))
	for _, ct := range sorted {
		rows = append(rows, SummaryRow{Label: l.Category(ct.Category), Value: money(ct.Total)})
	}
	return rows
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
