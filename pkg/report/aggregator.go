// Package report aggregates ledger events over a date window into financial
// reports: totals, net profit, a monthly trend series, a category breakdown,
// and the most recent transactions, plus the live bank balance.
package report

import (
	"context"
	"fmt"
	"sort"

	"github.com/qahwahub/cafe-ledger/pkg/balance"
	"github.com/qahwahub/cafe-ledger/pkg/eventstore"
	"github.com/qahwahub/cafe-ledger/pkg/ledger"
)

// RecentLimit bounds the recent-transactions list in every report.
const RecentLimit = 10

// Range is the caller-supplied report window, inclusive on both ends,
// compared against the event's business date (not its ingestion time), so
// late-entered historical transactions land in past-dated reports.
type Range struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Validate checks both bounds are well-formed dates with From <= To.
func (r Range) Validate() error {
	if err := ledger.ValidateDate(r.From); err != nil {
		return err
	}
	if err := ledger.ValidateDate(r.To); err != nil {
		return err
	}
	if r.From > r.To {
		return &ledger.ValidationError{Field: "range", Reason: ledger.ErrInvalidDate}
	}
	return nil
}

// MonthlyPoint is one month of the trend series. Month is YYYY-MM.
type MonthlyPoint struct {
	Month    string  `json:"month"`
	Sales    float64 `json:"sales"`
	Expenses float64 `json:"expenses"`
}

// CategoryTotal is one slice of the expense breakdown.
type CategoryTotal struct {
	Category ledger.ExpenseCategory `json:"category"`
	Total    float64                `json:"total"`
}

// Report is the aggregation result. BankBalance is the branch's live bank
// balance, deliberately not filtered by the report window: the account has
// one present-moment balance regardless of the period under review.
type Report struct {
	BranchID           string          `json:"branchId"`
	Range              Range           `json:"range"`
	TotalSales         float64         `json:"totalSales"`
	TotalExpenses      float64         `json:"totalExpenses"`
	NetProfit          float64         `json:"netProfit"`
	MonthlySeries      []MonthlyPoint  `json:"monthlySeries"`
	CategoryBreakdown  []CategoryTotal `json:"categoryBreakdown"`
	RecentTransactions []ledger.Event  `json:"recentTransactions"`
	BankBalance        float64         `json:"bankBalance"`
}

// Aggregator computes reports from event-store snapshots. It is read-only.
type Aggregator struct {
	events   *eventstore.Store
	balances *balance.Reconciler
}

// New creates an aggregator.
func New(events *eventstore.Store, balances *balance.Reconciler) *Aggregator {
	return &Aggregator{events: events, balances: balances}
}

// Aggregate computes the report for one branch and window. kinds restricts
// which event streams are aggregated; empty means both sales and expenses.
// An empty filter result yields zero totals and empty series, not an error.
func (a *Aggregator) Aggregate(ctx context.Context, branchID string, rng Range, kinds []ledger.EventKind) (*Report, error) {
	if err := rng.Validate(); err != nil {
		return nil, err
	}
	includeSales, includeExpenses, err := splitKinds(kinds)
	if err != nil {
		return nil, err
	}

	window := &eventstore.Range{From: rng.From, To: rng.To}

	var sales, expenses []ledger.Event
	if includeSales {
		sales, err = a.events.StreamByBranch(ctx, branchID, ledger.KindSale, window)
		if err != nil {
			return nil, fmt.Errorf("failed to load sales: %w", err)
		}
	}
	if includeExpenses {
		expenses, err = a.events.StreamByBranch(ctx, branchID, ledger.KindExpense, window)
		if err != nil {
			return nil, fmt.Errorf("failed to load expenses: %w", err)
		}
	}

	report := &Report{
		BranchID:          branchID,
		Range:             rng,
		MonthlySeries:     []MonthlyPoint{},
		CategoryBreakdown: []CategoryTotal{},
	}

	// Totals keep full precision; rounding to 2 decimal places is a
	// presentation concern.
	for i := range sales {
		report.TotalSales += sales[i].Amount
	}
	for i := range expenses {
		report.TotalExpenses += expenses[i].Amount
	}
	report.NetProfit = report.TotalSales - report.TotalExpenses

	report.MonthlySeries = monthlySeries(sales, expenses)
	report.CategoryBreakdown = categoryBreakdown(expenses)
	report.RecentTransactions = recentTransactions(sales, expenses)

	// Live balance, never date-filtered.
	bankBalance, err := a.balances.CurrentBalance(ctx, balance.BankScope(branchID))
	if err != nil {
		return nil, fmt.Errorf("failed to read bank balance: %w", err)
	}
	report.BankBalance = bankBalance

	return report, nil
}

func splitKinds(kinds []ledger.EventKind) (includeSales, includeExpenses bool, err error) {
	if len(kinds) == 0 {
		return true, true, nil
	}
	for _, k := range kinds {
		switch k {
		case ledger.KindSale:
			includeSales = true
		case ledger.KindExpense:
			includeExpenses = true
		default:
			return false, false, &ledger.ValidationError{Field: "kinds", Reason: ledger.ErrInvalidKind}
		}
	}
	return includeSales, includeExpenses, nil
}

// monthlySeries groups by the YYYY-MM of the business date. The zero-padded
// key makes the ascending lexical sort chronological.
func monthlySeries(sales, expenses []ledger.Event) []MonthlyPoint {
	byMonth := make(map[string]*MonthlyPoint)
	point := func(month string) *MonthlyPoint {
		p, ok := byMonth[month]
		if !ok {
			p = &MonthlyPoint{Month: month}
			byMonth[month] = p
		}
		return p
	}

	for i := range sales {
		point(sales[i].Month()).Sales += sales[i].Amount
	}
	for i := range expenses {
		point(expenses[i].Month()).Expenses += expenses[i].Amount
	}

	series := make([]MonthlyPoint, 0, len(byMonth))
	for _, p := range byMonth {
		series = append(series, *p)
	}
	sort.Slice(series, func(i, j int) bool {
		return series[i].Month < series[j].Month
	})
	return series
}

// categoryBreakdown sums expenses per category, defaulting to the
// unspecified sentinel. Order is arbitrary; see SortByTotalDesc.
func categoryBreakdown(expenses []ledger.Event) []CategoryTotal {
	byCategory := make(map[ledger.ExpenseCategory]float64)
	for i := range expenses {
		category := expenses[i].Category
		if category == "" {
			category = ledger.CategoryUnspecified
		}
		byCategory[category] += expenses[i].Amount
	}

	breakdown := make([]CategoryTotal, 0, len(byCategory))
	for category, total := range byCategory {
		breakdown = append(breakdown, CategoryTotal{Category: category, Total: total})
	}
	// Deterministic order so identical inputs yield identical reports; the
	// contract itself promises no particular order.
	sort.Slice(breakdown, func(i, j int) bool {
		return breakdown[i].Category < breakdown[j].Category
	})
	return breakdown
}

// recentTransactions returns the window's events sorted by ingestion time
// (createdAt) descending, truncated to RecentLimit. Note the deliberate
// asymmetry with the window filter, which uses the business date: a
// back-dated entry recorded today appears at the top even though its date is
// old. This matches the original system's behavior and is pinned by tests.
func recentTransactions(sales, expenses []ledger.Event) []ledger.Event {
	merged := make([]ledger.Event, 0, len(sales)+len(expenses))
	merged = append(merged, sales...)
	merged = append(merged, expenses...)

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].CreatedAt.After(merged[j].CreatedAt)
	})
	if len(merged) > RecentLimit {
		merged = merged[:RecentLimit]
	}
	return merged
}

// SortByTotalDesc orders a category breakdown by total descending, for
// display.
func SortByTotalDesc(breakdown []CategoryTotal) {
	sort.SliceStable(breakdown, func(i, j int) bool {
		return breakdown[i].Total > breakdown[j].Total
	})
}
