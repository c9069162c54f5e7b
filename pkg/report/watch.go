package report

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/qahwahub/cafe-ledger/pkg/ledger"
)

// Watch recomputes the report on every change to the branch's sale or
// expense streams and delivers it on the returned channel, starting with the
// current state. Cancelling ctx stops in-flight aggregation and closes the
// channel without emitting stale results, so a branch switch while a report
// is loading cannot leak the old branch's numbers into the new view.
func (a *Aggregator) Watch(ctx context.Context, branchID string, rng Range, kinds []ledger.EventKind) (<-chan *Report, error) {
	if err := rng.Validate(); err != nil {
		return nil, err
	}

	_, salesUpdates, cancelSales, err := a.events.Subscribe(ctx, ledger.KindSale, branchID)
	if err != nil {
		return nil, fmt.Errorf("failed to watch sales: %w", err)
	}
	_, expenseUpdates, cancelExpenses, err := a.events.Subscribe(ctx, ledger.KindExpense, branchID)
	if err != nil {
		cancelSales()
		return nil, fmt.Errorf("failed to watch expenses: %w", err)
	}

	out := make(chan *Report)
	go func() {
		defer close(out)
		defer cancelSales()
		defer cancelExpenses()

		// Initial report before any change arrives.
		if !a.recomputeAndSend(ctx, out, branchID, rng, kinds) {
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-salesUpdates:
				if !ok {
					return
				}
			case _, ok := <-expenseUpdates:
				if !ok {
					return
				}
			}
			if !a.recomputeAndSend(ctx, out, branchID, rng, kinds) {
				return
			}
		}
	}()

	return out, nil
}

// recomputeAndSend aggregates once and delivers the result. It returns false
// when the watch should stop: context cancellation, a closed store, or a
// receiver that went away.
func (a *Aggregator) recomputeAndSend(ctx context.Context, out chan<- *Report, branchID string, rng Range, kinds []ledger.EventKind) bool {
	report, err := a.Aggregate(ctx, branchID, rng, kinds)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		slog.Warn("report recomputation failed", "branch", branchID, "error", err)
		return false
	}

	select {
	case out <- report:
		return true
	case <-ctx.Done():
		return false
	}
}
