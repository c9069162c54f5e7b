package report

import (
	"context"
	"testing"
	"time"
)

func receiveReport(t *testing.T, reports <-chan *Report) *Report {
	t.Helper()
	select {
	case report, ok := <-reports:
		if !ok {
			t.Fatal("report channel closed unexpectedly")
		}
		return report
	case <-time.After(2 * time.Second):
		t.Fatal("no report delivered")
		return nil
	}
}

func TestWatch_InitialReportThenRecompute(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f.sale(t, 100, "2024-01-05")

	reports, err := f.aggregator.Watch(ctx, f.branch.ID,
		Range{From: "2024-01-01", To: "2024-01-31"}, nil)
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	report := receiveReport(t, reports)
	if report.TotalSales != 100 {
		t.Errorf("initial TotalSales = %v, want 100", report.TotalSales)
	}

	f.expense(t, 30, "2024-01-20", "")

	// The watcher may deliver an intermediate recompute before settling; drain
	// until the appended expense shows up.
	deadline := time.After(2 * time.Second)
	for {
		select {
		case report, ok := <-reports:
			if !ok {
				t.Fatal("report channel closed before recompute")
			}
			if report.TotalExpenses == 30 {
				if report.NetProfit != 70 {
					t.Errorf("NetProfit = %v, want 70", report.NetProfit)
				}
				return
			}
		case <-deadline:
			t.Fatal("recomputed report never reflected the appended expense")
		}
	}
}

func TestWatch_RejectsInvalidRange(t *testing.T) {
	f := newFixture(t)
	if _, err := f.aggregator.Watch(context.Background(), f.branch.ID,
		Range{From: "2024-02-01", To: "2024-01-01"}, nil); err == nil {
		t.Error("Watch accepted inverted range")
	}
}

func TestWatch_CancelClosesChannel(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())

	reports, err := f.aggregator.Watch(ctx, f.branch.ID,
		Range{From: "2024-01-01", To: "2024-01-31"}, nil)
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	receiveReport(t, reports)
	cancel()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-reports:
			if !ok {
				return
			}
			// An already-computed report may still be in flight; only new
			// deliveries after the close are a bug, and the close must come.
		case <-deadline:
			t.Fatal("report channel not closed after cancel")
		}
	}
}
