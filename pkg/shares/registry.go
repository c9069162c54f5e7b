// Package shares enforces the partner-share invariant: the sum of all
// registered share percentages never exceeds 100.
package shares

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/qahwahub/cafe-ledger/pkg/eventstore"
	"github.com/qahwahub/cafe-ledger/pkg/ledger"
)

// Registry validates and appends partner shares. Partners are a single
// global scope, so one mutex serializes the check-then-append.
type Registry struct {
	events *eventstore.Store
	mu     sync.Mutex
}

// New creates a registry over the event store.
func New(events *eventstore.Store) *Registry {
	return &Registry{events: events}
}

// Total returns the current sum of registered share percentages.
func (r *Registry) Total(ctx context.Context) (float64, error) {
	events, err := r.events.StreamGlobal(ctx, ledger.KindPartnerShare, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to sum partner shares: %w", err)
	}

	var total float64
	for i := range events {
		total += events[i].SharePercentage
	}
	return total, nil
}

// Partners returns all registered partner shares in creation order.
func (r *Registry) Partners(ctx context.Context) ([]ledger.Event, error) {
	return r.events.StreamGlobal(ctx, ledger.KindPartnerShare, nil)
}

// Validate checks whether a new share of pct percent could be added without
// pushing the total above 100. Like AuthorizeWithdrawal on the balance side,
// this is advisory: between Validate and a later append another writer may
// consume the headroom. Add closes that window.
func (r *Registry) Validate(ctx context.Context, pct float64) error {
	if pct <= 0 || pct > 100 {
		return &ledger.ValidationError{Field: "sharePercentage", Reason: ledger.ErrInvalidAmount}
	}

	total, err := r.Total(ctx)
	if err != nil {
		return err
	}
	if total+pct > 100 {
		return fmt.Errorf("share %.2f%% with %.2f%% already allocated: %w",
			pct, total, ledger.ErrShareOverflow)
	}
	return nil
}

// Add validates and appends a partner share as one serialized operation.
func (r *Registry) Add(ctx context.Context, name string, pct float64) (string, error) {
	if name == "" {
		return "", &ledger.ValidationError{Field: "name", Reason: ledger.ErrMissingField}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.Validate(ctx, pct); err != nil {
		return "", err
	}

	id, err := r.events.Append(ctx, ledger.Event{
		Kind:            ledger.KindPartnerShare,
		Name:            name,
		SharePercentage: pct,
	})
	if err != nil {
		return "", err
	}

	slog.Info("partner share added", "name", name, "share", pct)
	return id, nil
}

// Remove deletes a partner share. Unlike ledger money movements, partners
// are removable; the freed percentage becomes available again.
func (r *Registry) Remove(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events.AdminDelete(ctx, ledger.KindPartnerShare, id)
}
