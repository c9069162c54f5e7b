// Package balance maintains the derived running balances: one bank balance
// per branch and one global capital balance. A balance is never stored as
// ground truth; it is always the fold of the scope's ledger events in append
// order, with an invalidate-on-append cache in front for performance.
package balance

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/qahwahub/cafe-ledger/pkg/eventstore"
	"github.com/qahwahub/cafe-ledger/pkg/ledger"
)

// Scope identifies one balance. A non-empty BranchID selects that branch's
// bank balance; the zero Scope selects the global capital balance.
type Scope struct {
	BranchID string
}

// BankScope returns the bank-balance scope for a branch.
func BankScope(branchID string) Scope {
	return Scope{BranchID: branchID}
}

// CapitalScope returns the global capital-balance scope.
func CapitalScope() Scope {
	return Scope{}
}

func (s Scope) kind() ledger.EventKind {
	if s.BranchID == "" {
		return ledger.KindCapitalTransaction
	}
	return ledger.KindBankTransaction
}

// Reconciler computes and serializes access to running balances.
type Reconciler struct {
	events *eventstore.Store

	mu     sync.Mutex
	scopes map[Scope]*scopeState
}

type scopeState struct {
	mu     sync.Mutex
	cached float64
	valid  bool
}

// New creates a reconciler over the event store.
func New(events *eventstore.Store) *Reconciler {
	return &Reconciler{events: events, scopes: make(map[Scope]*scopeState)}
}

func (r *Reconciler) state(scope Scope) *scopeState {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.scopes[scope]
	if !ok {
		st = &scopeState{}
		r.scopes[scope] = st
	}
	return st
}

// CurrentBalance returns the scope's balance: the signed sum of its events,
// +amount for deposits/additions/initial, -amount for withdrawals. A branch
// with no events has balance 0. The cached value is reused until an append
// invalidates it.
func (r *Reconciler) CurrentBalance(ctx context.Context, scope Scope) (float64, error) {
	st := r.state(scope)
	st.mu.Lock()
	defer st.mu.Unlock()
	return r.currentLocked(ctx, scope, st)
}

func (r *Reconciler) currentLocked(ctx context.Context, scope Scope, st *scopeState) (float64, error) {
	if st.valid {
		return st.cached, nil
	}

	total, err := r.fold(ctx, scope)
	if err != nil {
		return 0, err
	}
	st.cached = total
	st.valid = true
	return total, nil
}

func (r *Reconciler) fold(ctx context.Context, scope Scope) (float64, error) {
	var events []ledger.Event
	var err error
	if scope.BranchID == "" {
		events, err = r.events.StreamGlobal(ctx, ledger.KindCapitalTransaction, nil)
	} else {
		events, err = r.events.StreamByBranch(ctx, scope.BranchID, ledger.KindBankTransaction, nil)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to fold balance: %w", err)
	}

	var total float64
	for i := range events {
		total += events[i].Signed()
	}
	return total, nil
}

// AuthorizeWithdrawal checks that amount does not exceed the current balance.
// It does not reserve anything: when the caller appends the withdrawal later
// (after user confirmation), a concurrent writer may have spent the balance
// in between. Withdraw closes that window; this call exists for the
// two-step authorize/confirm flow.
func (r *Reconciler) AuthorizeWithdrawal(ctx context.Context, scope Scope, amount float64) error {
	if amount <= 0 {
		return &ledger.ValidationError{Field: "amount", Reason: ledger.ErrInvalidAmount}
	}

	current, err := r.CurrentBalance(ctx, scope)
	if err != nil {
		return err
	}
	if amount > current {
		return fmt.Errorf("withdraw %.2f from balance %.2f: %w",
			amount, current, ledger.ErrInsufficientFunds)
	}
	return nil
}

// Deposit appends a deposit/addition event for the scope. The event's kind,
// direction and scope fields are filled in from the scope; the caller
// supplies amount, date and description.
func (r *Reconciler) Deposit(ctx context.Context, scope Scope, evt ledger.Event) (string, error) {
	if scope.BranchID == "" {
		if evt.Direction != ledger.DirectionInitial && evt.Direction != ledger.DirectionAddition {
			evt.Direction = ledger.DirectionAddition
		}
	} else {
		evt.Direction = ledger.DirectionDeposit
	}
	return r.append(ctx, scope, evt)
}

// Withdraw authorizes and appends a withdrawal as one serialized operation
// per scope, so concurrent withdrawals cannot both be authorized against the
// same stale balance.
func (r *Reconciler) Withdraw(ctx context.Context, scope Scope, evt ledger.Event) (string, error) {
	evt.Direction = ledger.DirectionWithdrawal

	st := r.state(scope)
	st.mu.Lock()
	defer st.mu.Unlock()

	current, err := r.currentLocked(ctx, scope, st)
	if err != nil {
		return "", err
	}
	if evt.Amount > current {
		return "", fmt.Errorf("withdraw %.2f from balance %.2f: %w",
			evt.Amount, current, ledger.ErrInsufficientFunds)
	}

	return r.appendLocked(ctx, scope, evt, st)
}

func (r *Reconciler) append(ctx context.Context, scope Scope, evt ledger.Event) (string, error) {
	st := r.state(scope)
	st.mu.Lock()
	defer st.mu.Unlock()
	return r.appendLocked(ctx, scope, evt, st)
}

func (r *Reconciler) appendLocked(ctx context.Context, scope Scope, evt ledger.Event, st *scopeState) (string, error) {
	evt.Kind = scope.kind()
	evt.BranchID = scope.BranchID

	id, err := r.events.Append(ctx, evt)
	if err != nil {
		return "", err
	}

	// Fold incrementally instead of discarding the cache: the append is the
	// only change this path allows while the scope lock is held.
	if st.valid {
		st.cached += evt.Signed()
	}

	slog.Debug("balance updated",
		"scope", scope.BranchID, "direction", evt.Direction, "amount", evt.Amount)
	return id, nil
}

// Invalidate discards the scope's cached fold. Callers that append bank or
// capital events outside this component must invalidate the affected scope.
func (r *Reconciler) Invalidate(scope Scope) {
	st := r.state(scope)
	st.mu.Lock()
	st.valid = false
	st.mu.Unlock()
}

// WatchInvalidate subscribes to the scope's event collection and discards
// the cache on every foreign write, until ctx is done. It returns after the
// subscription is established.
func (r *Reconciler) WatchInvalidate(ctx context.Context, scope Scope) error {
	_, updates, cancel, err := r.events.Subscribe(ctx, scope.kind(), scope.BranchID)
	if err != nil {
		return err
	}

	go func() {
		defer cancel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-updates:
				if !ok {
					return
				}
				r.Invalidate(scope)
			}
		}
	}()
	return nil
}
