// Package eventstore implements the append-only store of financial events,
// partitioned by branch and kind, on top of the docstore boundary. Ledger
// kinds have no update operation; inventory, employees and users are current
// state and support in-place edits.
package eventstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/qahwahub/cafe-ledger/pkg/docstore"
	"github.com/qahwahub/cafe-ledger/pkg/ledger"
)

// Range bounds a stream by business date, inclusive on both ends. The zero
// value means unbounded.
type Range struct {
	From string
	To   string
}

// Store is the append-only event store. The docstore handle is passed in
// explicitly; there are no ambient singletons.
type Store struct {
	docs docstore.Store
	now  func() time.Time
}

// New creates an event store over the given document store.
func New(docs docstore.Store) *Store {
	return NewWithClock(docs, time.Now)
}

// NewWithClock creates an event store with an explicit clock, for
// deterministic ingestion timestamps in tests.
func NewWithClock(docs docstore.Store, now func() time.Time) *Store {
	return &Store{docs: docs, now: now}
}

// Docs exposes the underlying document store, for components that need raw
// subscriptions.
func (s *Store) Docs() docstore.Store {
	return s.docs
}

// Append validates and appends an event, returning the assigned event ID.
// Branch-scoped events must reference a live branch. Ledger events are
// immutable once appended.
func (s *Store) Append(ctx context.Context, evt ledger.Event) (string, error) {
	if err := evt.Validate(); err != nil {
		return "", err
	}

	if evt.Kind.IsBranchScoped() {
		if _, err := s.Branch(ctx, evt.BranchID); err != nil {
			return "", &ledger.ValidationError{Field: "branchId", Reason: ledger.ErrInvalidBranch}
		}
	}

	evt.ID = uuid.NewString()
	evt.CreatedAt = s.now().UTC()

	body, err := json.Marshal(&evt)
	if err != nil {
		return "", fmt.Errorf("failed to marshal event: %w", err)
	}

	doc := &docstore.Document{
		ID:        evt.ID,
		BranchID:  evt.BranchID,
		Date:      evt.Date,
		CreatedAt: evt.CreatedAt,
		Body:      body,
	}
	if err := s.docs.Insert(ctx, evt.Kind.Collection(), doc); err != nil {
		return "", fmt.Errorf("failed to append %s event: %w", evt.Kind, err)
	}

	slog.Debug("event appended",
		"kind", evt.Kind, "id", evt.ID, "branch", evt.BranchID, "amount", evt.Amount)
	return evt.ID, nil
}

// StreamByBranch returns the branch's events of the given kind in append
// order, optionally bounded by business date.
func (s *Store) StreamByBranch(ctx context.Context, branchID string, kind ledger.EventKind, rng *Range) ([]ledger.Event, error) {
	if !kind.IsBranchScoped() {
		return nil, &ledger.ValidationError{Field: "kind", Reason: ledger.ErrInvalidKind}
	}
	return s.stream(ctx, kind, branchID, rng)
}

// StreamGlobal returns all events of a global kind in append order.
func (s *Store) StreamGlobal(ctx context.Context, kind ledger.EventKind, rng *Range) ([]ledger.Event, error) {
	if kind.IsBranchScoped() {
		return nil, &ledger.ValidationError{Field: "kind", Reason: ledger.ErrInvalidKind}
	}
	return s.stream(ctx, kind, "", rng)
}

func (s *Store) stream(ctx context.Context, kind ledger.EventKind, branchID string, rng *Range) ([]ledger.Event, error) {
	q := docstore.Query{Collection: kind.Collection(), BranchID: branchID}
	if rng != nil {
		q.DateFrom = rng.From
		q.DateTo = rng.To
	}

	docs, err := s.docs.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to stream %s events: %w", kind, err)
	}
	return decodeEvents(docs)
}

// Subscribe registers a live query over one event kind. For branch-scoped
// kinds branchID narrows the stream; for global kinds it is ignored. The
// subscription delivers decoded snapshots of the full matching event set.
func (s *Store) Subscribe(ctx context.Context, kind ledger.EventKind, branchID string) ([]ledger.Event, <-chan []ledger.Event, func(), error) {
	if !kind.IsBranchScoped() {
		branchID = ""
	}

	sub, err := s.docs.Subscribe(ctx, docstore.Query{
		Collection: kind.Collection(),
		BranchID:   branchID,
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to subscribe to %s events: %w", kind, err)
	}

	snapshot, err := decodeEvents(sub.Snapshot)
	if err != nil {
		sub.Cancel()
		return nil, nil, nil, err
	}

	out := make(chan []ledger.Event)
	go func() {
		defer close(out)
		for docs := range sub.Updates {
			events, err := decodeEvents(docs)
			if err != nil {
				slog.Warn("dropping undecodable event snapshot",
					"kind", kind, "error", err)
				continue
			}
			select {
			case out <- events:
			case <-ctx.Done():
				sub.Cancel()
				return
			}
		}
	}()

	return snapshot, out, sub.Cancel, nil
}

// AdminDelete removes one ledger event. This is the administrative deletion
// path only; normal operation never removes events.
func (s *Store) AdminDelete(ctx context.Context, kind ledger.EventKind, id string) error {
	if !kind.IsValid() {
		return &ledger.ValidationError{Field: "kind", Reason: ledger.ErrInvalidKind}
	}
	if err := s.docs.Delete(ctx, kind.Collection(), id); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return fmt.Errorf("%s event %s: %w", kind, id, ledger.ErrNotFound)
		}
		return fmt.Errorf("failed to delete %s event: %w", kind, err)
	}
	slog.Info("event deleted administratively", "kind", kind, "id", id)
	return nil
}

func decodeEvents(docs []*docstore.Document) ([]ledger.Event, error) {
	events := make([]ledger.Event, 0, len(docs))
	for _, doc := range docs {
		var evt ledger.Event
		if err := json.Unmarshal(doc.Body, &evt); err != nil {
			return nil, fmt.Errorf("failed to decode event %s: %w", doc.ID, err)
		}
		events = append(events, evt)
	}
	return events, nil
}
