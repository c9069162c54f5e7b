// Package docstore provides the document-oriented persistence boundary the
// ledger engine is built on: named collections of JSON documents with
// equality/range filtering, append ordering, and live subscriptions that
// deliver the full current result set on every matching write.
//
// Three backends are provided: an in-memory store, an embedded bbolt store,
// and a SQLite store. All three share the same subscription semantics
// (in-process; cross-process fan-out is not part of the contract).
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"
)

// Collection names used by the ledger engine.
const (
	CollectionSales               = "sales"
	CollectionExpenses            = "expenses"
	CollectionBankTransactions    = "bank_transactions"
	CollectionCapitalTransactions = "capital_transactions"
	CollectionPartners            = "partners"
	CollectionProjectCosts        = "project_costs"
	CollectionTaxPayments         = "tax_payments"
	CollectionInventory           = "inventory"
	CollectionBranches            = "branches"
	CollectionEmployees           = "employees"
	CollectionUsers               = "users"
)

// Collections lists every collection the engine uses.
func Collections() []string {
	return []string{
		CollectionSales,
		CollectionExpenses,
		CollectionBankTransactions,
		CollectionCapitalTransactions,
		CollectionPartners,
		CollectionProjectCosts,
		CollectionTaxPayments,
		CollectionInventory,
		CollectionBranches,
		CollectionEmployees,
		CollectionUsers,
	}
}

var (
	// ErrNotFound is returned when a document is not found.
	ErrNotFound = errors.New("document not found")

	// ErrDuplicateID is returned when inserting a document whose ID already
	// exists in the collection.
	ErrDuplicateID = errors.New("duplicate document ID")

	// ErrClosed is returned when the store has been closed.
	ErrClosed = errors.New("store is closed")
)

// Document is the storage envelope. BranchID and Date are duplicated out of
// the body so backends can filter without decoding it. Seq is assigned by the
// store at insert time and defines append order within a collection.
type Document struct {
	ID        string          `json:"id"`
	BranchID  string          `json:"branchId,omitempty"`
	Date      string          `json:"date,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	Seq       uint64          `json:"seq"`
	Body      json.RawMessage `json:"body"`
}

// Query selects documents from one collection. BranchID is an equality
// filter when non-empty; DateFrom/DateTo are inclusive bounds on the
// document's business date (lexical comparison on YYYY-MM-DD). Results are
// in append order, reversed when Descending is set, truncated to Limit when
// Limit > 0.
type Query struct {
	Collection string
	BranchID   string
	DateFrom   string
	DateTo     string
	Descending bool
	Limit      int
}

// Matches reports whether doc satisfies the query's filters.
func (q Query) Matches(doc *Document) bool {
	if q.BranchID != "" && doc.BranchID != q.BranchID {
		return false
	}
	if q.DateFrom != "" && doc.Date < q.DateFrom {
		return false
	}
	if q.DateTo != "" && doc.Date > q.DateTo {
		return false
	}
	return true
}

// Store is the persistence contract the engine consumes. Implementations are
// safe for concurrent use.
type Store interface {
	// Insert appends a document to the collection. The caller sets ID,
	// BranchID, Date, CreatedAt and Body; the store assigns Seq.
	Insert(ctx context.Context, collection string, doc *Document) error

	// Get retrieves one document by ID.
	Get(ctx context.Context, collection, id string) (*Document, error)

	// List returns the documents matching the query.
	List(ctx context.Context, q Query) ([]*Document, error)

	// Update replaces the body of an existing document. Envelope fields are
	// immutable.
	Update(ctx context.Context, collection, id string, body json.RawMessage) error

	// Delete removes one document by ID.
	Delete(ctx context.Context, collection, id string) error

	// DeleteWhere removes every document in the collection with the given
	// branch ID and returns how many were removed.
	DeleteWhere(ctx context.Context, collection, branchID string) (int, error)

	// Subscribe registers a live query. It returns the current result set
	// and a channel that delivers the full refreshed result set after every
	// subsequent write to the collection that may affect the query. The
	// channel closes when the subscription is cancelled or ctx is done.
	Subscribe(ctx context.Context, q Query) (*Subscription, error)

	Close() error
}

// Subscription is a registered live query.
type Subscription struct {
	// Snapshot is the result set at subscription time.
	Snapshot []*Document

	// Updates delivers the full result set after each relevant write.
	Updates <-chan []*Document

	// Cancel stops delivery and closes Updates. Safe to call more than once.
	Cancel func()

	mu  sync.Mutex
	err error
}

// Err returns the persistence failure that terminated the subscription, or
// nil when it ended by Cancel or context cancellation. Meaningful once
// Updates is closed; callers use it to resubscribe with backoff on failure
// only.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Subscription) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}
