package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"
)

func insertDoc(t *testing.T, store Store, collection, id, branchID, date string) {
	t.Helper()
	err := store.Insert(context.Background(), collection, &Document{
		ID:        id,
		BranchID:  branchID,
		Date:      date,
		CreatedAt: time.Now().UTC(),
		Body:      json.RawMessage(`{}`),
	})
	if err != nil {
		t.Fatalf("Insert(%s/%s) failed: %v", collection, id, err)
	}
}

func TestMemory_InsertAssignsSequence(t *testing.T) {
	store := NewMemory()
	defer store.Close()
	ctx := context.Background()

	var seqs []uint64
	for i := 0; i < 3; i++ {
		doc := &Document{ID: fmt.Sprintf("doc-%d", i), Body: json.RawMessage(`{}`)}
		if err := store.Insert(ctx, CollectionSales, doc); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
		seqs = append(seqs, doc.Seq)
	}

	for i := 1; i < len(seqs); i++ {
		if seqs[i] <= seqs[i-1] {
			t.Errorf("sequence not increasing: %v", seqs)
		}
	}
}

func TestMemory_DuplicateID(t *testing.T) {
	store := NewMemory()
	defer store.Close()

	insertDoc(t, store, CollectionSales, "dup", "b1", "2024-01-01")
	err := store.Insert(context.Background(), CollectionSales, &Document{ID: "dup"})
	if !errors.Is(err, ErrDuplicateID) {
		t.Errorf("Insert duplicate = %v, want ErrDuplicateID", err)
	}
}

func TestMemory_ListFilters(t *testing.T) {
	store := NewMemory()
	defer store.Close()
	ctx := context.Background()

	insertDoc(t, store, CollectionSales, "s1", "b1", "2024-01-05")
	insertDoc(t, store, CollectionSales, "s2", "b1", "2024-02-10")
	insertDoc(t, store, CollectionSales, "s3", "b2", "2024-01-15")
	insertDoc(t, store, CollectionExpenses, "e1", "b1", "2024-01-20")

	tests := []struct {
		name  string
		query Query
		want  []string
	}{
		{
			name:  "all in collection",
			query: Query{Collection: CollectionSales},
			want:  []string{"s1", "s2", "s3"},
		},
		{
			name:  "branch filter",
			query: Query{Collection: CollectionSales, BranchID: "b1"},
			want:  []string{"s1", "s2"},
		},
		{
			name:  "date range inclusive",
			query: Query{Collection: CollectionSales, DateFrom: "2024-01-05", DateTo: "2024-01-15"},
			want:  []string{"s1", "s3"},
		},
		{
			name:  "date range excludes outside",
			query: Query{Collection: CollectionSales, DateFrom: "2024-01-06", DateTo: "2024-02-09"},
			want:  []string{"s3"},
		},
		{
			name:  "descending",
			query: Query{Collection: CollectionSales, Descending: true},
			want:  []string{"s3", "s2", "s1"},
		},
		{
			name:  "limit",
			query: Query{Collection: CollectionSales, Limit: 2},
			want:  []string{"s1", "s2"},
		},
		{
			name:  "no matches",
			query: Query{Collection: CollectionSales, BranchID: "b9"},
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs, err := store.List(ctx, tt.query)
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			if len(docs) != len(tt.want) {
				t.Fatalf("List returned %d docs, want %d", len(docs), len(tt.want))
			}
			for i, doc := range docs {
				if doc.ID != tt.want[i] {
					t.Errorf("docs[%d].ID = %s, want %s", i, doc.ID, tt.want[i])
				}
			}
		})
	}
}

func TestMemory_GetUpdateDelete(t *testing.T) {
	store := NewMemory()
	defer store.Close()
	ctx := context.Background()

	insertDoc(t, store, CollectionInventory, "item1", "b1", "")

	doc, err := store.Get(ctx, CollectionInventory, "item1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if doc.ID != "item1" || doc.BranchID != "b1" {
		t.Errorf("Get returned wrong document: %+v", doc)
	}

	if err := store.Update(ctx, CollectionInventory, "item1", json.RawMessage(`{"quantity":5}`)); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	doc, err = store.Get(ctx, CollectionInventory, "item1")
	if err != nil {
		t.Fatalf("Get after update failed: %v", err)
	}
	if string(doc.Body) != `{"quantity":5}` {
		t.Errorf("body after update = %s", doc.Body)
	}

	if err := store.Delete(ctx, CollectionInventory, "item1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Get(ctx, CollectionInventory, "item1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete = %v, want ErrNotFound", err)
	}

	if err := store.Update(ctx, CollectionInventory, "missing", json.RawMessage(`{}`)); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update missing = %v, want ErrNotFound", err)
	}
	if err := store.Delete(ctx, CollectionInventory, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete missing = %v, want ErrNotFound", err)
	}
}

func TestMemory_DeleteWhere(t *testing.T) {
	store := NewMemory()
	defer store.Close()
	ctx := context.Background()

	insertDoc(t, store, CollectionSales, "s1", "b1", "2024-01-05")
	insertDoc(t, store, CollectionSales, "s2", "b1", "2024-01-06")
	insertDoc(t, store, CollectionSales, "s3", "b2", "2024-01-07")

	n, err := store.DeleteWhere(ctx, CollectionSales, "b1")
	if err != nil {
		t.Fatalf("DeleteWhere failed: %v", err)
	}
	if n != 2 {
		t.Errorf("DeleteWhere removed %d, want 2", n)
	}

	docs, err := store.List(ctx, Query{Collection: CollectionSales})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(docs) != 1 || docs[0].ID != "s3" {
		t.Errorf("remaining docs = %+v, want only s3", docs)
	}
}

func TestMemory_SubscribeDeliversSnapshots(t *testing.T) {
	store := NewMemory()
	defer store.Close()
	ctx := context.Background()

	insertDoc(t, store, CollectionSales, "s1", "b1", "2024-01-05")

	sub, err := store.Subscribe(ctx, Query{Collection: CollectionSales, BranchID: "b1"})
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer sub.Cancel()

	if len(sub.Snapshot) != 1 {
		t.Fatalf("initial snapshot has %d docs, want 1", len(sub.Snapshot))
	}

	insertDoc(t, store, CollectionSales, "s2", "b1", "2024-01-06")

	select {
	case docs := <-sub.Updates:
		if len(docs) != 2 {
			t.Errorf("update snapshot has %d docs, want 2", len(docs))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no update delivered after insert")
	}

	// A write to another collection must not wake this subscription with
	// changed results; a write to another branch refreshes with the same
	// result set.
	insertDoc(t, store, CollectionSales, "s3", "b2", "2024-01-07")
	select {
	case docs := <-sub.Updates:
		if len(docs) != 2 {
			t.Errorf("snapshot after foreign-branch insert has %d docs, want 2", len(docs))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no refresh delivered after collection write")
	}
}

func TestMemory_SubscribeCancelClosesUpdates(t *testing.T) {
	store := NewMemory()
	defer store.Close()

	sub, err := store.Subscribe(context.Background(), Query{Collection: CollectionSales})
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	sub.Cancel()
	sub.Cancel() // safe to call twice

	select {
	case _, ok := <-sub.Updates:
		if ok {
			t.Error("Updates delivered after cancel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Updates not closed after cancel")
	}

	// Writes after cancel must not panic or block.
	insertDoc(t, store, CollectionSales, "s1", "b1", "2024-01-05")
}

func TestMemory_SubscribeContextCancel(t *testing.T) {
	store := NewMemory()
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	sub, err := store.Subscribe(ctx, Query{Collection: CollectionSales})
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer sub.Cancel()

	cancel()

	select {
	case _, ok := <-sub.Updates:
		if ok {
			t.Error("Updates delivered after context cancel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Updates not closed after context cancel")
	}
}

func TestMemory_Close(t *testing.T) {
	store := NewMemory()
	insertDoc(t, store, CollectionSales, "s1", "b1", "2024-01-05")

	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := store.Insert(context.Background(), CollectionSales, &Document{ID: "s2"}); !errors.Is(err, ErrClosed) {
		t.Errorf("Insert after close = %v, want ErrClosed", err)
	}
	if _, err := store.List(context.Background(), Query{Collection: CollectionSales}); !errors.Is(err, ErrClosed) {
		t.Errorf("List after close = %v, want ErrClosed", err)
	}
}

func TestQuery_Matches(t *testing.T) {
	doc := &Document{ID: "d1", BranchID: "b1", Date: "2024-01-15"}

	tests := []struct {
		name  string
		query Query
		want  bool
	}{
		{"no filters", Query{}, true},
		{"branch match", Query{BranchID: "b1"}, true},
		{"branch mismatch", Query{BranchID: "b2"}, false},
		{"from boundary inclusive", Query{DateFrom: "2024-01-15"}, true},
		{"to boundary inclusive", Query{DateTo: "2024-01-15"}, true},
		{"before from", Query{DateFrom: "2024-01-16"}, false},
		{"after to", Query{DateTo: "2024-01-14"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.query.Matches(doc); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}
