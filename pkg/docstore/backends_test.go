package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func waitForUpdate(t *testing.T, sub *Subscription) []*Document {
	t.Helper()
	select {
	case docs, ok := <-sub.Updates:
		if !ok {
			t.Fatal("Updates closed unexpectedly")
		}
		return docs
	case <-time.After(2 * time.Second):
		t.Fatal("no update delivered")
		return nil
	}
}

// The three backends share one contract; run the same checks against each.
func openBackends(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()

	boltStore, err := OpenBolt(filepath.Join(dir, "ledger.bolt"))
	if err != nil {
		t.Fatalf("OpenBolt failed: %v", err)
	}
	sqliteStore, err := OpenSQLite(filepath.Join(dir, "ledger.sqlite"))
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}

	stores := map[string]Store{
		"memory": NewMemory(),
		"bolt":   boltStore,
		"sqlite": sqliteStore,
	}
	t.Cleanup(func() {
		for _, s := range stores {
			s.Close()
		}
	})
	return stores
}

func TestBackends_InsertGetRoundTrip(t *testing.T) {
	for name, store := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			insertDoc(t, store, CollectionSales, "s1", "b1", "2024-01-05")

			doc, err := store.Get(ctx, CollectionSales, "s1")
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if doc.ID != "s1" || doc.BranchID != "b1" || doc.Date != "2024-01-05" {
				t.Errorf("round-tripped document = %+v", doc)
			}
			if doc.Seq == 0 {
				t.Error("Seq not assigned")
			}

			if _, err := store.Get(ctx, CollectionSales, "missing"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Get missing = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestBackends_DuplicateID(t *testing.T) {
	for name, store := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			insertDoc(t, store, CollectionSales, "dup", "b1", "2024-01-05")
			err := store.Insert(context.Background(), CollectionSales, &Document{
				ID:   "dup",
				Body: json.RawMessage(`{}`),
			})
			if !errors.Is(err, ErrDuplicateID) {
				t.Errorf("Insert duplicate = %v, want ErrDuplicateID", err)
			}
		})
	}
}

func TestBackends_ListOrderAndFilters(t *testing.T) {
	for name, store := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			insertDoc(t, store, CollectionExpenses, "e1", "b1", "2024-01-05")
			insertDoc(t, store, CollectionExpenses, "e2", "b2", "2024-01-10")
			insertDoc(t, store, CollectionExpenses, "e3", "b1", "2024-02-01")

			docs, err := store.List(ctx, Query{Collection: CollectionExpenses, BranchID: "b1"})
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			if len(docs) != 2 || docs[0].ID != "e1" || docs[1].ID != "e3" {
				t.Errorf("filtered list = %+v", docs)
			}

			docs, err = store.List(ctx, Query{
				Collection: CollectionExpenses, Descending: true, Limit: 1,
			})
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			if len(docs) != 1 || docs[0].ID != "e3" {
				t.Errorf("descending limited list = %+v", docs)
			}

			docs, err = store.List(ctx, Query{
				Collection: CollectionExpenses, DateFrom: "2024-01-06", DateTo: "2024-01-31",
			})
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			if len(docs) != 1 || docs[0].ID != "e2" {
				t.Errorf("windowed list = %+v", docs)
			}
		})
	}
}

func TestBackends_UpdateDeleteWhere(t *testing.T) {
	for name, store := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			insertDoc(t, store, CollectionInventory, "i1", "b1", "")
			insertDoc(t, store, CollectionInventory, "i2", "b1", "")
			insertDoc(t, store, CollectionInventory, "i3", "b2", "")

			if err := store.Update(ctx, CollectionInventory, "i1", json.RawMessage(`{"quantity":9}`)); err != nil {
				t.Fatalf("Update failed: %v", err)
			}
			doc, err := store.Get(ctx, CollectionInventory, "i1")
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if string(doc.Body) != `{"quantity":9}` {
				t.Errorf("body after update = %s", doc.Body)
			}
			if doc.BranchID != "b1" {
				t.Error("Update changed envelope fields")
			}

			n, err := store.DeleteWhere(ctx, CollectionInventory, "b1")
			if err != nil {
				t.Fatalf("DeleteWhere failed: %v", err)
			}
			if n != 2 {
				t.Errorf("DeleteWhere removed %d, want 2", n)
			}
			docs, err := store.List(ctx, Query{Collection: CollectionInventory})
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			if len(docs) != 1 || docs[0].ID != "i3" {
				t.Errorf("remaining docs = %+v", docs)
			}
		})
	}
}

func TestBackends_SubscribeDelivers(t *testing.T) {
	for name, store := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			sub, err := store.Subscribe(context.Background(), Query{Collection: CollectionSales})
			if err != nil {
				t.Fatalf("Subscribe failed: %v", err)
			}
			defer sub.Cancel()

			if len(sub.Snapshot) != 0 {
				t.Fatalf("initial snapshot has %d docs, want 0", len(sub.Snapshot))
			}

			insertDoc(t, store, CollectionSales, "s1", "b1", "2024-01-05")
			docs := waitForUpdate(t, sub)
			if len(docs) != 1 || docs[0].ID != "s1" {
				t.Errorf("update snapshot = %+v", docs)
			}
		})
	}
}
