package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

// Memory is an in-process Store backed by maps. It is the reference
// implementation of the contract and the backend tests run against.
type Memory struct {
	hub *hub

	mu     sync.RWMutex
	closed bool
	colls  map[string]*memColl
}

type memColl struct {
	docs map[string]*Document
	seq  uint64
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	m := &Memory{colls: make(map[string]*memColl)}
	m.hub = newHub(m)
	return m
}

func (m *Memory) coll(name string) *memColl {
	c, ok := m.colls[name]
	if !ok {
		c = &memColl{docs: make(map[string]*Document)}
		m.colls[name] = c
	}
	return c
}

// Insert appends a document to the collection.
func (m *Memory) Insert(ctx context.Context, collection string, doc *Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	c := m.coll(collection)
	if _, exists := c.docs[doc.ID]; exists {
		m.mu.Unlock()
		return fmt.Errorf("insert %s/%s: %w", collection, doc.ID, ErrDuplicateID)
	}
	c.seq++
	doc.Seq = c.seq
	cp := *doc
	c.docs[doc.ID] = &cp
	m.mu.Unlock()

	m.hub.notify(collection)
	return nil
}

// Get retrieves one document by ID.
func (m *Memory) Get(ctx context.Context, collection, id string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	c, ok := m.colls[collection]
	if !ok {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, ErrNotFound)
	}
	doc, ok := c.docs[id]
	if !ok {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, ErrNotFound)
	}
	cp := *doc
	return &cp, nil
}

// List returns the documents matching the query in append order.
func (m *Memory) List(ctx context.Context, q Query) ([]*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return nil, ErrClosed
	}
	var out []*Document
	if c, ok := m.colls[q.Collection]; ok {
		for _, doc := range c.docs {
			if q.Matches(doc) {
				cp := *doc
				out = append(out, &cp)
			}
		}
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if q.Descending {
			return out[i].Seq > out[j].Seq
		}
		return out[i].Seq < out[j].Seq
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

// Update replaces the body of an existing document.
func (m *Memory) Update(ctx context.Context, collection, id string, body json.RawMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	c, ok := m.colls[collection]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("update %s/%s: %w", collection, id, ErrNotFound)
	}
	doc, ok := c.docs[id]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("update %s/%s: %w", collection, id, ErrNotFound)
	}
	doc.Body = append(json.RawMessage(nil), body...)
	m.mu.Unlock()

	m.hub.notify(collection)
	return nil
}

// Delete removes one document by ID.
func (m *Memory) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	c, ok := m.colls[collection]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("delete %s/%s: %w", collection, id, ErrNotFound)
	}
	if _, ok := c.docs[id]; !ok {
		m.mu.Unlock()
		return fmt.Errorf("delete %s/%s: %w", collection, id, ErrNotFound)
	}
	delete(c.docs, id)
	m.mu.Unlock()

	m.hub.notify(collection)
	return nil
}

// DeleteWhere removes every document with the given branch ID.
func (m *Memory) DeleteWhere(ctx context.Context, collection, branchID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return 0, ErrClosed
	}
	var removed int
	if c, ok := m.colls[collection]; ok {
		for id, doc := range c.docs {
			if doc.BranchID == branchID {
				delete(c.docs, id)
				removed++
			}
		}
	}
	m.mu.Unlock()

	if removed > 0 {
		m.hub.notify(collection)
	}
	return removed, nil
}

// Subscribe registers a live query.
func (m *Memory) Subscribe(ctx context.Context, q Query) (*Subscription, error) {
	return m.hub.subscribe(ctx, q)
}

// Close cancels all subscriptions and marks the store closed.
func (m *Memory) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.hub.closeAll()
	return nil
}
