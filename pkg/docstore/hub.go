package docstore

import (
	"context"
	"log/slog"
	"sync"
)

// lister is the read side a hub re-runs queries against. Each backend passes
// itself.
type lister interface {
	List(ctx context.Context, q Query) ([]*Document, error)
}

// hub implements the live-subscription contract shared by all backends.
// Writers call notify after a committed write; each subscription re-lists its
// query on its own goroutine, so appends are never blocked by slow consumers.
type hub struct {
	src lister

	mu     sync.Mutex
	nextID int
	subs   map[int]*subscriber
}

type subscriber struct {
	query Query
	dirty chan struct{}
	out   chan []*Document
	done  chan struct{}
	once  sync.Once
}

func newHub(src lister) *hub {
	return &hub{src: src, subs: make(map[int]*subscriber)}
}

// notify marks every subscription on the collection dirty. Non-blocking.
func (h *hub) notify(collection string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, s := range h.subs {
		if s.query.Collection != collection {
			continue
		}
		select {
		case s.dirty <- struct{}{}:
		default:
		}
	}
}

// subscribe registers q and returns the initial snapshot plus the update
// channel. ctx cancellation tears the subscription down.
func (h *hub) subscribe(ctx context.Context, q Query) (*Subscription, error) {
	snapshot, err := h.src.List(ctx, q)
	if err != nil {
		return nil, err
	}

	s := &subscriber{
		query: q,
		dirty: make(chan struct{}, 1),
		out:   make(chan []*Document),
		done:  make(chan struct{}),
	}

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = s
	h.mu.Unlock()

	cancel := func() {
		s.once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			close(s.done)
		})
	}

	sub := &Subscription{Snapshot: snapshot, Updates: s.out, Cancel: cancel}
	go s.run(ctx, h.src, sub, cancel)

	return sub, nil
}

func (s *subscriber) run(ctx context.Context, src lister, sub *Subscription, cancel func()) {
	defer close(s.out)
	for {
		select {
		case <-ctx.Done():
			cancel()
			return
		case <-s.done:
			return
		case <-s.dirty:
		}

		docs, err := src.List(ctx, s.query)
		if err != nil {
			// The store may be closed or the context cancelled; either way
			// the subscription is over. Persistence-layer failures are
			// recorded on the subscription so consumers can resubscribe
			// with backoff on failure only, not on a deliberate cancel.
			if ctx.Err() == nil {
				sub.setErr(err)
			}
			slog.Warn("subscription refresh failed",
				"collection", s.query.Collection, "error", err)
			cancel()
			return
		}

		select {
		case s.out <- docs:
		case <-ctx.Done():
			cancel()
			return
		case <-s.done:
			return
		}
	}
}

// closeAll cancels every subscription; used by backend Close.
func (h *hub) closeAll() {
	h.mu.Lock()
	subs := make([]*subscriber, 0, len(h.subs))
	for _, s := range h.subs {
		subs = append(subs, s)
	}
	h.subs = make(map[int]*subscriber)
	h.mu.Unlock()

	for _, s := range subs {
		s.once.Do(func() { close(s.done) })
	}
}
