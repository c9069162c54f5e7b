package docstore

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"

	bolt "go.etcd.io/bbolt"
)

// idIndexSuffix names the per-collection bucket mapping document ID to its
// sequence key.
const idIndexSuffix = "#ids"

// Bolt is a Store backed by an embedded bbolt database. Each collection maps
// to one bucket keyed by insertion sequence, which preserves append order,
// plus an ID index bucket for point lookups.
type Bolt struct {
	db  *bolt.DB
	hub *hub
}

// OpenBolt opens (creating if needed) a bbolt-backed store at path and
// initializes a bucket per collection.
func OpenBolt(path string) (*Bolt, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range Collections() {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", name, err)
			}
			if _, err := tx.CreateBucketIfNotExists([]byte(name + idIndexSuffix)); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	b := &Bolt{db: db}
	b.hub = newHub(b)
	return b, nil
}

// Insert appends a document to the collection.
func (b *Bolt) Insert(ctx context.Context, collection string, doc *Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(collection))
		index := tx.Bucket([]byte(collection + idIndexSuffix))
		if bucket == nil || index == nil {
			return fmt.Errorf("bucket %s not found", collection)
		}

		if index.Get([]byte(doc.ID)) != nil {
			return fmt.Errorf("insert %s/%s: %w", collection, doc.ID, ErrDuplicateID)
		}

		seq, err := bucket.NextSequence()
		if err != nil {
			return err
		}
		doc.Seq = seq

		data, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("failed to marshal document: %w", err)
		}

		key := itob(seq)
		if err := bucket.Put(key, data); err != nil {
			return err
		}
		return index.Put([]byte(doc.ID), key)
	})
	if err != nil {
		return err
	}

	b.hub.notify(collection)
	return nil
}

// Get retrieves one document by ID.
func (b *Bolt) Get(ctx context.Context, collection, id string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var doc Document
	err := b.db.View(func(tx *bolt.Tx) error {
		data, err := b.rawGet(tx, collection, id)
		if err != nil {
			return err
		}
		return json.Unmarshal(data, &doc)
	})
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (b *Bolt) rawGet(tx *bolt.Tx, collection, id string) ([]byte, error) {
	bucket := tx.Bucket([]byte(collection))
	index := tx.Bucket([]byte(collection + idIndexSuffix))
	if bucket == nil || index == nil {
		return nil, fmt.Errorf("bucket %s not found", collection)
	}
	key := index.Get([]byte(id))
	if key == nil {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, ErrNotFound)
	}
	data := bucket.Get(key)
	if data == nil {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, ErrNotFound)
	}
	return data, nil
}

// List returns the documents matching the query in append order.
func (b *Bolt) List(ctx context.Context, q Query) ([]*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []*Document
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(q.Collection))
		if bucket == nil {
			return fmt.Errorf("bucket %s not found", q.Collection)
		}
		return bucket.ForEach(func(_, v []byte) error {
			var doc Document
			if err := json.Unmarshal(v, &doc); err != nil {
				return fmt.Errorf("failed to unmarshal document: %w", err)
			}
			if q.Matches(&doc) {
				out = append(out, &doc)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	// ForEach visits keys in byte order, which for the big-endian sequence
	// keys is append order.
	if q.Descending {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

// Update replaces the body of an existing document.
func (b *Bolt) Update(ctx context.Context, collection, id string, body json.RawMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := b.db.Update(func(tx *bolt.Tx) error {
		data, err := b.rawGet(tx, collection, id)
		if err != nil {
			return err
		}
		var doc Document
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("failed to unmarshal document: %w", err)
		}
		doc.Body = body

		updated, err := json.Marshal(&doc)
		if err != nil {
			return fmt.Errorf("failed to marshal document: %w", err)
		}
		return tx.Bucket([]byte(collection)).Put(itob(doc.Seq), updated)
	})
	if err != nil {
		return err
	}

	b.hub.notify(collection)
	return nil
}

// Delete removes one document by ID.
func (b *Bolt) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(collection))
		index := tx.Bucket([]byte(collection + idIndexSuffix))
		if bucket == nil || index == nil {
			return fmt.Errorf("bucket %s not found", collection)
		}
		key := index.Get([]byte(id))
		if key == nil {
			return fmt.Errorf("delete %s/%s: %w", collection, id, ErrNotFound)
		}
		if err := bucket.Delete(key); err != nil {
			return err
		}
		return index.Delete([]byte(id))
	})
	if err != nil {
		return err
	}

	b.hub.notify(collection)
	return nil
}

// DeleteWhere removes every document with the given branch ID.
func (b *Bolt) DeleteWhere(ctx context.Context, collection, branchID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var removed int
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(collection))
		index := tx.Bucket([]byte(collection + idIndexSuffix))
		if bucket == nil || index == nil {
			return fmt.Errorf("bucket %s not found", collection)
		}

		type victim struct {
			key []byte
			id  string
		}
		var victims []victim
		err := bucket.ForEach(func(k, v []byte) error {
			var doc Document
			if err := json.Unmarshal(v, &doc); err != nil {
				return fmt.Errorf("failed to unmarshal document: %w", err)
			}
			if doc.BranchID == branchID {
				victims = append(victims, victim{key: append([]byte(nil), k...), id: doc.ID})
			}
			return nil
		})
		if err != nil {
			return err
		}

		for _, v := range victims {
			if err := bucket.Delete(v.key); err != nil {
				return err
			}
			if err := index.Delete([]byte(v.id)); err != nil {
				return err
			}
		}
		removed = len(victims)
		return nil
	})
	if err != nil {
		return 0, err
	}

	if removed > 0 {
		b.hub.notify(collection)
	}
	return removed, nil
}

// Subscribe registers a live query.
func (b *Bolt) Subscribe(ctx context.Context, q Query) (*Subscription, error) {
	return b.hub.subscribe(ctx, q)
}

// Close cancels all subscriptions and closes the database.
func (b *Bolt) Close() error {
	b.hub.closeAll()
	return b.db.Close()
}

// itob converts a sequence number to a big-endian byte key, so key order
// equals append order.
func itob(v uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	return buf
}
