package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-sqlite3"
)

// schema defines the SQL statements to create the document tables.
//
// All collections share one table; the (collection, seq) pair preserves
// append order and (collection, id) is the document identity.
const schema = `
CREATE TABLE IF NOT EXISTS documents (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    collection TEXT NOT NULL,
    id TEXT NOT NULL,
    branch_id TEXT NOT NULL DEFAULT '',
    date TEXT NOT NULL DEFAULT '',        -- YYYY-MM-DD business date
    created_at TIMESTAMP NOT NULL,
    body BLOB NOT NULL,
    UNIQUE(collection, id)
);

CREATE INDEX IF NOT EXISTS idx_documents_branch
    ON documents(collection, branch_id);

CREATE INDEX IF NOT EXISTS idx_documents_date
    ON documents(collection, date);
`

// SQLite is a Store backed by a SQLite database file.
type SQLite struct {
	db   *sql.DB
	path string
	hub  *hub
}

// OpenSQLite opens a SQLite-backed store. It enables WAL mode for better
// concurrency and foreign key constraints, and initializes the schema.
func OpenSQLite(path string) (*SQLite, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	connStr := fmt.Sprintf("file:%s?_foreign_keys=on&_journal_mode=WAL", path)
	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	s := &SQLite{db: db, path: path}
	s.hub = newHub(s)
	return s, nil
}

// Path returns the database file path.
func (s *SQLite) Path() string {
	return s.path
}

// Insert appends a document to the collection.
func (s *SQLite) Insert(ctx context.Context, collection string, doc *Document) error {
	query := `
		INSERT INTO documents (collection, id, branch_id, date, created_at, body)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	res, err := s.db.ExecContext(ctx, query,
		collection, doc.ID, doc.BranchID, doc.Date, doc.CreatedAt, []byte(doc.Body))
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return fmt.Errorf("insert %s/%s: %w", collection, doc.ID, ErrDuplicateID)
		}
		return fmt.Errorf("failed to insert document: %w", err)
	}

	seq, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get sequence: %w", err)
	}
	doc.Seq = uint64(seq)

	s.hub.notify(collection)
	return nil
}

// Get retrieves one document by ID.
func (s *SQLite) Get(ctx context.Context, collection, id string) (*Document, error) {
	query := `
		SELECT seq, id, branch_id, date, created_at, body
		FROM documents
		WHERE collection = ? AND id = ?
	`

	doc, err := scanDocument(s.db.QueryRowContext(ctx, query, collection, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return doc, nil
}

// List returns the documents matching the query in append order.
func (s *SQLite) List(ctx context.Context, q Query) ([]*Document, error) {
	query := `
		SELECT seq, id, branch_id, date, created_at, body
		FROM documents
		WHERE collection = ?
	`
	args := []interface{}{q.Collection}

	if q.BranchID != "" {
		query += ` AND branch_id = ?`
		args = append(args, q.BranchID)
	}
	if q.DateFrom != "" {
		query += ` AND date >= ?`
		args = append(args, q.DateFrom)
	}
	if q.DateTo != "" {
		query += ` AND date <= ?`
		args = append(args, q.DateTo)
	}

	if q.Descending {
		query += ` ORDER BY seq DESC`
	} else {
		query += ` ORDER BY seq ASC`
	}
	if q.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var out []*Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// Update replaces the body of an existing document.
func (s *SQLite) Update(ctx context.Context, collection, id string, body json.RawMessage) error {
	query := `UPDATE documents SET body = ? WHERE collection = ? AND id = ?`

	res, err := s.db.ExecContext(ctx, query, []byte(body), collection, id)
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("update %s/%s: %w", collection, id, ErrNotFound)
	}

	s.hub.notify(collection)
	return nil
}

// Delete removes one document by ID.
func (s *SQLite) Delete(ctx context.Context, collection, id string) error {
	query := `DELETE FROM documents WHERE collection = ? AND id = ?`

	res, err := s.db.ExecContext(ctx, query, collection, id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete %s/%s: %w", collection, id, ErrNotFound)
	}

	s.hub.notify(collection)
	return nil
}

// DeleteWhere removes every document with the given branch ID.
func (s *SQLite) DeleteWhere(ctx context.Context, collection, branchID string) (int, error) {
	query := `DELETE FROM documents WHERE collection = ? AND branch_id = ?`

	res, err := s.db.ExecContext(ctx, query, collection, branchID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete documents: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if n > 0 {
		s.hub.notify(collection)
	}
	return int(n), nil
}

// Subscribe registers a live query.
func (s *SQLite) Subscribe(ctx context.Context, q Query) (*Subscription, error) {
	return s.hub.subscribe(ctx, q)
}

// Transaction executes a function within a database transaction. If the
// function returns an error, the transaction is rolled back.
func (s *SQLite) Transaction(fn func(*sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction error: %v, rollback error: %w", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Close cancels all subscriptions and closes the database.
func (s *SQLite) Close() error {
	s.hub.closeAll()
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDocument(row rowScanner) (*Document, error) {
	var doc Document
	var createdAt time.Time
	var body []byte

	if err := row.Scan(&doc.Seq, &doc.ID, &doc.BranchID, &doc.Date, &createdAt, &body); err != nil {
		return nil, err
	}
	doc.CreatedAt = createdAt
	doc.Body = json.RawMessage(body)
	return &doc, nil
}
