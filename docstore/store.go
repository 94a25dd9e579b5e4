// Package docstore is the content store: named collections of JSON documents
// kept in SQLite or Postgres, with live snapshot subscriptions on top.
package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("docstore: document not found")

	// ErrInvalidField is returned for field names that cannot be addressed
	// inside a JSON document.
	ErrInvalidField = errors.New("docstore: invalid field name")
)

var reFieldName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Document is one record of a collection.
type Document struct {
	ID        string
	Fields    map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
}

type dialect int

const (
	dialectSQLite dialect = iota
	dialectPostgres
)

// Store wraps a SQL database holding every collection in one table.
type Store struct {
	db      *sql.DB
	dialect dialect
	now     func() time.Time
}

// Open opens the store described by dsn. A postgres:// or postgresql:// URL
// selects the pgx driver; anything else is treated as a SQLite file path.
func Open(dsn string) (*Store, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return openPostgres(dsn)
	}
	return openSQLite(dsn)
}

func openSQLite(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
	`); err != nil {
		db.Close()
		return nil, err
	}
	if path == ":memory:" {
		// every connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(4)
		db.SetMaxIdleConns(4)
	}
	s := &Store{db: db, dialect: dialectSQLite, now: time.Now}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func openPostgres(url string) (*Store, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetMaxIdleConns(5)
	db.SetMaxOpenConns(10)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	s := &Store{db: db, dialect: dialectPostgres, now: time.Now}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS documents (
    collection TEXT NOT NULL,
    id TEXT NOT NULL,
    data TEXT NOT NULL,
    created_at BIGINT NOT NULL,
    updated_at BIGINT NOT NULL,
    PRIMARY KEY (collection, id)
);
`)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	_, err = s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_documents_created ON documents (collection, created_at)`)
	return err
}

// rebind rewrites ? placeholders to $n for Postgres.
func (s *Store) rebind(query string) string {
	if s.dialect != dialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// List returns every document of collection in creation order.
func (s *Store) List(ctx context.Context, collection string) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`SELECT id, data, created_at, updated_at FROM documents WHERE collection = ? ORDER BY created_at, id`), collection)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", collection, err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	return docs, nil
}

// Get returns a single document or ErrNotFound.
func (s *Store) Get(ctx context.Context, collection, id string) (Document, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT id, data, created_at, updated_at FROM documents WHERE collection = ? AND id = ?`), collection, id)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return doc, nil
}

// Add inserts a new document under a generated id and returns the id.
func (s *Store) Add(ctx context.Context, collection string, fields map[string]any) (string, error) {
	id := uuid.NewString()
	data, err := encodeFields(fields)
	if err != nil {
		return "", err
	}
	now := s.now().UnixNano()
	_, err = s.db.ExecContext(ctx, s.rebind(`INSERT INTO documents (collection, id, data, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`),
		collection, id, data, now, now)
	if err != nil {
		return "", fmt.Errorf("add %s: %w", collection, err)
	}
	return id, nil
}

// Set creates or replaces the document stored under id.
func (s *Store) Set(ctx context.Context, collection, id string, fields map[string]any) error {
	data, err := encodeFields(fields)
	if err != nil {
		return err
	}
	now := s.now().UnixNano()
	_, err = s.db.ExecContext(ctx, s.rebind(`
INSERT INTO documents (collection, id, data, created_at, updated_at) VALUES (?, ?, ?, ?, ?)
ON CONFLICT (collection, id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`),
		collection, id, data, now, now)
	if err != nil {
		return fmt.Errorf("set %s/%s: %w", collection, id, err)
	}
	return nil
}

// Create inserts the document under id unless one already exists. It
// reports whether a row was written; an existing document is left as is.
func (s *Store) Create(ctx context.Context, collection, id string, fields map[string]any) (bool, error) {
	data, err := encodeFields(fields)
	if err != nil {
		return false, err
	}
	now := s.now().UnixNano()
	res, err := s.db.ExecContext(ctx, s.rebind(`
INSERT INTO documents (collection, id, data, created_at, updated_at) VALUES (?, ?, ?, ?, ?)
ON CONFLICT (collection, id) DO NOTHING`),
		collection, id, data, now, now)
	if err != nil {
		return false, fmt.Errorf("create %s/%s: %w", collection, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("create %s/%s: %w", collection, id, err)
	}
	return n > 0, nil
}

// Update overwrites the given top-level fields of an existing document,
// leaving the others untouched. Concurrent updates are last-writer-wins.
func (s *Store) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	doc, err := s.Get(ctx, collection, id)
	if err != nil {
		return err
	}
	for k, v := range fields {
		doc.Fields[k] = v
	}
	data, err := encodeFields(doc.Fields)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, s.rebind(`UPDATE documents SET data = ?, updated_at = ? WHERE collection = ? AND id = ?`),
		data, s.now().UnixNano(), collection, id)
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a document. Deleting a missing document is not an error.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	_, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM documents WHERE collection = ? AND id = ?`), collection, id)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

// Increment atomically adds delta to a numeric field of an existing
// document. It returns ErrNotFound when the document does not exist.
func (s *Store) Increment(ctx context.Context, collection, id, field string, delta int64) error {
	if !reFieldName.MatchString(field) {
		return fmt.Errorf("%w: %q", ErrInvalidField, field)
	}
	var (
		query string
		args  []any
	)
	now := s.now().UnixNano()
	switch s.dialect {
	case dialectPostgres:
		query = `UPDATE documents
SET data = jsonb_set(data::jsonb, ?::text[], to_jsonb(COALESCE((data::jsonb ->> ?)::numeric, 0) + ?))::text, updated_at = ?
WHERE collection = ? AND id = ?`
		args = []any{"{" + field + "}", field, delta, now, collection, id}
	default:
		path := "$." + field
		query = `UPDATE documents
SET data = json_set(data, ?, COALESCE(json_extract(data, ?), 0) + ?), updated_at = ?
WHERE collection = ? AND id = ?`
		args = []any{path, path, delta, now, collection, id}
	}
	res, err := s.db.ExecContext(ctx, s.rebind(query), args...)
	if err != nil {
		return fmt.Errorf("increment %s/%s.%s: %w", collection, id, field, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var (
		id, data         string
		created, updated int64
	)
	if err := row.Scan(&id, &data, &created, &updated); err != nil {
		return Document{}, err
	}
	fields := map[string]any{}
	if err := json.Unmarshal([]byte(data), &fields); err != nil {
		return Document{}, fmt.Errorf("decode %s: %w", id, err)
	}
	return Document{
		ID:        id,
		Fields:    fields,
		CreatedAt: time.Unix(0, created),
		UpdatedAt: time.Unix(0, updated),
	}, nil
}

func encodeFields(fields map[string]any) (string, error) {
	if fields == nil {
		fields = map[string]any{}
	}
	b, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	return string(b), nil
}
