package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver
)

// DefaultSQLitePath is the database file used when none is configured.
const DefaultSQLitePath = "storage/cache/cache.sqlite"

var tableNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLite is a cache stored in an embedded SQLite table:
//
//	cache(key TEXT PRIMARY KEY, value TEXT, expiration INTEGER)
//
// Values are serialized with the configured Marshaler; expiration holds
// unix milliseconds or NULL for entries that never expire.
type SQLite[V any] struct {
	db        *sql.DB
	marshaler Marshaler[V]
	now       func() time.Time
	table     string
	ownsDB    bool
}

// SQLiteOption configures the SQLite cache.
type SQLiteOption func(*sqliteOptions)

type sqliteOptions struct {
	table string
}

// WithTable overrides the cache table name. Default: "cache".
func WithTable(name string) SQLiteOption {
	return func(o *sqliteOptions) {
		o.table = name
	}
}

// OpenSQLiteDB opens (and creates when missing) an SQLite database file.
// Use ":memory:" for a private in-memory database.
func OpenSQLiteDB(path string) (*sql.DB, error) {
	if path == "" {
		path = DefaultSQLitePath
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, errors.Join(ErrStorage, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Join(ErrStorage, err)
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	return db, nil
}

// NewSQLite creates an SQLite-backed cache on db and ensures the table exists.
// If m is nil, JSON serialization is used. The caller keeps ownership of db.
func NewSQLite[V any](ctx context.Context, db *sql.DB, m Marshaler[V], opts ...SQLiteOption) (*SQLite[V], error) {
	o := &sqliteOptions{table: "cache"}
	for _, opt := range opts {
		opt(o)
	}
	if !tableNameRe.MatchString(o.table) {
		return nil, fmt.Errorf("cache: invalid sqlite table name %q", o.table)
	}
	if m == nil {
		m = jsonMarshaler[V]{}
	}

	s := &SQLite[V]{db: db, marshaler: m, now: time.Now, table: o.table}

	ddl := "CREATE TABLE IF NOT EXISTS " + s.table +
		" (key TEXT PRIMARY KEY, value TEXT, expiration INTEGER)"
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return nil, errors.Join(ErrStorage, err)
	}

	return s, nil
}

// Get retrieves a value by key.
// Expired rows are deleted and reported as ErrNotFound.
func (s *SQLite[V]) Get(ctx context.Context, key string) (V, error) {
	var (
		zero       V
		value      string
		expiration sql.NullInt64
	)

	err := s.db.QueryRowContext(ctx,
		"SELECT value, expiration FROM "+s.table+" WHERE key = ?", key,
	).Scan(&value, &expiration)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return zero, ErrNotFound
		}
		return zero, errors.Join(ErrStorage, err)
	}

	if expiration.Valid && expired(time.UnixMilli(expiration.Int64), s.now()) {
		if err := s.Delete(ctx, key); err != nil {
			return zero, err
		}
		return zero, ErrNotFound
	}

	return s.marshaler.Unmarshal([]byte(value))
}

// Set stores a value until expiresAt using INSERT OR REPLACE.
func (s *SQLite[V]) Set(ctx context.Context, key string, value V, expiresAt time.Time) error {
	data, err := s.marshaler.Marshal(value)
	if err != nil {
		return err
	}

	var expiration sql.NullInt64
	if !expiresAt.IsZero() {
		expiration = sql.NullInt64{Int64: expiresAt.UnixMilli(), Valid: true}
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO "+s.table+" (key, value, expiration) VALUES (?, ?, ?)",
		key, string(data), expiration,
	)
	if err != nil {
		return errors.Join(ErrStorage, err)
	}
	return nil
}

// Delete removes a key from the cache.
func (s *SQLite[V]) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM "+s.table+" WHERE key = ?", key); err != nil {
		return errors.Join(ErrStorage, err)
	}
	return nil
}

// Has checks whether a key exists and has not expired.
func (s *SQLite[V]) Has(ctx context.Context, key string) (bool, error) {
	if _, err := s.Get(ctx, key); err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Clear removes all entries from the cache table.
func (s *SQLite[V]) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM "+s.table); err != nil {
		return errors.Join(ErrStorage, err)
	}
	return nil
}

// Close closes the database when it was opened by Open.
func (s *SQLite[V]) Close() error {
	if !s.ownsDB {
		return nil
	}
	return s.db.Close()
}

var _ Cache[any] = (*SQLite[any])(nil)
