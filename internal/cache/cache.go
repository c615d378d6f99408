// Package cache provides the content-keyed store used by the logo resolver and
// the external data collectors to avoid redundant network calls.
package cache

import (
	"context"
	"database/sql"
	stdErrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/bayoss/landscape2/internal/foundation/errors"
)

// FileName is the name of the cache database inside the cache directory.
const FileName = "cache.db"

// Store is the get/put contract consumed by the fetchers. Implementations must
// be safe for concurrent use.
type Store interface {
	// Get returns the cached value for key, and false when absent or expired.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key string, value []byte) error
}

// Cache is a Store backed by an SQLite database. A single *Cache is shared by
// every task of a build.
type Cache struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// Open opens (creating when needed) the cache database in dir. Entries older
// than ttl are reported as absent; a non-positive ttl disables expiration.
func Open(dir string, ttl time.Duration) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, errors.WrapError(err, errors.CategoryCache, "create cache directory").
			WithContext("path", dir).
			Build()
	}

	dsn := filepath.Join(dir, FileName) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryCache, "open cache database").
			WithContext("path", dir).
			Build()
	}
	// A single connection serializes writers and avoids SQLITE_BUSY under load.
	db.SetMaxOpenConns(1)

	c := &Cache{db: db, ttl: ttl, now: time.Now}
	if err := c.initialize(); err != nil {
		_ = db.Close()
		return nil, errors.WrapError(err, errors.CategoryCache, "initialize cache schema").
			WithContext("path", dir).
			Build()
	}
	return c, nil
}

func (c *Cache) initialize() error {
	_, err := c.db.Exec(`
	CREATE TABLE IF NOT EXISTS entries (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		updated_at INTEGER NOT NULL
	);`)
	return err
}

// Get implements Store.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var (
		value     []byte
		updatedAt int64
	)
	err := c.db.QueryRowContext(ctx,
		"SELECT value, updated_at FROM entries WHERE key = ?", key,
	).Scan(&value, &updatedAt)
	if stdErrors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query cache entry %q: %w", key, err)
	}
	if c.ttl > 0 && c.now().Sub(time.Unix(updatedAt, 0)) > c.ttl {
		return nil, false, nil
	}
	return value, true, nil
}

// Put implements Store.
func (c *Cache) Put(ctx context.Context, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	_, err := c.db.ExecContext(ctx, `
	INSERT INTO entries (key, value, updated_at) VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, c.now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("store cache entry %q: %w", key, err)
	}
	return nil
}

// Close releases the database handle.
func (c *Cache) Close() error {
	return c.db.Close()
}
