// Lunch Roulette - Nearby Lunch Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunchroulette

package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // registers the "duckdb" driver
	_ "github.com/mattn/go-sqlite3"    // registers the "sqlite3" driver
)

// The statements are shared by SQLite and DuckDB.
// Timestamps are stored as unix nanoseconds.
var sqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS cache (
		cache_key   TEXT PRIMARY KEY,
		cache_value TEXT NOT NULL,
		created_at  BIGINT NOT NULL,
		expires_at  BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_cache_key ON cache(cache_key)`,
}

// DuckDB rejects ON CONFLICT DO UPDATE assignments to indexed columns,
// so the expiry index only exists on SQLite.
const sqlExpiryIndex = `CREATE INDEX IF NOT EXISTS idx_cache_expires ON cache(expires_at)`

const (
	sqlUpsert = `INSERT INTO cache (cache_key, cache_value, created_at, expires_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (cache_key) DO UPDATE SET
			cache_value = excluded.cache_value,
			created_at = excluded.created_at,
			expires_at = excluded.expires_at`

	sqlSelect        = `SELECT cache_value, created_at, expires_at FROM cache WHERE cache_key = ?`
	sqlDelete        = `DELETE FROM cache WHERE cache_key = ?`
	sqlDeleteExpired = `DELETE FROM cache WHERE expires_at < ?`
	sqlClear         = `DELETE FROM cache`
	sqlStats         = `SELECT
			COUNT(*),
			CAST(COALESCE(SUM(CASE WHEN expires_at > ? THEN 1 ELSE 0 END), 0) AS BIGINT),
			CAST(COALESCE(SUM(LENGTH(cache_value)), 0) AS BIGINT)
		FROM cache`
)

// SQLStore is a Store on a database/sql handle. It serves both the sqlite and duckdb backends.
type SQLStore struct {
	db      *sql.DB
	backend string
}

// OpenSQLiteStore opens a SQLite database file. An empty path uses a private in-memory database.
func OpenSQLiteStore(ctx context.Context, path string) (*SQLStore, error) {
	dsn := ":memory:"
	if path != "" {
		dsn = "file:" + path + "?_busy_timeout=5000&_journal_mode=WAL"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, storeErr(BackendSQLite, "open", err)
	}
	// One connection: SQLite serializes writers anyway and ":memory:" is per connection.
	db.SetMaxOpenConns(1)

	return NewSQLStore(ctx, db, BackendSQLite)
}

// OpenDuckDBStore opens a DuckDB database file. An empty path uses an in-memory database.
func OpenDuckDBStore(ctx context.Context, path string) (*SQLStore, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, storeErr(BackendDuckDB, "open", err)
	}
	// DuckDB aborts concurrent writes to the same row; a single connection queues them instead.
	db.SetMaxOpenConns(1)
	return NewSQLStore(ctx, db, BackendDuckDB)
}

// NewSQLStore creates the cache table on db if needed. The store takes ownership of db.
func NewSQLStore(ctx context.Context, db *sql.DB, backend string) (*SQLStore, error) {
	stmts := sqlSchema
	if backend != BackendDuckDB {
		stmts = append(stmts[:len(stmts):len(stmts)], sqlExpiryIndex)
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, storeErr(backend, "migrate", err)
		}
	}
	return &SQLStore{db: db, backend: backend}, nil
}

// Name implements Store.
func (s *SQLStore) Name() string { return s.backend }

// Put implements Store.
func (s *SQLStore) Put(ctx context.Context, row Row) error {
	_, err := s.db.ExecContext(ctx, sqlUpsert,
		row.Key, string(row.Value), row.CreatedAt.UnixNano(), row.ExpiresAt.UnixNano())
	return storeErr(s.backend, "put", err)
}

// Get implements Store.
func (s *SQLStore) Get(ctx context.Context, key string) (Row, bool, error) {
	var (
		value            string
		created, expires int64
	)
	err := s.db.QueryRowContext(ctx, sqlSelect, key).Scan(&value, &created, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return Row{}, false, nil
	}
	if err != nil {
		return Row{}, false, storeErr(s.backend, "get", err)
	}

	return Row{
		Key:       key,
		Value:     []byte(value),
		CreatedAt: time.Unix(0, created),
		ExpiresAt: time.Unix(0, expires),
	}, true, nil
}

// Delete implements Store.
func (s *SQLStore) Delete(ctx context.Context, key string) (bool, error) {
	n, err := s.exec(ctx, "delete", sqlDelete, key)
	return n > 0, err
}

// DeleteExpired implements Store. The single DELETE statement is atomic.
func (s *SQLStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	n, err := s.exec(ctx, "delete expired", sqlDeleteExpired, now.UnixNano())
	return int(n), err
}

// Clear implements Store.
func (s *SQLStore) Clear(ctx context.Context) (int, error) {
	n, err := s.exec(ctx, "clear", sqlClear)
	return int(n), err
}

// Stats implements Store. SizeBytes is the summed length of the stored payloads.
func (s *SQLStore) Stats(ctx context.Context, now time.Time) (StoreStats, error) {
	var total, valid, size int64
	if err := s.db.QueryRowContext(ctx, sqlStats, now.UnixNano()).Scan(&total, &valid, &size); err != nil {
		return StoreStats{}, storeErr(s.backend, "stats", err)
	}
	return StoreStats{
		Total:     int(total),
		Valid:     int(valid),
		Expired:   int(total - valid),
		SizeBytes: size,
	}, nil
}

// Close implements Store.
func (s *SQLStore) Close() error {
	return storeErr(s.backend, "close", s.db.Close())
}

func (s *SQLStore) exec(ctx context.Context, op, query string, args ...any) (int64, error) {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, storeErr(s.backend, op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, storeErr(s.backend, op, fmt.Errorf("rows affected: %w", err))
	}
	return n, nil
}

var _ Store = (*SQLStore)(nil)
