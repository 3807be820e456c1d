// Lunch Roulette - Nearby Lunch Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunchroulette

package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Supported backend names for StoreConfig.Backend.
const (
	// BackendBadger is an embedded BadgerDB directory (default).
	BackendBadger = "badger"

	// BackendSQLite is a single SQLite file.
	BackendSQLite = "sqlite"

	// BackendDuckDB is a single DuckDB file using the same schema as SQLite.
	BackendDuckDB = "duckdb"

	// BackendRedis is a shared Redis server.
	BackendRedis = "redis"

	// BackendMemory keeps rows in process memory only.
	BackendMemory = "memory"
)

// Backends lists every accepted backend name.
var Backends = []string{BackendBadger, BackendSQLite, BackendDuckDB, BackendRedis, BackendMemory}

// StoreConfig selects and configures a Store.
type StoreConfig struct {
	// Backend is one of Backends. Empty means badger.
	Backend string

	// Path is the badger directory or the sqlite/duckdb file. Empty runs in memory.
	Path string

	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RedisNamespace string
}

// OpenStore opens the configured backend.
//
//	store, err := cache.OpenStore(ctx, cache.StoreConfig{Backend: "sqlite", Path: "data/lunch_cache.db"})
func OpenStore(ctx context.Context, cfg StoreConfig) (Store, error) {
	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))
	if backend == "" {
		backend = BackendBadger
	}

	if cfg.Path != "" && backend != BackendRedis && backend != BackendMemory {
		if err := ensureParentDir(backend, cfg.Path); err != nil {
			return nil, err
		}
	}

	switch backend {
	case BackendBadger:
		return OpenBadgerStore(cfg.Path)
	case BackendSQLite:
		return OpenSQLiteStore(ctx, cfg.Path)
	case BackendDuckDB:
		return OpenDuckDBStore(ctx, cfg.Path)
	case BackendRedis:
		return OpenRedisStore(ctx, RedisOptions{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			Namespace: cfg.RedisNamespace,
		})
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

// ensureParentDir creates the directory that will hold the store files.
// Badger owns a directory; the SQL backends own a single file inside one.
func ensureParentDir(backend, path string) error {
	dir := path
	if backend != BackendBadger {
		dir = filepath.Dir(path)
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return storeErr(backend, "mkdir", err)
	}
	return nil
}
