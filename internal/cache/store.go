// Lunch Roulette - Nearby Lunch Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunchroulette

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrCache is the sentinel matched by every error that originates in the cache layer.
// errhandler classifies anything satisfying errors.Is(err, ErrCache) as a cache error.
var ErrCache = errors.New("cache error")

// ErrUnknownBackend is returned by OpenStore for an unsupported backend name.
var ErrUnknownBackend = errors.New("unknown cache backend")

// Row is one persisted cache entry.
type Row struct {
	Key       string
	Value     []byte
	CreatedAt time.Time
	ExpiresAt time.Time
}

// ValidAt reports whether the row is still fresh at now.
func (r Row) ValidAt(now time.Time) bool {
	return now.Before(r.ExpiresAt)
}

// StoreStats summarizes the rows of a store at a point in time.
type StoreStats struct {
	Total     int   `json:"total_entries"`
	Valid     int   `json:"valid_entries"`
	Expired   int   `json:"expired_entries"`
	SizeBytes int64 `json:"size_bytes"`
}

// Store persists cache rows. Implementations must be safe for concurrent use.
//
// Put is an upsert: writing an existing key replaces both value and expiry.
// DeleteExpired removes rows with ExpiresAt before now and reports how many were removed.
type Store interface {
	Put(ctx context.Context, row Row) error
	Get(ctx context.Context, key string) (Row, bool, error)
	Delete(ctx context.Context, key string) (bool, error)
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
	Clear(ctx context.Context) (int, error)
	Stats(ctx context.Context, now time.Time) (StoreStats, error)
	Name() string
	Close() error
}

// StoreError wraps a backend failure with the operation that produced it.
type StoreError struct {
	Op      string
	Backend string
	Err     error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("cache %s %s: %v", e.Backend, e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Is makes every StoreError match ErrCache.
func (e *StoreError) Is(target error) bool { return target == ErrCache }

func storeErr(backend, op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Backend: backend, Err: err}
}

// SerializationError is returned by Service.Set when a value cannot be encoded.
type SerializationError struct {
	Key string
	Err error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("cache: serialize %q: %v", e.Key, e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }

// Is makes every SerializationError match ErrCache.
func (e *SerializationError) Is(target error) bool { return target == ErrCache }
