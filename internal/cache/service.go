// Lunch Roulette - Nearby Lunch Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunchroulette

package cache

import (
	"context"
	"math"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/lunchroulette/internal/logging"
	"github.com/tomtom215/lunchroulette/internal/metrics"
)

// DefaultTTL applies when Set is called with a non-positive ttl and no WithTTL option was given.
const DefaultTTL = 600 * time.Second

// StaleSource is the source label attached to data served from an expired row.
const StaleSource = "fallback_cache"

// Service stores JSON-serialized values with a time-to-live on top of a Store.
//
// Store failures never reach callers of Get or Set: they are logged and reported
// as a miss or as an unsuccessful write, so a broken cache degrades into calling
// the upstream API instead of failing the request.
type Service struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithTTL overrides DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// NewService creates a cache service on store.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store: store,
		ttl:   DefaultTTL,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the underlying store.
func (s *Service) Store() Store { return s.store }

// TTL returns the default time-to-live.
func (s *Service) TTL() time.Duration { return s.ttl }

// Set serializes value and writes it under key. A ttl <= 0 uses the default.
//
// Returns a *SerializationError when value cannot be encoded. Store failures are
// logged and reported as (false, nil).
func (s *Service) Set(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	data, err := json.Marshal(value)
	if err != nil {
		metrics.RecordCacheWrite("serialization_error")
		return false, &SerializationError{Key: key, Err: err}
	}

	if ttl <= 0 {
		ttl = s.ttl
	}
	now := s.now()
	row := Row{
		Key:       key,
		Value:     data,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	if err := s.store.Put(ctx, row); err != nil {
		logging.CtxWarn(ctx).Err(err).Str("key", key).Msg("Cache write failed")
		metrics.RecordCacheWrite("store_error")
		return false, nil
	}

	metrics.RecordCacheWrite("ok")
	return true, nil
}

// Get decodes the value stored under key into dst.
// It reports true only for a present, unexpired and decodable row.
// Expired rows stay in the store for GetStale until overwritten or swept.
func (s *Service) Get(ctx context.Context, key string, dst any) bool {
	row, ok := s.lookup(ctx, key)
	if !ok {
		return false
	}

	if !row.ValidAt(s.now()) {
		metrics.RecordCacheLookup("expired")
		return false
	}

	if err := json.Unmarshal(row.Value, dst); err != nil {
		logging.CtxWarn(ctx).Err(err).Str("key", key).Msg("Undecodable cache entry")
		metrics.RecordCacheLookup("error")
		return false
	}

	metrics.RecordCacheLookup("hit")
	return true
}

// Stale describes data returned by GetStale.
type Stale struct {
	Source    string    `json:"source"`
	IsStale   bool      `json:"is_stale"`
	Expired   bool      `json:"expired"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// GetStale decodes the value under key regardless of expiry.
// Upstream clients read through it once and fall back to the expired value
// when the live API is unavailable.
func (s *Service) GetStale(ctx context.Context, key string, dst any) (Stale, bool) {
	row, ok := s.lookup(ctx, key)
	if !ok {
		return Stale{}, false
	}

	if err := json.Unmarshal(row.Value, dst); err != nil {
		logging.CtxWarn(ctx).Err(err).Str("key", key).Msg("Undecodable stale cache entry")
		metrics.RecordCacheLookup("error")
		return Stale{}, false
	}

	expired := !row.ValidAt(s.now())
	if expired {
		metrics.RecordCacheLookup("stale")
	} else {
		metrics.RecordCacheLookup("hit")
	}
	return Stale{
		Source:    StaleSource,
		IsStale:   true,
		Expired:   expired,
		CreatedAt: row.CreatedAt,
		ExpiresAt: row.ExpiresAt,
	}, true
}

func (s *Service) lookup(ctx context.Context, key string) (Row, bool) {
	row, ok, err := s.store.Get(ctx, key)
	if err != nil {
		logging.CtxWarn(ctx).Err(err).Str("key", key).Msg("Cache read failed")
		metrics.RecordCacheLookup("error")
		return Row{}, false
	}
	if !ok {
		metrics.RecordCacheLookup("miss")
		return Row{}, false
	}
	return row, true
}

// Delete removes key and reports whether a row was removed.
func (s *Service) Delete(ctx context.Context, key string) bool {
	deleted, err := s.store.Delete(ctx, key)
	if err != nil {
		logging.CtxWarn(ctx).Err(err).Str("key", key).Msg("Cache delete failed")
		return false
	}
	return deleted
}

// ClearAll removes every row. It reports false only when the store failed.
func (s *Service) ClearAll(ctx context.Context) bool {
	n, err := s.store.Clear(ctx)
	if err != nil {
		logging.CtxWarn(ctx).Err(err).Msg("Cache clear failed")
		return false
	}
	logging.CtxInfo(ctx).Int("removed", n).Msg("Cache cleared")
	return true
}

// Info describes a single row.
type Info struct {
	Key          string    `json:"key"`
	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `json:"expires_at"`
	IsValid      bool      `json:"is_valid"`
	DataSize     int       `json:"data_size"`
	TTLRemaining int       `json:"ttl_remaining"`
}

// Info returns metadata for key without decoding the value.
func (s *Service) Info(ctx context.Context, key string) (Info, bool) {
	row, ok, err := s.store.Get(ctx, key)
	if err != nil {
		logging.CtxWarn(ctx).Err(err).Str("key", key).Msg("Cache info lookup failed")
		return Info{}, false
	}
	if !ok {
		return Info{}, false
	}

	now := s.now()
	remaining := int(math.Floor(row.ExpiresAt.Sub(now).Seconds()))
	if remaining < 0 {
		remaining = 0
	}
	return Info{
		Key:          key,
		CreatedAt:    row.CreatedAt,
		ExpiresAt:    row.ExpiresAt,
		IsValid:      row.ValidAt(now),
		DataSize:     len(row.Value),
		TTLRemaining: remaining,
	}, true
}

// Stats returns row counts at the service clock and refreshes the cache gauges.
func (s *Service) Stats(ctx context.Context) (StoreStats, error) {
	stats, err := s.store.Stats(ctx, s.now())
	if err != nil {
		return StoreStats{}, err
	}
	metrics.UpdateCacheGauges(stats.Total, stats.Valid, stats.Expired, stats.SizeBytes)
	return stats, nil
}

// Sweep deletes every expired row and returns how many were removed.
func (s *Service) Sweep(ctx context.Context) (int, error) {
	n, err := s.store.DeleteExpired(ctx, s.now())
	if n > 0 {
		metrics.RecordSweep(n)
	}
	if err != nil {
		return n, err
	}
	logging.CtxDebug(ctx).Int("removed", n).Str("backend", s.store.Name()).Msg("Cache sweep complete")
	return n, nil
}
