// Lunch Roulette - Nearby Lunch Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunchroulette

package services

import (
	"context"
	"time"

	"github.com/tomtom215/lunchroulette/internal/cache"
	"github.com/tomtom215/lunchroulette/internal/logging"
)

// CacheMaintainer is the part of *cache.Service the sweeper drives.
type CacheMaintainer interface {
	Sweep(ctx context.Context) (int, error)
	Stats(ctx context.Context) (cache.StoreStats, error)
}

// CacheSweeperService deletes expired cache rows on a fixed interval and
// refreshes the cache gauges after each pass.
//
// Expired rows are never served as fresh data, so a failed pass is logged
// and retried on the next tick instead of crashing the service.
//
// Example usage:
//
//	svc := services.NewCacheSweeperService(cacheSvc, cfg.Cache.SweepInterval)
//	tree.AddCacheService(svc)
type CacheSweeperService struct {
	cache    CacheMaintainer
	interval time.Duration
	name     string
}

// NewCacheSweeperService creates a sweeper. A non-positive interval means
// 15 minutes.
func NewCacheSweeperService(c CacheMaintainer, interval time.Duration) *CacheSweeperService {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &CacheSweeperService{
		cache:    c,
		interval: interval,
		name:     "cache-sweeper",
	}
}

// Serve implements suture.Service. The first pass runs immediately.
func (s *CacheSweeperService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		s.sweep(ctx)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *CacheSweeperService) sweep(ctx context.Context) {
	log := logging.WithComponent(s.name)

	removed, err := s.cache.Sweep(ctx)
	if err != nil {
		if ctx.Err() == nil {
			log.Warn().Err(err).Msg("Cache sweep failed")
		}
		return
	}

	stats, err := s.cache.Stats(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Cache stats failed")
		return
	}
	log.Debug().
		Int("removed", removed).
		Int("entries", stats.Total).
		Int64("size_bytes", stats.SizeBytes).
		Msg("Cache sweep pass complete")
}

// String implements fmt.Stringer for suture's event log.
func (s *CacheSweeperService) String() string {
	return s.name
}
