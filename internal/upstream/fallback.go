// Lunch Roulette - Nearby Lunch Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunchroulette

package upstream

import (
	"context"
	"time"

	"github.com/tomtom215/lunchroulette/internal/cache"
	"github.com/tomtom215/lunchroulette/internal/errhandler"
	"github.com/tomtom215/lunchroulette/internal/logging"
	"github.com/tomtom215/lunchroulette/internal/metrics"
)

// Kind tells where a provider result came from.
type Kind string

const (
	KindFresh   Kind = "fresh"
	KindCached  Kind = "cached"
	KindStale   Kind = "stale"
	KindDefault Kind = "default"
)

// Outcome describes how a provider call was served. Err holds the upstream
// failure behind a stale or default result; Message is the user-facing
// explanation when one applies.
type Outcome struct {
	Kind    Kind
	Err     error
	Message *errhandler.UserMessage
	Stale   *cache.Stale
}

// Degraded reports whether the result is not fresh upstream or cache data.
func (o Outcome) Degraded() bool {
	return o.Kind == KindStale || o.Kind == KindDefault
}

// cacheAside serves key from the cache, else from fetch. The row is read
// once: an unexpired row is a hit, and an expired one is held back as the
// fallback for fetch errors that allow it. A successful fetch overwrites the
// row with ttl (0 selects the service default). Otherwise the fetch error is
// returned and the caller picks its default.
func cacheAside[T any](
	ctx context.Context,
	svc *cache.Service,
	provider, key string,
	ttl time.Duration,
	fetch func(context.Context) (T, error),
) (T, Outcome, error) {
	var cached T
	st, found := svc.GetStale(ctx, key, &cached)
	if found && !st.Expired {
		return cached, Outcome{Kind: KindCached}, nil
	}

	v, err := fetch(ctx)
	if err == nil {
		if _, serr := svc.Set(ctx, key, v, ttl); serr != nil {
			logging.CtxWarn(ctx).Err(serr).Str("provider", provider).Msg("Failed to cache upstream result")
		}
		return v, Outcome{Kind: KindFresh}, nil
	}

	if found && errhandler.HasStaleFallback(errhandler.Classify(err)) {
		metrics.RecordUpstreamFallback(provider, string(KindStale))
		logging.CtxWarn(ctx).Err(err).Str("provider", provider).Time("cached_at", st.CreatedAt).Msg("Serving stale cache entry")
		return cached, Outcome{Kind: KindStale, Err: err, Stale: &st}, nil
	}

	var zero T
	return zero, Outcome{Err: err}, err
}
