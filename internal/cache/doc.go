// Lunch Roulette - Nearby Lunch Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunchroulette

/*
Package cache provides the TTL cache that shields the rate-limited upstream APIs
(IP geolocation, weather, restaurant search).

# Overview

The package has two layers:

  - Store: persistence of rows (key, JSON value, created_at, expires_at) with
    upsert semantics, an expiry sweep and row statistics.
  - Service: key derivation, JSON serialization, TTL enforcement on read and
    the stale read path used for graceful degradation.

# Backends

Selected through StoreConfig.Backend (config key cache.backend):

	badger   embedded BadgerDB directory with an expiry index (default)
	sqlite   single SQLite file, table "cache" indexed by key and expiry
	duckdb   single DuckDB file with the same table
	redis    shared Redis server, one hash per row plus an expiry sorted set
	memory   process memory only, for tests

# Usage

	store, err := cache.OpenStore(ctx, cache.StoreConfig{Backend: "badger", Path: "data/lunch_cache"})
	if err != nil {
	    return err
	}
	defer store.Close()

	svc := cache.NewService(store, cache.WithTTL(10*time.Minute))

	key := cache.GenerateKey("location", map[string]any{"ip": "auto"})
	var loc models.Location
	if !svc.Get(ctx, key, &loc) {
	    loc = fetchLocation()
	    _, _ = svc.Set(ctx, key, loc, 0)
	}

# Expiry

Get treats a row as fresh while now < expires_at. Expired rows stay
readable through GetStale until they are overwritten or removed by the
periodic sweep (Service.Sweep), run by the supervisor and by "cachectl sweep".

# Thread Safety

All stores and the Service are safe for concurrent use.
*/
package cache
