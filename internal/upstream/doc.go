// Lunch Roulette - Nearby Lunch Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunchroulette

/*
Package upstream talks to the three external APIs behind a recommendation:

	ipapi           ipapi.co IP geolocation     LocationClient.Lookup
	openweathermap  One Call 3.0 current data   WeatherClient.Current
	hotpepper       Hot Pepper Gourmet search   RestaurantClient.Search

# Request Path

Every call goes through Client, which applies in order:

  - a token bucket limiter (golang.org/x/time/rate) per provider
  - errhandler.Retry for transient failures (network, timeout); rate limits
    are not retried and go straight to the stale fallback
  - a circuit breaker (sony/gobreaker) named "<provider>-api"
  - a bounded response read and JSON decode (goccy/go-json)

Non-200 responses become *StatusError, which implements errhandler.StatusCoder
so errhandler.Classify sees the HTTP status. 4xx responses other than 429 do
not count against the breaker.

# Degradation

Results are cached through cache.Service (cache-aside). When a call fails with
an error class that allows it (rate limit, network, timeout) an expired entry
for the same key is served and tagged with source "fallback_cache". Without
one, location and weather fall back to fixed defaults and restaurant search
returns an error wrapping errhandler.ErrRestaurantNotFound. Each call returns
an Outcome describing what happened and the user message to show.
*/
package upstream
