// Lunch Roulette - Nearby Lunch Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunchroulette

/*
Package errhandler classifies failures from the upstream providers, the cache
and the distance calculator into a closed set of ErrorTypes, and decides what
the caller should do about them.

Each ErrorType has a user-facing message, a suggestion and a Severity:

	info     expected degraded mode (default location, nothing found)
	warning  recoverable with a fallback (stale cache, approximate distance)
	error    no fallback, surfaced to the caller (auth failures, unknown)

Network and timeout failures are retryable with exponential backoff
(base x 2^(attempt-1), capped at 5 minutes). Rate limit and auth failures are
never retried here; HasStaleFallback tells the upstream clients when to serve
stale cached data instead.

Usage:

	h := errhandler.New()
	msg := h.Restaurant(ctx, err, usedStale)
	if errhandler.IsCritical(msg.Type) {
	    // surface to the client
	}

Error counts live in the Handler's Stats and are mirrored to the
lunch_errors_total prometheus counter.
*/
package errhandler
