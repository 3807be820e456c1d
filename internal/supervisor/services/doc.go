// Lunch Roulette - Nearby Lunch Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunchroulette

/*
Package services provides suture.Service wrappers for Lunch Roulette components.

Each wrapper implements the suture.Service interface:

	type Service interface {
	    Serve(ctx context.Context) error
	}

and fmt.Stringer, which suture uses to name the service in its event log.

# Available Services

HTTP Server (HTTPServerService):
  - Runs ListenAndServe in a goroutine and shuts the server down when the
    supervisor context ends
  - Configurable shutdown timeout for draining connections

Cache Sweeper (CacheSweeperService):
  - Deletes expired cache rows every SweepInterval
  - Refreshes the lunch_cache_entries and lunch_cache_size_bytes gauges
  - Logs failed passes and keeps running

# Error Handling

A service returning a non-nil error is restarted by its supervisor with
backoff. Returning ctx.Err() after cancellation is the normal stop path.
*/
package services
