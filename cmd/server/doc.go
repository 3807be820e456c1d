// Lunch Roulette - Nearby Lunch Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunchroulette

/*
Package main is the entry point for the Lunch Roulette server.

Lunch Roulette picks one random restaurant within walking distance of the
caller. It locates the caller (client coordinates or IP lookup), fetches the
current weather and nearby restaurants, filters them by budget and returns a
single pick with distance and walking time.

# Application Architecture

The server runs under Suture v4 process supervision:

	RootSupervisor ("lunchroulette")
	├── CacheSupervisor ("cache-layer")
	│   └── CacheSweeperService (expired row cleanup)
	└── APISupervisor ("api-layer")
	    └── HTTP Server (chi router)

Component initialization order:

 1. Configuration: Koanf v2 with environment variables and config files
 2. Logging: zerolog with JSON/console output modes
 3. Cache store: badger, sqlite, duckdb, redis or memory
 4. Upstream clients: ipapi, OpenWeatherMap and Hot Pepper, each behind a
    rate limiter and a circuit breaker
 5. Roulette service and HTTP handlers
 6. Supervisor Tree: sweeper and HTTP server

# Configuration

Configuration is loaded via Koanf v2 with layered sources (highest priority wins):

	Priority: Environment variables > Config file > Defaults

Core environment variables:

	# Server
	HTTP_PORT=5000
	LOG_LEVEL=info               # trace, debug, info, warn, error
	LOG_FORMAT=json              # json or console

	# Cache
	CACHE_BACKEND=badger         # badger, sqlite, duckdb, redis, memory
	CACHE_PATH=data/lunch_cache
	CACHE_TTL_MINUTES=10
	CACHE_SWEEP_INTERVAL=15m

	# Upstream providers
	HOTPEPPER_API_KEY=<key>      # required for restaurant search
	OPENWEATHER_API_KEY=<key>    # optional, default weather without it

	# Search
	SEARCH_RADIUS_KM=1.0
	MAX_BUDGET_YEN=1200

# Signal Handling

The server handles graceful shutdown on SIGINT and SIGTERM:

 1. Stops accepting new HTTP connections
 2. Waits for in-flight requests (10s timeout)
 3. Stops the cache sweeper
 4. Closes the cache store
 5. Reports any services that failed to stop

# Usage Examples

Development:

	export CACHE_BACKEND=memory LOG_FORMAT=console
	export HOTPEPPER_API_KEY=xxx
	go run ./cmd/server

Production with a shared redis cache:

	export ENVIRONMENT=production
	export CACHE_BACKEND=redis REDIS_ADDR=redis:6379
	export CORS_ORIGINS=https://lunch.example.com
	export HOTPEPPER_API_KEY=xxx OPENWEATHER_API_KEY=yyy
	./lunchroulette

# See Also

  - internal/config: Configuration management
  - internal/supervisor: Process supervision
  - internal/api: HTTP handlers and routing
  - internal/roulette: Recommendation flow
  - cmd/cachectl: Cache maintenance from the command line
*/
package main
