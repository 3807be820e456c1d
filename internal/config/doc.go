// Lunch Roulette - Nearby Lunch Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunchroulette

/*
Package config provides centralized configuration management for Lunch Roulette.

Configuration is loaded with Koanf v2 from three layers, later layers winning:

 1. Built-in defaults (defaultConfig)
 2. An optional YAML file: CONFIG_PATH, else config.yaml or
    /etc/lunchroulette/config.yaml
 3. Environment variables mapped explicitly through envMappings

Unmapped environment variables are ignored.

# Environment Variables

Server and logging:
  - PORT / HTTP_PORT: Listen port (default: 5000)
  - HTTP_HOST: Bind address (default: 0.0.0.0)
  - ENVIRONMENT: development or production
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

Cache:
  - CACHE_BACKEND: badger, sqlite, duckdb, redis or memory (default: badger)
  - DATABASE_PATH / CACHE_PATH: Store location (default: data/lunch_cache)
  - CACHE_TTL_MINUTES: Default entry lifetime in minutes (default: 10)
  - CACHE_SWEEP_INTERVAL: Background expiry sweep, 0 disables (default: 15m)
  - REDIS_ADDR, REDIS_PASSWORD, REDIS_DB, REDIS_NAMESPACE

Search:
  - DEFAULT_LATITUDE / DEFAULT_LONGITUDE: Fallback location (Tokyo Station)
  - SEARCH_RADIUS_KM: Restaurant search radius (default: 1.0, max 3)
  - MAX_BUDGET_YEN: Budget ceiling for candidates (default: 1200)

Upstream providers:
  - HOTPEPPER_API_KEY, OPENWEATHER_API_KEY: Optional; missing keys select defaults
  - UPSTREAM_TIMEOUT, UPSTREAM_RATE_PER_SECOND, UPSTREAM_BURST, UPSTREAM_RETRY_ATTEMPTS
  - BREAKER_*: Circuit breaker tuning

Security:
  - CORS_ORIGINS: Comma-separated origins (default: *)
  - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT

# Validation

Validate runs after loading and reports the first invalid setting by its
environment variable name, e.g. "SEARCH_RADIUS_KM must be greater than 0
and at most 3".
*/
package config
