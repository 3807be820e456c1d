// Lunch Roulette - Nearby Lunch Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunchroulette

package config

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/tomtom215/lunchroulette/internal/cache"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateCache(); err != nil {
		return err
	}

	if err := c.validateSearch(); err != nil {
		return err
	}

	if err := c.validateUpstream(); err != nil {
		return err
	}

	if err := c.validateSecurity(); err != nil {
		return err
	}

	return c.validateLogging()
}

// validateServer validates server configuration
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	return nil
}

// validateCache validates the cache backend and expiry settings
func (c *Config) validateCache() error {
	if !slices.Contains(cache.Backends, c.Cache.Backend) {
		return fmt.Errorf("CACHE_BACKEND must be one of: %s", strings.Join(cache.Backends, ", "))
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive")
	}
	if c.Cache.TTLMinutes < 0 {
		return fmt.Errorf("CACHE_TTL_MINUTES must not be negative")
	}
	// Zero disables the background sweep.
	if c.Cache.SweepInterval < 0 {
		return fmt.Errorf("CACHE_SWEEP_INTERVAL must not be negative")
	}
	if c.Cache.Backend == cache.BackendRedis && c.Cache.RedisAddr == "" {
		return fmt.Errorf("REDIS_ADDR is required when CACHE_BACKEND=redis")
	}
	return nil
}

const (
	maxSearchRadiusKm = 3.0 // Hot Pepper's widest range code
	maxCandidateCount = 100
)

// validateSearch validates search defaults
func (c *Config) validateSearch() error {
	lat, lon := c.Search.DefaultLatitude, c.Search.DefaultLongitude
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return fmt.Errorf("DEFAULT_LATITUDE must be between -90 and 90")
	}
	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		return fmt.Errorf("DEFAULT_LONGITUDE must be between -180 and 180")
	}
	if c.Search.RadiusKm <= 0 || c.Search.RadiusKm > maxSearchRadiusKm {
		return fmt.Errorf("SEARCH_RADIUS_KM must be greater than 0 and at most %.0f", maxSearchRadiusKm)
	}
	if c.Search.MaxBudgetYen <= 0 {
		return fmt.Errorf("MAX_BUDGET_YEN must be positive")
	}
	if c.Search.CandidateCount < 1 || c.Search.CandidateCount > maxCandidateCount {
		return fmt.Errorf("CANDIDATE_COUNT must be between 1 and %d", maxCandidateCount)
	}
	return nil
}

// validateUpstream validates provider endpoints and client resilience settings.
// API keys are optional: a missing key makes the provider fall back to defaults.
func (c *Config) validateUpstream() error {
	u := &c.Upstream
	if err := validateURL(u.IPAPIURL, "IPAPI_URL", originOnly); err != nil {
		return err
	}
	if err := validateURL(u.OpenWeatherURL, "OPENWEATHER_URL", withPath); err != nil {
		return err
	}
	if err := validateURL(u.HotpepperURL, "HOTPEPPER_URL", withPath); err != nil {
		return err
	}
	if u.Timeout <= 0 {
		return fmt.Errorf("UPSTREAM_TIMEOUT must be positive")
	}
	if u.RatePerSecond <= 0 {
		return fmt.Errorf("UPSTREAM_RATE_PER_SECOND must be positive")
	}
	if u.Burst < 1 {
		return fmt.Errorf("UPSTREAM_BURST must be at least 1")
	}
	if u.RetryAttempts < 1 || u.RetryAttempts > 5 {
		return fmt.Errorf("UPSTREAM_RETRY_ATTEMPTS must be between 1 and 5")
	}
	return c.validateBreaker()
}

// validateBreaker validates circuit breaker settings
func (c *Config) validateBreaker() error {
	b := &c.Upstream.Breaker
	if b.MaxRequests < 1 {
		return fmt.Errorf("BREAKER_MAX_REQUESTS must be at least 1")
	}
	if b.Timeout <= 0 {
		return fmt.Errorf("BREAKER_TIMEOUT must be positive")
	}
	if b.Interval < 0 {
		return fmt.Errorf("BREAKER_INTERVAL must not be negative")
	}
	if b.FailureRatio <= 0 || b.FailureRatio > 1 {
		return fmt.Errorf("BREAKER_FAILURE_RATIO must be greater than 0 and at most 1")
	}
	return nil
}

// validateSecurity validates security configuration
func (c *Config) validateSecurity() error {
	if err := c.validateCORS(); err != nil {
		return err
	}
	return c.validateRateLimits()
}

// validateCORS rejects empty origin entries. A wildcard is allowed but
// reported by ShouldWarnAboutCORS in production.
func (c *Config) validateCORS() error {
	if len(c.Security.CORSOrigins) == 0 {
		return fmt.Errorf("CORS_ORIGINS must contain at least one origin")
	}
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			continue
		}
		if err := validateURL(origin, "CORS_ORIGINS", originOnly); err != nil {
			return err
		}
	}
	return nil
}

// Rate limit bounds
const (
	minRateLimitRequests = 1           // Minimum 1 request allowed
	maxRateLimitRequests = 100000      // Maximum 100K requests per window
	minRateLimitWindow   = time.Second // Minimum 1 second window
	maxRateLimitWindow   = time.Hour   // Maximum 1 hour window
)

// validateRateLimits validates rate limiting configuration bounds.
func (c *Config) validateRateLimits() error {
	if c.Security.RateLimitDisabled {
		return nil
	}

	if err := c.validateRateLimitRequests(); err != nil {
		return err
	}
	return c.validateRateLimitWindow()
}

// validateRateLimitRequests validates the rate limit requests value
func (c *Config) validateRateLimitRequests() error {
	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	return nil
}

// validateRateLimitWindow validates the rate limit window value
func (c *Config) validateRateLimitWindow() error {
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

// validLogLevels defines the allowed log levels
var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validLogFormats defines the allowed log formats
var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if err := c.validateLogLevel(); err != nil {
		return err
	}
	return c.validateLogFormat()
}

// validateLogLevel validates the log level configuration
func (c *Config) validateLogLevel() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	return nil
}

// validateLogFormat validates the log format configuration
func (c *Config) validateLogFormat() error {
	if c.Logging.Format == "" {
		return nil
	}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}
