// Lunch Roulette - Nearby Lunch Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunchroulette

package config

import (
	"time"

	"github.com/tomtom215/lunchroulette/internal/cache"
	"github.com/tomtom215/lunchroulette/internal/models"
)

// Config holds all application configuration loaded from defaults, an optional
// YAML file and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in defaults for every setting
//  2. Config File: Optional YAML config file (config.yaml)
//  3. Environment Variables: Override any mapped setting
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal("Failed to load config:", err)
//	}
//	store, err := cache.OpenStore(ctx, cfg.Cache.StoreConfig())
//
// Config is immutable after Load() and safe for concurrent reads.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Logging  LoggingConfig  `koanf:"logging"`
	Cache    CacheConfig    `koanf:"cache"`
	Search   SearchConfig   `koanf:"search"`
	Upstream UpstreamConfig `koanf:"upstream"`
	Security SecurityConfig `koanf:"security"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host        string        `koanf:"host"`
	Port        int           `koanf:"port"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"`
}

// LoggingConfig holds zerolog settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// CacheConfig selects the cache backend and its expiry policy.
type CacheConfig struct {
	Backend string        `koanf:"backend"`
	Path    string        `koanf:"path"`
	TTL     time.Duration `koanf:"ttl"`
	// TTLMinutes overrides TTL when set (CACHE_TTL_MINUTES).
	TTLMinutes     int           `koanf:"ttl_minutes"`
	SweepInterval  time.Duration `koanf:"sweep_interval"`
	RedisAddr      string        `koanf:"redis_addr"`
	RedisPassword  string        `koanf:"redis_password"`
	RedisDB        int           `koanf:"redis_db"`
	RedisNamespace string        `koanf:"redis_namespace"`
}

// StoreConfig converts the settings for cache.OpenStore.
func (c *CacheConfig) StoreConfig() cache.StoreConfig {
	return cache.StoreConfig{
		Backend:        c.Backend,
		Path:           c.Path,
		RedisAddr:      c.RedisAddr,
		RedisPassword:  c.RedisPassword,
		RedisDB:        c.RedisDB,
		RedisNamespace: c.RedisNamespace,
	}
}

// EffectiveTTL returns TTLMinutes when set, else TTL.
func (c *CacheConfig) EffectiveTTL() time.Duration {
	if c.TTLMinutes > 0 {
		return time.Duration(c.TTLMinutes) * time.Minute
	}
	return c.TTL
}

// SearchConfig holds the restaurant search defaults.
type SearchConfig struct {
	DefaultLatitude  float64 `koanf:"default_latitude"`
	DefaultLongitude float64 `koanf:"default_longitude"`
	RadiusKm         float64 `koanf:"radius_km"`
	MaxBudgetYen     int     `koanf:"max_budget_yen"`
	CandidateCount   int     `koanf:"candidate_count"`
}

// DefaultLocation is the location used when nothing better is known.
func (c *SearchConfig) DefaultLocation() models.Location {
	return models.Location{
		Latitude:    c.DefaultLatitude,
		Longitude:   c.DefaultLongitude,
		City:        "Tokyo",
		Region:      "Tokyo",
		Country:     "Japan",
		CountryCode: "JP",
		Timezone:    "Asia/Tokyo",
		Source:      models.SourceDefault,
	}
}

// UpstreamConfig configures the location, weather and restaurant providers.
type UpstreamConfig struct {
	HotpepperAPIKey   string        `koanf:"hotpepper_api_key"`
	OpenWeatherAPIKey string        `koanf:"openweather_api_key"`
	IPAPIURL          string        `koanf:"ipapi_url"`
	OpenWeatherURL    string        `koanf:"openweather_url"`
	HotpepperURL      string        `koanf:"hotpepper_url"`
	Timeout           time.Duration `koanf:"timeout"`
	RatePerSecond     float64       `koanf:"rate_per_second"`
	Burst             int           `koanf:"burst"`
	RetryAttempts     int           `koanf:"retry_attempts"`
	Breaker           BreakerConfig `koanf:"breaker"`
}

// BreakerConfig holds the circuit breaker settings shared by all providers.
type BreakerConfig struct {
	MaxRequests  uint32        `koanf:"max_requests"`
	Interval     time.Duration `koanf:"interval"`
	Timeout      time.Duration `koanf:"timeout"`
	MinRequests  uint32        `koanf:"min_requests"`
	FailureRatio float64       `koanf:"failure_ratio"`
}

// SecurityConfig holds CORS and request rate limiting.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// IsProduction reports whether the server runs with ENVIRONMENT=production.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// ShouldWarnAboutCORS reports a wildcard CORS origin in production.
func (c *Config) ShouldWarnAboutCORS() bool {
	return c.IsProduction() && c.hasWildcardCORS()
}

func (c *Config) hasWildcardCORS() bool {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}
