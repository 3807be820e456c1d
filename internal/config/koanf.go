// Lunch Roulette - Nearby Lunch Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunchroulette

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/lunchroulette/config.yaml",
	"/etc/lunchroulette/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        5000,
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Cache: CacheConfig{
			Backend:        "badger",
			Path:           "data/lunch_cache",
			TTL:            10 * time.Minute,
			SweepInterval:  15 * time.Minute,
			RedisAddr:      "127.0.0.1:6379",
			RedisNamespace: "lunch",
		},
		Search: SearchConfig{
			DefaultLatitude:  35.6812, // Tokyo Station
			DefaultLongitude: 139.7671,
			RadiusKm:         1.0,
			MaxBudgetYen:     1200,
			CandidateCount:   100,
		},
		Upstream: UpstreamConfig{
			IPAPIURL:       "https://ipapi.co",
			OpenWeatherURL: "https://api.openweathermap.org/data/3.0/onecall",
			HotpepperURL:   "https://webservice.recruit.co.jp/hotpepper/gourmet/v1/",
			Timeout:        10 * time.Second,
			RatePerSecond:  1,
			Burst:          2,
			RetryAttempts:  1,
			Breaker: BreakerConfig{
				MaxRequests:  3,
				Interval:     time.Minute,
				Timeout:      2 * time.Minute,
				MinRequests:  10,
				FailureRatio: 0.6,
			},
		},
		Security: SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     60,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
	}
}

// Load loads configuration using Koanf with layered sources:
//  1. Struct defaults
//  2. Config file (optional, YAML)
//  3. Environment variables (highest priority)
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	cfg.Cache.TTL = cfg.Cache.EffectiveTTL()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns CONFIG_PATH when it exists, else the first existing
// default path, else "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths lists config paths that accept comma-separated env values.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields splits comma-separated strings for slice fields.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to config paths.
// The original deployment's names (DATABASE_PATH, PORT, ...) are kept.
var envMappings = map[string]string{
	"http_host":    "server.host",
	"http_port":    "server.port",
	"port":         "server.port",
	"http_timeout": "server.timeout",
	"environment":  "server.environment",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"cache_backend":        "cache.backend",
	"cache_path":           "cache.path",
	"database_path":        "cache.path",
	"cache_ttl":            "cache.ttl",
	"cache_ttl_minutes":    "cache.ttl_minutes",
	"cache_sweep_interval": "cache.sweep_interval",
	"redis_addr":           "cache.redis_addr",
	"redis_password":       "cache.redis_password",
	"redis_db":             "cache.redis_db",
	"redis_namespace":      "cache.redis_namespace",

	"default_latitude":  "search.default_latitude",
	"default_longitude": "search.default_longitude",
	"search_radius_km":  "search.radius_km",
	"max_budget_yen":    "search.max_budget_yen",
	"candidate_count":   "search.candidate_count",

	"hotpepper_api_key":        "upstream.hotpepper_api_key",
	"openweather_api_key":      "upstream.openweather_api_key",
	"ipapi_url":                "upstream.ipapi_url",
	"openweather_url":          "upstream.openweather_url",
	"hotpepper_url":            "upstream.hotpepper_url",
	"upstream_timeout":         "upstream.timeout",
	"upstream_rate_per_second": "upstream.rate_per_second",
	"upstream_burst":           "upstream.burst",
	"upstream_retry_attempts":  "upstream.retry_attempts",
	"breaker_max_requests":     "upstream.breaker.max_requests",
	"breaker_interval":         "upstream.breaker.interval",
	"breaker_timeout":          "upstream.breaker.timeout",
	"breaker_min_requests":     "upstream.breaker.min_requests",
	"breaker_failure_ratio":    "upstream.breaker.failure_ratio",

	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
}

// envTransformFunc transforms environment variable names to config paths.
// Unmapped variables return "" and are skipped so unrelated environment
// variables never leak into the config.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
