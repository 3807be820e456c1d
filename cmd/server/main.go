// Lunch Roulette - Nearby Lunch Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunchroulette

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/lunchroulette/internal/api"
	"github.com/tomtom215/lunchroulette/internal/cache"
	"github.com/tomtom215/lunchroulette/internal/config"
	"github.com/tomtom215/lunchroulette/internal/errhandler"
	"github.com/tomtom215/lunchroulette/internal/logging"
	"github.com/tomtom215/lunchroulette/internal/middleware"
	"github.com/tomtom215/lunchroulette/internal/roulette"
	"github.com/tomtom215/lunchroulette/internal/selector"
	"github.com/tomtom215/lunchroulette/internal/supervisor"
	"github.com/tomtom215/lunchroulette/internal/supervisor/services"
	"github.com/tomtom215/lunchroulette/internal/upstream"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Output:    os.Stderr,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		stop()
		logging.Fatal().Err(err).Msg("Server exited with error")
	}
	logging.Info().Msg("Application stopped gracefully")
}

// run wires the application and blocks until ctx is canceled or the
// supervisor tree gives up.
func run(ctx context.Context, cfg *config.Config) error {
	logging.Info().
		Str("cache_backend", cfg.Cache.Backend).
		Str("cache_path", cfg.Cache.Path).
		Dur("cache_ttl", cfg.Cache.EffectiveTTL()).
		Str("environment", cfg.Server.Environment).
		Msg("Starting Lunch Roulette")

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	warnAboutSettings(cfg)

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	tree.AddCacheService(services.NewCacheSweeperService(a.cache, cfg.Cache.SweepInterval))
	tree.AddAPIService(services.NewHTTPServerService(a.server, 10*time.Second))
	logging.Info().
		Str("addr", a.server.Addr).
		Dur("sweep_interval", cfg.Cache.SweepInterval).
		Msg("Services added to supervisor tree")

	err = tree.Serve(ctx)
	if err != nil && ctx.Err() == nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor tree: %w", err)
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("supervised_service", svc.Name).Msg("Service failed to stop within timeout")
	}
	return nil
}

// app holds the wired components of a running server.
type app struct {
	store  cache.Store
	cache  *cache.Service
	errs   *errhandler.Handler
	server *http.Server
}

// newApp opens the cache store and builds the HTTP server on top of it.
// The caller owns the returned app and must call close.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	store, err := cache.OpenStore(ctx, cfg.Cache.StoreConfig())
	if err != nil {
		return nil, fmt.Errorf("open cache store: %w", err)
	}
	logging.Info().Str("backend", store.Name()).Msg("Cache store opened")

	cacheSvc := cache.NewService(store, cache.WithTTL(cfg.Cache.EffectiveTTL()))
	errs := errhandler.New()

	locations := upstream.NewLocationClient(&cfg.Upstream, &cfg.Search, cacheSvc, errs)
	weather := upstream.NewWeatherClient(&cfg.Upstream, cacheSvc, errs)
	restaurants := upstream.NewRestaurantClient(&cfg.Upstream, cfg.Search.CandidateCount, cacheSvc, errs)

	rec := roulette.NewService(roulette.Deps{
		Locations:   locations,
		Weather:     weather,
		Restaurants: restaurants,
		Selector:    selector.New(),
		Errors:      errs,
	}, cfg.Search)

	handler := api.NewHandler(rec, cacheSvc, errs, middleware.NewPerformanceMonitor(1000, time.Second))
	router := api.NewRouter(handler, &cfg.Security)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.SetupChi(),
		ReadTimeout:       cfg.Server.Timeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	return &app{store: store, cache: cacheSvc, errs: errs, server: server}, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		logging.Err(err).Msg("Error closing cache store")
	}
}

func warnAboutSettings(cfg *config.Config) {
	if cfg.Upstream.HotpepperAPIKey == "" {
		logging.Warn().Msg("HOTPEPPER_API_KEY is not set: every roulette request will report no restaurants")
	}
	if cfg.Upstream.OpenWeatherAPIKey == "" {
		logging.Warn().Msg("OPENWEATHER_API_KEY is not set: default weather will be used")
	}
	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}
	if cfg.ShouldWarnAboutCORS() {
		logging.Warn().Msg("============================================================")
		logging.Warn().Msg("  SECURITY WARNING: CORS is configured with wildcard origin (CORS_ORIGINS=*)")
		logging.Warn().Msg("  ")
		logging.Warn().Msg("  Any website can call the roulette and cache maintenance endpoints.")
		logging.Warn().Msg("  RECOMMENDED: Set specific origins in production:")
		logging.Warn().Msg("    CORS_ORIGINS=https://yourdomain.com")
		logging.Warn().Msg("============================================================")
	}
}
