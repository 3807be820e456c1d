// Lunch Roulette - Nearby Lunch Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunchroulette

/*
Package supervisor provides process supervision for Lunch Roulette using suture v4.

# Overview

The long-running parts of the server are organized into two layers:

	RootSupervisor ("lunchroulette")
	├── CacheSupervisor ("cache-layer")
	│   └── CacheSweeperService
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Each layer counts failures independently, so a sweeper stuck on a broken
store backs off without taking the HTTP server down with it.

# Key Features

Automatic Restart:
  - Crashed services are restarted with backoff
  - Configurable failure thresholds and decay rates

Graceful Shutdown:
  - Context cancellation stops every service
  - UnstoppedServiceReport lists services that missed the shutdown timeout

Structured Logging:
  - Supervisor events go through sutureslog into the zerolog-backed slog
    logger from internal/logging

# Usage Example

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddCacheService(services.NewCacheSweeperService(cacheSvc, cfg.Cache.SweepInterval))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return tree.Serve(ctx)
*/
package supervisor
