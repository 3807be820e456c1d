// Lunch Roulette - Nearby Lunch Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunchroulette

// Command cachectl inspects and maintains the Lunch Roulette cache store.
//
// It reads the same configuration as the server (config.yaml and
// environment variables), so by default it opens the store the server uses:
//
//	cachectl stats
//	cachectl sweep
//	cachectl info weather_3f1c0a9b2d7e4c11
//	cachectl key weather lat=35.6812 lon=139.7671
//	cachectl clear --yes
//
// Badger holds an exclusive lock on its directory; stop the server before
// running cachectl against a badger store.
package main

import (
	"os"

	"github.com/tomtom215/lunchroulette/internal/cache"
	"github.com/tomtom215/lunchroulette/internal/logging"
)

func main() {
	logging.Init(logging.Config{Level: "warn", Format: "console", Output: os.Stderr})

	cmd := newRootCmd(cache.OpenStore)
	if err := cmd.Execute(); err != nil {
		logging.Error().Err(err).Msg("cachectl failed")
		os.Exit(1)
	}
}
