// Lunch Roulette - Nearby Lunch Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunchroulette

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomtom215/lunchroulette/internal/cache"
	"github.com/tomtom215/lunchroulette/internal/config"
)

// storeOpener opens a cache store. cache.OpenStore in production.
type storeOpener func(ctx context.Context, cfg cache.StoreConfig) (cache.Store, error)

// globalFlags override the loaded configuration.
type globalFlags struct {
	Backend   string
	Path      string
	RedisAddr string
	JSON      bool
}

// session is the per-invocation state shared by subcommands.
type session struct {
	store cache.Store
	cache *cache.Service
	json  bool
}

type sessionKey struct{}

func withSession(ctx context.Context, s *session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

func sessionFrom(ctx context.Context) (*session, error) {
	s, ok := ctx.Value(sessionKey{}).(*session)
	if !ok || s == nil {
		return nil, errors.New("cache store not opened")
	}
	return s, nil
}

// newRootCmd creates the root command. open is called once per invocation,
// after flags are parsed.
func newRootCmd(open storeOpener) *cobra.Command {
	var flags globalFlags

	cmd := &cobra.Command{
		Use:           "cachectl",
		Short:         "Inspect and maintain the Lunch Roulette cache",
		Long:          "cachectl reports on, sweeps and clears the cache store used by the Lunch Roulette server.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" || cmd.Name() == "key" {
				return nil
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			storeCfg := cfg.Cache.StoreConfig()
			if flags.Backend != "" {
				storeCfg.Backend = flags.Backend
			}
			if flags.Path != "" {
				storeCfg.Path = flags.Path
			}
			if flags.RedisAddr != "" {
				storeCfg.RedisAddr = flags.RedisAddr
			}

			store, err := open(cmd.Context(), storeCfg)
			if err != nil {
				return fmt.Errorf("open %s store: %w", storeCfg.Backend, err)
			}

			s := &session{
				store: store,
				cache: cache.NewService(store, cache.WithTTL(cfg.Cache.EffectiveTTL())),
				json:  flags.JSON,
			}
			cmd.SetContext(withSession(cmd.Context(), s))
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			s, err := sessionFrom(cmd.Context())
			if err != nil {
				return nil
			}
			return s.store.Close()
		},
	}

	cmd.PersistentFlags().StringVar(&flags.Backend, "backend", "", "Cache backend (badger, sqlite, duckdb, redis, memory)")
	cmd.PersistentFlags().StringVar(&flags.Path, "path", "", "Store directory or file")
	cmd.PersistentFlags().StringVar(&flags.RedisAddr, "redis-addr", "", "Redis address for the redis backend")
	cmd.PersistentFlags().BoolVarP(&flags.JSON, "json", "j", false, "Output as JSON")

	cmd.AddCommand(
		newStatsCmd(),
		newSweepCmd(),
		newClearCmd(),
		newInfoCmd(),
		newKeyCmd(),
	)

	return cmd
}
