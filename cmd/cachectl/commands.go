// Lunch Roulette - Nearby Lunch Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunchroulette

package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/lunchroulette/internal/cache"
)

// errNotConfirmed is returned by clear without --yes.
var errNotConfirmed = errors.New("refusing to clear the cache without --yes")

type statsOutput struct {
	cache.StoreStats
	Backend    string `json:"backend"`
	TTLSeconds int64  `json:"ttl_seconds"`
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show entry counts and size",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sessionFrom(cmd.Context())
			if err != nil {
				return err
			}
			stats, err := s.cache.Stats(cmd.Context())
			if err != nil {
				return err
			}

			out := statsOutput{
				StoreStats: stats,
				Backend:    s.store.Name(),
				TTLSeconds: int64(s.cache.TTL() / time.Second),
			}
			if s.json {
				return writeJSON(cmd.OutOrStdout(), out)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Backend:  %s\n", out.Backend)
			fmt.Fprintf(w, "TTL:      %s\n", s.cache.TTL())
			fmt.Fprintf(w, "Entries:  %s (%s valid, %s expired)\n",
				humanize.Comma(int64(stats.Total)),
				humanize.Comma(int64(stats.Valid)),
				humanize.Comma(int64(stats.Expired)))
			fmt.Fprintf(w, "Size:     %s\n", humanize.Bytes(uint64(max(stats.SizeBytes, 0))))
			return nil
		},
	}
}

func newSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Delete expired entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sessionFrom(cmd.Context())
			if err != nil {
				return err
			}
			removed, err := s.cache.Sweep(cmd.Context())
			if err != nil {
				return err
			}
			if s.json {
				return writeJSON(cmd.OutOrStdout(), map[string]int{"removed": removed})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s expired %s\n",
				humanize.Comma(int64(removed)), pluralEntries(removed))
			return nil
		},
	}
}

func newClearCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errNotConfirmed
			}
			s, err := sessionFrom(cmd.Context())
			if err != nil {
				return err
			}
			if !s.cache.ClearAll(cmd.Context()) {
				return fmt.Errorf("clear %s store failed", s.store.Name())
			}
			if s.json {
				return writeJSON(cmd.OutOrStdout(), map[string]bool{"cleared": true})
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Cache cleared")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm deletion of every entry")
	return cmd
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info KEY",
		Short: "Show metadata for one entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := sessionFrom(cmd.Context())
			if err != nil {
				return err
			}
			info, ok := s.cache.Info(cmd.Context(), args[0])
			if !ok {
				return fmt.Errorf("key %q not found", args[0])
			}
			if s.json {
				return writeJSON(cmd.OutOrStdout(), info)
			}

			state := "valid"
			if !info.IsValid {
				state = "expired"
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Key:      %s\n", info.Key)
			fmt.Fprintf(w, "State:    %s\n", state)
			fmt.Fprintf(w, "Created:  %s (%s)\n", info.CreatedAt.Format(time.RFC3339), humanize.Time(info.CreatedAt))
			fmt.Fprintf(w, "Expires:  %s (%s)\n", info.ExpiresAt.Format(time.RFC3339), humanize.Time(info.ExpiresAt))
			fmt.Fprintf(w, "TTL left: %ds\n", info.TTLRemaining)
			fmt.Fprintf(w, "Size:     %s\n", humanize.Bytes(uint64(max(info.DataSize, 0))))
			return nil
		},
	}
}

func newKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "key PREFIX [NAME=VALUE...]",
		Short: "Print the cache key for a prefix and parameters",
		Long: `Print the cache key the server derives for a prefix and parameters.

Numeric values are encoded as numbers and true/false as booleans; everything
else is a string. The server rounds coordinates to 4 decimals:

  cachectl key location ip=auto
  cachectl key weather lat=35.6812 lon=139.7671
  cachectl key restaurants lat=35.6812 lon=139.7671 radius=1`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseParams(args[1:])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cache.GenerateKey(args[0], params))
			return nil
		},
	}
}

// parseParams turns NAME=VALUE pairs into key parameters.
func parseParams(pairs []string) (map[string]any, error) {
	params := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid parameter %q: want NAME=VALUE", pair)
		}
		params[name] = parseValue(value)
	}
	return params, nil
}

func parseValue(s string) any {
	// NaN and Inf parse as floats but have no JSON encoding.
	if f, err := strconv.ParseFloat(s, 64); err == nil && !strings.ContainsAny(s, "nNiI") {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil && (s == "true" || s == "false") {
		return b
	}
	return s
}

func pluralEntries(n int) string {
	if n == 1 {
		return "entry"
	}
	return "entries"
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
