// Lunch Roulette - Nearby Lunch Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunchroulette

// Package models defines the typed records shared between the upstream clients,
// the selector and the HTTP API: Location, Weather, Restaurant, and the generic
// APIResponse envelope.
//
// Upstream payloads are decoded into wire structs inside internal/upstream and
// converted into these records with defaults applied, so the rest of the code
// never handles raw maps.
package models
