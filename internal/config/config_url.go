// Lunch Roulette - Nearby Lunch Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunchroulette

package config

import (
	"fmt"
	"net/url"
)

// urlRule says which parts of a URL a setting may carry.
type urlRule int

const (
	// originOnly accepts scheme://host[:port] with an optional trailing slash
	// (ipapi base URL, CORS origins).
	originOnly urlRule = iota
	// withPath also accepts a path (OpenWeatherMap and Hot Pepper endpoints).
	withPath
)

// validateURL checks an http(s) setting. Query strings are always rejected
// because the upstream clients build their own.
func validateURL(rawURL, envName string, rule urlRule) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s failed to parse URL: %w", envName, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s scheme must be http or https, got: %q", envName, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%s host is required", envName)
	}
	if rule == originOnly && u.Path != "" && u.Path != "/" {
		return fmt.Errorf("%s should be base URL only, remove path: %s", envName, u.Path)
	}
	if u.RawQuery != "" {
		return fmt.Errorf("%s should not contain query parameters, remove: ?%s", envName, u.RawQuery)
	}
	return nil
}
