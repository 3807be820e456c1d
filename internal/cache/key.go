// Lunch Roulette - Nearby Lunch Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunchroulette

package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-json"
)

// GenerateKey derives a cache key from a namespace prefix and request parameters.
//
// Parameters are encoded as JSON with sorted keys, so the key does not depend on
// map iteration order. The result is prefix + "_" + the first 16 hex characters
// of the SHA-256 of that encoding.
//
//	key := cache.GenerateKey("weather", map[string]any{"lat": 35.6812, "lon": 139.7671})
//	// "weather_3f1c..."
func GenerateKey(prefix string, params map[string]any) string {
	data, err := json.Marshal(params)
	if err != nil {
		// Unencodable values (channels, funcs) still get a stable key.
		data = []byte(fallbackCanonical(params))
	}

	sum := sha256.Sum256(data)
	return prefix + "_" + hex.EncodeToString(sum[:])[:16]
}

func fallbackCanonical(params map[string]any) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		if v, err := json.Marshal(params[k]); err == nil {
			fmt.Fprintf(&b, "%s=%s;", k, v)
			continue
		}
		fmt.Fprintf(&b, "%s=%T;", k, params[k])
	}
	return b.String()
}
