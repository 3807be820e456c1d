// Lunch Roulette - Nearby Lunch Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunchroulette

package errhandler

import "errors"

// ErrorType is the closed set of failure kinds the service distinguishes.
type ErrorType string

const (
	TypeRateLimit          ErrorType = "api_rate_limit"
	TypeAuth               ErrorType = "api_auth_error"
	TypeNetwork            ErrorType = "api_network_error"
	TypeTimeout            ErrorType = "api_timeout"
	TypeParsing            ErrorType = "data_parsing_error"
	TypeLocationNotFound   ErrorType = "location_not_found"
	TypeRestaurantNotFound ErrorType = "restaurant_not_found"
	TypeDistance           ErrorType = "distance_calculation_error"
	TypeCache              ErrorType = "cache_error"
	TypeUnknown            ErrorType = "unknown_error"
)

// Types lists every ErrorType.
var Types = []ErrorType{
	TypeRateLimit,
	TypeAuth,
	TypeNetwork,
	TypeTimeout,
	TypeParsing,
	TypeLocationNotFound,
	TypeRestaurantNotFound,
	TypeDistance,
	TypeCache,
	TypeUnknown,
}

// Severity tells the caller how visible a failure should be.
type Severity string

const (
	// SeverityInfo is an expected degraded mode, such as the default location.
	SeverityInfo Severity = "info"
	// SeverityWarning is recoverable with a fallback.
	SeverityWarning Severity = "warning"
	// SeverityError has no fallback and is surfaced to the caller.
	SeverityError Severity = "error"
)

// Sentinel errors returned by the upstream clients.
var (
	ErrLocationNotFound   = errors.New("location not found")
	ErrRestaurantNotFound = errors.New("no restaurants found")
	ErrParse              = errors.New("malformed upstream payload")
)

// StatusCoder is implemented by errors that carry an upstream HTTP status.
type StatusCoder interface {
	HTTPStatus() int
}

type catalogEntry struct {
	message    string
	suggestion string
	severity   Severity
}

var catalog = map[ErrorType]catalogEntry{
	TypeRateLimit: {
		message:    "The service is busy right now.",
		suggestion: "Please wait a moment and try again.",
		severity:   SeverityWarning,
	},
	TypeAuth: {
		message:    "The service could not authenticate with a data provider.",
		suggestion: "Please contact the administrator.",
		severity:   SeverityError,
	},
	TypeNetwork: {
		message:    "A network error occurred.",
		suggestion: "Check your connection and try again.",
		severity:   SeverityWarning,
	},
	TypeTimeout: {
		message:    "The request timed out.",
		suggestion: "Please try again in a moment.",
		severity:   SeverityWarning,
	},
	TypeParsing: {
		message:    "Received data could not be processed.",
		suggestion: "Please try again in a moment.",
		severity:   SeverityWarning,
	},
	TypeLocationNotFound: {
		message:    "Your location could not be determined.",
		suggestion: "Searching around the default location instead.",
		severity:   SeverityInfo,
	},
	TypeRestaurantNotFound: {
		message:    "No restaurants were found nearby.",
		suggestion: "Try a wider search radius or a higher budget.",
		severity:   SeverityInfo,
	},
	TypeDistance: {
		message:    "An error occurred while calculating the distance.",
		suggestion: "Showing an approximate distance instead.",
		severity:   SeverityWarning,
	},
	TypeCache: {
		message:    "Cached data could not be used.",
		suggestion: "Fetching fresh data instead.",
		severity:   SeverityWarning,
	},
	TypeUnknown: {
		message:    "An unexpected error occurred.",
		suggestion: "Please try again later.",
		severity:   SeverityError,
	},
}

func lookup(t ErrorType) catalogEntry {
	if e, ok := catalog[t]; ok {
		return e
	}
	return catalog[TypeUnknown]
}

// Message returns the user-facing message for t.
func Message(t ErrorType) string { return lookup(t).message }

// Suggestion returns the user-facing suggestion for t.
func Suggestion(t ErrorType) string { return lookup(t).suggestion }

// SeverityOf returns the severity for t.
func SeverityOf(t ErrorType) Severity { return lookup(t).severity }

// IsCritical reports whether t has no fallback path.
func IsCritical(t ErrorType) bool {
	return t == TypeAuth || t == TypeUnknown
}

// HasStaleFallback reports whether a failure of type t should be answered
// with stale cached data when available.
func HasStaleFallback(t ErrorType) bool {
	return t == TypeRateLimit || t == TypeNetwork || t == TypeTimeout
}
