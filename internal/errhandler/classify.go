// Lunch Roulette - Nearby Lunch Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunchroulette

package errhandler

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"

	"github.com/tomtom215/lunchroulette/internal/cache"
	"github.com/tomtom215/lunchroulette/internal/distance"
)

// Classify maps err to an ErrorType. A nil error is TypeUnknown.
func Classify(err error) ErrorType {
	if err == nil {
		return TypeUnknown
	}

	var sc StatusCoder
	if errors.As(err, &sc) {
		return classifyStatus(sc.HTTPStatus())
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return TypeTimeout
	}
	var netErr net.Error
	isNet := errors.As(err, &netErr)
	if isNet && netErr.Timeout() {
		return TypeTimeout
	}

	// *url.Error satisfies net.Error, so transport failures land here too.
	if isNet || errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return TypeNetwork
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.Is(err, ErrParse) || errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return TypeParsing
	}

	switch {
	case errors.Is(err, ErrLocationNotFound):
		return TypeLocationNotFound
	case errors.Is(err, ErrRestaurantNotFound):
		return TypeRestaurantNotFound
	case errors.Is(err, distance.ErrInvalidCoordinate):
		return TypeDistance
	case errors.Is(err, cache.ErrCache):
		return TypeCache
	}
	return TypeUnknown
}

func classifyStatus(status int) ErrorType {
	switch status {
	case http.StatusTooManyRequests:
		return TypeRateLimit
	case http.StatusUnauthorized, http.StatusForbidden:
		return TypeAuth
	default:
		return TypeNetwork
	}
}
