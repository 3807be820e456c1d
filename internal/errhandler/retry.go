// Lunch Roulette - Nearby Lunch Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunchroulette

package errhandler

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/lunchroulette/internal/logging"
)

// MaxRetryDelay caps RetryDelay.
const MaxRetryDelay = 300 * time.Second

// ShouldRetry reports whether t is retried automatically. Rate limit and auth
// failures are left to the caller.
func ShouldRetry(t ErrorType) bool {
	return t == TypeNetwork || t == TypeTimeout
}

// RetryDelay returns base x 2^(attempt-1), capped at MaxRetryDelay.
// Attempts below 1 are treated as the first attempt.
func RetryDelay(t ErrorType, attempt int) time.Duration {
	base := baseDelay(t)
	if attempt < 1 {
		attempt = 1
	}
	// 2^9 x 5s already exceeds the cap.
	if attempt > 10 {
		return MaxRetryDelay
	}
	delay := base << (attempt - 1)
	if delay > MaxRetryDelay {
		delay = MaxRetryDelay
	}
	return delay
}

func baseDelay(t ErrorType) time.Duration {
	switch t {
	case TypeTimeout:
		return 10 * time.Second
	case TypeRateLimit:
		return 60 * time.Second
	default:
		return 5 * time.Second
	}
}

// Retry runs fn up to attempts times, waiting RetryDelay between attempts,
// as long as each failure classifies as retryable. It returns the last error.
func Retry(ctx context.Context, h *Handler, attempts int, fn func(context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}

		t := Classify(err)
		if !ShouldRetry(t) || attempt == attempts {
			return err
		}

		delay := RetryDelay(t, attempt)
		logging.CtxDebug(ctx).Err(err).
			Str("error_type", string(t)).
			Int("attempt", attempt).
			Dur("delay", delay).
			Msg("Retrying after error")

		if sleepErr := h.sleep(ctx, delay); sleepErr != nil {
			return fmt.Errorf("retry aborted after attempt %d: %w", attempt, err)
		}
	}
	return err
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
