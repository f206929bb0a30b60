// ABOUTME: Retry logic with exponential backoff for remote mirror calls.
// ABOUTME: Handles transient network failures with configurable behavior.
package tracker

import (
	"context"
	"time"
)

// RetryConfig controls retry behavior for remote operations.
type RetryConfig struct {
	MaxAttempts int           // maximum number of attempts (default: 3)
	InitialWait time.Duration // wait before first retry (default: 500ms)
	MaxWait     time.Duration // maximum wait between retries (default: 30s)
	Multiplier  float64       // backoff multiplier (default: 2.0)
}

// DefaultRetryConfig returns sensible defaults.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: 500 * time.Millisecond,
		MaxWait:     30 * time.Second,
		Multiplier:  2.0,
	}
}

// WithRetry executes fn with retry logic. Returns the result on
// success, or a RemoteError describing the op after exhausting retries.
func WithRetry[T any](ctx context.Context, cfg RetryConfig, op, collection, userID string, fn func() (T, error)) (T, error) {
	var zero T
	wait := cfg.InitialWait
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}

		if !Retryable(err) || attempt == cfg.MaxAttempts {
			return zero, &RemoteError{
				Op: op, Collection: collection, UserID: userID,
				Retries: attempt, Err: err,
			}
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(wait):
		}

		wait = time.Duration(float64(wait) * cfg.Multiplier)
		if cfg.MaxWait > 0 && wait > cfg.MaxWait {
			wait = cfg.MaxWait
		}
	}

	return zero, &RemoteError{
		Op: op, Collection: collection, UserID: userID,
		Retries: cfg.MaxAttempts, Err: ErrRemoteUnavailable,
	}
}
