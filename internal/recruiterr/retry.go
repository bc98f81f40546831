package recruiterr

import (
	"context"
	"time"
)

// RetryConfig controls the bounded retry applied to transient failures.
type RetryConfig struct {
	Attempts    int
	InitialWait time.Duration
	Multiplier  float64
}

// DefaultRetry matches the step-executor policy: three attempts total.
var DefaultRetry = RetryConfig{
	Attempts:    3,
	InitialWait: 500 * time.Millisecond,
	Multiplier:  2.0,
}

// Retry runs fn up to cfg.Attempts times, backing off between attempts.
// Only transient errors are retried; validation and not-found failures
// return immediately, as does context cancellation.
func Retry[T any](ctx context.Context, cfg RetryConfig, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	attempts := cfg.Attempts
	if attempts <= 0 {
		attempts = 1
	}
	wait := cfg.InitialWait

	for attempt := 0; attempt < attempts; attempt++ {
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !IsTransient(err) {
			return zero, err
		}

		if attempt < attempts-1 && wait > 0 {
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return zero, ctx.Err()
			}
			wait = time.Duration(float64(wait) * cfg.Multiplier)
		}
	}

	return zero, lastErr
}
