// Package recruiterr classifies failures so callers can decide whether a
// retry makes sense. Batch code records validation and not-found failures
// per item; transient failures are retried a bounded number of times.
package recruiterr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound marks a missing response, vacancy or requirements record.
	ErrNotFound = errors.New("not found")
	// ErrValidation marks malformed AI output or incomplete input data.
	ErrValidation = errors.New("validation failed")
	// ErrNoIdentifiers is returned when a response carries no contact
	// identifiers at all, so no delivery channel could even be attempted.
	ErrNoIdentifiers = errors.New("no identifiers available")
)

// transientError wraps a failure worth retrying (rate limits, backend timeouts).
type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }

func (e *transientError) Unwrap() error { return e.err }

// Transient marks err as retryable.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// Transientf is a convenience formatter for retryable failures.
func Transientf(format string, args ...any) error {
	return &transientError{err: fmt.Errorf(format, args...)}
}

// IsTransient reports whether err (or anything it wraps) is retryable.
func IsTransient(err error) bool {
	var t *transientError
	return errors.As(err, &t)
}

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// NotFoundf wraps ErrNotFound with context.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

// Validationf wraps ErrValidation with context.
func Validationf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrValidation)...)
}
