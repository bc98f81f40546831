package recruiterr

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{Attempts: attempts, InitialWait: time.Millisecond, Multiplier: 1.0}
}

func TestRetryTransientSucceedsEventually(t *testing.T) {
	t.Parallel()

	calls := 0
	got, err := Retry(context.Background(), fastRetry(3), func() (string, error) {
		calls++
		if calls < 3 {
			return "", Transientf("backend timeout")
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" {
		t.Fatalf("unexpected result: %q", got)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestRetryStopsOnValidationError(t *testing.T) {
	t.Parallel()

	calls := 0
	_, err := Retry(context.Background(), fastRetry(3), func() (int, error) {
		calls++
		return 0, Validationf("malformed json")
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("validation errors must not be retried, got %d calls", calls)
	}
}

func TestRetryExhaustsAttempts(t *testing.T) {
	t.Parallel()

	calls := 0
	_, err := Retry(context.Background(), fastRetry(3), func() (int, error) {
		calls++
		return 0, Transientf("rate limited")
	})
	if err == nil {
		t.Fatalf("expected error after exhausting attempts")
	}
	if !IsTransient(err) {
		t.Fatalf("expected transient error, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected exactly 3 attempts, got %d", calls)
	}
}

func TestRetryHonorsContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Retry(ctx, fastRetry(3), func() (int, error) {
		return 0, Transientf("should not matter")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestIsTransientSeesWrappedErrors(t *testing.T) {
	t.Parallel()

	inner := Transientf("throttled")
	wrapped := errors.Join(errors.New("outer"), inner)
	if !IsTransient(wrapped) {
		t.Fatalf("expected wrapped transient error to be detected")
	}
	if IsTransient(errors.New("plain")) {
		t.Fatalf("plain error must not be transient")
	}
	if IsTransient(nil) {
		t.Fatalf("nil must not be transient")
	}
}
