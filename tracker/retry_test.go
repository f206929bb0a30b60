package tracker

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts: attempts,
		InitialWait: time.Millisecond,
		MaxWait:     5 * time.Millisecond,
		Multiplier:  2.0,
	}
}

func TestWithRetrySucceedsAfterTransientFailure(t *testing.T) {
	ctx := context.Background()
	calls := 0
	got, err := WithRetry(ctx, fastRetry(3), "list", "jobs", "u1", func() (int, error) {
		calls++
		if calls < 3 {
			return 0, ErrRemoteUnavailable
		}
		return 42, nil
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if got != 42 || calls != 3 {
		t.Fatalf("got %d after %d calls", got, calls)
	}
}

func TestWithRetryDoesNotRetryAuthErrors(t *testing.T) {
	ctx := context.Background()
	calls := 0
	_, err := WithRetry(ctx, fastRetry(5), "upsert", "jobs", "u1", func() (int, error) {
		calls++
		return 0, ErrUnauthorized
	})
	if calls != 1 {
		t.Fatalf("auth errors must not be retried, got %d calls", calls)
	}
	var rerr *RemoteError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected RemoteError, got %T", err)
	}
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected wrapped ErrUnauthorized, got %v", err)
	}
	if rerr.Op != "upsert" || rerr.Collection != "jobs" || rerr.Retries != 1 {
		t.Fatalf("wrong context: %+v", rerr)
	}
}

func TestWithRetryExhaustsAttempts(t *testing.T) {
	ctx := context.Background()
	calls := 0
	_, err := WithRetry(ctx, fastRetry(3), "list", "jobs", "u1", func() (int, error) {
		calls++
		return 0, ErrServerError
	})
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
	var rerr *RemoteError
	if !errors.As(err, &rerr) || rerr.Retries != 3 {
		t.Fatalf("expected RemoteError after 3 retries, got %v", err)
	}
}

func TestWithRetryHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	_, err := WithRetry(ctx, fastRetry(3), "list", "jobs", "u1", func() (int, error) {
		calls++
		return 0, ErrRemoteUnavailable
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected a single attempt before cancellation, got %d", calls)
	}
}

func TestRetryablePredicate(t *testing.T) {
	if Retryable(nil) {
		t.Fatal("nil is not retryable")
	}
	if !Retryable(ErrRemoteUnavailable) || !Retryable(ErrServerError) {
		t.Fatal("transient errors must be retryable")
	}
	if Retryable(ErrUnauthorized) || Retryable(errors.New("other")) {
		t.Fatal("auth and unknown errors must not be retryable")
	}
}
