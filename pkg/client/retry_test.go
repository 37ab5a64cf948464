package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func fastRetry() RetryConfig {
	return RetryConfig{
		MaxAttempts:       3,
		InitialBackoff:    10 * time.Millisecond,
		MaxBackoff:        40 * time.Millisecond,
		BackoffMultiplier: 2.0,
	}
}

func classifyAs(class ErrorClass) func(error) ErrorClass {
	return func(error) ErrorClass { return class }
}

func TestDefaultRetryConfig(t *testing.T) {
	config := DefaultRetryConfig()

	if config.MaxAttempts != 3 {
		t.Errorf("MaxAttempts = %d, want 3", config.MaxAttempts)
	}
	if config.InitialBackoff != 500*time.Millisecond {
		t.Errorf("InitialBackoff = %v, want 500ms", config.InitialBackoff)
	}
	if config.BackoffMultiplier != 2.0 {
		t.Errorf("BackoffMultiplier = %v, want 2.0", config.BackoffMultiplier)
	}
}

func TestRetryConfig_ForClass(t *testing.T) {
	base := fastRetry()

	if got := base.forClass(ErrorClassServer); got.InitialBackoff != base.InitialBackoff {
		t.Errorf("server InitialBackoff = %v, want %v", got.InitialBackoff, base.InitialBackoff)
	}
	if got := base.forClass(ErrorClassRateLimit); got.InitialBackoff != 2*base.InitialBackoff {
		t.Errorf("rate limit InitialBackoff = %v, want doubled", got.InitialBackoff)
	}
	if got := (RetryConfig{}).forClass(""); got.MaxAttempts != 1 || got.BackoffMultiplier != 1 {
		t.Errorf("zero config not normalised: %+v", got)
	}
}

func TestRetryWithBackoff_Success(t *testing.T) {
	callCount := 0
	err := retryWithBackoff(context.Background(), fastRetry(), zerolog.Nop(), func() error {
		callCount++
		return nil
	}, classifyAs(ErrorClassServer))

	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if callCount != 1 {
		t.Errorf("Expected 1 call, got %d", callCount)
	}
}

func TestRetryWithBackoff_SuccessAfterRetry(t *testing.T) {
	callCount := 0
	err := retryWithBackoff(context.Background(), fastRetry(), zerolog.Nop(), func() error {
		callCount++
		if callCount < 3 {
			return errors.New("temporary error")
		}
		return nil
	}, classifyAs(ErrorClassServer))

	if err != nil {
		t.Errorf("Expected success after retry, got %v", err)
	}
	if callCount != 3 {
		t.Errorf("Expected 3 calls, got %d", callCount)
	}
}

func TestRetryWithBackoff_MaxAttemptsExhausted(t *testing.T) {
	errTemp := errors.New("persistent error")
	callCount := 0
	err := retryWithBackoff(context.Background(), fastRetry(), zerolog.Nop(), func() error {
		callCount++
		return errTemp
	}, classifyAs(ErrorClassNetwork))

	if !errors.Is(err, ErrRetryExhausted) {
		t.Errorf("Expected ErrRetryExhausted, got %v", err)
	}
	if !errors.Is(err, errTemp) {
		t.Errorf("Expected last error to be wrapped, got %v", err)
	}
	if callCount != 3 {
		t.Errorf("Expected 3 calls, got %d", callCount)
	}
}

func TestRetryWithBackoff_ClientErrorNoRetry(t *testing.T) {
	errClient := errors.New("not found")
	callCount := 0
	err := retryWithBackoff(context.Background(), fastRetry(), zerolog.Nop(), func() error {
		callCount++
		return errClient
	}, classifyAs(ErrorClassClient))

	if !errors.Is(err, errClient) {
		t.Errorf("Expected client error returned as-is, got %v", err)
	}
	if callCount != 1 {
		t.Errorf("Expected 1 call, got %d", callCount)
	}
}

func TestRetryWithBackoff_ContextCancelled(t *testing.T) {
	cfg := fastRetry()
	cfg.InitialBackoff = time.Second

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := retryWithBackoff(ctx, cfg, zerolog.Nop(), func() error {
		return errors.New("server error")
	}, classifyAs(ErrorClassServer))

	if !errors.Is(err, ErrContextCancelled) {
		t.Errorf("Expected ErrContextCancelled, got %v", err)
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Error("backoff did not stop on cancellation")
	}
}

func TestRetryWithBackoff_ContextCancelledImmediately(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	callCount := 0
	err := retryWithBackoff(ctx, fastRetry(), zerolog.Nop(), func() error {
		callCount++
		return nil
	}, classifyAs(ErrorClassServer))

	if !errors.Is(err, ErrContextCancelled) {
		t.Errorf("Expected ErrContextCancelled, got %v", err)
	}
	if callCount != 0 {
		t.Errorf("Expected 0 calls, got %d", callCount)
	}
}

func TestRetryWithBackoff_ExponentialBackoff(t *testing.T) {
	cfg := RetryConfig{
		MaxAttempts:       4,
		InitialBackoff:    20 * time.Millisecond,
		MaxBackoff:        time.Second,
		BackoffMultiplier: 2.0,
	}

	var stamps []time.Time
	retryWithBackoff(context.Background(), cfg, zerolog.Nop(), func() error {
		stamps = append(stamps, time.Now())
		return errors.New("fail")
	}, classifyAs(ErrorClassServer))

	if len(stamps) != 4 {
		t.Fatalf("Expected 4 attempts, got %d", len(stamps))
	}

	// With ±20% jitter: ~20ms, ~40ms, ~80ms.
	first := stamps[1].Sub(stamps[0])
	third := stamps[3].Sub(stamps[2])
	if third <= first {
		t.Errorf("backoff did not grow: first %v, third %v", first, third)
	}
}

func TestRetryWithBackoff_MaxBackoffCap(t *testing.T) {
	cfg := RetryConfig{
		MaxAttempts:       4,
		InitialBackoff:    20 * time.Millisecond,
		MaxBackoff:        20 * time.Millisecond,
		BackoffMultiplier: 10.0,
	}

	start := time.Now()
	retryWithBackoff(context.Background(), cfg, zerolog.Nop(), func() error {
		return errors.New("fail")
	}, classifyAs(ErrorClassServer))

	// Three waits of at most 24ms each.
	if elapsed := time.Since(start); elapsed > 300*time.Millisecond {
		t.Errorf("MaxBackoff not applied, took %v", elapsed)
	}
}
