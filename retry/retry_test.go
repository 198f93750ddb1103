/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package retry_test

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"chainguard.dev/getcontext/retry"
)

func testConfig() retry.Config {
	return retry.Config{
		MaxRetries:  3,
		BaseBackoff: time.Millisecond,
		MaxBackoff:  10 * time.Millisecond,
		MaxJitter:   time.Millisecond,
	}
}

func alwaysRetryable(err error) bool {
	return err != nil
}

type throttled struct {
	after time.Duration
}

func (e *throttled) Error() string             { return "429 too many requests" }
func (e *throttled) RetryAfter() time.Duration { return e.after }

func TestDo_Success(t *testing.T) {
	t.Parallel()
	var attempts atomic.Int32
	result, err := retry.Do(context.Background(), testConfig(), "test_op", alwaysRetryable, func() (string, error) {
		attempts.Add(1)
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "ok" {
		t.Errorf("result: got = %q, wanted = %q", result, "ok")
	}
	if got := attempts.Load(); got != 1 {
		t.Errorf("attempts: got = %d, wanted = 1", got)
	}
}

func TestDo_SuccessAfterRetries(t *testing.T) {
	t.Parallel()
	var attempts atomic.Int32
	transient := errors.New("503 service unavailable")

	result, err := retry.Do(context.Background(), testConfig(), "test_op", alwaysRetryable, func() (int, error) {
		n := attempts.Add(1)
		if n < 3 {
			return 0, transient
		}
		return 42, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != 42 {
		t.Errorf("result: got = %d, wanted = 42", result)
	}
	if got := attempts.Load(); got != 3 {
		t.Errorf("attempts: got = %d, wanted = 3", got)
	}
}

func TestDo_ExhaustedRetries(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	transient := errors.New("502 bad gateway")

	var attempts atomic.Int32
	_, err := retry.Do(context.Background(), cfg, "submit_run", alwaysRetryable, func() (string, error) {
		attempts.Add(1)
		return "", transient
	})
	if err == nil {
		t.Fatal("expected error after exhausted retries")
	}
	if got := attempts.Load(); got != 4 {
		t.Errorf("attempts (1 initial + 3 retries): got = %d, wanted = 4", got)
	}
	if !errors.Is(err, transient) {
		t.Errorf("errors.Is(err, transient): got = false, wanted = true (err = %v)", err)
	}
	if !strings.HasPrefix(err.Error(), "submit_run failed after 3 retries") {
		t.Errorf("error prefix: got = %q", err.Error())
	}
}

func TestDo_NonRetryableError(t *testing.T) {
	t.Parallel()
	permanent := errors.New("401 unauthorized")

	var attempts atomic.Int32
	_, err := retry.Do(context.Background(), testConfig(), "test_op", func(error) bool { return false }, func() (string, error) {
		attempts.Add(1)
		return "", permanent
	})
	if !errors.Is(err, permanent) {
		t.Fatalf("error: got = %v, wanted = %v", err, permanent)
	}
	if got := attempts.Load(); got != 1 {
		t.Errorf("attempts: got = %d, wanted = 1", got)
	}
}

func TestDo_ContextCancellation(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())

	_, err := retry.Do(ctx, testConfig(), "test_op", alwaysRetryable, func() (string, error) {
		cancel()
		return "", errors.New("500 internal")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error: got = %v, wanted = context.Canceled", err)
	}
}

func TestDo_RetryAfterHint(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.MaxJitter = 0

	var attempts atomic.Int32
	start := time.Now()
	_, err := retry.Do(context.Background(), cfg, "test_op", alwaysRetryable, func() (string, error) {
		if attempts.Add(1) == 1 {
			return "", &throttled{after: 25 * time.Millisecond}
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 25*time.Millisecond {
		t.Errorf("elapsed: got = %v, wanted >= 25ms", elapsed)
	}
}

func TestNever(t *testing.T) {
	t.Parallel()
	var attempts atomic.Int32
	_, _ = retry.Do(context.Background(), retry.Never(), "test_op", alwaysRetryable, func() (string, error) {
		attempts.Add(1)
		return "", errors.New("boom")
	})
	if got := attempts.Load(); got != 1 {
		t.Errorf("attempts: got = %d, wanted = 1", got)
	}
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()
	cfg := retry.DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("MaxRetries: got = %d, wanted = 3", cfg.MaxRetries)
	}
	if cfg.BaseBackoff != 500*time.Millisecond {
		t.Errorf("BaseBackoff: got = %v, wanted = %v", cfg.BaseBackoff, 500*time.Millisecond)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()
	for _, cfg := range []retry.Config{
		{MaxRetries: -1},
		{BaseBackoff: -time.Second},
		{MaxBackoff: -time.Second},
		{MaxJitter: -time.Second},
	} {
		if err := cfg.Validate(); err == nil {
			t.Errorf("Validate(%+v): got = nil, wanted = error", cfg)
		}
	}
}

func TestBackoff(t *testing.T) {
	t.Parallel()
	cfg := retry.Config{BaseBackoff: 100 * time.Millisecond, MaxBackoff: time.Second}
	tests := []struct {
		attempt int
		hint    time.Duration
		want    time.Duration
	}{
		{attempt: 0, want: 100 * time.Millisecond},
		{attempt: 1, want: 200 * time.Millisecond},
		{attempt: 3, want: 800 * time.Millisecond},
		{attempt: 4, want: time.Second},
		{attempt: 60, want: time.Second},
		{attempt: 0, hint: 3 * time.Second, want: 3 * time.Second},
		{attempt: 2, hint: 10 * time.Millisecond, want: 400 * time.Millisecond},
	}
	for _, tt := range tests {
		if got := cfg.Backoff(tt.attempt, tt.hint); got != tt.want {
			t.Errorf("Backoff(%d, %v): got = %v, wanted = %v", tt.attempt, tt.hint, got, tt.want)
		}
	}
}
