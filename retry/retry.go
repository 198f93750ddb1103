/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package retry

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/chainguard-dev/clog"
)

// Config bounds how often and how patiently a call is retried.
type Config struct {
	// MaxRetries caps the attempts after the first. Zero disables retries.
	MaxRetries int
	// BaseBackoff is the wait before the first retry. It doubles per attempt.
	BaseBackoff time.Duration
	// MaxBackoff caps the doubled wait.
	MaxBackoff time.Duration
	// MaxJitter is the upper bound of random delay added to each wait.
	MaxJitter time.Duration
}

// Validate rejects negative settings.
func (c Config) Validate() error {
	var errs []error
	for _, f := range []struct {
		name string
		neg  bool
	}{
		{"max retries", c.MaxRetries < 0},
		{"base backoff", c.BaseBackoff < 0},
		{"max backoff", c.MaxBackoff < 0},
		{"max jitter", c.MaxJitter < 0},
	} {
		if f.neg {
			errs = append(errs, fmt.Errorf("%s cannot be negative", f.name))
		}
	}
	return errors.Join(errs...)
}

// DefaultConfig returns the settings used against the Context.ai API.
func DefaultConfig() Config {
	return Config{
		MaxRetries:  3,
		BaseBackoff: 500 * time.Millisecond,
		MaxBackoff:  10 * time.Second,
		MaxJitter:   250 * time.Millisecond,
	}
}

// Never returns a configuration that performs exactly one attempt.
func Never() Config {
	return Config{}
}

// Backoff returns the wait before retry number attempt (zero-based), without
// jitter. A server hint longer than the computed wait takes precedence.
func (c Config) Backoff(attempt int, hint time.Duration) time.Duration {
	d := c.BaseBackoff
	for range attempt {
		if d >= c.MaxBackoff {
			break
		}
		d *= 2
	}
	return max(min(d, c.MaxBackoff), hint)
}

func (c Config) jitter() time.Duration {
	if c.MaxJitter <= 0 {
		return 0
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(c.MaxJitter)))
	if err != nil {
		return 0
	}
	return time.Duration(n.Int64())
}

// afterHinter is implemented by errors that carry a server-provided delay,
// such as the Retry-After header of a 429.
type afterHinter interface {
	RetryAfter() time.Duration
}

func hintOf(err error) time.Duration {
	var h afterHinter
	if errors.As(err, &h) {
		return h.RetryAfter()
	}
	return 0
}

// Do calls fn until it succeeds, returns an error isRetryable rejects, or the
// retries in cfg run out. The last error is wrapped with the operation name.
func Do[T any](ctx context.Context, cfg Config, operation string, isRetryable func(error) bool, fn func() (T, error)) (T, error) {
	log := clog.FromContext(ctx).With("operation", operation)

	for attempt := 0; ; attempt++ {
		result, err := fn()
		switch {
		case err == nil:
			return result, nil
		case !isRetryable(err):
			return result, err
		case attempt == cfg.MaxRetries:
			return result, fmt.Errorf("%s failed after %d retries: %w", operation, cfg.MaxRetries, err)
		}

		wait := cfg.Backoff(attempt, hintOf(err)) + cfg.jitter()
		log.With("attempt", attempt+1).
			With("max_retries", cfg.MaxRetries).
			With("backoff", wait).
			With("error", err.Error()).
			Warn("Transient API failure, retrying")

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return result, ctx.Err()
		case <-t.C:
		}
	}
}
