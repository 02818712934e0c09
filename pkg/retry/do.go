// Package retry provides a small retry helper with configurable attempts,
// backoff and retry conditions.
package retry

import (
	"context"
	"errors"
	"time"
)

// Func defines a retryable function.
// The function must respect the provided context.
type Func func(ctx context.Context) error

// RetryIf determines whether an error should trigger a retry.
// Return true to retry, false to stop immediately.
type RetryIf func(error) bool

// Config defines retry behavior.
type Config struct {
	maxAttempts int
	interval    time.Duration
	retryIf     RetryIf
}

func defaultConfig() *Config {
	return &Config{
		maxAttempts: 3,
		interval:    time.Second,
		retryIf:     func(error) bool { return true },
	}
}

// Option mutates the retry configuration.
type Option func(*Config)

// WithMaxAttempts sets the total number of attempts (including the first).
func WithMaxAttempts(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithInterval sets the fixed wait between attempts.
func WithInterval(d time.Duration) Option {
	return func(c *Config) {
		if d >= 0 {
			c.interval = d
		}
	}
}

// WithRetryIf sets the retry condition.
func WithRetryIf(f RetryIf) Option {
	return func(c *Config) {
		if f != nil {
			c.retryIf = f
		}
	}
}

// Do runs f until it succeeds, the attempts are exhausted, the retry
// condition rejects the error, or the context is done. The last error is
// returned on failure.
func Do(ctx context.Context, f Func, opts ...Option) error {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	var lastErr error
	for attempt := 0; attempt < cfg.maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return errors.Join(ctx.Err(), lastErr)
			case <-time.After(cfg.interval):
			}
		}

		lastErr = f(ctx)
		if lastErr == nil {
			return nil
		}
		if !cfg.retryIf(lastErr) {
			return lastErr
		}
	}
	return lastErr
}
