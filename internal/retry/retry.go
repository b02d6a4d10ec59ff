// Package retry runs an operation a bounded number of times on top of
// cenkalti/backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
)

type RetryConfig struct {
	MaxAttempts int
	Delay       time.Duration
	Backoff     bool // linear backoff: attempt * Delay
}

// Default is used for LLM completions and webhook deliveries.
var Default = RetryConfig{MaxAttempts: 3, Delay: 2 * time.Second, Backoff: true}

// Permanent marks err as not worth retrying (bad credentials, 4xx).
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return backoff.Permanent(err)
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var perm *backoff.PermanentError
	return errors.As(err, &perm)
}

// linearBackOff waits step, 2*step, 3*step, ...
type linearBackOff struct {
	step time.Duration
	n    int64
}

func (b *linearBackOff) NextBackOff() time.Duration {
	b.n++
	return time.Duration(b.n) * b.step
}

func (b *linearBackOff) Reset() { b.n = 0 }

func (c RetryConfig) backOff() backoff.BackOff {
	if c.Backoff {
		return &linearBackOff{step: c.Delay}
	}
	return &backoff.ConstantBackOff{Interval: c.Delay}
}

// WithRetry calls fn until it succeeds, returns a permanent error, runs out of
// attempts or ctx is done.
func WithRetry(ctx context.Context, config RetryConfig, fn func() error) error {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 1
	}

	attempts := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempts++
		return struct{}{}, fn()
	},
		backoff.WithBackOff(config.backOff()),
		backoff.WithMaxTries(uint(config.MaxAttempts)),
		backoff.WithNotify(func(err error, delay time.Duration) {
			slog.Debug("retrying", "attempt", attempts, "delay", delay, "error", err)
		}),
	)
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
		return fmt.Errorf("%w: %w", ctxErr, err)
	}
	if attempts >= config.MaxAttempts && config.MaxAttempts > 1 {
		return fmt.Errorf("failed after %d attempts: %w", attempts, err)
	}
	return err
}
