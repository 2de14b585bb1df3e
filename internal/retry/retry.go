package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jobscout/jobscout/internal/model"
)

// DefaultMaxAttempts is the total number of tries, including the first.
const DefaultMaxAttempts = 3

// DefaultBaseDelay is the backoff for the first retry; it doubles per attempt
// (attempt 0 → 2s, 1 → 4s, 2 → 8s).
const DefaultBaseDelay = 2 * time.Second

// Caller wraps remote calls with exponential backoff on rate-limit failures.
// It is the only retry policy in the system; every LLM-backed call routes
// through it. Non-rate-limit failures propagate immediately.
type Caller struct {
	maxAttempts int
	baseDelay   time.Duration
	logger      *slog.Logger

	// sleep is swapped out in tests to avoid real delays.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewCaller creates a Caller. maxAttempts <= 0 and baseDelay <= 0 fall back to
// the defaults.
func NewCaller(maxAttempts int, baseDelay time.Duration, logger *slog.Logger) *Caller {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if baseDelay <= 0 {
		baseDelay = DefaultBaseDelay
	}
	return &Caller{
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		logger:      logger,
		sleep:       sleepCtx,
	}
}

// SetSleep replaces the backoff sleep function. Intended for tests.
func (c *Caller) SetSleep(fn func(ctx context.Context, d time.Duration) error) {
	c.sleep = fn
}

// Do invokes fn up to maxAttempts times. After a rate-limited failure it
// sleeps baseDelay * 2^attempt and tries again. Any other failure, or
// exhaustion of attempts, returns the original error.
func Do[T any](ctx context.Context, c *Caller, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		if !model.IsRateLimited(err) {
			return zero, err
		}
		lastErr = err

		if attempt == c.maxAttempts-1 {
			break
		}

		delay := c.backoffDelay(attempt, err)
		c.logger.Warn("rate limited, retrying",
			"op", op,
			"attempt", attempt+1,
			"max_attempts", c.maxAttempts,
			"delay", delay,
			"error", err,
		)
		if err := c.sleep(ctx, delay); err != nil {
			return zero, fmt.Errorf("retry cancelled: %w", err)
		}
	}

	return zero, lastErr
}

// backoffDelay computes baseDelay * 2^attempt. A Retry-After duration from the
// upstream (HTTP 429) takes precedence.
func (c *Caller) backoffDelay(attempt int, err error) time.Duration {
	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) && httpErr.RetryAfter > 0 {
		return httpErr.RetryAfter
	}

	delay := c.baseDelay
	for i := 0; i < attempt; i++ {
		delay *= 2
	}
	return delay
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
