package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Pacer enforces a minimum gap between consecutive calls to a shared upstream.
// The first call proceeds immediately; every later call waits out the
// remainder of the gap. This keeps the scoring loop at one request in flight
// with a fixed spacing, which is how the external API's per-minute ceiling is
// respected.
type Pacer struct {
	mu       sync.Mutex
	lastCall time.Time
	minDelay time.Duration

	// sleep is swapped out in tests to avoid real delays.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewPacer creates a pacer enforcing minDelay between consecutive calls.
func NewPacer(minDelay time.Duration) *Pacer {
	return &Pacer{
		minDelay: minDelay,
		sleep:    sleepCtx,
	}
}

// SetSleep replaces the wait function. Intended for tests.
func (p *Pacer) SetSleep(fn func(ctx context.Context, d time.Duration) error) {
	p.sleep = fn
}

// Wait blocks until enough time has passed since the previous call.
// Returns an error if the context is cancelled while waiting.
func (p *Pacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	now := time.Now()

	if p.lastCall.IsZero() || now.Sub(p.lastCall) >= p.minDelay {
		p.lastCall = now
		p.mu.Unlock()
		return nil
	}

	remaining := p.minDelay - now.Sub(p.lastCall)
	p.mu.Unlock()

	if err := p.sleep(ctx, remaining); err != nil {
		return fmt.Errorf("pacer wait: %w", err)
	}

	p.mu.Lock()
	p.lastCall = time.Now()
	p.mu.Unlock()

	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
