// Package gate provides the process-wide request gate for the external
// identity lookup endpoint. It serializes outbound calls so the upstream API
// is never hit faster than its rate limit, with an extended cooldown after
// failures.
package gate

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrWaitTimeout is returned by Acquire when the gate did not open within
// the configured maximum wait.
var ErrWaitTimeout = errors.New("gate: wait timeout")

// Config configures the gate.
type Config struct {
	// Interval is the minimum delay between requests after a success.
	Interval time.Duration
	// PenaltyFactor multiplies Interval after a failed request, throttling
	// further against a possibly-overloaded upstream.
	PenaltyFactor int
	// PollInterval is how often a blocked caller re-checks the gate.
	// Waiters poll rather than queue, so ordering among them is not
	// guaranteed.
	PollInterval time.Duration
	// MaxWait bounds the total time a single Acquire will poll before
	// giving up with ErrWaitTimeout.
	MaxWait time.Duration
	// Disabled turns Acquire and Release into no-ops.
	Disabled bool
}

// DefaultConfig returns the default gate configuration.
func DefaultConfig() Config {
	return Config{
		Interval:      time.Second,
		PenaltyFactor: 3,
		PollInterval:  50 * time.Millisecond,
		MaxWait:       2 * time.Minute,
	}
}

// Sleeper waits for d or until ctx is done, returning ctx.Err() in the
// latter case. Injectable for testing.
type Sleeper func(ctx context.Context, d time.Duration) error

// DefaultSleeper sleeps using a real timer.
var DefaultSleeper Sleeper = func(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Gate is a single-slot gate: at most one in-flight external request across
// the whole process at any time. There is exactly one instance for the
// process's lifetime, shared by every concurrent resolution attempt.
// Safe for concurrent use.
type Gate struct {
	cfg   Config
	now   func() time.Time
	sleep Sleeper

	mu       sync.Mutex
	inFlight bool
	reopenAt time.Time
}

// Option configures a Gate.
type Option func(*Gate)

// WithClock sets the time source (for testing).
func WithClock(now func() time.Time) Option {
	return func(g *Gate) { g.now = now }
}

// WithSleeper sets the sleep function (for testing).
func WithSleeper(s Sleeper) Option {
	return func(g *Gate) { g.sleep = s }
}

// New creates a Gate. Zero or negative config fields fall back to defaults.
func New(cfg Config, opts ...Option) *Gate {
	def := DefaultConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.PenaltyFactor <= 0 {
		cfg.PenaltyFactor = def.PenaltyFactor
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = def.PollInterval
	}
	if cfg.MaxWait <= 0 {
		cfg.MaxWait = def.MaxWait
	}
	g := &Gate{
		cfg:   cfg,
		now:   time.Now,
		sleep: DefaultSleeper,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Acquire blocks until the gate is free, then claims it. Callers must pair
// every successful Acquire with exactly one Release. Returns ErrWaitTimeout
// if the gate did not open within MaxWait, or ctx.Err() on cancellation.
// A disabled gate always grants immediately.
func (g *Gate) Acquire(ctx context.Context) error {
	if g.cfg.Disabled {
		return nil
	}

	deadline := g.now().Add(g.cfg.MaxWait)
	for {
		g.mu.Lock()
		now := g.now()
		if !g.inFlight && !now.Before(g.reopenAt) {
			g.inFlight = true
			g.mu.Unlock()
			return nil
		}
		g.mu.Unlock()

		if !now.Before(deadline) {
			return ErrWaitTimeout
		}
		if err := g.sleep(ctx, g.cfg.PollInterval); err != nil {
			return err
		}
	}
}

// Release frees the gate, scheduling it to reopen after Interval on success
// or Interval×PenaltyFactor on failure. Never fails; it only affects timing.
func (g *Gate) Release(success bool) {
	if g.cfg.Disabled {
		return
	}

	delay := g.cfg.Interval
	if !success {
		delay *= time.Duration(g.cfg.PenaltyFactor)
	}

	g.mu.Lock()
	g.reopenAt = g.now().Add(delay)
	g.inFlight = false
	g.mu.Unlock()
}
