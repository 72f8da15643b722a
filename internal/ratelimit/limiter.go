// Package ratelimit bounds contact submissions per client IP and per email
// address over a sliding window. Stored submissions are the counter, so the
// limit holds across stateless handlers that share nothing but the database.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrExceeded matches every *ExceededError via errors.Is.
var ErrExceeded = errors.New("rate limit exceeded")

// Scope names which key hit its ceiling.
type Scope string

const (
	ScopeIP    Scope = "ip"
	ScopeEmail Scope = "email"
)

// ExceededError is returned when a key already reached its ceiling inside
// the window. It signals "try again later", not abuse.
type ExceededError struct {
	Scope      Scope
	Limit      int
	Window     time.Duration
	RetryAfter time.Duration
}

func (e *ExceededError) Error() string {
	return fmt.Sprintf("rate limit exceeded: at most %d submissions per %s by %s", e.Limit, e.Window, e.Scope)
}

// Is reports whether target is ErrExceeded.
func (e *ExceededError) Is(target error) bool {
	return target == ErrExceeded
}

// Counter counts stored submissions created at or after since. since comes
// from the limiter clock, not the database clock.
// Email matching is case-insensitive.
type Counter interface {
	CountByIPSince(ctx context.Context, ip string, since time.Time) (int, error)
	CountByEmailSince(ctx context.Context, email string, since time.Time) (int, error)
}

// Config holds the ceilings and window. A ceiling of zero or less disables that key.
type Config struct {
	IPLimit    int
	EmailLimit int
	Window     time.Duration
}

// DefaultConfig is 5 per IP and 3 per email in a 60 minute window.
func DefaultConfig() Config {
	return Config{IPLimit: 5, EmailLimit: 3, Window: 60 * time.Minute}
}

// Limiter decides whether one more submission is allowed.
type Limiter struct {
	counter Counter
	cfg     Config
	now     func() time.Time
}

// New returns a Limiter over counter.
func New(counter Counter, cfg Config) *Limiter {
	return &Limiter{counter: counter, cfg: cfg, now: time.Now}
}

// WithClock replaces the time source. Used by tests.
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	return l
}

// Check counts prior submissions inside the window and fails with an
// *ExceededError when either the IP or the email already reached its
// ceiling. An empty ip skips the IP check.
func (l *Limiter) Check(ctx context.Context, ip, email string) error {
	return l.CheckWith(ctx, l.counter, ip, email)
}

// CheckWith is Check against a different counter, typically one bound to
// the transaction that will perform the insert.
func (l *Limiter) CheckWith(ctx context.Context, counter Counter, ip, email string) error {
	since := l.now().Add(-l.cfg.Window)

	if ip != "" && l.cfg.IPLimit > 0 {
		n, err := counter.CountByIPSince(ctx, ip, since)
		if err != nil {
			return fmt.Errorf("ratelimit: count by ip: %w", err)
		}
		if n >= l.cfg.IPLimit {
			return l.exceeded(ScopeIP, l.cfg.IPLimit)
		}
	}

	if email != "" && l.cfg.EmailLimit > 0 {
		n, err := counter.CountByEmailSince(ctx, email, since)
		if err != nil {
			return fmt.Errorf("ratelimit: count by email: %w", err)
		}
		if n >= l.cfg.EmailLimit {
			return l.exceeded(ScopeEmail, l.cfg.EmailLimit)
		}
	}
	return nil
}

func (l *Limiter) exceeded(scope Scope, limit int) *ExceededError {
	return &ExceededError{
		Scope:      scope,
		Limit:      limit,
		Window:     l.cfg.Window,
		RetryAfter: l.cfg.Window,
	}
}
