package ratelimiter

import (
	"context"
	"fmt"
	"time"
)

// Config defines a token bucket.
type Config struct {
	Capacity       int           `env:"CAPACITY" envDefault:"60"`        // burst size
	RefillRate     int           `env:"REFILL_RATE" envDefault:"1"`      // tokens added per interval
	RefillInterval time.Duration `env:"REFILL_INTERVAL" envDefault:"1s"` // refill period
}

func (c Config) validate() error {
	if c.Capacity <= 0 {
		return fmt.Errorf("%w: capacity must be positive, got %d", ErrInvalidConfig, c.Capacity)
	}
	if c.RefillRate <= 0 {
		return fmt.Errorf("%w: refill rate must be positive, got %d", ErrInvalidConfig, c.RefillRate)
	}
	if c.RefillInterval <= 0 {
		return fmt.Errorf("%w: refill interval must be positive, got %v", ErrInvalidConfig, c.RefillInterval)
	}
	return nil
}

// idleTTL is how long a bucket takes to refill completely. A bucket unused
// for that long is indistinguishable from a new one and may be dropped.
func (c Config) idleTTL() time.Duration {
	intervals := (c.Capacity + c.RefillRate - 1) / c.RefillRate
	return time.Duration(intervals) * c.RefillInterval
}

// Result is the outcome of a Take.
type Result struct {
	Limit     int
	Remaining int
	ResetAt   time.Time // next refill
	Allowed   bool
}

// RetryAfter is how long to wait before retrying a denied request.
func (r Result) RetryAfter(now time.Time) time.Duration {
	if r.Allowed {
		return 0
	}
	return max(r.ResetAt.Sub(now), 0)
}

// Store keeps bucket state. Take consumes n tokens when at least n are
// available; a denied take leaves the bucket unchanged.
type Store interface {
	Take(ctx context.Context, key string, n int, cfg Config) (Result, error)
	Reset(ctx context.Context, key string) error
}

// Limiter applies one bucket configuration over a Store.
type Limiter struct {
	store Store
	cfg   Config
}

// New validates cfg and returns a Limiter.
func New(store Store, cfg Config) (*Limiter, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Limiter{store: store, cfg: cfg}, nil
}

func (l *Limiter) Allow(ctx context.Context, key string) (Result, error) {
	return l.AllowN(ctx, key, 1)
}

func (l *Limiter) AllowN(ctx context.Context, key string, n int) (Result, error) {
	if n <= 0 {
		return Result{}, fmt.Errorf("%w, got %d", ErrInvalidTokenCount, n)
	}
	return l.store.Take(ctx, key, n, l.cfg)
}

func (l *Limiter) Reset(ctx context.Context, key string) error {
	return l.store.Reset(ctx, key)
}
