package snapshot

import "time"

const (
	// DefaultTTL bounds how long an idle session snapshot is kept.
	DefaultTTL = 24 * time.Hour
	// DefaultPrefix namespaces snapshot keys in shared key-value stores.
	DefaultPrefix = "adaptive:snapshot:"
	// DefaultCapacity is the MemoryStore entry limit.
	DefaultCapacity = 10_000
)

type options struct {
	ttl      time.Duration
	prefix   string
	capacity int
	now      func() time.Time
}

func defaultOptions() *options {
	return &options{
		ttl:      DefaultTTL,
		prefix:   DefaultPrefix,
		capacity: DefaultCapacity,
		now:      time.Now,
	}
}

// Option configures a Store.
type Option func(*options)

// WithTTL sets the retention period. Zero or negative disables expiry.
func WithTTL(d time.Duration) Option {
	return func(o *options) {
		o.ttl = max(d, 0)
	}
}

// WithPrefix sets the key prefix used by RedisStore.
func WithPrefix(p string) Option {
	return func(o *options) {
		o.prefix = p
	}
}

// WithCapacity sets the MemoryStore entry limit.
func WithCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.capacity = n
		}
	}
}

// WithClock overrides the time source used for expiry. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func applyOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}
