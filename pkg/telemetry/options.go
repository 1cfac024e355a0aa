package telemetry

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/adaptive/pkg/device"
	"github.com/dmitrymomot/adaptive/pkg/logger"
	"github.com/dmitrymomot/adaptive/pkg/optimize"
	"github.com/dmitrymomot/adaptive/pkg/snapshot"
)

const (
	DefaultCookieName   = "adaptive_sid"
	DefaultSessionTTL   = 30 * time.Minute
	DefaultCapacity     = 10_000
	DefaultFrameBuffer  = 256
	DefaultPersistLimit = 5 * time.Second
)

type options struct {
	logger       *slog.Logger
	store        snapshot.Store
	ttl          time.Duration
	capacity     int
	frameBuffer  int
	persistLimit time.Duration
	cookieName   string
	secureCookie bool
	detect       []device.Option
	optimize     []optimize.Option
	now          func() time.Time
}

func defaultOptions() *options {
	return &options{
		logger:       logger.Discard(),
		ttl:          DefaultSessionTTL,
		capacity:     DefaultCapacity,
		frameBuffer:  DefaultFrameBuffer,
		persistLimit: DefaultPersistLimit,
		cookieName:   DefaultCookieName,
		now:          time.Now,
	}
}

// Option configures a Registry and the routes built on it.
type Option func(*options)

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithStore persists session snapshots so that a client returning after its
// session expired starts from its last known device instead of header-only
// detection.
func WithStore(s snapshot.Store) Option {
	return func(o *options) {
		o.store = s
	}
}

// WithSessionTTL sets how long an idle session is kept in memory.
func WithSessionTTL(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.ttl = d
		}
	}
}

// WithCapacity limits the number of live sessions.
func WithCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.capacity = n
		}
	}
}

// WithFrameBuffer sets how many frame timestamps a session queues before
// dropping new ones.
func WithFrameBuffer(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.frameBuffer = n
		}
	}
}

// WithCookie sets the session cookie name and its Secure attribute.
func WithCookie(name string, secure bool) Option {
	return func(o *options) {
		if name != "" {
			o.cookieName = name
		}
		o.secureCookie = secure
	}
}

// WithDetectOptions passes options to every device detection.
func WithDetectOptions(opts ...device.Option) Option {
	return func(o *options) {
		o.detect = append(o.detect, opts...)
	}
}

// WithOptimizeOptions passes options to every session optimization manager.
func WithOptimizeOptions(opts ...optimize.Option) Option {
	return func(o *options) {
		o.optimize = append(o.optimize, opts...)
	}
}

// WithClock overrides the time source used for session expiry.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}
