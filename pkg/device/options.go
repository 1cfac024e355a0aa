package device

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/adaptive/pkg/logger"
)

// DefaultProbeTimeout bounds permission-prompting probes such as getUserMedia.
const DefaultProbeTimeout = 3 * time.Second

type options struct {
	logger       *slog.Logger
	probeTimeout time.Duration
	now          func() time.Time
}

func defaultOptions() *options {
	return &options{
		logger:       logger.Discard(),
		probeTimeout: DefaultProbeTimeout,
		now:          time.Now,
	}
}

// Option configures detection and the Manager.
type Option func(*options)

// WithLogger sets the logger used to report degraded probes and listener failures.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithProbeTimeout bounds camera, microphone and battery probes.
// Non-positive values are ignored.
func WithProbeTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.probeTimeout = d
		}
	}
}

// WithClock overrides the time source used to stamp snapshots.
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
