package optimize

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/adaptive/pkg/async"
	"github.com/dmitrymomot/adaptive/pkg/dom"
	"github.com/dmitrymomot/adaptive/pkg/logger"
)

// Monitor defaults.
const (
	DefaultFPSWindow      = time.Second
	DefaultMemoryInterval = 5 * time.Second
)

type options struct {
	logger         *slog.Logger
	base           Config
	observers      dom.ObserverFactory
	fpsWindow      time.Duration
	memoryInterval time.Duration
	yieldInterval  time.Duration
}

func defaultOptions() *options {
	return &options{
		logger:         logger.Discard(),
		base:           DefaultConfig(),
		observers:      dom.NativeLazyObserver,
		fpsWindow:      DefaultFPSWindow,
		memoryInterval: DefaultMemoryInterval,
		yieldInterval:  async.DefaultYieldInterval,
	}
}

// Option configures a Manager.
type Option func(*options)

// WithLogger sets the manager logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithBase replaces DefaultConfig as the starting point of tier derivation,
// typically with a profile read by LoadProfile.
func WithBase(cfg Config) Option {
	return func(o *options) {
		o.base = cfg
	}
}

// WithBaseFunc is WithBase resolved each time a Manager is built, so a
// profile reloaded at runtime reaches managers created afterwards.
func WithBaseFunc(fn func() Config) Option {
	return func(o *options) {
		if fn != nil {
			o.base = fn()
		}
	}
}

// WithObserverFactory sets how lazy-loading observers are constructed.
func WithObserverFactory(f dom.ObserverFactory) Option {
	return func(o *options) {
		if f != nil {
			o.observers = f
		}
	}
}

// WithFPSWindow sets the frame-rate sampling window.
func WithFPSWindow(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.fpsWindow = d
		}
	}
}

// WithMemoryInterval sets the memory polling interval.
func WithMemoryInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.memoryInterval = d
		}
	}
}

// WithYieldInterval sets the pause BatchProcess inserts between chunks.
func WithYieldInterval(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.yieldInterval = d
		}
	}
}
