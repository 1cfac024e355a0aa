package rewrite

import (
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/adaptive/pkg/clienthints"
	"github.com/dmitrymomot/adaptive/pkg/device"
	"github.com/dmitrymomot/adaptive/pkg/logger"
	"github.com/dmitrymomot/adaptive/pkg/optimize"
)

// DefaultMaxBody is the largest HTML body buffered for rewriting. Larger
// bodies are streamed unchanged.
const DefaultMaxBody = 2 << 20

// InfoFunc resolves the device a response is adapted to.
type InfoFunc func(r *http.Request) (device.Info, bool)

// ConfigFunc optionally supplies a live optimization config for the request,
// for example the one held by a telemetry session.
type ConfigFunc func(r *http.Request) (optimize.Config, bool)

type options struct {
	logger       *slog.Logger
	maxBody      int
	lazySelector string
	info         InfoFunc
	config       ConfigFunc
	optimize     []optimize.Option
}

func defaultOptions() *options {
	return &options{
		logger:  logger.Discard(),
		maxBody: DefaultMaxBody,
		info:    infoFromRequest,
	}
}

// Option configures the middleware.
type Option func(*options)

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMaxBody sets the buffering limit in bytes.
func WithMaxBody(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxBody = n
		}
	}
}

// WithLazySelector overrides optimize.DefaultLazySelector.
func WithLazySelector(sel string) Option {
	return func(o *options) {
		o.lazySelector = sel
	}
}

// WithInfo overrides how the request device is resolved. The default reads
// the info stored by clienthints.Middleware and detects from the request
// headers when it is absent.
func WithInfo(fn InfoFunc) Option {
	return func(o *options) {
		if fn != nil {
			o.info = fn
		}
	}
}

// WithConfig supplies a live config that takes precedence over the tier
// derived one for lazy loading.
func WithConfig(fn ConfigFunc) Option {
	return func(o *options) {
		o.config = fn
	}
}

// WithOptimizeOptions passes options to the per-response optimize.Manager.
func WithOptimizeOptions(opts ...optimize.Option) Option {
	return func(o *options) {
		o.optimize = append(o.optimize, opts...)
	}
}

func infoFromRequest(r *http.Request) (device.Info, bool) {
	if info, ok := clienthints.InfoFromContext(r.Context()); ok {
		return info, true
	}
	return device.Detect(r.Context(), clienthints.FromRequest(r)), true
}
