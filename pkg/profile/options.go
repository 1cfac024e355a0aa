package profile

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/adaptive/pkg/logger"
)

// DefaultDebounce coalesces the burst of events editors emit for one save.
const DefaultDebounce = 100 * time.Millisecond

type options struct {
	logger   *slog.Logger
	debounce time.Duration
}

func defaultOptions() *options {
	return &options{
		logger:   logger.Discard(),
		debounce: DefaultDebounce,
	}
}

// Option configures a Watcher.
type Option func(*options)

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithDebounce sets how long the watcher waits after the last file event
// before reloading.
func WithDebounce(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.debounce = d
		}
	}
}
