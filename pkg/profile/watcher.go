package profile

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dmitrymomot/adaptive/pkg/logger"
	"github.com/dmitrymomot/adaptive/pkg/optimize"
)

// Watcher holds the current profile and reloads it when the file changes.
// A profile that fails to load is logged and the previous one is kept.
type Watcher struct {
	path string
	opts *options
	log  *slog.Logger

	current atomic.Pointer[optimize.Config]

	mu        sync.Mutex
	callbacks []func(optimize.Config)
	fsw       *fsnotify.Watcher
	closed    bool
}

// NewWatcher loads path and starts watching its directory. Editors often
// replace the file instead of writing to it, so events are filtered by name.
func NewWatcher(path string, opts ...Option) (*Watcher, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Join(ErrReadProfile, err)
	}
	cfg, err := Load(abs)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Join(ErrWatch, err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return nil, errors.Join(ErrWatch, err)
	}

	w := &Watcher{
		path: abs,
		opts: o,
		log:  o.logger.With(logger.Component("profile"), slog.String("path", abs)),
		fsw:  fsw,
	}
	w.current.Store(&cfg)
	return w, nil
}

// Current returns the last successfully loaded profile.
func (w *Watcher) Current() optimize.Config {
	return *w.current.Load()
}

// OnChange registers fn to run after every successful reload.
func (w *Watcher) OnChange(fn func(optimize.Config)) {
	if fn == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, fn)
}

// Reload reads the file now. On failure the current profile is unchanged.
func (w *Watcher) Reload() error {
	cfg, err := Load(w.path)
	if err != nil {
		return err
	}
	w.current.Store(&cfg)

	w.mu.Lock()
	callbacks := make([]func(optimize.Config), len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.Unlock()

	for _, fn := range callbacks {
		fn(cfg)
	}
	return nil
}

// Run processes file events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return ErrClosed
			}
			if filepath.Clean(ev.Name) != w.path || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			w.log.Debug("profile change detected", slog.String("op", ev.Op.String()))
			if timer == nil {
				timer = time.NewTimer(w.opts.debounce)
			} else {
				timer.Reset(w.opts.debounce)
			}
			pending = timer.C

		case <-pending:
			pending = nil
			if err := w.Reload(); err != nil {
				w.log.Warn("profile reload failed, keeping previous", logger.Error(err))
				continue
			}
			w.log.Info("profile reloaded")

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return ErrClosed
			}
			w.log.Warn("profile watcher error", logger.Error(err))
		}
	}
}

// Close stops watching. It is safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	return w.fsw.Close()
}
