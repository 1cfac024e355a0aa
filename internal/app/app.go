package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/adaptive/pkg/clienthints"
	"github.com/dmitrymomot/adaptive/pkg/device"
	"github.com/dmitrymomot/adaptive/pkg/httpserver"
	"github.com/dmitrymomot/adaptive/pkg/logger"
	"github.com/dmitrymomot/adaptive/pkg/optimize"
	"github.com/dmitrymomot/adaptive/pkg/profile"
	"github.com/dmitrymomot/adaptive/pkg/ratelimiter"
	"github.com/dmitrymomot/adaptive/pkg/rewrite"
	"github.com/dmitrymomot/adaptive/pkg/telemetry"
)

// readinessTimeout bounds a single /readyz probe.
const readinessTimeout = 2 * time.Second

// App wires detection, telemetry sessions and HTML rewriting in front of an
// origin.
type App struct {
	cfg      Config
	log      *slog.Logger
	store    *storeHandle
	profile  *profile.Watcher
	registry *telemetry.Registry
	limiter  *ratelimiter.Limiter
	origin   http.Handler

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
	closeErr  error
}

// New opens the configured store and profile and starts the background
// loops. The caller must Close the App.
func New(ctx context.Context, cfg Config, log *slog.Logger) (*App, error) {
	if log == nil {
		log = logger.Discard()
	}
	origin, err := newOrigin(cfg, log)
	if err != nil {
		return nil, err
	}
	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	a := &App{cfg: cfg, log: log, store: store, origin: origin}

	if cfg.RateLimit.Capacity > 0 {
		var limStore ratelimiter.Store = ratelimiter.NewMemoryStore(ratelimiter.WithMaxKeys(cfg.Sessions))
		if store.redis != nil {
			limStore = ratelimiter.NewRedisStore(store.redis, "")
		}
		if a.limiter, err = ratelimiter.New(limStore, cfg.RateLimit); err != nil {
			_ = a.closeStore()
			return nil, err
		}
	}

	base := optimize.DefaultConfig
	if cfg.Profile != "" {
		w, err := profile.NewWatcher(cfg.Profile, profile.WithLogger(log))
		if err != nil {
			_ = a.closeStore()
			return nil, err
		}
		a.profile = w
		base = w.Current
	}

	regOpts := []telemetry.Option{
		telemetry.WithLogger(log),
		telemetry.WithSessionTTL(cfg.SessionTTL),
		telemetry.WithCapacity(cfg.Sessions),
		telemetry.WithCookie(telemetry.DefaultCookieName, cfg.SecureCookie),
		telemetry.WithDetectOptions(device.WithLogger(log)),
		telemetry.WithOptimizeOptions(optimize.WithBaseFunc(base)),
	}
	if store.store != nil {
		regOpts = append(regOpts, telemetry.WithStore(store.store))
	}
	a.registry = telemetry.NewRegistry(regOpts...)

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	a.cancel = cancel
	if a.profile != nil {
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			if err := a.profile.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, profile.ErrClosed) {
				log.Error("profile watcher stopped", logger.Error(err))
			}
		}()
	}
	if cfg.PruneInterval > 0 {
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			a.janitor(runCtx, cfg.PruneInterval)
		}()
	}

	log.Info("adaptive app ready",
		slog.String("store", store.kind),
		slog.String("mount", cfg.MountPath),
		slog.Bool("proxy", cfg.Upstream != ""),
	)
	return a, nil
}

// Registry exposes the telemetry sessions.
func (a *App) Registry() *telemetry.Registry { return a.registry }

// Profile returns the base config new sessions derive from.
func (a *App) Profile() optimize.Config {
	if a.profile == nil {
		return optimize.DefaultConfig()
	}
	return a.profile.Current()
}

// Handler returns the full route tree:
//
//	GET  /healthz           liveness
//	GET  /readyz            readiness of the snapshot store
//	*    <mount>/...        telemetry routes
//	*    /*                 origin, HTML adapted to the requesting device
func (a *App) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)

	var checks []httpserver.Check
	if a.store.check != nil {
		checks = append(checks, *a.store.check)
	}
	r.Get("/healthz", httpserver.HealthCheckHandler(a.log, 0))
	r.Get("/readyz", httpserver.HealthCheckHandler(a.log, readinessTimeout, checks...))

	r.Route(a.cfg.MountPath, func(r chi.Router) {
		if a.limiter != nil {
			r.Use(ratelimiter.Middleware(a.limiter,
				ratelimiter.FirstOf(ratelimiter.ByCookie(telemetry.DefaultCookieName), ratelimiter.ByClientIP),
				a.log,
			))
		}
		r.Mount("/", telemetry.Router(a.registry))
	})

	r.Group(func(r chi.Router) {
		r.Use(clienthints.Middleware(device.WithLogger(a.log)))
		r.Use(rewrite.Middleware(
			rewrite.WithLogger(a.log),
			rewrite.WithMaxBody(a.cfg.MaxBody),
			rewrite.WithInfo(a.requestInfo),
			rewrite.WithConfig(a.registry.RequestConfig),
			rewrite.WithOptimizeOptions(optimize.WithBaseFunc(a.Profile)),
		))
		r.Handle("/*", a.origin)
	})
	return r
}

// requestInfo prefers the telemetry session, which holds the page-reported
// device, over header-only detection.
func (a *App) requestInfo(r *http.Request) (device.Info, bool) {
	if info, ok := a.registry.RequestInfo(r); ok {
		return info, true
	}
	return clienthints.InfoFromContext(r.Context())
}

func (a *App) janitor(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			a.prune(ctx)
		}
	}
}

func (a *App) prune(ctx context.Context) {
	sessions := a.registry.Prune()
	var rows int64
	if a.store.prune != nil {
		n, err := a.store.prune(ctx)
		if err != nil {
			a.log.Warn("snapshot prune failed", logger.Error(err))
		}
		rows = n
	}
	if sessions > 0 || rows > 0 {
		a.log.Debug("pruned expired state", slog.Int("sessions", sessions), slog.Int64("snapshots", rows))
	}
}

// Close stops the background loops, closes every session (saving its
// snapshot) and then releases the store.
func (a *App) Close(context.Context) error {
	a.closeOnce.Do(func() {
		a.cancel()
		errs := []error{a.closeProfile()}
		a.wg.Wait()
		a.registry.Close()
		errs = append(errs, a.closeStore())
		a.closeErr = errors.Join(errs...)
	})
	return a.closeErr
}

func (a *App) closeProfile() error {
	if a.profile == nil {
		return nil
	}
	return a.profile.Close()
}

func (a *App) closeStore() error {
	if a.store.close == nil {
		return nil
	}
	return a.store.close()
}
