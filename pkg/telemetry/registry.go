package telemetry

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrymomot/adaptive/pkg/cache"
	"github.com/dmitrymomot/adaptive/pkg/clienthints"
	"github.com/dmitrymomot/adaptive/pkg/device"
	"github.com/dmitrymomot/adaptive/pkg/logger"
	"github.com/dmitrymomot/adaptive/pkg/snapshot"
)

// Registry owns the live sessions. Idle sessions expire after the session
// TTL; the least recently used one is closed when capacity is reached.
// All methods are safe for concurrent use.
type Registry struct {
	opts     *options
	sessions *cache.LRUCache[string, *Session]
	group    singleflight.Group

	mu     sync.RWMutex
	closed bool
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	r := &Registry{
		opts: o,
		sessions: cache.NewLRUCache[string, *Session](o.capacity,
			cache.WithTTL(o.ttl),
			cache.WithClock(o.now),
		),
	}
	r.sessions.SetEvictCallback(func(_ string, s *Session) {
		s.Close()
	})
	return r
}

// Get returns a live session.
func (r *Registry) Get(id string) (*Session, bool) {
	s, ok := r.sessions.Get(id)
	if !ok || s.Closed() {
		return nil, false
	}
	return s, true
}

// Open returns the live session for id, creating it when missing. A new
// session starts from the stored snapshot when one exists, otherwise from
// detecting src. Opening refreshes the session expiry.
//
// When ctx carries a device.Info stored by clienthints.Middleware, it is used
// instead of detecting src again.
func (r *Registry) Open(ctx context.Context, id string, src *clienthints.Source) (*Session, error) {
	s, _, err := r.open(ctx, id, src, true)
	return s, err
}

// Report merges rep into the session for id and re-detects the device.
// The session is created first when missing.
func (r *Registry) Report(ctx context.Context, id string, src *clienthints.Source, rep clienthints.Report) (*Session, error) {
	s, detected, err := r.open(ctx, id, src.WithReport(rep), false)
	if err != nil {
		return nil, err
	}
	if detected {
		return s, nil
	}
	if _, err := s.Redetect(ctx, rep); err != nil {
		return nil, err
	}
	return s, nil
}

// Record forwards samples to the session for id.
func (r *Registry) Record(id string, smp Samples) (int, error) {
	s, ok := r.Get(id)
	if !ok {
		return 0, ErrSessionNotFound
	}
	r.touch(id, s)
	return s.Record(smp), nil
}

// Remove closes and forgets the session for id.
func (r *Registry) Remove(id string) bool {
	_, ok := r.sessions.Remove(id)
	return ok
}

// Prune closes expired sessions and returns how many were closed.
func (r *Registry) Prune() int {
	return r.sessions.RemoveExpired()
}

// Len returns the number of sessions held, including expired ones not yet pruned.
func (r *Registry) Len() int { return r.sessions.Len() }

// Close closes every session. Later Open calls fail with ErrRegistryClosed.
func (r *Registry) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.mu.Unlock()

	r.sessions.Clear()
}

// open reports detected=true when the session was just built by detecting src.
func (r *Registry) open(ctx context.Context, id string, src *clienthints.Source, reuseCtxInfo bool) (*Session, bool, error) {
	if id == "" {
		return nil, false, ErrEmptySessionID
	}

	r.mu.RLock()
	closed := r.closed
	r.mu.RUnlock()
	if closed {
		return nil, false, ErrRegistryClosed
	}

	if s, ok := r.Get(id); ok {
		r.touch(id, s)
		return s, false, nil
	}

	type result struct {
		s        *Session
		detected bool
	}
	v, err, _ := r.group.Do(id, func() (any, error) {
		if s, ok := r.Get(id); ok {
			return result{s: s}, nil
		}

		info, restored := r.restore(ctx, id)
		if !restored {
			info = r.detect(ctx, src, reuseCtxInfo)
		}

		s := newSession(id, src, info, r.opts, r.persist)
		r.put(id, s)
		return result{s: s, detected: !restored}, nil
	})
	if err != nil {
		return nil, false, err
	}
	res := v.(result)
	return res.s, res.detected, nil
}

func (r *Registry) put(id string, s *Session) {
	if prev, existed := r.sessions.Put(id, s); existed && prev != s {
		prev.Close()
	}

	r.mu.RLock()
	closed := r.closed
	r.mu.RUnlock()
	if closed {
		r.sessions.Remove(id)
	}
}

func (r *Registry) touch(id string, s *Session) {
	r.sessions.Put(id, s)
}

func (r *Registry) detect(ctx context.Context, src *clienthints.Source, reuseCtxInfo bool) device.Info {
	if reuseCtxInfo {
		if info, ok := clienthints.InfoFromContext(ctx); ok {
			return info
		}
	}
	return device.Detect(ctx, src, r.opts.detect...)
}

func (r *Registry) restore(ctx context.Context, id string) (device.Info, bool) {
	if r.opts.store == nil {
		return device.Info{}, false
	}
	snap, err := r.opts.store.Load(ctx, id)
	if err != nil {
		if !errors.Is(err, snapshot.ErrNotFound) {
			r.opts.logger.WarnContext(ctx, "snapshot restore failed",
				logger.SessionID(id), logger.Error(err))
		}
		return device.Info{}, false
	}
	return snap.Info, true
}

func (r *Registry) persist(s Snapshot) {
	if r.opts.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), r.opts.persistLimit)
	defer cancel()
	if err := r.opts.store.Save(ctx, s.ID, s.Snapshot); err != nil {
		r.opts.logger.Warn("snapshot save failed", logger.SessionID(s.ID), logger.Error(err))
	}
}
