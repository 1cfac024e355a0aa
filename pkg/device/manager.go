package device

import (
	"context"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/adaptive/pkg/logger"
)

// Listener receives device snapshots.
type Listener func(Info)

type listenerEntry struct {
	fn  Listener
	mu  sync.Mutex
	seq uint64 // last delivered snapshot
}

// Manager detects the device once at construction, caches the snapshot and
// republishes it to listeners on every re-detection.
// All methods are safe for concurrent use.
type Manager struct {
	src  Source
	opts *options

	mu        sync.RWMutex
	info      *Info
	seq       uint64
	listeners map[uint64]*listenerEntry
	nextID    uint64

	detectMu  sync.Mutex
	ready     chan struct{}
	readyOnce sync.Once
}

// NewManager starts detection in the background and returns immediately.
// Consumers either register a listener or call Wait.
func NewManager(ctx context.Context, src Source, opts ...Option) *Manager {
	m := &Manager{
		src:       src,
		opts:      applyOptions(opts),
		listeners: make(map[uint64]*listenerEntry),
		ready:     make(chan struct{}),
	}

	go func() {
		if _, err := m.Redetect(ctx); err != nil {
			m.opts.logger.WarnContext(ctx, "initial device detection skipped", logger.Error(err))
		}
	}()

	return m
}

// NewManagerWithInfo returns a manager seeded with a known snapshot, e.g. one
// restored from storage. No detection is started.
func NewManagerWithInfo(info Info, src Source, opts ...Option) *Manager {
	m := &Manager{
		src:       src,
		opts:      applyOptions(opts),
		listeners: make(map[uint64]*listenerEntry),
		ready:     make(chan struct{}),
	}
	m.publish(info)
	return m
}

// Redetect runs detection again and notifies every listener. Without a
// source the first call publishes the fallback snapshot, and later calls keep
// the current snapshot and return ErrNilSource.
func (m *Manager) Redetect(ctx context.Context) (Info, error) {
	m.detectMu.Lock()
	defer m.detectMu.Unlock()

	if m.src == nil {
		if current, ok := m.DeviceInfo(); ok {
			return current, ErrNilSource
		}
	}

	info := detect(ctx, m.src, m.opts)
	m.publish(info)
	return info, nil
}

// Replace swaps the source used by later detections.
func (m *Manager) Replace(src Source) {
	m.detectMu.Lock()
	m.src = src
	m.detectMu.Unlock()
}

func (m *Manager) publish(info Info) {
	m.mu.Lock()
	m.seq++
	seq := m.seq
	m.info = &info
	entries := make([]*listenerEntry, 0, len(m.listeners))
	for _, e := range m.listeners {
		entries = append(entries, e)
	}
	m.mu.Unlock()

	m.readyOnce.Do(func() { close(m.ready) })

	for _, e := range entries {
		m.deliver(e, info, seq)
	}
}

// deliver calls the listener unless it already saw this or a newer snapshot.
// A panicking listener is logged and does not affect the others.
func (m *Manager) deliver(e *listenerEntry, info Info, seq uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if seq <= e.seq {
		return
	}
	e.seq = seq

	defer func() {
		if r := recover(); r != nil {
			m.opts.logger.Error("device listener panicked", slog.Any("panic", r))
		}
	}()
	e.fn(info)
}

// AddListener registers fn. If a snapshot already exists fn is called with it
// right away. The returned function unsubscribes and is safe to call repeatedly.
func (m *Manager) AddListener(fn Listener) func() {
	if fn == nil {
		return func() {}
	}

	e := &listenerEntry{fn: fn}

	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = e
	var current *Info
	if m.info != nil {
		snapshot := *m.info
		current = &snapshot
	}
	seq := m.seq
	m.mu.Unlock()

	if current != nil {
		m.deliver(e, *current, seq)
	}

	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

// DeviceInfo returns the cached snapshot and whether one exists yet.
func (m *Manager) DeviceInfo() (Info, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.info == nil {
		return Info{}, false
	}
	return *m.info, true
}

// Wait blocks until the first snapshot exists or ctx is done.
func (m *Manager) Wait(ctx context.Context) (Info, error) {
	select {
	case <-m.ready:
		info, _ := m.DeviceInfo()
		return info, nil
	case <-ctx.Done():
		return Info{}, ctx.Err()
	}
}

// SupportsFeature reports a detected capability; false before the first snapshot.
func (m *Manager) SupportsFeature(c Capability) bool {
	info, ok := m.DeviceInfo()
	return ok && info.Supports(c)
}

// Category returns the device tier, mid-range before the first snapshot.
func (m *Manager) Category() Tier {
	info, ok := m.DeviceInfo()
	if !ok {
		return TierMidRange
	}
	return ClassifyTier(info.Performance)
}

// IsLowEnd agrees with Category by construction.
func (m *Manager) IsLowEnd() bool { return m.Category() == TierLowEnd }

// IsHighEnd agrees with Category by construction.
func (m *Manager) IsHighEnd() bool { return m.Category() == TierHighEnd }
