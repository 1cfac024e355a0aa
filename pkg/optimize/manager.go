package optimize

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrymomot/adaptive/pkg/broadcast"
	"github.com/dmitrymomot/adaptive/pkg/device"
	"github.com/dmitrymomot/adaptive/pkg/dom"
	"github.com/dmitrymomot/adaptive/pkg/logger"
)

type timerEntry struct {
	t *time.Timer
}

// Manager holds the optimization config for one device and the runtime
// machinery that adjusts it: lazy-loading observers, monitors and timers.
//
// Config reads are lock-free. Every update replaces the config wholesale, so
// readers never observe a partially applied change.
type Manager struct {
	opts *options
	info *device.Info
	base Config

	config  atomic.Pointer[Config]
	writeMu sync.Mutex
	updates *broadcast.MemoryBroadcaster[Config]

	// domMu serializes document mutations made by monitors and callers.
	domMu sync.Mutex

	mu        sync.Mutex
	closed    bool
	observers []dom.Observer
	timers    map[*timerEntry]struct{}
	monitors  []context.CancelFunc
	wg        sync.WaitGroup
}

// NewManager derives the config for info. A nil info yields the base config.
func NewManager(info *device.Info, opts ...Option) *Manager {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	m := &Manager{
		opts:    o,
		base:    Derive(o.base, info),
		updates: broadcast.NewMemoryBroadcaster[Config](1),
		timers:  make(map[*timerEntry]struct{}),
	}
	if info != nil {
		snapshot := *info
		m.info = &snapshot
	}

	cfg := m.base
	m.config.Store(&cfg)

	attrs := []any{logger.Component("optimize")}
	if info != nil {
		attrs = append(attrs, logger.Tier(string(info.Tier())))
	}
	m.opts.logger = m.opts.logger.With(attrs...)

	return m
}

// Config returns a copy of the current config.
func (m *Manager) Config() Config {
	return *m.config.Load()
}

// DeviceInfo returns the snapshot the manager was built for.
func (m *Manager) DeviceInfo() (device.Info, bool) {
	if m.info == nil {
		return device.Info{}, false
	}
	return *m.info, true
}

// UpdateConfig applies fn to a copy of the current config and publishes the
// result. Concurrent updates are serialized.
func (m *Manager) UpdateConfig(fn func(*Config)) Config {
	m.writeMu.Lock()
	next := *m.config.Load()
	fn(&next)
	m.config.Store(&next)
	m.writeMu.Unlock()

	_ = m.updates.Broadcast(context.Background(), broadcast.Message[Config]{Data: next})
	return next
}

// Subscribe streams every config published after the call. The subscriber
// keeps only the latest pending config if it falls behind.
func (m *Manager) Subscribe(ctx context.Context) broadcast.Subscriber[Config] {
	return m.updates.Subscribe(ctx)
}

// Cleanup disconnects observers, stops pending timers and monitors and closes
// config subscriptions. It is idempotent.
func (m *Manager) Cleanup() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true

	observers := m.observers
	m.observers = nil
	for e := range m.timers {
		e.t.Stop()
	}
	clear(m.timers)
	monitors := m.monitors
	m.monitors = nil
	m.mu.Unlock()

	for _, obs := range observers {
		obs.Disconnect()
	}
	for _, cancel := range monitors {
		cancel()
	}
	m.wg.Wait()
	_ = m.updates.Close()

	m.opts.logger.Debug("optimization manager cleaned up")
}

// ActiveObservers returns the number of observers not yet disconnected.
func (m *Manager) ActiveObservers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.observers)
}

// ActiveTimers returns the number of pending debounce and throttle timers.
func (m *Manager) ActiveTimers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

func (m *Manager) trackObserver(obs dom.Observer) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return false
	}
	m.observers = append(m.observers, obs)
	return true
}

// afterFunc schedules fn and tracks the timer until it fires or is stopped.
// It returns nil once the manager is cleaned up.
func (m *Manager) afterFunc(d time.Duration, fn func()) *timerEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}

	e := &timerEntry{}
	m.timers[e] = struct{}{}
	e.t = time.AfterFunc(d, func() {
		if m.untrackTimer(e) {
			fn()
		}
	})
	return e
}

func (m *Manager) untrackTimer(e *timerEntry) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.timers[e]; !ok {
		return false
	}
	delete(m.timers, e)
	return true
}

func (m *Manager) stopTimer(e *timerEntry) {
	if e == nil {
		return
	}
	if m.untrackTimer(e) {
		e.t.Stop()
	}
}

// mutate runs fn with exclusive access to the document. A nil document is skipped.
func (m *Manager) mutate(doc dom.Document, fn func(root dom.Element)) {
	if doc == nil {
		return
	}
	m.domMu.Lock()
	defer m.domMu.Unlock()
	fn(doc.Root())
}
