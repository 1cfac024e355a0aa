package telemetry

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrymomot/adaptive/pkg/clienthints"
	"github.com/dmitrymomot/adaptive/pkg/device"
	"github.com/dmitrymomot/adaptive/pkg/logger"
	"github.com/dmitrymomot/adaptive/pkg/optimize"
	"github.com/dmitrymomot/adaptive/pkg/snapshot"
)

// Session is the server-side state of one client: its device manager, the
// optimization manager derived from the latest detection and the sample
// channels feeding that manager's monitors.
//
// A re-detection replaces the optimization manager. Subscribers of the old
// manager see their channel closed and should resubscribe via Optimizer.
type Session struct {
	id       string
	opts     *options
	log      *slog.Logger
	detector *device.Manager
	persist  func(Snapshot)

	frames chan time.Time
	conn   chan device.Connection
	memory atomic.Pointer[optimize.MemorySample]

	mu        sync.Mutex
	source    *clienthints.Source
	optimizer *optimize.Manager
	closed    bool
	unlisten  func()
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// Snapshot is what a session persists: its id plus the stored snapshot.
type Snapshot struct {
	ID string
	snapshot.Snapshot
}

func newSession(id string, src *clienthints.Source, info device.Info, opts *options, persist func(Snapshot)) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		id:      id,
		opts:    opts,
		log:     opts.logger.With(logger.SessionID(id)),
		persist: persist,
		frames:  make(chan time.Time, opts.frameBuffer),
		conn:    make(chan device.Connection, 1),
		source:  src,
		ctx:     ctx,
		cancel:  cancel,
	}

	detectOpts := append([]device.Option{device.WithLogger(s.log)}, opts.detect...)
	s.detector = device.NewManagerWithInfo(info, src, detectOpts...)
	// The listener runs synchronously here with the seeded snapshot, so the
	// optimizer exists before newSession returns.
	s.unlisten = s.detector.AddListener(s.onDetect)
	return s
}

func (s *Session) ID() string { return s.id }

// Info returns the latest detected device.
func (s *Session) Info() device.Info {
	info, _ := s.detector.DeviceInfo()
	return info
}

// Tier returns the latest device tier.
func (s *Session) Tier() device.Tier { return s.detector.Category() }

// Optimizer returns the current optimization manager.
func (s *Session) Optimizer() *optimize.Manager {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.optimizer
}

// Config returns the current optimization config.
func (s *Session) Config() optimize.Config {
	return s.Optimizer().Config()
}

// Source returns the merged client hints source.
func (s *Session) Source() *clienthints.Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

// Closed reports whether Close has been called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Redetect merges rep into the session source and runs detection again.
// The optimization manager is rebuilt from the new snapshot.
func (s *Session) Redetect(ctx context.Context, rep clienthints.Report) (device.Info, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return device.Info{}, ErrSessionClosed
	}
	s.source = s.source.WithReport(rep)
	src := s.source
	s.mu.Unlock()

	s.detector.Replace(src)
	return s.detector.Redetect(ctx)
}

// Record forwards samples to the monitors of the current optimizer and
// returns how many frame timestamps were queued. Frames beyond the buffer are
// dropped. A connection sample also becomes part of the session source.
func (s *Session) Record(smp Samples) int {
	if s.Closed() {
		return 0
	}

	queued := 0
	for _, ms := range smp.Frames {
		select {
		case s.frames <- frameTime(ms):
			queued++
		default:
		}
	}

	if smp.Memory != nil {
		m := *smp.Memory
		s.memory.Store(&m)
	}

	if smp.Connection != nil {
		conn := *smp.Connection
		s.mu.Lock()
		s.source = s.source.WithConnection(conn)
		s.mu.Unlock()

		// Keep only the latest connection when the monitor lags.
		for {
			select {
			case s.conn <- conn:
				return queued
			default:
			}
			select {
			case <-s.conn:
			default:
			}
		}
	}

	return queued
}

// Close stops the monitors, cleans up the optimizer and persists the final
// snapshot. It is idempotent.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.unlisten()

		s.mu.Lock()
		s.closed = true
		opt := s.optimizer
		s.mu.Unlock()

		s.cancel()
		cfg := opt.Config()
		opt.Cleanup()

		s.save(s.Info(), cfg)
		s.log.Debug("session closed")
	})
}

func (s *Session) onDetect(info device.Info) {
	optOpts := append([]optimize.Option{optimize.WithLogger(s.log)}, s.opts.optimize...)
	next := optimize.NewManager(&info, optOpts...)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		next.Cleanup()
		return
	}
	prev := s.optimizer
	s.optimizer = next
	s.mu.Unlock()

	if prev != nil {
		prev.Cleanup()
	}

	err := next.SetupPerformanceMonitoring(s.ctx, nil, optimize.Monitors{
		Frames:     s.frames,
		Memory:     s.sampleMemory,
		Connection: s.conn,
	})
	if err != nil {
		s.log.Warn("performance monitoring not started", logger.Error(err))
	}

	s.log.Info("device detected",
		logger.Tier(string(info.Tier())),
		logger.Device(info.ShortIdentifier()),
	)
	s.save(info, next.Config())
}

func (s *Session) sampleMemory() (optimize.MemorySample, bool) {
	m := s.memory.Load()
	if m == nil {
		return optimize.MemorySample{}, false
	}
	return *m, true
}

func (s *Session) save(info device.Info, cfg optimize.Config) {
	if s.persist == nil {
		return
	}
	snap := snapshot.New(info, cfg)
	s.persist(Snapshot{ID: s.id, Snapshot: snap})
}
