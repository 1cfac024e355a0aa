package optimize

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/adaptive/pkg/device"
	"github.com/dmitrymomot/adaptive/pkg/dom"
)

// Runtime classes and properties set by the monitors.
const (
	ClassReducedMotion   = "reduced-motion"
	ClassReducedFeatures = "reduced-features"
	ClassDataSaver       = "data-saver"

	PropAnimationDuration = "--animation-duration"
)

// Degradation thresholds.
const (
	fpsDegradeRatio      = 0.8
	memoryPressureRatio  = 0.8
	reducedAnimationTime = 100 * time.Millisecond
)

// MemorySample mirrors performance.memory.
type MemorySample struct {
	UsedBytes  uint64 `json:"used_bytes"`
	LimitBytes uint64 `json:"limit_bytes"`
}

// Ratio is used/limit, or 0 when the limit is unknown.
func (s MemorySample) Ratio() float64 {
	if s.LimitBytes == 0 {
		return 0
	}
	return float64(s.UsedBytes) / float64(s.LimitBytes)
}

// MemorySampler returns the latest memory reading, or false when none is available.
type MemorySampler func() (MemorySample, bool)

// Monitors are the event sources behind SetupPerformanceMonitoring.
// Nil sources are skipped.
type Monitors struct {
	// Frames delivers one timestamp per rendered frame.
	Frames <-chan time.Time
	// Memory is polled on the memory interval.
	Memory MemorySampler
	// Connection delivers network changes.
	Connection <-chan device.Connection
}

// SetupPerformanceMonitoring starts one goroutine per non-nil monitor. The
// monitors run until ctx is done, their source closes or Cleanup is called.
//
// Frame-rate and memory degradation is one-way: once applied it is never
// reverted within the manager lifetime. Connection changes are applied in
// both directions from the derived config.
//
// doc may be nil, in which case only the config is adjusted.
func (m *Manager) SetupPerformanceMonitoring(ctx context.Context, doc dom.Document, mon Monitors) error {
	type monitor func(context.Context, dom.Document)

	var run []monitor
	if mon.Frames != nil {
		run = append(run, func(ctx context.Context, doc dom.Document) { m.watchFrames(ctx, doc, mon.Frames) })
	}
	if mon.Memory != nil {
		run = append(run, func(ctx context.Context, doc dom.Document) { m.watchMemory(ctx, doc, mon.Memory) })
	}
	if mon.Connection != nil {
		run = append(run, func(ctx context.Context, doc dom.Document) { m.watchConnection(ctx, doc, mon.Connection) })
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}

	for _, fn := range run {
		mctx, cancel := context.WithCancel(ctx)
		m.monitors = append(m.monitors, cancel)
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			defer cancel()
			fn(mctx, doc)
		}()
	}
	return nil
}

func (m *Manager) watchFrames(ctx context.Context, doc dom.Document, ticks <-chan time.Time) {
	var (
		start  time.Time
		frames int
	)
	for {
		select {
		case <-ctx.Done():
			return
		case ts, ok := <-ticks:
			if !ok {
				return
			}
			if start.IsZero() {
				start = ts
				continue
			}
			frames++

			elapsed := ts.Sub(start)
			if elapsed < m.opts.fpsWindow {
				continue
			}
			fps := float64(frames) * float64(time.Second) / float64(elapsed)
			target := float64(m.Config().Animations.FPS)
			if fps < target*fpsDegradeRatio {
				m.reduceAnimations(ctx, doc, fps)
				return
			}
			start, frames = ts, 0
		}
	}
}

func (m *Manager) reduceAnimations(ctx context.Context, doc dom.Document, fps float64) {
	m.UpdateConfig(func(c *Config) {
		c.Animations.Reduced = true
		c.Animations.Duration = reducedAnimationTime
	})
	m.mutate(doc, func(root dom.Element) {
		root.SetStyleProperty(PropAnimationDuration, reducedAnimationTime.String())
		root.AddClass(ClassReducedMotion)
	})
	m.opts.logger.InfoContext(ctx, "frame rate below target, animations reduced", slog.Float64("fps", fps))
}

func (m *Manager) watchMemory(ctx context.Context, doc dom.Document, sample MemorySampler) {
	ticker := time.NewTicker(m.opts.memoryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s, ok := sample()
			if !ok || s.Ratio() <= memoryPressureRatio {
				continue
			}
			m.reduceFeatures(ctx, doc, s)
			return
		}
	}
}

func (m *Manager) reduceFeatures(ctx context.Context, doc dom.Document, s MemorySample) {
	m.UpdateConfig(func(c *Config) {
		c.Features.Shadows = false
		c.Features.Filters = false
		c.Features.Backdrop = false
	})
	m.mutate(doc, func(root dom.Element) {
		root.AddClass(ClassReducedFeatures)
	})
	m.opts.logger.InfoContext(ctx, "memory pressure, features reduced", slog.Float64("ratio", s.Ratio()))
}

func (m *Manager) watchConnection(ctx context.Context, doc dom.Document, changes <-chan device.Connection) {
	var (
		last device.Connection
		seen bool
	)
	for {
		select {
		case <-ctx.Done():
			return
		case conn, ok := <-changes:
			if !ok {
				return
			}
			if seen && conn.EffectiveType == last.EffectiveType && conn.SaveData == last.SaveData {
				continue
			}
			last, seen = conn, true
			m.ApplyConnection(ctx, doc, conn)
		}
	}
}

// ApplyConnection recomputes the network-dependent fields (image quality,
// lazy images, preload and prefetch) from the derived config and toggles the
// data-saver class.
func (m *Manager) ApplyConnection(ctx context.Context, doc dom.Document, conn device.Connection) {
	images, network := networkOverrides(m.base, conn)
	m.UpdateConfig(func(c *Config) {
		c.Images.Quality = images.Quality
		c.Images.Lazy = images.Lazy
		c.Network.Preload = network.Preload
		c.Network.Prefetch = network.Prefetch
	})

	saver := conn.IsSlow() || conn.SaveData
	m.mutate(doc, func(root dom.Element) {
		if saver {
			root.AddClass(ClassDataSaver)
		} else {
			root.RemoveClass(ClassDataSaver)
		}
	})
	m.opts.logger.DebugContext(ctx, "connection changed",
		slog.String("effective_type", conn.EffectiveType),
		slog.Bool("save_data", conn.SaveData),
	)
}

func networkOverrides(base Config, conn device.Connection) (Images, Network) {
	images, network := base.Images, base.Network
	switch {
	case conn.IsSlow() || conn.SaveData:
		images.Quality = min(images.Quality, 50)
		images.Lazy = true
		network.Preload = false
		network.Prefetch = false
	case conn.EffectiveType == device.Connection3G:
		images.Quality = min(images.Quality, 70)
		network.Prefetch = false
	}
	return images, network
}
