package device_test

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/dmitrymomot/adaptive/pkg/device"
)

// fakeSource is a configurable Source. Nil pointers mean "API absent".
type fakeSource struct {
	ua          string
	touch       int
	width       int
	height      int
	pixelRatio  *float64
	colorDepth  *int
	insets      map[device.Side]float64
	memory      *float64
	cores       *int
	conn        *device.Connection
	battery     *device.Battery
	batteryErr  error
	batteryGate chan struct{}
	features    map[device.Capability]bool
	featureErr  map[device.Capability]error
	panicOn     map[string]bool
	media       device.MediaDevices
}

func (f *fakeSource) maybePanic(name string) {
	if f.panicOn[name] {
		panic("broken " + name)
	}
}

func (f *fakeSource) UserAgent() string   { f.maybePanic("ua"); return f.ua }
func (f *fakeSource) MaxTouchPoints() int { f.maybePanic("touch"); return f.touch }
func (f *fakeSource) Viewport() (int, int) {
	f.maybePanic("viewport")
	return f.width, f.height
}

func (f *fakeSource) PixelRatio() (float64, bool) {
	if f.pixelRatio == nil {
		return 0, false
	}
	return *f.pixelRatio, true
}

func (f *fakeSource) ColorDepth() (int, bool) {
	if f.colorDepth == nil {
		return 0, false
	}
	return *f.colorDepth, true
}

func (f *fakeSource) SafeAreaInset(side device.Side) (float64, bool) {
	v, ok := f.insets[side]
	return v, ok
}

func (f *fakeSource) DeviceMemory() (float64, bool) {
	f.maybePanic("memory")
	if f.memory == nil {
		return 0, false
	}
	return *f.memory, true
}

func (f *fakeSource) HardwareConcurrency() (int, bool) {
	if f.cores == nil {
		return 0, false
	}
	return *f.cores, true
}

func (f *fakeSource) Connection() (device.Connection, bool) {
	f.maybePanic("connection")
	if f.conn == nil {
		return device.Connection{}, false
	}
	return *f.conn, true
}

func (f *fakeSource) Battery(ctx context.Context) (device.Battery, error) {
	if f.batteryGate != nil {
		select {
		case <-f.batteryGate:
		case <-ctx.Done():
			return device.Battery{}, ctx.Err()
		}
	}
	if f.batteryErr != nil {
		return device.Battery{}, f.batteryErr
	}
	if f.battery == nil {
		return device.Battery{}, device.ErrUnsupported
	}
	return *f.battery, nil
}

func (f *fakeSource) HasFeature(_ context.Context, c device.Capability) (bool, error) {
	f.maybePanic(string(c))
	if err := f.featureErr[c]; err != nil {
		return false, err
	}
	return f.features[c], nil
}

func (f *fakeSource) MediaDevices() device.MediaDevices { return f.media }

type fakeTrack struct{ stopped atomic.Bool }

func (t *fakeTrack) Stop() { t.stopped.Store(true) }

type fakeStream struct{ tracks []device.Track }

func (s fakeStream) Tracks() []device.Track { return s.tracks }

// fakeMedia grants streams, optionally after a delay gate, and records tracks.
type fakeMedia struct {
	mu     sync.Mutex
	tracks []*fakeTrack
	deny   map[device.MediaKind]error
	gate   chan struct{}
}

func (m *fakeMedia) GetUserMedia(_ context.Context, kind device.MediaKind) (device.MediaStream, error) {
	if m.gate != nil {
		<-m.gate
	}
	if err := m.deny[kind]; err != nil {
		return nil, err
	}
	tr := &fakeTrack{}
	m.mu.Lock()
	m.tracks = append(m.tracks, tr)
	m.mu.Unlock()
	return fakeStream{tracks: []device.Track{tr}}, nil
}

func (m *fakeMedia) allStopped() (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, tr := range m.tracks {
		if !tr.stopped.Load() {
			return len(m.tracks), false
		}
	}
	return len(m.tracks), true
}

func ptr[T any](v T) *T { return &v }
