package device_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/adaptive/pkg/device"
)

func TestManagerDefaultsBeforeDetection(t *testing.T) {
	t.Parallel()

	gate := make(chan struct{})
	defer close(gate)

	// Battery blocks detection until the gate opens.
	m := device.NewManager(context.Background(),
		&fakeSource{memory: ptr(16.0), cores: ptr(16), batteryGate: gate},
		device.WithProbeTimeout(time.Minute))

	_, ok := m.DeviceInfo()
	assert.False(t, ok)
	assert.Equal(t, device.TierMidRange, m.Category())
	assert.False(t, m.IsLowEnd())
	assert.False(t, m.IsHighEnd())
	assert.False(t, m.SupportsFeature(device.CapabilityTouch))
}

func TestManagerListenerBeforeAndAfterDetection(t *testing.T) {
	t.Parallel()

	gate := make(chan struct{})
	src := &fakeSource{ua: uaIPhone, touch: 5, memory: ptr(2.0), batteryGate: gate}
	m := device.NewManager(context.Background(), src, device.WithProbeTimeout(time.Minute))

	early := make(chan device.Info, 4)
	unsubscribe := m.AddListener(func(info device.Info) { early <- info })
	defer unsubscribe()

	close(gate)

	select {
	case info := <-early:
		assert.Equal(t, device.TypeMobile, info.Type)
	case <-time.After(time.Second):
		t.Fatal("early listener was not notified")
	}

	info, err := m.Wait(context.Background())
	require.NoError(t, err)
	assert.True(t, m.IsLowEnd())
	assert.Equal(t, device.TierLowEnd, info.Tier())

	// A late listener receives the cached snapshot synchronously.
	var late atomic.Int32
	m.AddListener(func(device.Info) { late.Add(1) })
	assert.Equal(t, int32(1), late.Load())
}

func TestManagerListenerPanicIsolated(t *testing.T) {
	t.Parallel()

	m := device.NewManager(context.Background(), &fakeSource{})
	_, err := m.Wait(context.Background())
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(2)
	var calls atomic.Int32

	m.AddListener(func(device.Info) { panic("bad subscriber") })
	m.AddListener(func(device.Info) { calls.Add(1); wg.Done() })
	m.AddListener(func(device.Info) { calls.Add(1); wg.Done() })

	assert.Equal(t, int32(2), calls.Load())

	wg.Add(2)
	_, err = m.Redetect(context.Background())
	require.NoError(t, err)
	wg.Wait()
	assert.Equal(t, int32(4), calls.Load())
}

func TestManagerUnsubscribe(t *testing.T) {
	t.Parallel()

	m := device.NewManagerWithInfo(device.Info{Type: device.TypeDesktop}, &fakeSource{})

	var calls atomic.Int32
	unsubscribe := m.AddListener(func(device.Info) { calls.Add(1) })
	assert.Equal(t, int32(1), calls.Load())

	unsubscribe()
	unsubscribe()

	_, err := m.Redetect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestManagerSeededAndNilSource(t *testing.T) {
	t.Parallel()

	seed := device.Info{
		Type:         device.TypeDesktop,
		Capabilities: device.Capabilities{WebGL: true},
		Performance: device.Performance{
			MemoryGB:   16,
			Cores:      12,
			Connection: device.Connection{EffectiveType: device.Connection4G},
		},
	}
	m := device.NewManagerWithInfo(seed, nil)

	assert.True(t, m.IsHighEnd())
	assert.Equal(t, device.TierHighEnd, m.Category())
	assert.True(t, m.SupportsFeature(device.CapabilityWebGL))
	assert.False(t, m.SupportsFeature(device.CapabilityNFC))

	_, err := m.Redetect(context.Background())
	assert.ErrorIs(t, err, device.ErrNilSource)
}

func TestManagerNilSourcePublishesFallback(t *testing.T) {
	t.Parallel()

	m := device.NewManager(context.Background(), nil)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	info, err := m.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, device.OSUnknown, info.OS)
	assert.Equal(t, device.BrowserUnknown, info.Browser)
	assert.Equal(t, device.TierMidRange, m.Category())

	fired := make(chan device.Info, 1)
	unsubscribe := m.AddListener(func(i device.Info) { fired <- i })
	defer unsubscribe()
	select {
	case got := <-fired:
		assert.Equal(t, info.OS, got.OS)
	case <-time.After(time.Second):
		t.Fatal("listener not called with the fallback snapshot")
	}
}

func TestManagerWaitCancelled(t *testing.T) {
	t.Parallel()

	gate := make(chan struct{})
	defer close(gate)
	m := device.NewManager(context.Background(), &fakeSource{batteryGate: gate}, device.WithProbeTimeout(time.Minute))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := m.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
