package optimize_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/adaptive/pkg/optimize"
)

func TestDebounce(t *testing.T) {
	t.Parallel()

	m := optimize.NewManager(nil)
	defer m.Cleanup()

	var (
		mu    sync.Mutex
		calls []int
	)
	debounced := optimize.Debounce(m, func(v int) {
		mu.Lock()
		calls = append(calls, v)
		mu.Unlock()
	}, 100*time.Millisecond)

	for i := 1; i <= 5; i++ {
		debounced(i)
		time.Sleep(50 * time.Millisecond)
	}
	time.Sleep(200 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{5}, calls)
	assert.Zero(t, m.ActiveTimers())
}

func TestDebounceDefaultsToConfig(t *testing.T) {
	t.Parallel()

	m := optimize.NewManager(nil)
	defer m.Cleanup()
	m.UpdateConfig(func(c *optimize.Config) { c.Performance.Debounce = 20 * time.Millisecond })

	var n atomic.Int32
	debounced := optimize.Debounce(m, func(struct{}) { n.Add(1) }, 0)
	debounced(struct{}{})

	assert.Eventually(t, func() bool { return n.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestThrottle(t *testing.T) {
	t.Parallel()

	m := optimize.NewManager(nil)
	defer m.Cleanup()

	var n atomic.Int32
	throttled := optimize.Throttle(m, func(int) { n.Add(1) }, 100*time.Millisecond)

	deadline := time.Now().Add(500 * time.Millisecond)
	for i := 0; time.Now().Before(deadline); i++ {
		throttled(i)
		time.Sleep(10 * time.Millisecond)
	}

	got := n.Load()
	assert.GreaterOrEqual(t, got, int32(1))
	assert.LessOrEqual(t, got, int32(6))
}

func TestThrottleIsLeading(t *testing.T) {
	t.Parallel()

	m := optimize.NewManager(nil)
	defer m.Cleanup()

	var first atomic.Int32
	throttled := optimize.Throttle(m, func(v int32) { first.CompareAndSwap(0, v) }, time.Hour)
	throttled(7)
	throttled(8)

	assert.Equal(t, int32(7), first.Load())
}
