package optimize

import (
	"sync"
	"time"
)

// Debounce returns a function that calls fn once calls stop arriving for
// delay, with the argument of the last call. A zero delay uses the manager's
// current debounce setting. Pending calls are dropped by Cleanup.
func Debounce[A any](m *Manager, fn func(A), delay time.Duration) func(A) {
	if delay <= 0 {
		delay = m.Config().Performance.Debounce
	}

	var (
		mu      sync.Mutex
		pending *timerEntry
	)
	return func(arg A) {
		mu.Lock()
		defer mu.Unlock()

		m.stopTimer(pending)
		pending = m.afterFunc(delay, func() { fn(arg) })
	}
}

// Throttle returns a function that calls fn immediately and then ignores
// calls for delay. A zero delay uses the manager's current throttle setting.
// After Cleanup a throttled function stays closed once it has fired.
func Throttle[A any](m *Manager, fn func(A), delay time.Duration) func(A) {
	if delay <= 0 {
		delay = m.Config().Performance.Throttle
	}

	var (
		mu      sync.Mutex
		blocked bool
	)
	return func(arg A) {
		mu.Lock()
		if blocked {
			mu.Unlock()
			return
		}
		blocked = true
		mu.Unlock()

		fn(arg)

		m.afterFunc(delay, func() {
			mu.Lock()
			blocked = false
			mu.Unlock()
		})
	}
}
