package optimize_test

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/adaptive/pkg/device"
	"github.com/dmitrymomot/adaptive/pkg/dom"
)

func lowEnd() *device.Info {
	return &device.Info{Performance: device.Performance{
		MemoryGB:   2,
		Cores:      2,
		Connection: device.Connection{EffectiveType: device.Connection4G},
	}}
}

func midRange() *device.Info {
	return &device.Info{Performance: device.Performance{
		MemoryGB:   4,
		Cores:      4,
		Connection: device.Connection{EffectiveType: device.Connection4G},
	}}
}

func highEnd() *device.Info {
	return &device.Info{Performance: device.Performance{
		MemoryGB:   16,
		Cores:      8,
		Connection: device.Connection{EffectiveType: device.Connection4G},
	}}
}

type countingFactory struct {
	mu    sync.Mutex
	calls int
	opts  []dom.ObserverOptions
}

func (f *countingFactory) New(cb dom.ObserverCallback, opts dom.ObserverOptions) dom.Observer {
	f.mu.Lock()
	f.calls++
	f.opts = append(f.opts, opts)
	f.mu.Unlock()
	return dom.NativeLazyObserver(cb, opts)
}

func (f *countingFactory) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

const page = `<!DOCTYPE html><html><head></head><body>` +
	`<img data-src="/hero.jpg" alt="hero">` +
	`<div data-background="/bg.jpg"></div>` +
	`<img src="/static.png">` +
	`</body></html>`

func parse(t *testing.T) *dom.HTMLDocument {
	t.Helper()
	doc, err := dom.Parse(strings.NewReader(page))
	require.NoError(t, err)
	return doc
}
