package telemetry_test

import (
	"net/http"
	"sync"
	"time"

	"github.com/dmitrymomot/adaptive/pkg/clienthints"
	"github.com/dmitrymomot/adaptive/pkg/device"
)

const (
	pixelUA   = "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36"
	desktopUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

func ptr[T any](v T) *T { return &v }

func lowEndSource() *clienthints.Source {
	h := http.Header{}
	h.Set("User-Agent", pixelUA)
	h.Set(clienthints.HeaderDeviceMemory, "2")
	h.Set(clienthints.HeaderECT, "4g")
	return clienthints.NewSource(h, clienthints.Report{})
}

func highEndReport() clienthints.Report {
	return clienthints.Report{
		DeviceMemory:        ptr(16.0),
		HardwareConcurrency: ptr(8),
		Connection:          &device.Connection{EffectiveType: device.Connection4G, DownlinkMbps: 10, RTTMs: 50},
	}
}

func highEndSource() *clienthints.Source {
	h := http.Header{}
	h.Set("User-Agent", desktopUA)
	return clienthints.NewSource(h, highEndReport())
}

func highEndInfo() device.Info {
	return device.Info{
		Type: device.TypeDesktop,
		OS:   device.OSWindows,
		Performance: device.Performance{
			MemoryGB:   16,
			Cores:      8,
			Connection: device.Connection{EffectiveType: device.Connection4G},
		},
	}
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}
