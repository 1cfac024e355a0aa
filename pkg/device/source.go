package device

import "context"

// Capability names a probed runtime feature.
type Capability string

const (
	CapabilityTouch         Capability = "touch"
	CapabilityWebGL         Capability = "webgl"
	CapabilityWebGL2        Capability = "webgl2"
	CapabilityWebAssembly   Capability = "webassembly"
	CapabilityServiceWorker Capability = "service-worker"
	CapabilityPush          Capability = "push"
	CapabilityGeolocation   Capability = "geolocation"
	CapabilityCamera        Capability = "camera"
	CapabilityMicrophone    Capability = "microphone"
	CapabilityFullscreen    Capability = "fullscreen"
	CapabilityOrientation   Capability = "orientation"
	CapabilityVibration     Capability = "vibration"
	CapabilityBluetooth     Capability = "bluetooth"
	CapabilityUSB           Capability = "usb"
	CapabilityNFC           Capability = "nfc"
)

// AllCapabilities lists every capability in probe order.
var AllCapabilities = []Capability{
	CapabilityTouch,
	CapabilityWebGL,
	CapabilityWebGL2,
	CapabilityWebAssembly,
	CapabilityServiceWorker,
	CapabilityPush,
	CapabilityGeolocation,
	CapabilityCamera,
	CapabilityMicrophone,
	CapabilityFullscreen,
	CapabilityOrientation,
	CapabilityVibration,
	CapabilityBluetooth,
	CapabilityUSB,
	CapabilityNFC,
}

// Side of the viewport used for safe-area insets.
type Side string

const (
	SideTop    Side = "top"
	SideRight  Side = "right"
	SideBottom Side = "bottom"
	SideLeft   Side = "left"
)

// Source exposes the runtime signals detection reads from.
// Methods reporting ok=false or returning an error mean the signal is
// unavailable; detection then falls back to documented defaults.
// Implementations may panic on broken host bridges, detection recovers.
type Source interface {
	UserAgent() string
	MaxTouchPoints() int
	Viewport() (width, height int)
	PixelRatio() (float64, bool)
	ColorDepth() (int, bool)
	SafeAreaInset(side Side) (float64, bool)

	DeviceMemory() (float64, bool)
	HardwareConcurrency() (int, bool)
	Connection() (Connection, bool)
	Battery(ctx context.Context) (Battery, error)

	// HasFeature probes a runtime API. Camera and microphone are probed through MediaDevices.
	HasFeature(ctx context.Context, c Capability) (bool, error)
	// MediaDevices returns nil when getUserMedia is not available.
	MediaDevices() MediaDevices
}

// MediaKind selects the capture device requested from MediaDevices.
type MediaKind string

const (
	MediaVideo MediaKind = "video"
	MediaAudio MediaKind = "audio"
)

// MediaDevices mirrors navigator.mediaDevices.
type MediaDevices interface {
	GetUserMedia(ctx context.Context, kind MediaKind) (MediaStream, error)
}

// MediaStream is an acquired capture session.
type MediaStream interface {
	Tracks() []Track
}

// Track is a single capture track. Stop releases the device.
type Track interface {
	Stop()
}
