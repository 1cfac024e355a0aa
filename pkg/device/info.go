package device

import "time"

// Type is the form factor of a device.
type Type string

const (
	TypeMobile  Type = "mobile"
	TypeTablet  Type = "tablet"
	TypeDesktop Type = "desktop"
)

// OS identifies an operating system family.
type OS string

const (
	OSWindows OS = "windows"
	OSMacOS   OS = "macos"
	OSiOS     OS = "ios"
	OSAndroid OS = "android"
	OSLinux   OS = "linux"
	OSUnknown OS = "unknown"
)

// Browser identifies a browser family.
type Browser string

const (
	BrowserEdge    Browser = "edge"
	BrowserOpera   Browser = "opera"
	BrowserSamsung Browser = "samsung"
	BrowserChrome  Browser = "chrome"
	BrowserFirefox Browser = "firefox"
	BrowserSafari  Browser = "safari"
	BrowserUnknown Browser = "unknown"
)

// Orientation of the display, derived from its geometry.
type Orientation string

const (
	OrientationPortrait  Orientation = "portrait"
	OrientationLandscape Orientation = "landscape"
)

// Effective connection types reported by the Network Information API and the ECT client hint.
const (
	ConnectionSlow2G = "slow-2g"
	Connection2G     = "2g"
	Connection3G     = "3g"
	Connection4G     = "4g"
)

// Fallback values used when the runtime does not expose a signal.
const (
	DefaultMemoryGB      = 4
	DefaultCores         = 4
	DefaultEffectiveType = Connection4G
	DefaultDownlinkMbps  = 10
	DefaultRTTMs         = 100
	DefaultBatteryLevel  = 1
	DefaultPixelRatio    = 1
	DefaultColorDepth    = 24
)

// Capabilities is the set of independently probed feature flags.
type Capabilities struct {
	Touch         bool `json:"touch"`
	WebGL         bool `json:"webgl"`
	WebGL2        bool `json:"webgl2"`
	WebAssembly   bool `json:"webassembly"`
	ServiceWorker bool `json:"service_worker"`
	Push          bool `json:"push"`
	Geolocation   bool `json:"geolocation"`
	Camera        bool `json:"camera"`
	Microphone    bool `json:"microphone"`
	Fullscreen    bool `json:"fullscreen"`
	Orientation   bool `json:"orientation"`
	Vibration     bool `json:"vibration"`
	Bluetooth     bool `json:"bluetooth"`
	USB           bool `json:"usb"`
	NFC           bool `json:"nfc"`
}

// Connection mirrors the Network Information API.
type Connection struct {
	EffectiveType string  `json:"effective_type"`
	DownlinkMbps  float64 `json:"downlink_mbps"`
	RTTMs         int     `json:"rtt_ms"`
	SaveData      bool    `json:"save_data"`
}

// IsSlow reports whether the effective type is 2g or slower.
func (c Connection) IsSlow() bool {
	return c.EffectiveType == ConnectionSlow2G || c.EffectiveType == Connection2G
}

// Battery mirrors the Battery Status API.
type Battery struct {
	Level    float64 `json:"level"`
	Charging bool    `json:"charging"`
}

// Performance groups the signals used for tiering.
type Performance struct {
	MemoryGB   float64    `json:"memory_gb"`
	Cores      int        `json:"cores"`
	Connection Connection `json:"connection"`
	Battery    Battery    `json:"battery"`
}

// SafeArea holds CSS env(safe-area-inset-*) values in CSS pixels.
type SafeArea struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// Display describes the viewport and screen.
type Display struct {
	Width       int         `json:"width"`
	Height      int         `json:"height"`
	PixelRatio  float64     `json:"pixel_ratio"`
	ColorDepth  int         `json:"color_depth"`
	Orientation Orientation `json:"orientation"`
	SafeArea    SafeArea    `json:"safe_area"`
}

// Info is an immutable device snapshot. A new value is produced on every detection.
type Info struct {
	Type           Type         `json:"type"`
	OS             OS           `json:"os"`
	Browser        Browser      `json:"browser"`
	BrowserVersion string       `json:"browser_version,omitempty"`
	Capabilities   Capabilities `json:"capabilities"`
	Performance    Performance  `json:"performance"`
	Display        Display      `json:"display"`
	DetectedAt     time.Time    `json:"detected_at"`
}

// Tier returns the device category of the snapshot.
func (i Info) Tier() Tier { return ClassifyTier(i.Performance) }

// Supports reports whether the capability was detected.
func (i Info) Supports(c Capability) bool {
	switch c {
	case CapabilityTouch:
		return i.Capabilities.Touch
	case CapabilityWebGL:
		return i.Capabilities.WebGL
	case CapabilityWebGL2:
		return i.Capabilities.WebGL2
	case CapabilityWebAssembly:
		return i.Capabilities.WebAssembly
	case CapabilityServiceWorker:
		return i.Capabilities.ServiceWorker
	case CapabilityPush:
		return i.Capabilities.Push
	case CapabilityGeolocation:
		return i.Capabilities.Geolocation
	case CapabilityCamera:
		return i.Capabilities.Camera
	case CapabilityMicrophone:
		return i.Capabilities.Microphone
	case CapabilityFullscreen:
		return i.Capabilities.Fullscreen
	case CapabilityOrientation:
		return i.Capabilities.Orientation
	case CapabilityVibration:
		return i.Capabilities.Vibration
	case CapabilityBluetooth:
		return i.Capabilities.Bluetooth
	case CapabilityUSB:
		return i.Capabilities.USB
	case CapabilityNFC:
		return i.Capabilities.NFC
	default:
		return false
	}
}
