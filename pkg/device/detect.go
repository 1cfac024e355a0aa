package device

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/adaptive/pkg/async"
	"github.com/dmitrymomot/adaptive/pkg/logger"
)

// Detect builds a full snapshot from src. It never fails: every signal that
// cannot be read resolves to its documented default.
func Detect(ctx context.Context, src Source, opts ...Option) Info {
	return detect(ctx, src, applyOptions(opts))
}

func detect(ctx context.Context, src Source, o *options) Info {
	if src == nil {
		return fallbackInfo(o)
	}

	// Capabilities and battery can wait on permission prompts, run them alongside.
	capsFuture := async.Async(ctx, src, func(ctx context.Context, src Source) (Capabilities, error) {
		return detectCapabilities(ctx, src, o), nil
	})
	perf := detectPerformance(ctx, src, o)
	display := detectDisplay(src, o)

	caps, err := capsFuture.Await()
	if err != nil {
		o.logger.DebugContext(ctx, "capability detection aborted", logger.Error(err))
		caps = Capabilities{}
	}

	ua := safeValue(o, "user_agent", "", src.UserAgent)
	touch := safeValue(o, "max_touch_points", 0, src.MaxTouchPoints)
	browser, version := DetectBrowser(ua)

	return Info{
		Type:           DetectType(ua, touch, display.Width),
		OS:             DetectOS(ua),
		Browser:        browser,
		BrowserVersion: version,
		Capabilities:   caps,
		Performance:    perf,
		Display:        display,
		DetectedAt:     o.now(),
	}
}

// DetectCapabilities probes every capability independently.
func DetectCapabilities(ctx context.Context, src Source, opts ...Option) Capabilities {
	if src == nil {
		return Capabilities{}
	}
	return detectCapabilities(ctx, src, applyOptions(opts))
}

func detectCapabilities(ctx context.Context, src Source, o *options) Capabilities {
	futures := make([]*async.Future[bool], len(AllCapabilities))
	for i, c := range AllCapabilities {
		futures[i] = async.Async(ctx, c, func(ctx context.Context, c Capability) (bool, error) {
			return probe(ctx, src, c, o), nil
		})
	}

	got := make(map[Capability]bool, len(AllCapabilities))
	for i, f := range futures {
		ok, err := f.Await()
		got[AllCapabilities[i]] = err == nil && ok
	}

	return Capabilities{
		Touch:         got[CapabilityTouch],
		WebGL:         got[CapabilityWebGL],
		WebGL2:        got[CapabilityWebGL2],
		WebAssembly:   got[CapabilityWebAssembly],
		ServiceWorker: got[CapabilityServiceWorker],
		Push:          got[CapabilityPush],
		Geolocation:   got[CapabilityGeolocation],
		Camera:        got[CapabilityCamera],
		Microphone:    got[CapabilityMicrophone],
		Fullscreen:    got[CapabilityFullscreen],
		Orientation:   got[CapabilityOrientation],
		Vibration:     got[CapabilityVibration],
		Bluetooth:     got[CapabilityBluetooth],
		USB:           got[CapabilityUSB],
		NFC:           got[CapabilityNFC],
	}
}

// probe resolves a single capability; errors and panics yield false for this capability only.
func probe(ctx context.Context, src Source, c Capability, o *options) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.DebugContext(ctx, "capability probe panicked",
				slog.String("capability", string(c)),
				slog.Any("panic", r))
			ok = false
		}
	}()

	switch c {
	case CapabilityTouch:
		if src.MaxTouchPoints() > 0 {
			return true
		}
	case CapabilityCamera:
		return probeMedia(ctx, src.MediaDevices(), MediaVideo, o)
	case CapabilityMicrophone:
		return probeMedia(ctx, src.MediaDevices(), MediaAudio, o)
	}

	supported, err := src.HasFeature(ctx, c)
	if err != nil {
		o.logger.DebugContext(ctx, "capability unavailable",
			slog.String("capability", string(c)),
			logger.Error(err))
		return false
	}
	return supported
}

// probeMedia requests a capture stream and releases it right away. The wait
// is bounded by the probe timeout; a stream granted after the deadline is
// still stopped by the probing goroutine.
func probeMedia(ctx context.Context, media MediaDevices, kind MediaKind, o *options) bool {
	if media == nil {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, o.probeTimeout)
	defer cancel()

	f := async.Async(ctx, kind, func(ctx context.Context, kind MediaKind) (bool, error) {
		stream, err := media.GetUserMedia(ctx, kind)
		if err != nil {
			return false, err
		}
		stopTracks(stream)
		return true, nil
	})

	ok, err := f.AwaitWithTimeout(o.probeTimeout)
	if err != nil {
		if errors.Is(err, async.ErrTimeout) {
			err = ErrProbeTimeout
		}
		o.logger.DebugContext(ctx, "media probe failed",
			slog.String("kind", string(kind)),
			logger.Error(err))
		return false
	}
	return ok
}

func stopTracks(stream MediaStream) {
	if stream == nil {
		return
	}
	for _, t := range stream.Tracks() {
		if t != nil {
			t.Stop()
		}
	}
}

// DetectPerformance reads memory, cores, connection and battery with fallbacks.
func DetectPerformance(ctx context.Context, src Source, opts ...Option) Performance {
	if src == nil {
		return defaultPerformance()
	}
	return detectPerformance(ctx, src, applyOptions(opts))
}

func detectPerformance(ctx context.Context, src Source, o *options) Performance {
	p := defaultPerformance()

	if mem, ok := safeOptional(o, "device_memory", src.DeviceMemory); ok && mem > 0 {
		p.MemoryGB = mem
	}
	if cores, ok := safeOptional(o, "hardware_concurrency", src.HardwareConcurrency); ok && cores > 0 {
		p.Cores = cores
	}
	if conn, ok := safeOptional(o, "connection", src.Connection); ok {
		p.Connection = normalizeConnection(conn)
	}
	p.Battery = detectBattery(ctx, src, o)

	return p
}

func detectBattery(ctx context.Context, src Source, o *options) (b Battery) {
	b = Battery{Level: DefaultBatteryLevel, Charging: true}
	defer func() {
		if r := recover(); r != nil {
			o.logger.DebugContext(ctx, "battery probe panicked", slog.Any("panic", r))
			b = Battery{Level: DefaultBatteryLevel, Charging: true}
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, o.probeTimeout)
	defer cancel()

	got, err := src.Battery(ctx)
	if err != nil {
		o.logger.DebugContext(ctx, "battery unavailable", logger.Error(err))
		return b
	}
	if got.Level < 0 || got.Level > 1 {
		return b
	}
	return got
}

// normalizeConnection fills zero fields with defaults.
func normalizeConnection(c Connection) Connection {
	if c.EffectiveType == "" {
		c.EffectiveType = DefaultEffectiveType
	}
	if c.DownlinkMbps <= 0 {
		c.DownlinkMbps = DefaultDownlinkMbps
	}
	if c.RTTMs <= 0 {
		c.RTTMs = DefaultRTTMs
	}
	return c
}

// DetectDisplay reads viewport geometry and safe-area insets.
func DetectDisplay(src Source, opts ...Option) Display {
	if src == nil {
		return Display{PixelRatio: DefaultPixelRatio, ColorDepth: DefaultColorDepth, Orientation: OrientationLandscape}
	}
	return detectDisplay(src, applyOptions(opts))
}

func detectDisplay(src Source, o *options) Display {
	d := Display{PixelRatio: DefaultPixelRatio, ColorDepth: DefaultColorDepth}

	func() {
		defer func() {
			if r := recover(); r != nil {
				o.logger.Debug("viewport probe panicked", slog.Any("panic", r))
			}
		}()
		d.Width, d.Height = src.Viewport()
	}()

	if ratio, ok := safeOptional(o, "pixel_ratio", src.PixelRatio); ok && ratio > 0 {
		d.PixelRatio = ratio
	}
	if depth, ok := safeOptional(o, "color_depth", src.ColorDepth); ok && depth > 0 {
		d.ColorDepth = depth
	}

	d.Orientation = orientationOf(d.Width, d.Height)
	d.SafeArea = SafeArea{
		Top:    safeInset(src, SideTop, o),
		Right:  safeInset(src, SideRight, o),
		Bottom: safeInset(src, SideBottom, o),
		Left:   safeInset(src, SideLeft, o),
	}
	return d
}

func orientationOf(width, height int) Orientation {
	if height > width {
		return OrientationPortrait
	}
	return OrientationLandscape
}

func safeInset(src Source, side Side, o *options) float64 {
	v, ok := safeOptional(o, "safe_area_"+string(side), func() (float64, bool) {
		return src.SafeAreaInset(side)
	})
	if !ok || v < 0 {
		return 0
	}
	return v
}

func defaultPerformance() Performance {
	return Performance{
		MemoryGB: DefaultMemoryGB,
		Cores:    DefaultCores,
		Connection: Connection{
			EffectiveType: DefaultEffectiveType,
			DownlinkMbps:  DefaultDownlinkMbps,
			RTTMs:         DefaultRTTMs,
		},
		Battery: Battery{Level: DefaultBatteryLevel, Charging: true},
	}
}

func fallbackInfo(o *options) Info {
	return Info{
		Type:        TypeDesktop,
		OS:          OSUnknown,
		Browser:     BrowserUnknown,
		Performance: defaultPerformance(),
		Display:     Display{PixelRatio: DefaultPixelRatio, ColorDepth: DefaultColorDepth, Orientation: OrientationLandscape},
		DetectedAt:  o.now(),
	}
}

func safeValue[T any](o *options, name string, fallback T, fn func() T) (v T) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Debug("source accessor panicked", slog.String("signal", name), slog.String("panic", fmt.Sprint(r)))
			v = fallback
		}
	}()
	return fn()
}

func safeOptional[T any](o *options, name string, fn func() (T, bool)) (v T, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Debug("source accessor panicked", slog.String("signal", name), slog.String("panic", fmt.Sprint(r)))
			var zero T
			v, ok = zero, false
		}
	}()
	return fn()
}
