package deviceutils

import (
	"context"

	"github.com/dmitrymomot/adaptive/pkg/device"
)

// Media queries understood by PrefersReducedMotion and PrefersDarkMode.
const (
	QueryReducedMotion = "(prefers-reduced-motion: reduce)"
	QueryDarkMode      = "(prefers-color-scheme: dark)"
)

// ConnectionUnknown is returned by ConnectionType when the source has no connection data.
const ConnectionUnknown = "unknown"

// MediaQuerier mirrors window.matchMedia. Sources that know user preferences implement it.
type MediaQuerier interface {
	MatchMedia(query string) bool
}

// Type classifies the source's form factor.
func Type(src device.Source) device.Type {
	if src == nil {
		return device.TypeDesktop
	}
	ua := safely("", src.UserAgent)
	touch := safely(0, src.MaxTouchPoints)
	width := safely(0, func() int { w, _ := src.Viewport(); return w })
	return device.DetectType(ua, touch, width)
}

func IsMobile(src device.Source) bool  { return Type(src) == device.TypeMobile }
func IsTablet(src device.Source) bool  { return Type(src) == device.TypeTablet }
func IsDesktop(src device.Source) bool { return Type(src) == device.TypeDesktop }

// SupportsTouch reports whether the source exposes any touch point.
func SupportsTouch(src device.Source) bool {
	return src != nil && safely(0, src.MaxTouchPoints) > 0
}

// SupportsWebGL probes the WebGL capability.
func SupportsWebGL(ctx context.Context, src device.Source) bool {
	if src == nil {
		return false
	}
	return safely(false, func() bool {
		ok, err := src.HasFeature(ctx, device.CapabilityWebGL)
		return err == nil && ok
	})
}

// ConnectionType returns the effective connection type, or ConnectionUnknown.
func ConnectionType(src device.Source) string {
	if c, ok := connection(src); ok && c.EffectiveType != "" {
		return c.EffectiveType
	}
	return ConnectionUnknown
}

// IsSlowConnection reports a 2g or slower connection, or an enabled data saver.
func IsSlowConnection(src device.Source) bool {
	c, ok := connection(src)
	return ok && (c.IsSlow() || c.SaveData)
}

func PrefersReducedMotion(src device.Source) bool { return matchMedia(src, QueryReducedMotion) }
func PrefersDarkMode(src device.Source) bool      { return matchMedia(src, QueryDarkMode) }

func connection(src device.Source) (device.Connection, bool) {
	if src == nil {
		return device.Connection{}, false
	}
	type result struct {
		c  device.Connection
		ok bool
	}
	r := safely(result{}, func() result {
		c, ok := src.Connection()
		return result{c, ok}
	})
	return r.c, r.ok
}

func matchMedia(src device.Source, query string) bool {
	mq, ok := src.(MediaQuerier)
	if !ok {
		return false
	}
	return safely(false, func() bool { return mq.MatchMedia(query) })
}

func safely[T any](fallback T, fn func() T) (v T) {
	defer func() {
		if recover() != nil {
			v = fallback
		}
	}()
	return fn()
}
