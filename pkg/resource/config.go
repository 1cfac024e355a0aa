package resource

import (
	"github.com/dmitrymomot/adaptive/pkg/device"
	"github.com/dmitrymomot/adaptive/pkg/optimize"
)

// Override thresholds.
const (
	slowQuality       = 50
	threeGQuality     = 70
	lowBatteryQuality = 60
	lowBatteryLevel   = 0.2
)

// BaseConfig is the resource configuration before device overrides: the
// optimization defaults with prefetching enabled.
func BaseConfig() optimize.Config {
	cfg := optimize.DefaultConfig()
	cfg.Network.Preload = true
	cfg.Network.Prefetch = true
	return cfg
}

// ConfigFor derives the resource configuration for a device. Connection and
// battery overrides are merged, the stricter image quality winning when both
// apply. A nil snapshot yields BaseConfig.
func ConfigFor(info *device.Info) optimize.Config {
	cfg := BaseConfig()
	if info == nil {
		return cfg
	}

	conn := info.Performance.Connection
	switch {
	case conn.IsSlow() || conn.SaveData:
		cfg.Images.Quality = slowQuality
		cfg.Network.Preload = false
		cfg.Network.Prefetch = false
	case conn.EffectiveType == device.Connection3G:
		cfg.Images.Quality = threeGQuality
		cfg.Network.Prefetch = false
	}

	if b := info.Performance.Battery; b.Level < lowBatteryLevel && !b.Charging {
		cfg.Images.Quality = min(cfg.Images.Quality, lowBatteryQuality)
		cfg.Animations.Reduced = true
	}

	if info.Tier() == device.TierLowEnd {
		cfg.Features.Shadows = false
		cfg.Features.Gradients = false
		cfg.Features.Transitions = false
		cfg.Features.Filters = false
		cfg.Features.Backdrop = false
	}

	return cfg
}
