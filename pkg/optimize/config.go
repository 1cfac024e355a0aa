package optimize

import (
	"errors"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/adaptive/pkg/device"
)

// Images controls image delivery.
type Images struct {
	Quality  int    `json:"quality" yaml:"quality"`
	Format   string `json:"format" yaml:"format"`
	Lazy     bool   `json:"lazy" yaml:"lazy"`
	Adaptive bool   `json:"adaptive" yaml:"adaptive"`
}

// Animations controls motion.
type Animations struct {
	Reduced  bool          `json:"reduced" yaml:"reduced"`
	FPS      int           `json:"fps" yaml:"fps"`
	Duration time.Duration `json:"duration" yaml:"duration"`
	Easing   string        `json:"easing" yaml:"easing"`
}

// Performance holds rate-limiting and batching parameters.
type Performance struct {
	Debounce      time.Duration `json:"debounce" yaml:"debounce"`
	Throttle      time.Duration `json:"throttle" yaml:"throttle"`
	BatchSize     int           `json:"batch_size" yaml:"batch_size"`
	MaxConcurrent int           `json:"max_concurrent" yaml:"max_concurrent"`
}

// Features toggles expensive CSS features.
type Features struct {
	Shadows     bool `json:"shadows" yaml:"shadows"`
	Gradients   bool `json:"gradients" yaml:"gradients"`
	Transitions bool `json:"transitions" yaml:"transitions"`
	Transforms  bool `json:"transforms" yaml:"transforms"`
	Filters     bool `json:"filters" yaml:"filters"`
	Backdrop    bool `json:"backdrop" yaml:"backdrop"`
}

// Network toggles resource hints and transport optimizations.
type Network struct {
	Preload     bool `json:"preload" yaml:"preload"`
	Prefetch    bool `json:"prefetch" yaml:"prefetch"`
	Compression bool `json:"compression" yaml:"compression"`
	Caching     bool `json:"caching" yaml:"caching"`
}

// Config is the optimization configuration derived from a device snapshot.
// It is a plain value: copies never share state.
type Config struct {
	Images      Images      `json:"images" yaml:"images"`
	Animations  Animations  `json:"animations" yaml:"animations"`
	Performance Performance `json:"performance" yaml:"performance"`
	Features    Features    `json:"features" yaml:"features"`
	Network     Network     `json:"network" yaml:"network"`
}

// DefaultConfig returns the mid-range configuration.
func DefaultConfig() Config {
	return Config{
		Images: Images{Quality: 80, Format: "webp", Lazy: true, Adaptive: true},
		Animations: Animations{
			FPS:      60,
			Duration: 300 * time.Millisecond,
			Easing:   "ease-out",
		},
		Performance: Performance{
			Debounce:      300 * time.Millisecond,
			Throttle:      100 * time.Millisecond,
			BatchSize:     10,
			MaxConcurrent: 3,
		},
		Features: Features{
			Shadows:     true,
			Gradients:   true,
			Transitions: true,
			Transforms:  true,
			Filters:     true,
			Backdrop:    true,
		},
		Network: Network{Preload: true, Compression: true, Caching: true},
	}
}

// ConfigFor derives the configuration for a device from DefaultConfig.
// A nil snapshot yields the default configuration.
func ConfigFor(info *device.Info) Config {
	return Derive(DefaultConfig(), info)
}

// Derive applies the tier override table for info on top of base.
// Mid-range devices and a nil snapshot get base unchanged.
func Derive(base Config, info *device.Info) Config {
	cfg := base
	if info == nil {
		return cfg
	}

	switch info.Tier() {
	case device.TierLowEnd:
		cfg.Images.Quality = 60
		cfg.Images.Lazy = true
		cfg.Images.Adaptive = true
		cfg.Animations.Reduced = true
		cfg.Animations.FPS = 30
		cfg.Animations.Duration = 150 * time.Millisecond
		cfg.Features.Shadows = false
		cfg.Features.Gradients = false
		cfg.Features.Transitions = false
		cfg.Features.Filters = false
		cfg.Features.Backdrop = false
		cfg.Network.Preload = false
		cfg.Network.Prefetch = false
		cfg.Performance = Performance{
			Debounce:      500 * time.Millisecond,
			Throttle:      200 * time.Millisecond,
			BatchSize:     5,
			MaxConcurrent: 2,
		}
	case device.TierHighEnd:
		cfg.Images.Quality = 90
		cfg.Images.Lazy = false
		cfg.Images.Adaptive = false
		cfg.Animations.FPS = 60
		cfg.Features = Features{
			Shadows:     true,
			Gradients:   true,
			Transitions: true,
			Transforms:  true,
			Filters:     true,
			Backdrop:    true,
		}
		cfg.Network.Preload = true
		cfg.Network.Prefetch = true
		cfg.Performance = Performance{
			Debounce:      150 * time.Millisecond,
			Throttle:      50 * time.Millisecond,
			BatchSize:     20,
			MaxConcurrent: 6,
		}
	}

	return cfg
}

// LoadProfile reads a YAML profile over DefaultConfig. Keys absent from the
// profile keep their default values.
//
//	images:
//	  quality: 75
//	animations:
//	  duration: 250ms
func LoadProfile(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, errors.Join(ErrInvalidProfile, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports values no consumer can work with.
func (c Config) Validate() error {
	var errs []error
	if c.Images.Quality < 0 || c.Images.Quality > 100 {
		errs = append(errs, ErrInvalidQuality)
	}
	if c.Animations.FPS <= 0 {
		errs = append(errs, ErrInvalidFPS)
	}
	if c.Performance.BatchSize <= 0 || c.Performance.MaxConcurrent <= 0 {
		errs = append(errs, ErrInvalidLimits)
	}
	if c.Animations.Duration < 0 || c.Performance.Debounce < 0 || c.Performance.Throttle < 0 {
		errs = append(errs, ErrNegativeDuration)
	}
	if len(errs) == 0 {
		return nil
	}
	return errors.Join(append([]error{ErrInvalidProfile}, errs...)...)
}

// Root class names toggled from the configuration.
const (
	ClassReduceMotion  = "reduce-motion"
	ClassNoShadows     = "no-shadows"
	ClassNoGradients   = "no-gradients"
	ClassNoTransitions = "no-transitions"
	ClassNoFilters     = "no-filters"
	ClassNoBackdrop    = "no-backdrop"
)

// Classes returns the root classes implied by the configuration, in a stable order.
func (c Config) Classes() []string {
	var out []string
	if c.Animations.Reduced {
		out = append(out, ClassReduceMotion)
	}
	if !c.Features.Shadows {
		out = append(out, ClassNoShadows)
	}
	if !c.Features.Gradients {
		out = append(out, ClassNoGradients)
	}
	if !c.Features.Transitions {
		out = append(out, ClassNoTransitions)
	}
	if !c.Features.Filters {
		out = append(out, ClassNoFilters)
	}
	if !c.Features.Backdrop {
		out = append(out, ClassNoBackdrop)
	}
	return out
}

// Signals is the flat, client-facing view of a Config. Durations are in milliseconds.
type Signals struct {
	ImageQuality        int      `json:"imageQuality"`
	ImageFormat         string   `json:"imageFormat"`
	LazyImages          bool     `json:"lazyImages"`
	AdaptiveImages      bool     `json:"adaptiveImages"`
	ReducedMotion       bool     `json:"reducedMotion"`
	FPS                 int      `json:"fps"`
	AnimationDurationMs int64    `json:"animationDurationMs"`
	Easing              string   `json:"easing"`
	DebounceMs          int64    `json:"debounceMs"`
	ThrottleMs          int64    `json:"throttleMs"`
	BatchSize           int      `json:"batchSize"`
	MaxConcurrent       int      `json:"maxConcurrent"`
	Preload             bool     `json:"preload"`
	Prefetch            bool     `json:"prefetch"`
	Compression         bool     `json:"compression"`
	Caching             bool     `json:"caching"`
	Classes             []string `json:"classes"`
}

// Signals flattens the configuration for clients.
func (c Config) Signals() Signals {
	classes := c.Classes()
	if classes == nil {
		classes = []string{}
	}
	return Signals{
		ImageQuality:        c.Images.Quality,
		ImageFormat:         c.Images.Format,
		LazyImages:          c.Images.Lazy,
		AdaptiveImages:      c.Images.Adaptive,
		ReducedMotion:       c.Animations.Reduced,
		FPS:                 c.Animations.FPS,
		AnimationDurationMs: c.Animations.Duration.Milliseconds(),
		Easing:              c.Animations.Easing,
		DebounceMs:          c.Performance.Debounce.Milliseconds(),
		ThrottleMs:          c.Performance.Throttle.Milliseconds(),
		BatchSize:           c.Performance.BatchSize,
		MaxConcurrent:       c.Performance.MaxConcurrent,
		Preload:             c.Network.Preload,
		Prefetch:            c.Network.Prefetch,
		Compression:         c.Network.Compression,
		Caching:             c.Network.Caching,
		Classes:             classes,
	}
}
