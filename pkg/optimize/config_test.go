package optimize_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/adaptive/pkg/optimize"
)

func TestConfigForTiers(t *testing.T) {
	t.Parallel()

	t.Run("nil and mid-range use defaults", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, optimize.DefaultConfig(), optimize.ConfigFor(nil))
		assert.Equal(t, optimize.DefaultConfig(), optimize.ConfigFor(midRange()))
	})

	t.Run("low-end", func(t *testing.T) {
		t.Parallel()
		cfg := optimize.ConfigFor(lowEnd())

		assert.Equal(t, 60, cfg.Images.Quality)
		assert.True(t, cfg.Images.Lazy)
		assert.True(t, cfg.Images.Adaptive)
		assert.True(t, cfg.Animations.Reduced)
		assert.Equal(t, 30, cfg.Animations.FPS)
		assert.Equal(t, 150*time.Millisecond, cfg.Animations.Duration)
		assert.False(t, cfg.Features.Shadows)
		assert.False(t, cfg.Features.Gradients)
		assert.False(t, cfg.Features.Transitions)
		assert.False(t, cfg.Features.Filters)
		assert.False(t, cfg.Features.Backdrop)
		assert.True(t, cfg.Features.Transforms)
		assert.False(t, cfg.Network.Preload)
		assert.False(t, cfg.Network.Prefetch)
		assert.Equal(t, optimize.Performance{
			Debounce:      500 * time.Millisecond,
			Throttle:      200 * time.Millisecond,
			BatchSize:     5,
			MaxConcurrent: 2,
		}, cfg.Performance)
	})

	t.Run("high-end", func(t *testing.T) {
		t.Parallel()
		cfg := optimize.ConfigFor(highEnd())

		assert.Equal(t, 90, cfg.Images.Quality)
		assert.False(t, cfg.Images.Lazy)
		assert.False(t, cfg.Images.Adaptive)
		assert.Equal(t, 60, cfg.Animations.FPS)
		assert.Equal(t, optimize.Features{
			Shadows: true, Gradients: true, Transitions: true,
			Transforms: true, Filters: true, Backdrop: true,
		}, cfg.Features)
		assert.True(t, cfg.Network.Preload)
		assert.True(t, cfg.Network.Prefetch)
		assert.Equal(t, 20, cfg.Performance.BatchSize)
		assert.Equal(t, 6, cfg.Performance.MaxConcurrent)
	})
}

func TestLoadProfile(t *testing.T) {
	t.Parallel()

	t.Run("overrides selected keys", func(t *testing.T) {
		t.Parallel()
		cfg, err := optimize.LoadProfile(strings.NewReader(`
images:
  quality: 75
  format: avif
animations:
  duration: 250ms
performance:
  batch_size: 8
`))
		require.NoError(t, err)

		want := optimize.DefaultConfig()
		want.Images.Quality = 75
		want.Images.Format = "avif"
		want.Animations.Duration = 250 * time.Millisecond
		want.Performance.BatchSize = 8
		assert.Equal(t, want, cfg)
	})

	t.Run("empty profile is the default", func(t *testing.T) {
		t.Parallel()
		cfg, err := optimize.LoadProfile(strings.NewReader(""))
		require.NoError(t, err)
		assert.Equal(t, optimize.DefaultConfig(), cfg)
	})

	t.Run("unknown keys are rejected", func(t *testing.T) {
		t.Parallel()
		_, err := optimize.LoadProfile(strings.NewReader("images:\n  qualty: 10\n"))
		assert.ErrorIs(t, err, optimize.ErrInvalidProfile)
	})

	t.Run("out of range values are rejected", func(t *testing.T) {
		t.Parallel()
		_, err := optimize.LoadProfile(strings.NewReader("images:\n  quality: 120\nperformance:\n  max_concurrent: 0\n"))
		assert.ErrorIs(t, err, optimize.ErrInvalidProfile)
		assert.ErrorIs(t, err, optimize.ErrInvalidQuality)
		assert.ErrorIs(t, err, optimize.ErrInvalidLimits)
	})
}

func TestDeriveKeepsBaseForUntouchedFields(t *testing.T) {
	t.Parallel()

	base := optimize.DefaultConfig()
	base.Images.Format = "avif"
	base.Animations.Easing = "linear"

	cfg := optimize.Derive(base, lowEnd())
	assert.Equal(t, "avif", cfg.Images.Format)
	assert.Equal(t, "linear", cfg.Animations.Easing)
	assert.Equal(t, 60, cfg.Images.Quality)
}

func TestConfigClassesAndSignals(t *testing.T) {
	t.Parallel()

	assert.Empty(t, optimize.DefaultConfig().Classes())

	low := optimize.ConfigFor(lowEnd())
	assert.Equal(t, []string{
		optimize.ClassReduceMotion,
		optimize.ClassNoShadows,
		optimize.ClassNoGradients,
		optimize.ClassNoTransitions,
		optimize.ClassNoFilters,
		optimize.ClassNoBackdrop,
	}, low.Classes())

	s := low.Signals()
	assert.Equal(t, 60, s.ImageQuality)
	assert.Equal(t, int64(150), s.AnimationDurationMs)
	assert.Equal(t, int64(500), s.DebounceMs)
	assert.True(t, s.ReducedMotion)
	assert.Len(t, s.Classes, 6)

	assert.NotNil(t, optimize.DefaultConfig().Signals().Classes)
}
