package resource_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/adaptive/pkg/device"
	"github.com/dmitrymomot/adaptive/pkg/dom"
	"github.com/dmitrymomot/adaptive/pkg/optimize"
	"github.com/dmitrymomot/adaptive/pkg/resource"
)

func info(mem float64, cores int, conn device.Connection, battery device.Battery) *device.Info {
	return &device.Info{
		Performance: device.Performance{MemoryGB: mem, Cores: cores, Connection: conn, Battery: battery},
		Display:     device.Display{Width: 2560, Height: 1440},
	}
}

var (
	fast     = device.Connection{EffectiveType: device.Connection4G}
	charged  = device.Battery{Level: 1, Charging: true}
	draining = device.Battery{Level: 0.1}
)

func TestConfigFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		info       *device.Info
		quality    int
		preload    bool
		prefetch   bool
		reduced    bool
		noFeatures bool
	}{
		{"nil", nil, 80, true, true, false, false},
		{"fast mid-range", info(4, 4, fast, charged), 80, true, true, false, false},
		{"3g", info(4, 4, device.Connection{EffectiveType: device.Connection3G}, charged), 70, true, false, false, false},
		{"2g", info(4, 4, device.Connection{EffectiveType: device.Connection2G}, charged), 50, false, false, false, true},
		{"save-data", info(4, 4, device.Connection{EffectiveType: device.Connection4G, SaveData: true}, charged), 50, false, false, false, false},
		{"low battery", info(4, 4, fast, draining), 60, true, true, true, false},
		{"low battery charging", info(4, 4, fast, device.Battery{Level: 0.1, Charging: true}), 80, true, true, false, false},
		{"3g and low battery merge", info(4, 4, device.Connection{EffectiveType: device.Connection3G}, draining), 60, true, false, true, false},
		{"slow-2g and low battery merge", info(4, 4, device.Connection{EffectiveType: device.ConnectionSlow2G}, draining), 50, false, false, true, true},
		{"low-end memory", info(2, 8, fast, charged), 80, true, true, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := resource.ConfigFor(tt.info)

			assert.Equal(t, tt.quality, cfg.Images.Quality)
			assert.Equal(t, tt.preload, cfg.Network.Preload)
			assert.Equal(t, tt.prefetch, cfg.Network.Prefetch)
			assert.Equal(t, tt.reduced, cfg.Animations.Reduced)
			assert.Equal(t, !tt.noFeatures, cfg.Features.Shadows)
			assert.Equal(t, !tt.noFeatures, cfg.Features.Backdrop)
			assert.True(t, cfg.Features.Transforms)
			assert.Equal(t, "webp", cfg.Images.Format)
		})
	}
}

const page = `<!DOCTYPE html><html><head><link rel="preload" href="/app.css" as="style"></head><body>` +
	`<img data-optimize src="/img/a.jpg?v=2">` +
	`<img data-optimize data-src="/img/b.jpg">` +
	`<img src="/img/c.jpg">` +
	`<img data-preload src="/img/hero.jpg">` +
	`<link data-preload href="/app.css">` +
	`<script data-prefetch="/next.js"></script>` +
	`</body></html>`

func parse(t *testing.T) *dom.HTMLDocument {
	t.Helper()
	doc, err := dom.Parse(strings.NewReader(page))
	require.NoError(t, err)
	return doc
}

func TestOptimizeImageLoading(t *testing.T) {
	t.Parallel()

	doc := parse(t)
	m := resource.NewManager(info(4, 4, device.Connection{EffectiveType: device.Connection3G}, charged))

	assert.Equal(t, 2, m.OptimizeImageLoading(doc))

	imgs := doc.QueryAll("img[data-optimize]")
	src, _ := imgs[0].Attr("src")
	assert.Equal(t, "/img/a.jpg?format=webp&quality=70&v=2&width=1920", src)
	loading, _ := imgs[0].Attr("loading")
	assert.Equal(t, "lazy", loading)

	deferred, _ := imgs[1].Attr("data-src")
	assert.Equal(t, "/img/b.jpg?format=webp&quality=70&width=1920", deferred)
	_, hasSrc := imgs[1].Attr("src")
	assert.False(t, hasSrc)

	plain, _ := doc.QueryAll(`img[src="/img/c.jpg"]`)[0].Attr("loading")
	assert.Empty(t, plain)
}

func TestOptimizeImageLoadingNarrowViewport(t *testing.T) {
	t.Parallel()

	doc := parse(t)
	i := info(4, 4, fast, charged)
	i.Display.Width = 390
	resource.NewManager(i).OptimizeImageLoading(doc)

	src, _ := doc.QueryAll("img[data-optimize]")[0].Attr("src")
	assert.Contains(t, src, "width=390")
}

func TestResourceHints(t *testing.T) {
	t.Parallel()

	t.Run("preload and prefetch on a fast connection", func(t *testing.T) {
		t.Parallel()
		doc := parse(t)
		m := resource.NewManager(info(4, 4, fast, charged))

		assert.Equal(t, 1, m.SetupResourceHints(doc), "existing preload is not duplicated")
		assert.Equal(t, 1, m.SetupPrefetching(doc))

		var buf bytes.Buffer
		require.NoError(t, doc.Render(&buf))
		out := buf.String()
		assert.Contains(t, out, `<link rel="preload" href="/img/hero.jpg" as="image"/>`)
		assert.Contains(t, out, `<link rel="prefetch" href="/next.js" as="script"/>`)
	})

	t.Run("disabled on a slow connection", func(t *testing.T) {
		t.Parallel()
		doc := parse(t)
		m := resource.NewManager(info(4, 4, device.Connection{EffectiveType: device.Connection2G}, charged))

		assert.Zero(t, m.SetupResourceHints(doc))
		assert.Zero(t, m.SetupPrefetching(doc))
		assert.Len(t, doc.QueryAll("head link"), 1)
	})
}

func TestAsFor(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "image", resource.AsFor("img"))
	assert.Equal(t, "script", resource.AsFor("script"))
	assert.Equal(t, "style", resource.AsFor("link"))
	assert.Equal(t, "style", resource.AsFor("style"))
	assert.Empty(t, resource.AsFor("div"))
}

func TestOptimizeAnimationsAndFeatures(t *testing.T) {
	t.Parallel()

	doc := parse(t)
	m := resource.NewManager(info(2, 2, fast, draining))
	m.OptimizeAnimations(doc)
	m.OptimizeFeatures(doc)

	root := doc.Root()
	for _, class := range []string{
		optimize.ClassReduceMotion,
		optimize.ClassNoShadows,
		optimize.ClassNoGradients,
		optimize.ClassNoTransitions,
		optimize.ClassNoFilters,
		optimize.ClassNoBackdrop,
	} {
		assert.True(t, root.HasClass(class), class)
	}
	d, _ := root.StyleProperty(resource.PropAnimationDuration)
	assert.Equal(t, "300ms", d)
	q, _ := root.StyleProperty(resource.PropImageQuality)
	assert.Equal(t, "60", q)

	resource.NewManager(nil).Apply(doc)
	for _, class := range []string{optimize.ClassReduceMotion, optimize.ClassNoShadows, optimize.ClassNoBackdrop} {
		assert.False(t, root.HasClass(class), class)
	}
}

func TestApply(t *testing.T) {
	t.Parallel()

	doc := parse(t)
	r := resource.NewManager(info(16, 8, fast, charged)).Apply(doc)
	assert.Equal(t, resource.Report{Images: 2, Preloads: 1, Prefetches: 1}, r)
}
