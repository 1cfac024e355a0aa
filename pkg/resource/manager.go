package resource

import (
	"log/slog"
	"net/url"
	"strconv"

	"github.com/dmitrymomot/adaptive/pkg/device"
	"github.com/dmitrymomot/adaptive/pkg/dom"
	"github.com/dmitrymomot/adaptive/pkg/logger"
	"github.com/dmitrymomot/adaptive/pkg/optimize"
)

// MaxImageWidth caps the width requested for adaptive images.
const MaxImageWidth = 1920

// Custom properties set on the document root.
const (
	PropAnimationDuration = "--animation-duration"
	PropAnimationEasing   = "--animation-easing"
	PropImageQuality      = "--image-quality"
)

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the manager logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// Manager applies a resource configuration to documents.
// It holds no mutable state and is safe for concurrent use across documents.
type Manager struct {
	cfg      optimize.Config
	viewport int
	logger   *slog.Logger
}

// NewManager derives the configuration for info. A nil info yields BaseConfig
// and no adaptive width.
func NewManager(info *device.Info, opts ...Option) *Manager {
	m := &Manager{
		cfg:    ConfigFor(info),
		logger: logger.Discard(),
	}
	if info != nil {
		m.viewport = info.Display.Width
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With(logger.Component("resource"))
	return m
}

// Config returns a copy of the configuration.
func (m *Manager) Config() optimize.Config { return m.cfg }

// OptimizeImageLoading rewrites the source of every img[data-optimize] with
// quality, format and, for adaptive images, width query parameters, and sets
// its loading attribute. A deferred data-src is rewritten in place of src.
// It returns the number of images rewritten.
func (m *Manager) OptimizeImageLoading(doc dom.Document) int {
	loading := "eager"
	if m.cfg.Images.Lazy {
		loading = "lazy"
	}

	n := 0
	for _, img := range doc.QueryAll("img[data-optimize]") {
		attr := "src"
		if _, ok := img.Attr("data-src"); ok {
			attr = "data-src"
		}
		raw, _ := img.Attr(attr)
		if raw == "" {
			continue
		}

		u, err := url.Parse(raw)
		if err != nil {
			m.logger.Debug("skipping image with invalid url", slog.String("src", raw), logger.Error(err))
			continue
		}

		q := u.Query()
		q.Set("quality", strconv.Itoa(m.cfg.Images.Quality))
		q.Set("format", m.cfg.Images.Format)
		if m.cfg.Images.Adaptive && m.viewport > 0 {
			q.Set("width", strconv.Itoa(min(m.viewport, MaxImageWidth)))
		}
		u.RawQuery = q.Encode()

		img.SetAttr(attr, u.String())
		img.SetAttr("loading", loading)
		n++
	}
	return n
}

// SetupResourceHints adds a <link rel="preload"> to the head for every
// [data-preload] element. It does nothing when preloading is disabled.
func (m *Manager) SetupResourceHints(doc dom.Document) int {
	if !m.cfg.Network.Preload {
		return 0
	}
	return m.addHints(doc, "preload", "[data-preload]", "data-preload")
}

// SetupPrefetching adds a <link rel="prefetch"> to the head for every
// [data-prefetch] element. It does nothing when prefetching is disabled.
func (m *Manager) SetupPrefetching(doc dom.Document) int {
	if !m.cfg.Network.Prefetch {
		return 0
	}
	return m.addHints(doc, "prefetch", "[data-prefetch]", "data-prefetch")
}

func (m *Manager) addHints(doc dom.Document, rel, selector, attr string) int {
	existing := make(map[string]struct{})
	for _, link := range doc.QueryAll(`link[rel="` + rel + `"]`) {
		if href, ok := link.Attr("href"); ok {
			existing[href] = struct{}{}
		}
	}

	head := doc.Head()
	n := 0
	for _, el := range doc.QueryAll(selector) {
		href := hintTarget(el, attr)
		if href == "" {
			continue
		}
		if _, dup := existing[href]; dup {
			continue
		}

		link := doc.CreateElement("link")
		link.SetAttr("rel", rel)
		link.SetAttr("href", href)
		if as := AsFor(el.TagName()); as != "" {
			link.SetAttr("as", as)
		}
		if err := head.AppendChild(link); err != nil {
			m.logger.Warn("failed to add resource hint", slog.String("rel", rel), logger.Error(err))
			continue
		}
		existing[href] = struct{}{}
		n++
	}
	return n
}

// hintTarget prefers an explicit URL in the marker attribute and falls back
// to the element's own source.
func hintTarget(el dom.Element, attr string) string {
	for _, name := range []string{attr, "data-src", "src", "href"} {
		if v, ok := el.Attr(name); ok && v != "" {
			return v
		}
	}
	return ""
}

// AsFor maps a tag name to the preload destination.
func AsFor(tag string) string {
	switch tag {
	case "img":
		return "image"
	case "script":
		return "script"
	case "link", "style":
		return "style"
	case "video":
		return "video"
	case "audio":
		return "audio"
	default:
		return ""
	}
}

// OptimizeAnimations toggles the reduce-motion root class and sets the
// animation custom properties.
func (m *Manager) OptimizeAnimations(doc dom.Document) {
	root := doc.Root()
	if m.cfg.Animations.Reduced {
		root.AddClass(optimize.ClassReduceMotion)
	} else {
		root.RemoveClass(optimize.ClassReduceMotion)
	}
	root.SetStyleProperty(PropAnimationDuration, strconv.FormatInt(m.cfg.Animations.Duration.Milliseconds(), 10)+"ms")
	root.SetStyleProperty(PropAnimationEasing, m.cfg.Animations.Easing)
}

// OptimizeFeatures toggles one root class per disabled CSS feature.
func (m *Manager) OptimizeFeatures(doc dom.Document) {
	root := doc.Root()
	f := m.cfg.Features
	for _, t := range []struct {
		class   string
		enabled bool
	}{
		{optimize.ClassNoShadows, f.Shadows},
		{optimize.ClassNoGradients, f.Gradients},
		{optimize.ClassNoTransitions, f.Transitions},
		{optimize.ClassNoFilters, f.Filters},
		{optimize.ClassNoBackdrop, f.Backdrop},
	} {
		if t.enabled {
			root.RemoveClass(t.class)
		} else {
			root.AddClass(t.class)
		}
	}
	root.SetStyleProperty(PropImageQuality, strconv.Itoa(m.cfg.Images.Quality))
}

// Report counts the changes made by Apply.
type Report struct {
	Images     int `json:"images"`
	Preloads   int `json:"preloads"`
	Prefetches int `json:"prefetches"`
}

// Apply runs every optimization over doc.
func (m *Manager) Apply(doc dom.Document) Report {
	r := Report{
		Images:     m.OptimizeImageLoading(doc),
		Preloads:   m.SetupResourceHints(doc),
		Prefetches: m.SetupPrefetching(doc),
	}
	m.OptimizeAnimations(doc)
	m.OptimizeFeatures(doc)
	return r
}
