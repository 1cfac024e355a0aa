package optimize

import "github.com/dmitrymomot/adaptive/pkg/dom"

// DefaultLazySelector matches elements carrying deferred sources.
const DefaultLazySelector = "img[data-src], [data-background]"

// ClassLoaded marks elements whose deferred source has been applied.
const ClassLoaded = "loaded"

// LazyObserverOptions are used for every lazy-loading observer.
var LazyObserverOptions = dom.ObserverOptions{RootMargin: "50px", Threshold: 0.1}

// SetupLazyLoading observes every element matching selector and, once it
// intersects, moves data-src into src and data-background into an inline
// background-image, marks it loaded and stops observing it.
//
// No observer is created when lazy images are disabled or nothing matches.
// An empty selector means DefaultLazySelector. It returns the number of
// elements observed.
func (m *Manager) SetupLazyLoading(doc dom.Document, selector string) (int, error) {
	if doc == nil {
		return 0, ErrNilDocument
	}
	if !m.Config().Images.Lazy {
		return 0, nil
	}
	if selector == "" {
		selector = DefaultLazySelector
	}

	m.domMu.Lock()
	targets := doc.QueryAll(selector)
	m.domMu.Unlock()
	if len(targets) == 0 {
		return 0, nil
	}

	obs := m.opts.observers(m.onIntersect, LazyObserverOptions)
	if !m.trackObserver(obs) {
		obs.Disconnect()
		return 0, ErrClosed
	}

	for _, el := range targets {
		obs.Observe(el)
	}
	return len(targets), nil
}

func (m *Manager) onIntersect(entries []dom.Entry, obs dom.Observer) {
	m.domMu.Lock()
	defer m.domMu.Unlock()

	for _, e := range entries {
		if !e.IsIntersecting || e.Target == nil {
			continue
		}
		el := e.Target
		if src, ok := el.Attr("data-src"); ok {
			el.SetAttr("src", src)
			el.RemoveAttr("data-src")
		}
		if bg, ok := el.Attr("data-background"); ok {
			el.SetStyleProperty("background-image", dom.CSSURL(bg))
			el.RemoveAttr("data-background")
		}
		el.AddClass(ClassLoaded)
		obs.Unobserve(el)
	}
}
