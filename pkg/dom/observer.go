package dom

import "sync"

// NativeLazyObserver is an ObserverFactory for server-rendered pages. The
// server cannot see the viewport, so every observed element is reported as
// intersecting at once and, for images and iframes, marked loading="lazy" so
// the browser defers the actual fetch.
func NativeLazyObserver(cb ObserverCallback, _ ObserverOptions) Observer {
	return &nativeLazyObserver{cb: cb, observed: make(map[Element]struct{})}
}

type nativeLazyObserver struct {
	mu           sync.Mutex
	cb           ObserverCallback
	observed     map[Element]struct{}
	disconnected bool
}

func (o *nativeLazyObserver) Observe(el Element) {
	if el == nil {
		return
	}

	o.mu.Lock()
	if o.disconnected {
		o.mu.Unlock()
		return
	}
	o.observed[el] = struct{}{}
	o.mu.Unlock()

	switch el.TagName() {
	case "img", "iframe":
		el.SetAttr("loading", "lazy")
	}

	if o.cb != nil {
		o.cb([]Entry{{Target: el, IsIntersecting: true, Ratio: 1}}, o)
	}
}

func (o *nativeLazyObserver) Unobserve(el Element) {
	o.mu.Lock()
	delete(o.observed, el)
	o.mu.Unlock()
}

func (o *nativeLazyObserver) Disconnect() {
	o.mu.Lock()
	o.disconnected = true
	clear(o.observed)
	o.mu.Unlock()
}
