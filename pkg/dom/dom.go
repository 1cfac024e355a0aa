package dom

// Element is the subset of the DOM element API the optimizers use.
type Element interface {
	// TagName returns the lower-case tag name.
	TagName() string
	Attr(name string) (string, bool)
	SetAttr(name, value string)
	RemoveAttr(name string)

	AddClass(names ...string)
	RemoveClass(names ...string)
	HasClass(name string) bool

	// SetStyleProperty sets an inline style declaration, e.g. a CSS custom property.
	SetStyleProperty(name, value string)
	StyleProperty(name string) (string, bool)

	// AppendChild fails with ErrForeignElement when child belongs to another implementation.
	AppendChild(child Element) error
}

// Document is the subset of the DOM document API the optimizers use.
type Document interface {
	// QueryAll returns every element matching the CSS selector, in document
	// order. Invalid selectors match nothing.
	QueryAll(selector string) []Element
	// Root returns the document element (<html>).
	Root() Element
	Head() Element
	CreateElement(tag string) Element
}

// ObserverOptions mirrors IntersectionObserverInit.
type ObserverOptions struct {
	RootMargin string
	Threshold  float64
}

// Entry mirrors IntersectionObserverEntry.
type Entry struct {
	Target         Element
	IsIntersecting bool
	Ratio          float64
}

// ObserverCallback receives intersection changes.
type ObserverCallback func(entries []Entry, obs Observer)

// Observer mirrors IntersectionObserver.
type Observer interface {
	Observe(el Element)
	Unobserve(el Element)
	Disconnect()
}

// ObserverFactory constructs observers, standing in for `new IntersectionObserver`.
type ObserverFactory func(cb ObserverCallback, opts ObserverOptions) Observer
