package cache

import (
	"container/list"
	"sync"
	"time"
)

type lruEntry[K comparable, V any] struct {
	key       K
	value     V
	expiresAt time.Time
}

// Option configures an LRUCache.
type Option func(*options)

type options struct {
	ttl time.Duration
	now func() time.Time
}

// WithTTL expires entries that were not written for d. Zero disables expiry.
func WithTTL(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.ttl = d
		}
	}
}

// WithClock overrides the time source used for expiry.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// LRUCache is a thread-safe LRU cache with optional expiry.
// When the cache reaches its capacity, the least recently used item is evicted.
// The evict callback runs after the cache lock is released, so it may call
// back into the cache.
type LRUCache[K comparable, V any] struct {
	capacity int
	opts     options
	items    map[K]*list.Element
	eviction *list.List
	mu       sync.Mutex
	onEvict  func(key K, value V)
}

// NewLRUCache creates a new LRU cache with the specified capacity.
// The capacity must be positive, otherwise it panics.
func NewLRUCache[K comparable, V any](capacity int, opts ...Option) *LRUCache[K, V] {
	if capacity <= 0 {
		panic("LRU cache capacity must be positive")
	}
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &LRUCache[K, V]{
		capacity: capacity,
		opts:     o,
		items:    make(map[K]*list.Element),
		eviction: list.New(),
	}
}

// SetEvictCallback sets a callback invoked for every entry that leaves the
// cache through eviction, expiry, Remove or Clear.
func (c *LRUCache[K, V]) SetEvictCallback(fn func(key K, value V)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onEvict = fn
}

// Get retrieves a value and marks it as recently used. Expired entries are
// removed and reported as missing.
func (c *LRUCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	var zero V

	elem, ok := c.items[key]
	if !ok {
		c.mu.Unlock()
		return zero, false
	}

	entry := elem.Value.(*lruEntry[K, V])
	if c.expired(entry) {
		gone := c.removeElement(elem)
		c.mu.Unlock()
		c.notify(gone)
		return zero, false
	}

	c.eviction.MoveToFront(elem)
	c.mu.Unlock()
	return entry.value, true
}

// Put adds or updates a value and refreshes its expiry.
// If the cache is at capacity, the least recently used item is evicted.
// Returns the previous value if it existed, and a boolean indicating if it existed.
func (c *LRUCache[K, V]) Put(key K, value V) (V, bool) {
	c.mu.Lock()

	if elem, ok := c.items[key]; ok {
		c.eviction.MoveToFront(elem)
		entry := elem.Value.(*lruEntry[K, V])
		oldValue := entry.value
		entry.value = value
		entry.expiresAt = c.deadline()
		c.mu.Unlock()
		return oldValue, true
	}

	entry := &lruEntry[K, V]{key: key, value: value, expiresAt: c.deadline()}
	c.items[key] = c.eviction.PushFront(entry)

	var gone []*lruEntry[K, V]
	if c.eviction.Len() > c.capacity {
		gone = append(gone, c.removeElement(c.eviction.Back()))
	}
	c.mu.Unlock()

	c.notify(gone...)
	var zero V
	return zero, false
}

// Remove removes an item from the cache.
// Returns the removed value and true if it existed, zero value and false otherwise.
func (c *LRUCache[K, V]) Remove(key K) (V, bool) {
	c.mu.Lock()
	elem, ok := c.items[key]
	if !ok {
		c.mu.Unlock()
		var zero V
		return zero, false
	}
	entry := c.removeElement(elem)
	c.mu.Unlock()

	c.notify(entry)
	return entry.value, true
}

// RemoveExpired drops every expired entry and returns how many were dropped.
func (c *LRUCache[K, V]) RemoveExpired() int {
	c.mu.Lock()
	var gone []*lruEntry[K, V]
	for elem := c.eviction.Back(); elem != nil; {
		prev := elem.Prev()
		if c.expired(elem.Value.(*lruEntry[K, V])) {
			gone = append(gone, c.removeElement(elem))
		}
		elem = prev
	}
	c.mu.Unlock()

	c.notify(gone...)
	return len(gone)
}

func (c *LRUCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eviction.Len()
}

// Clear removes all items from the cache.
// If an evict callback is set, it's called for each item.
func (c *LRUCache[K, V]) Clear() {
	c.mu.Lock()
	gone := make([]*lruEntry[K, V], 0, len(c.items))
	for _, elem := range c.items {
		gone = append(gone, elem.Value.(*lruEntry[K, V]))
	}
	c.items = make(map[K]*list.Element)
	c.eviction.Init()
	c.mu.Unlock()

	c.notify(gone...)
}

// Must be called with lock held.
func (c *LRUCache[K, V]) removeElement(elem *list.Element) *lruEntry[K, V] {
	c.eviction.Remove(elem)
	entry := elem.Value.(*lruEntry[K, V])
	delete(c.items, entry.key)
	return entry
}

// Must be called with lock held.
func (c *LRUCache[K, V]) expired(e *lruEntry[K, V]) bool {
	return !e.expiresAt.IsZero() && !c.opts.now().Before(e.expiresAt)
}

// Must be called with lock held.
func (c *LRUCache[K, V]) deadline() time.Time {
	if c.opts.ttl <= 0 {
		return time.Time{}
	}
	return c.opts.now().Add(c.opts.ttl)
}

func (c *LRUCache[K, V]) notify(entries ...*lruEntry[K, V]) {
	if len(entries) == 0 {
		return
	}
	c.mu.Lock()
	fn := c.onEvict
	c.mu.Unlock()
	if fn == nil {
		return
	}
	for _, e := range entries {
		fn(e.key, e.value)
	}
}
