package ratelimiter

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrymomot/adaptive/pkg/cache"
)

// DefaultMaxKeys bounds the buckets a MemoryStore holds.
const DefaultMaxKeys = 100_000

type bucket struct {
	tokens     int
	lastRefill time.Time
}

// MemoryStore keeps buckets in a process-local LRU. Buckets idle long enough
// to be full again expire on their own.
type MemoryStore struct {
	mu      sync.Mutex
	maxKeys int
	now     func() time.Time
	buckets *cache.LRUCache[string, *bucket]
}

var _ Store = (*MemoryStore)(nil)

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithMaxKeys bounds the number of buckets held.
func WithMaxKeys(n int) MemoryOption {
	return func(s *MemoryStore) {
		if n > 0 {
			s.maxKeys = n
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{maxKeys: DefaultMaxKeys, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) Take(_ context.Context, key string, n int, cfg Config) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// The first config seen sets the idle TTL.
	if s.buckets == nil {
		s.buckets = cache.NewLRUCache[string, *bucket](s.maxKeys,
			cache.WithTTL(cfg.idleTTL()),
			cache.WithClock(s.now),
		)
	}

	now := s.now()
	b, ok := s.buckets.Get(key)
	if !ok {
		b = &bucket{tokens: cfg.Capacity, lastRefill: now}
	}

	if elapsed := now.Sub(b.lastRefill); elapsed >= cfg.RefillInterval {
		intervals := int(min(int64(elapsed/cfg.RefillInterval), int64(cfg.Capacity/cfg.RefillRate+1)))
		b.tokens = min(b.tokens+intervals*cfg.RefillRate, cfg.Capacity)
		b.lastRefill = b.lastRefill.Add(time.Duration(intervals) * cfg.RefillInterval)
		if b.tokens == cfg.Capacity {
			b.lastRefill = now
		}
	}

	res := Result{Limit: cfg.Capacity, ResetAt: b.lastRefill.Add(cfg.RefillInterval)}
	if b.tokens >= n {
		b.tokens -= n
		res.Allowed = true
	}
	res.Remaining = b.tokens
	s.buckets.Put(key, b)
	return res, nil
}

func (s *MemoryStore) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.buckets != nil {
		s.buckets.Remove(key)
	}
	return nil
}

// Len returns the number of buckets held.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.buckets == nil {
		return 0
	}
	return s.buckets.Len()
}
