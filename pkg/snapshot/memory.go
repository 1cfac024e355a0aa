package snapshot

import (
	"context"

	"github.com/dmitrymomot/adaptive/pkg/cache"
)

// MemoryStore keeps snapshots in a bounded in-process LRU cache.
type MemoryStore struct {
	lru *cache.LRUCache[string, Snapshot]
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an in-memory store. The least recently used
// snapshot is dropped once capacity is reached.
func NewMemoryStore(opts ...Option) *MemoryStore {
	o := applyOptions(opts)
	return &MemoryStore{
		lru: cache.NewLRUCache[string, Snapshot](o.capacity, cache.WithTTL(o.ttl), cache.WithClock(o.now)),
	}
}

func (s *MemoryStore) Save(_ context.Context, key string, snap Snapshot) error {
	if key == "" {
		return ErrEmptyKey
	}
	s.lru.Put(key, snap)
	return nil
}

func (s *MemoryStore) Load(_ context.Context, key string) (Snapshot, error) {
	if key == "" {
		return Snapshot{}, ErrEmptyKey
	}
	snap, ok := s.lru.Get(key)
	if !ok {
		return Snapshot{}, ErrNotFound
	}
	return snap, nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	s.lru.Remove(key)
	return nil
}

// Len returns the number of stored snapshots, including expired ones not yet purged.
func (s *MemoryStore) Len() int { return s.lru.Len() }
