// Package cache provides a generic, thread-safe LRU cache with optional
// expiry.
//
// The cache evicts the least recently used entry once it exceeds its
// capacity. With WithTTL, entries not written for the TTL are dropped lazily
// on Get or in bulk by RemoveExpired:
//
//	sessions := cache.NewLRUCache[string, *Session](10_000, cache.WithTTL(30*time.Minute))
//	sessions.SetEvictCallback(func(_ string, s *Session) { s.Close() })
//
// The evict callback fires for eviction, expiry, Remove and Clear. It runs
// outside the cache lock, so it may block or call back into the cache.
//
// Get, Put and Remove are O(1).
package cache
