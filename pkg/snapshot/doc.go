// Package snapshot persists per-session device detection results together
// with the optimization config in effect, so a returning client can be served
// an adapted page before it reports fresh signals.
//
// Three Store implementations are provided:
//
//   - MemoryStore: bounded LRU with TTL, for single-instance deployments and tests.
//   - RedisStore: JSON values with a key prefix and native key expiry.
//   - SQLiteStore: a local database file, pure Go via ncruces/go-sqlite3.
//
// Load returns ErrNotFound for missing or expired keys.
//
//	store := snapshot.NewMemoryStore(snapshot.WithTTL(time.Hour))
//	_ = store.Save(ctx, sessionID, snapshot.New(info, mgr.Config()))
//	snap, err := store.Load(ctx, sessionID)
package snapshot
