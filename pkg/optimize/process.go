package optimize

import (
	"context"

	"github.com/dmitrymomot/adaptive/pkg/async"
)

// BatchProcess runs fn over items in sequential chunks, with the items of a
// chunk running concurrently. The chunk size defaults to the configured batch
// size; an explicit size must be positive. Results keep input order.
func BatchProcess[T, R any](ctx context.Context, m *Manager, items []T, fn func(context.Context, T) (R, error), batchSize ...int) ([]R, error) {
	size := m.Config().Performance.BatchSize
	if len(batchSize) > 0 {
		size = batchSize[0]
	}
	return async.Batch(ctx, items, size, fn, async.WithYieldInterval(m.opts.yieldInterval))
}

// ConcurrentProcess runs fn over items with a sliding window of at most
// maxConcurrent calls in flight, defaulting to the configured limit.
// Results are in completion order.
func ConcurrentProcess[T, R any](ctx context.Context, m *Manager, items []T, fn func(context.Context, T) (R, error), maxConcurrent ...int) ([]R, error) {
	limit := m.Config().Performance.MaxConcurrent
	if len(maxConcurrent) > 0 {
		limit = maxConcurrent[0]
	}
	return async.Concurrent(ctx, items, limit, fn)
}
