package async

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultYieldInterval is the pause Batch inserts between chunks.
const DefaultYieldInterval = 10 * time.Millisecond

type batchConfig struct {
	yield func(context.Context) error
}

// BatchOption configures Batch.
type BatchOption func(*batchConfig)

// WithYieldInterval changes the pause between chunks. Zero disables it.
func WithYieldInterval(d time.Duration) BatchOption {
	return func(c *batchConfig) {
		c.yield = func(ctx context.Context) error { return sleep(ctx, d) }
	}
}

// WithYield replaces the pause between chunks with fn.
func WithYield(fn func(context.Context) error) BatchOption {
	return func(c *batchConfig) {
		if fn != nil {
			c.yield = fn
		}
	}
}

// Batch processes items in sequential chunks of size. Items within a chunk run
// concurrently and the whole chunk settles before the next one starts; between
// chunks (never after the last) the runner yields for DefaultYieldInterval.
// Results keep input order. The first error stops processing once its chunk
// has settled, and the results of completed chunks are returned with it.
func Batch[T, R any](ctx context.Context, items []T, size int, fn func(context.Context, T) (R, error), opts ...BatchOption) ([]R, error) {
	if size <= 0 {
		return nil, ErrInvalidBatchSize
	}
	if fn == nil {
		return nil, ErrNilFunc
	}

	cfg := &batchConfig{
		yield: func(ctx context.Context) error { return sleep(ctx, DefaultYieldInterval) },
	}
	for _, opt := range opts {
		opt(cfg)
	}

	results := make([]R, len(items))
	for start := 0; start < len(items); start += size {
		if err := ctx.Err(); err != nil {
			return results[:start], err
		}

		end := min(start+size, len(items))
		g, gctx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			g.Go(func() error {
				r, err := call(gctx, items[i], fn)
				if err != nil {
					return err
				}
				results[i] = r
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return results[:start], err
		}

		if end < len(items) {
			if err := cfg.yield(ctx); err != nil {
				return results[:end], err
			}
		}
	}

	return results, nil
}

// Concurrent runs fn over items with at most limit calls in flight. A new item
// is admitted as soon as any slot frees. Results are appended in completion
// order, not input order. After the first error no further items are
// admitted; in-flight calls see a cancelled context.
func Concurrent[T, R any](ctx context.Context, items []T, limit int, fn func(context.Context, T) (R, error)) ([]R, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	if fn == nil {
		return nil, ErrNilFunc
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	var mu sync.Mutex
	results := make([]R, 0, len(items))

	for _, item := range items {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			r, err := call(gctx, item, fn)
			if err != nil {
				return err
			}
			mu.Lock()
			results = append(results, r)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, ctx.Err()
}

func call[T, R any](ctx context.Context, item T, fn func(context.Context, T) (R, error)) (r R, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v", ErrPanic, p)
		}
	}()
	return fn(ctx, item)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
