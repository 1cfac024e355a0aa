package async

import (
	"context"
	"time"
)

// Future holds the outcome of a function started by Async. The outcome is
// written exactly once, before done is closed.
type Future[U any] struct {
	value U
	err   error
	done  chan struct{}
}

func (f *Future[U]) settle(v U, err error) {
	f.value, f.err = v, err
	close(f.done)
}

// Done is closed once the future has settled.
func (f *Future[U]) Done() <-chan struct{} { return f.done }

// Await blocks until the future settles.
func (f *Future[U]) Await() (U, error) {
	<-f.done
	return f.value, f.err
}

// AwaitWithTimeout is Await bounded by d. ErrTimeout is returned when the
// future is still pending after d; the underlying function keeps running.
func (f *Future[U]) AwaitWithTimeout(d time.Duration) (U, error) {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-f.done:
		return f.value, f.err
	case <-timer.C:
		var zero U
		return zero, ErrTimeout
	}
}

// AwaitContext is Await bounded by ctx.
func (f *Future[U]) AwaitContext(ctx context.Context) (U, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero U
		return zero, ctx.Err()
	}
}

// IsComplete reports whether the future has settled, without blocking.
func (f *Future[U]) IsComplete() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Async runs fn(ctx, arg) on its own goroutine. A context that is already
// done settles the future with ctx.Err() without calling fn, and a panic in fn
// settles it with an error wrapping ErrPanic.
func Async[T, U any](ctx context.Context, arg T, fn func(context.Context, T) (U, error)) *Future[U] {
	f := &Future[U]{done: make(chan struct{})}
	go func() {
		var zero U
		if err := ctx.Err(); err != nil {
			f.settle(zero, err)
			return
		}
		v, err := call(ctx, arg, fn)
		f.settle(v, err)
	}()
	return f
}

// WaitAll awaits futures in order and stops at the first error. The returned
// slice always has one slot per future; slots after the failing one are zero.
func WaitAll[U any](futures ...*Future[U]) ([]U, error) {
	out := make([]U, len(futures))
	for i, f := range futures {
		v, err := f.Await()
		out[i] = v
		if err != nil {
			return out, err
		}
	}
	return out, nil
}

// WaitAny returns the index and outcome of the first future to settle.
func WaitAny[U any](futures ...*Future[U]) (int, U, error) {
	var zero U
	if len(futures) == 0 {
		return -1, zero, ErrNoFutures
	}

	first := make(chan int, len(futures))
	for i, f := range futures {
		go func() {
			<-f.done
			first <- i
		}()
	}

	i := <-first
	v, err := futures[i].Await()
	return i, v, err
}
