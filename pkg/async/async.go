package async

import (
	"context"
	"fmt"
	"sync/atomic"
)

// Future represents the result of an asynchronous computation.
type Future[U any] struct {
	result U
	err    error
	done   chan struct{}
}

// Await waits for the computation and returns its result.
func (f *Future[U]) Await() (U, error) {
	<-f.done
	return f.result, f.err
}

// AwaitContext is like Await but gives up when ctx is done.
func (f *Future[U]) AwaitContext(ctx context.Context) (U, error) {
	select {
	case <-f.done:
		return f.result, f.err
	case <-ctx.Done():
		var zero U
		return zero, ctx.Err()
	}
}

// Done is closed once the computation has finished.
func (f *Future[U]) Done() <-chan struct{} {
	return f.done
}

// IsComplete reports whether the computation has finished without blocking.
func (f *Future[U]) IsComplete() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Then calls fn with the result once the computation finishes. fn runs on
// its own goroutine.
func (f *Future[U]) Then(fn func(U, error)) {
	go func() {
		fn(f.Await())
	}()
}

// Async runs fn(ctx, param) in a new goroutine. A context that is already
// cancelled completes the future with ctx.Err() without calling fn. A panic
// in fn completes the future with an error.
func Async[T any, U any](ctx context.Context, param T, fn func(context.Context, T) (U, error)) *Future[U] {
	f := &Future[U]{done: make(chan struct{})}
	if fn == nil {
		f.err = ErrNilFunc
		close(f.done)
		return f
	}

	go func() {
		defer close(f.done)
		defer func() {
			if r := recover(); r != nil {
				var zero U
				f.result, f.err = zero, fmt.Errorf("async: panic: %v", r)
			}
		}()

		if err := ctx.Err(); err != nil {
			f.err = err
			return
		}
		f.result, f.err = fn(ctx, param)
	}()

	return f
}

// Generation hands out increasing attempt numbers. The zero value is ready
// to use and safe for concurrent use.
type Generation struct {
	n atomic.Uint64
}

// Next starts a new attempt and returns its number. Every earlier number
// stops being current.
func (g *Generation) Next() uint64 {
	return g.n.Add(1)
}

// Invalidate makes every outstanding number stale without starting an
// attempt.
func (g *Generation) Invalidate() {
	g.n.Add(1)
}

// Current returns the latest number.
func (g *Generation) Current() uint64 {
	return g.n.Load()
}

// IsCurrent reports whether n is still the latest number.
func (g *Generation) IsCurrent(n uint64) bool {
	return g.n.Load() == n
}
