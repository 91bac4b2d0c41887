// Package async models results that complete later.
package async

import (
	"context"
	"time"
)

// Future is the eventual result of an operation.
type Future[T any] struct {
	done chan struct{}
	val  T
	err  error
}

// After returns a Future that resolves to (val, err) once delay has passed.
// A non-positive delay resolves immediately.
func After[T any](delay time.Duration, val T, err error) *Future[T] {
	f := &Future[T]{done: make(chan struct{}), val: val, err: err}
	if delay <= 0 {
		close(f.done)
		return f
	}
	time.AfterFunc(delay, func() { close(f.done) })
	return f
}

// Failed returns an already resolved Future carrying err.
func Failed[T any](err error) *Future[T] {
	var zero T
	return After(0, zero, err)
}

func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Await blocks until the Future resolves or ctx is done.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
