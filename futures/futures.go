// Package futures provides a Future: a value computed asynchronously that any number of
// goroutines can wait for. Unlike a channel, a completed Future can be read again and again.
package futures

import (
	"context"
	"errors"
	"sync/atomic"
)

var (
	// ErrCanceled is the error reported by a Future completed with Cancel.
	ErrCanceled = errors.New("future canceled")
)

// FutureFunc computes the value of a Future created with FromFunc.
type FutureFunc[T any] func() (T, error)

// Future is the eventual outcome of an asynchronous computation.
// It is completed exactly once. The first call to Complete, Fail or Cancel wins and
// later calls are ignored.
type Future[T any] struct {
	isCompleted uint32
	completed   chan struct{}

	value T
	err   error
}

// New creates an uncompleted Future.
func New[T any]() *Future[T] {
	return &Future[T]{
		completed: make(chan struct{}),
	}
}

// FromFunc runs do on a new goroutine and completes the returned Future with its outcome.
func FromFunc[T any](do FutureFunc[T]) *Future[T] {
	f := New[T]()

	go func() {
		t, err := do()
		if err != nil {
			f.Fail(err)
			// without this return a failed do also reached Complete
			return
		}
		f.Complete(t)
	}()

	return f
}

// Complete completes f with value.
func (f *Future[T]) Complete(value T) {
	f.complete(value, nil)
}

// Fail completes f with err.
func (f *Future[T]) Fail(err error) {
	var zero T
	f.complete(zero, err)
}

// Cancel completes f with ErrCanceled.
func (f *Future[T]) Cancel() {
	f.Fail(ErrCanceled)
}

func (f *Future[T]) complete(val T, err error) {
	if atomic.CompareAndSwapUint32(&f.isCompleted, 0, 1) {
		f.value = val
		f.err = err
		close(f.completed)
	}
}

// Done returns a channel that is closed once f is completed.
func (f *Future[T]) Done() <-chan struct{} {
	return f.completed
}

// Get waits for f to complete and returns its value and error. If ctx ends first, Get
// returns ctx.Err() and f stays uncompleted.
func (f *Future[T]) Get(ctx context.Context) (T, error) {
	select {
	case <-f.completed:
		return f.value, f.err
	case <-ctx.Done():
		// report why the wait ended, not a generic timeout
		var zero T
		return zero, ctx.Err()
	}
}
