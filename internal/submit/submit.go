// Package submit holds the strategies used to hand work to a bounded queue.
package submit

import (
	"context"
	"errors"
	"log"
)

var (
	ErrQueueFull = errors.New("queue is full")
)

// Strategy decides what happens when the queue has no free slot.
type Strategy int

const (
	// BlockWhenFull waits for a free slot or for the context to end.
	BlockWhenFull Strategy = iota
	// ErrorWhenFull fails immediately with ErrQueueFull.
	ErrorWhenFull
)

// Func places item on queue.
type Func[T any] func(ctx context.Context, queue chan<- T, item T) error

// For returns the Func implementing s. It panics on an unknown strategy.
func For[T any](s Strategy) Func[T] {
	switch s {
	case BlockWhenFull:
		return blockWhenFull[T]
	case ErrorWhenFull:
		return errorWhenFull[T]
	default:
		log.Panicf("invalid submit strategy value %d", s)
	}
	return nil
}

func blockWhenFull[T any](ctx context.Context, queue chan<- T, item T) error {
	select {
	case queue <- item:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func errorWhenFull[T any](ctx context.Context, queue chan<- T, item T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	select {
	case queue <- item:
		return nil
	default:
		return ErrQueueFull
	}
}
