package dispatch

import (
	"log/slog"
	"time"

	"github.com/abevier/acmd/internal/submit"
	"golang.org/x/time/rate"
)

// FullQueueStrategy is the behavior when more invocations are submitted than the queue holds.
type FullQueueStrategy submit.Strategy

const (
	// BlockWhenFull exerts back pressure by blocking the caller until there is room.
	BlockWhenFull FullQueueStrategy = FullQueueStrategy(submit.BlockWhenFull)
	// ErrorWhenFull immediately reports ErrQueueFull.
	ErrorWhenFull FullQueueStrategy = FullQueueStrategy(submit.ErrorWhenFull)
)

// Limit is a rate limit expressed as invocations per second.
type Limit = rate.Limit

// Every converts an interval between invocations into a Limit,
// Every(100 * time.Millisecond) is 10 invocations per second.
func Every(interval time.Duration) Limit {
	return rate.Every(interval)
}

// Opts configures a Dispatcher created with New.
type Opts struct {
	// MaxWorkers is the number of invocations run concurrently.
	MaxWorkers int
	// MaxQueueDepth is the number of submitted invocations waiting for a worker.
	MaxQueueDepth int
	// FullQueueStrategy selects what Submit does when the queue is full.
	// By default the caller is blocked.
	FullQueueStrategy FullQueueStrategy
	// Limit caps the rate at which invocations start. Zero means no limit.
	Limit Limit
	// Burst is the token bucket size. Required when Limit is set.
	Burst int
	// Breaker enables a circuit breaker around the command when set.
	Breaker *BreakerOpts
	// Logger receives breaker state changes. Defaults to slog.Default().
	Logger *slog.Logger
}

// BreakerOpts configures the circuit breaker.
type BreakerOpts struct {
	// FailureThreshold is the number of consecutive failed invocations that opens the breaker.
	FailureThreshold uint32
	// MaxRequests is the number of invocations allowed while half-open.
	MaxRequests uint32
	// Interval is the period after which closed-state counts are cleared. Zero never clears.
	Interval time.Duration
	// Timeout is how long the breaker stays open.
	Timeout time.Duration
}

func (o Opts) validate() {
	if o.MaxWorkers < 1 {
		panic("dispatcher max workers must be 1 or greater")
	}

	if o.MaxQueueDepth < 0 {
		panic("dispatcher max queue depth must be 0 or greater")
	}

	if o.Limit < 0 {
		panic("dispatcher limit must be 0 or greater")
	}

	if o.Limit > 0 && o.Burst < 1 {
		panic("dispatcher burst must be 1 or greater when a limit is set")
	}

	if o.Breaker != nil && o.Breaker.FailureThreshold < 1 {
		panic("dispatcher breaker failure threshold must be 1 or greater")
	}
}
