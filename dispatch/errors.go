package dispatch

import (
	"errors"

	"github.com/abevier/acmd/internal/submit"
)

var (
	ErrQueueFull   = submit.ErrQueueFull
	ErrClosed      = errors.New("dispatcher has been closed")
	ErrCircuitOpen = errors.New("circuit breaker is open")

	// errFailureResult marks a Failure result as a breaker failure. It never leaves the package.
	errFailureResult = errors.New("command returned a failure")
)
