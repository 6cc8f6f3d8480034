package dispatch

import (
	"context"
	"strconv"
)

type workerIDKey struct{}

func withWorkerID(ctx context.Context, id int) context.Context {
	return context.WithValue(ctx, workerIDKey{}, "worker-"+strconv.Itoa(id))
}

// WorkerIDFromContext attempts to retrieve a worker id string from the current context.
// The Dispatcher adds it before running the command, which makes it useful for logging
// next to command.InvocationIDFromContext.
func WorkerIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(workerIDKey{}).(string)
	return v, ok
}
