package command

import "context"

type invocationIDKey struct{}

func withInvocationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, invocationIDKey{}, id)
}

// InvocationIDFromContext returns the id Execute assigned to the running invocation.
// The id is also attached to every log record of the invocation.
func InvocationIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(invocationIDKey{}).(string)
	return v, ok
}
