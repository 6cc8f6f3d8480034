package command

import (
	"context"
	"log/slog"
	"runtime/debug"

	"github.com/abevier/acmd/config"
	"github.com/abevier/acmd/futures"
	"github.com/abevier/acmd/results"
	"github.com/google/uuid"
)

// Execute runs c with in and returns its Result.
//
// A Result returned by Call is passed through unchanged. A FailFast anywhere below Call,
// or a returned FailFastError, yields the carried Failure with its trace set to the
// FailFast call site. Any other panic, or a non-nil error returned by Call, is handled
// by the type's unexpected error policy:
//
//   - config.ModeDisabled: the original panic value is re-panicked, or the returned
//     error is returned unchanged.
//   - config.ModePassthrough: a Failure whose payload and error are the fault.
//   - config.ModeMapped: a Failure whose payload is the fault and whose error is the
//     configured value.
//
// A panic whose value wraps a *FailFastError counts as a FailFast. A FailFastError
// stored and returned by several invocations yields a separate Result for each one,
// traced to where FailFastErr was called.
// A recovered panic is represented by a *PanicError. A non-nil error is returned only
// under ModeDisabled.
func Execute[I any](ctx context.Context, c Command[I], in I) (res *results.Result, err error) {
	inv := newInvocation(ctx, c.CommandType())

	defer func() {
		v := recover()
		if v == nil {
			return
		}

		if e, ok := v.(error); ok {
			if ff, ok := AsFailFast(e); ok {
				res, err = inv.failFast(ff), nil
				return
			}
		}

		fault := &PanicError{Value: v, Stack: debug.Stack()}
		res = inv.unexpected(fault, panicSite())
		if res == nil {
			panic(v)
		}
		err = nil
	}()

	res, err = c.Call(inv.ctx, in)
	if err == nil {
		return res, nil
	}

	if ff, ok := AsFailFast(err); ok {
		return inv.failFast(ff), nil
	}

	if converted := inv.unexpected(err, inv.t.Name()+": returned error"); converted != nil {
		return converted, nil
	}
	return nil, err
}

// Raw is any command body, including ones that do not produce a Result.
type Raw[I any, R any] interface {
	Call(ctx context.Context, in I) (R, error)
}

// RawFunc adapts a function to Raw.
type RawFunc[I any, R any] func(ctx context.Context, in I) (R, error)

func (f RawFunc[I, R]) Call(ctx context.Context, in I) (R, error) {
	return f(ctx, in)
}

// ExecuteRaw runs c without interpreting its outcome. The return values are those of
// Call and every panic, FailFast included, reaches the caller.
func ExecuteRaw[I any, R any](ctx context.Context, c Raw[I, R], in I) (R, error) {
	return c.Call(withInvocationID(ctx, uuid.NewString()), in)
}

// Go runs Execute on a new goroutine. A panic that escapes Execute fails the
// future with a *PanicError instead of crashing the program.
func Go[I any](ctx context.Context, c Command[I], in I) *futures.Future[*results.Result] {
	f := futures.New[*results.Result]()

	go func() {
		defer func() {
			if v := recover(); v != nil {
				f.Fail(&PanicError{Value: v, Stack: debug.Stack()})
			}
		}()

		res, err := Execute(ctx, c, in)
		if err != nil {
			f.Fail(err)
			return
		}
		f.Complete(res)
	}()

	return f
}

type invocation struct {
	t   *Type
	ctx context.Context
	log *slog.Logger
}

func newInvocation(ctx context.Context, t *Type) invocation {
	id := uuid.NewString()
	return invocation{
		t:   t,
		ctx: withInvocationID(ctx, id),
		log: t.log().With("command", t.Name(), "invocation_id", id),
	}
}

func (inv invocation) failFast(ff *FailFastError) *results.Result {
	var res *results.Result
	if ff.Failure == nil {
		res = inv.t.failure(inv.t.settings.FailFastError.Value(), nil, nil)
		res.SetTrace(ff.Site)
	} else {
		// the signal may be reused by other invocations
		res = ff.Failure.WithTrace(ff.Site)
	}

	inv.log.DebugContext(inv.ctx, "fail fast caught", "trace", ff.Site, "error", res.Err())
	return res
}

// unexpected converts fault into a Failure, or returns nil when the policy lets it escape.
func (inv invocation) unexpected(fault error, trace string) *results.Result {
	policy := inv.t.settings.Unexpected

	var res *results.Result
	switch policy.Mode {
	case config.ModePassthrough:
		res = results.Failure(fault, results.WithErr(fault))
	case config.ModeMapped:
		res = results.Failure(fault, results.WithErr(policy.Value))
	case config.ModeDisabled:
		inv.log.WarnContext(inv.ctx, "unexpected error escaped command",
			"error", fault,
			"trace", trace,
		)
		return nil
	default:
		// a Type built without NewType has no resolved policy, use the root one
		policy = config.Root().Unexpected
		res = results.Failure(fault, results.WithErr(fault))
	}

	res.SetTrace(trace)
	inv.log.ErrorContext(inv.ctx, "unexpected error converted to failure",
		"error", fault,
		"trace", trace,
		"policy", policy.Mode.String(),
	)
	return res
}
