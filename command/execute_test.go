package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/abevier/acmd/config"
	"github.com/abevier/acmd/results"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var (
	ErrDummyFailFast = errors.New("dummy fail fast")
	ErrDummyInternal = errors.New("dummy internal")
	ErrTest          = errors.New("test error")
)

var (
	baseDummyType = NewType("base_dummy", config.Settings{
		FailFastError: config.Set("Yo"),
	})
	dummyType = baseDummyType.Extend("dummy", config.Settings{
		FailFastError: config.Set("Default Fail Fast message provided"),
		Unexpected:    config.Mapped(ErrDummyInternal),
	})
	myDummyType = dummyType.Extend("my_dummy", config.Settings{
		FailFastError: config.Set(ErrDummyFailFast),
	})
)

type greeting struct {
	Message       string
	FailFast      bool
	UnexpectedErr bool
}

// myDummy builds a greeting in three steps.
type myDummy struct{ *Type }

func (c myDummy) Call(_ context.Context, in greeting) (*results.Result, error) {
	if in.UnexpectedErr {
		panic("Oooooooops")
	}

	salute := c.buildGreeting(in.Message)
	howdy := c.normalizeSalute(salute, in.FailFast)

	v, _ := howdy.SuccessValue()
	s, _ := v.(string)
	return c.processHowdy(s), nil
}

func (c myDummy) buildGreeting(msg string) *results.Result {
	if msg != "" {
		return c.Success(msg)
	}
	return c.Failure(msg)
}

func (c myDummy) normalizeSalute(salute *results.Result, failFast bool) *results.Result {
	if v, ok := salute.SuccessValue(); ok {
		return c.Success(v.(string) + "!")
	}
	if failFast {
		c.FailFast(salute.Payload())
	}
	return salute
}

func (c myDummy) processHowdy(howdy string) *results.Result {
	if howdy == "" {
		return c.Failure(howdy, results.WithErr("No message provided"))
	}
	return c.Success(strings.ToUpper(howdy),
		results.WithMetaValue("lang", "eng"),
		results.WithMetaValue("length", len(howdy)),
	)
}

func TestExecutePipeline(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	res, err := Execute(ctx, myDummy{myDummyType}, greeting{Message: "Hello, World"})
	require.NoError(err)
	require.True(res.IsSuccess())

	v, ok := res.SuccessValue()
	require.True(ok)
	require.Equal("HELLO, WORLD!", v)
	require.Equal(results.NewMeta("lang", "eng", "length", 13), res.Meta())
	require.Empty(res.Trace())

	res, err = Execute(ctx, myDummy{myDummyType}, greeting{})
	require.NoError(err)
	require.True(res.IsFailure())
	require.Equal("No message provided", res.Err())
	v, _ = res.FailureValue()
	require.Equal("", v)
}

func TestExecuteFailFast(t *testing.T) {
	require := require.New(t)

	res, err := Execute(context.Background(), myDummy{myDummyType}, greeting{FailFast: true})
	require.NoError(err)
	require.True(res.IsFailure())
	require.Equal(ErrDummyFailFast, res.Err())
	require.Contains(res.Trace(), "execute_test.go:")

	// the same body on the parent type resolves the parent's fail-fast error
	res, err = Execute(context.Background(), myDummy{dummyType}, greeting{FailFast: true})
	require.NoError(err)
	require.Equal("Default Fail Fast message provided", res.Err())
}

func TestExecuteUnexpectedMapped(t *testing.T) {
	require := require.New(t)

	res, err := Execute(context.Background(), myDummy{myDummyType}, greeting{UnexpectedErr: true})
	require.NoError(err)
	require.True(res.IsFailure())
	require.Equal(ErrDummyInternal, res.Err())

	v, ok := res.FailureValue()
	require.True(ok)
	pe, ok := v.(*PanicError)
	require.True(ok)
	require.Equal("Oooooooops", pe.Value)
	require.NotEmpty(pe.Stack)
	require.Contains(res.Trace(), "execute_test.go:")
}

func TestFailFastStopsExecution(t *testing.T) {
	require := require.New(t)

	typ := NewType("abort", config.Settings{FailFastError: config.Set("aborted")})

	reached := 0
	validate := func(n int) int {
		if n < 0 {
			typ.FailFast(n)
		}
		return n
	}
	transform := func(n int) int {
		reached++
		return n * 2
	}

	cmd := Func(typ, func(_ context.Context, n int) (*results.Result, error) {
		v := transform(validate(n))
		reached++
		return typ.Success(v), nil
	})

	res, err := Execute(context.Background(), cmd, -1)
	require.NoError(err)
	require.Equal("aborted", res.Err())
	require.Equal(0, reached)

	res, err = Execute(context.Background(), cmd, 2)
	require.NoError(err)
	require.Equal(results.Success(4), res)
	require.Equal(2, reached)
}

func TestExecuteReturnedFailFast(t *testing.T) {
	require := require.New(t)

	typ := NewType("abort", config.Settings{FailFastError: config.Set("aborted")})

	cmd := Func(typ, func(_ context.Context, wrap bool) (*results.Result, error) {
		err := typ.FailFastErr("input")
		if wrap {
			err = fmt.Errorf("step failed: %w", err)
		}
		return nil, err
	})

	for _, wrap := range []bool{false, true} {
		res, err := Execute(context.Background(), cmd, wrap)
		require.NoError(err)
		require.True(res.IsFailure())
		require.Equal("aborted", res.Err())
		require.Contains(res.Trace(), "execute_test.go:")

		v, _ := res.FailureValue()
		require.Equal("input", v)
	}
}

func TestExecuteDisabled(t *testing.T) {
	require := require.New(t)

	typ := NewType("strict", config.Settings{Unexpected: config.Disabled()})

	panicking := Func(typ, func(_ context.Context, _ struct{}) (*results.Result, error) {
		panic(ErrTest)
	})
	require.PanicsWithValue(ErrTest, func() {
		_, _ = Execute(context.Background(), panicking, struct{}{})
	})

	returning := Func(typ, func(_ context.Context, _ struct{}) (*results.Result, error) {
		return nil, ErrTest
	})
	res, err := Execute(context.Background(), returning, struct{}{})
	require.Nil(res)
	require.Equal(ErrTest, err)
	require.EqualError(err, ErrTest.Error())

	// fail-fast is still caught when unexpected errors are not
	failing := Func(typ, func(_ context.Context, _ struct{}) (*results.Result, error) {
		typ.FailFast(nil, results.WithErr("halt"))
		return nil, nil
	})
	res, err = Execute(context.Background(), failing, struct{}{})
	require.NoError(err)
	require.Equal("halt", res.Err())
}

func TestExecutePassthrough(t *testing.T) {
	require := require.New(t)

	typ := NewType("lenient", config.Settings{})
	require.Equal(config.ModePassthrough, typ.Settings().Unexpected.Mode)

	returning := Func(typ, func(_ context.Context, _ struct{}) (*results.Result, error) {
		return nil, ErrTest
	})
	res, err := Execute(context.Background(), returning, struct{}{})
	require.NoError(err)
	require.True(res.IsFailure())
	require.Equal(ErrTest, res.Err())
	require.Equal(ErrTest, res.Payload())
	require.Equal("lenient: returned error", res.Trace())

	panicking := Func(typ, func(_ context.Context, _ struct{}) (*results.Result, error) {
		var steps []string
		return results.Success(steps[3]), nil
	})
	res, err = Execute(context.Background(), panicking, struct{}{})
	require.NoError(err)
	require.True(res.IsFailure())
	require.Same(res.Payload(), res.Err())

	pe, ok := res.Err().(*PanicError)
	require.True(ok)
	require.Contains(pe.Error(), "index out of range")
	require.Contains(res.Trace(), "execute_test.go:")
}

func TestExecuteMappedReturnedError(t *testing.T) {
	require := require.New(t)

	typ := NewType("mapped", config.Settings{Unexpected: config.Mapped("internal_error")})

	cmd := Func(typ, func(_ context.Context, _ struct{}) (*results.Result, error) {
		return results.Success("ignored"), ErrTest
	})

	res, err := Execute(context.Background(), cmd, struct{}{})
	require.NoError(err)
	require.Equal("internal_error", res.Err())

	v, ok := res.FailureValue()
	require.True(ok)
	require.Equal(ErrTest, v)
}

func TestExecutePassesResultThrough(t *testing.T) {
	require := require.New(t)

	typ := NewType("identity", config.Settings{})
	want := results.Failure("x", results.WithErr("y"))

	cmd := Func(typ, func(_ context.Context, r *results.Result) (*results.Result, error) {
		return r, nil
	})

	res, err := Execute(context.Background(), cmd, want)
	require.NoError(err)
	require.Same(want, res)
	require.Empty(res.Trace())

	res, err = Execute(context.Background(), cmd, nil)
	require.NoError(err)
	require.Nil(res)
}

func TestExecuteRaw(t *testing.T) {
	require := require.New(t)

	callee := RawFunc[string, string](func(_ context.Context, in string) (string, error) {
		return in, nil
	})
	v, err := ExecuteRaw[string, string](context.Background(), callee, "Success!")
	require.NoError(err)
	require.Equal("Success!", v)

	typ := NewType("raw", config.Settings{FailFastError: config.Set("halt")})
	cmd := Func(typ, func(_ context.Context, in string) (*results.Result, error) {
		if in == "" {
			typ.FailFast(nil)
		}
		if in == "err" {
			return nil, ErrTest
		}
		return typ.Success(in), nil
	})

	res, err := ExecuteRaw[string, *results.Result](context.Background(), cmd, "ok")
	require.NoError(err)
	require.Equal(results.Success("ok"), res)

	_, err = ExecuteRaw[string, *results.Result](context.Background(), cmd, "err")
	require.ErrorIs(err, ErrTest)

	ff := catchFailFast(func() {
		_, _ = ExecuteRaw[string, *results.Result](context.Background(), cmd, "")
	})
	require.NotNil(ff)
	require.Equal("halt", ff.Failure.Err())
}

func TestInvocationID(t *testing.T) {
	require := require.New(t)

	_, ok := InvocationIDFromContext(context.Background())
	require.False(ok)

	var ids []string
	cmd := Func(NewType("ids", config.Settings{}), func(ctx context.Context, _ struct{}) (*results.Result, error) {
		id, ok := InvocationIDFromContext(ctx)
		require.True(ok)
		ids = append(ids, id)
		return results.Success(id), nil
	})

	for i := 0; i < 2; i++ {
		_, err := Execute(context.Background(), cmd, struct{}{})
		require.NoError(err)
	}

	require.Len(ids, 2)
	require.NotEqual(ids[0], ids[1])
	for _, id := range ids {
		_, err := uuid.Parse(id)
		require.NoError(err)
	}
}

func TestExecuteLogs(t *testing.T) {
	require := require.New(t)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	typ := NewType("logged", config.Settings{Unexpected: config.Mapped("internal")}).WithLogger(logger)
	cmd := Func(typ, func(_ context.Context, failFast bool) (*results.Result, error) {
		if failFast {
			typ.FailFast(nil)
		}
		return nil, ErrTest
	})

	_, err := Execute(context.Background(), cmd, false)
	require.NoError(err)
	require.Contains(buf.String(), "unexpected error converted to failure")
	require.Contains(buf.String(), "command=logged")
	require.Contains(buf.String(), "invocation_id=")
	require.Contains(buf.String(), "policy=mapped")

	buf.Reset()
	_, err = Execute(context.Background(), cmd, true)
	require.NoError(err)
	require.Contains(buf.String(), "fail fast caught")

	buf.Reset()
	strict := typ.Extend("strict", config.Settings{Unexpected: config.Disabled()})
	_, err = Execute(context.Background(), Func(strict, cmd.Call), false)
	require.ErrorIs(err, ErrTest)
	require.Contains(buf.String(), "unexpected error escaped command")
	require.Contains(buf.String(), "command=strict")
}

func TestResultsAreIdempotent(t *testing.T) {
	require := require.New(t)

	cmd := myDummy{myDummyType}

	first, err := Execute(context.Background(), cmd, greeting{Message: "hi"})
	require.NoError(err)
	second, err := Execute(context.Background(), cmd, greeting{Message: "hi"})
	require.NoError(err)

	require.NotSame(first, second)
	require.True(first.Equal(second))
	require.Equal(first, second)
}

func TestGo(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	res, err := Go(ctx, myDummy{myDummyType}, greeting{Message: "hey"}).Get(ctx)
	require.NoError(err)
	require.Equal("HEY!", res.Payload())

	typ := NewType("strict", config.Settings{Unexpected: config.Disabled()})

	returning := Func(typ, func(_ context.Context, _ int) (*results.Result, error) {
		return nil, ErrTest
	})
	_, err = Go(ctx, returning, 1).Get(ctx)
	require.ErrorIs(err, ErrTest)

	panicking := Func(typ, func(_ context.Context, _ int) (*results.Result, error) {
		panic(ErrTest)
	})
	_, err = Go(ctx, panicking, 1).Get(ctx)

	var pe *PanicError
	require.ErrorAs(err, &pe)
	require.ErrorIs(err, ErrTest)
}

var (
	abortType = NewType("abort", config.Settings{FailFastError: config.Set("aborted")})
	errAbort  = abortType.FailFastErr("shared")
)

func TestExecuteSharedFailFastErr(t *testing.T) {
	require := require.New(t)

	cmd := Func(abortType, func(_ context.Context, _ int) (*results.Result, error) {
		return nil, errAbort
	})

	const n = 8
	got := make([]*results.Result, n)

	wg := sync.WaitGroup{}
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			res, err := Execute(context.Background(), cmd, i)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			got[i] = res
		}(i)
	}
	wg.Wait()

	ff, ok := AsFailFast(errAbort)
	require.True(ok)
	require.Empty(ff.Failure.Trace())

	for i := 1; i < n; i++ {
		require.NotSame(got[0], got[i])
	}
	for _, res := range got {
		require.Equal("aborted", res.Err())
		require.Equal("shared", res.Payload())
		require.Equal(ff.Site, res.Trace())
	}
}

func TestExecuteWrappedFailFastPanic(t *testing.T) {
	require := require.New(t)

	typ := NewType("strict", config.Settings{
		FailFastError: config.Set("halted"),
		Unexpected:    config.Disabled(),
	})

	cmd := Func(typ, func(_ context.Context, _ struct{}) (*results.Result, error) {
		panic(fmt.Errorf("step: %w", typ.FailFastErr("input")))
	})

	var (
		res *results.Result
		err error
	)
	require.NotPanics(func() {
		res, err = Execute(context.Background(), cmd, struct{}{})
	})
	require.NoError(err)
	require.True(res.IsFailure())
	require.Equal("halted", res.Err())
	require.Contains(res.Trace(), "execute_test.go:")
}

func TestExecuteUnresolvedPolicy(t *testing.T) {
	require := require.New(t)

	typ := &Type{name: "bare"}
	cmd := Func(typ, func(_ context.Context, _ struct{}) (*results.Result, error) {
		return nil, ErrTest
	})

	res, err := Execute(context.Background(), cmd, struct{}{})
	require.NoError(err)
	require.True(res.IsFailure())
	require.Equal(ErrTest, res.Err())
}
