// Package dispatch runs invocations of a single command on a bounded pool of workers.
// Each invocation goes through command.Execute, so callers receive the same Result they
// would get from calling Execute directly. Optionally the start rate is limited and a
// circuit breaker stops invoking the command after repeated failures.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/abevier/acmd/command"
	"github.com/abevier/acmd/futures"
	"github.com/abevier/acmd/internal/gate"
	"github.com/abevier/acmd/internal/submit"
	"github.com/abevier/acmd/results"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

type task[I any] struct {
	ctx    context.Context
	in     I
	future *futures.Future[*results.Result]
}

// Dispatcher runs a command for submitted inputs.
type Dispatcher[I any] struct {
	cmd   command.Command[I]
	queue chan task[I]

	submit  submit.Func[task[I]]
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[*results.Result]
	logger  *slog.Logger

	gate    *gate.Gate
	workers sync.WaitGroup
}

// New starts a Dispatcher for cmd. It panics if opts is invalid.
func New[I any](opts Opts, cmd command.Command[I]) *Dispatcher[I] {
	opts.validate()

	d := &Dispatcher[I]{
		cmd:    cmd,
		queue:  make(chan task[I], opts.MaxQueueDepth),
		submit: submit.For[task[I]](submit.Strategy(opts.FullQueueStrategy)),
		logger: opts.Logger,
		gate:   gate.New(),
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}

	if opts.Limit > 0 {
		d.limiter = rate.NewLimiter(opts.Limit, opts.Burst)
	}

	if opts.Breaker != nil {
		d.breaker = d.newBreaker(*opts.Breaker)
	}

	for i := 0; i < opts.MaxWorkers; i++ {
		d.workers.Add(1)
		go d.worker(i)
	}

	return d
}

func (d *Dispatcher[I]) newBreaker(o BreakerOpts) *gobreaker.CircuitBreaker[*results.Result] {
	return gobreaker.NewCircuitBreaker[*results.Result](gobreaker.Settings{
		Name:        d.cmd.CommandType().Name(),
		MaxRequests: o.MaxRequests,
		Interval:    o.Interval,
		Timeout:     o.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= o.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			d.logger.Info("circuit breaker state changed",
				"command", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})
}

func (d *Dispatcher[I]) worker(id int) {
	defer d.workers.Done()

	for t := range d.queue {
		ctx := withWorkerID(t.ctx, id)

		if err := ctx.Err(); err != nil {
			t.future.Fail(err)
			continue
		}

		if d.limiter != nil {
			if err := d.limiter.Wait(ctx); err != nil {
				t.future.Fail(err)
				continue
			}
		}

		res, err := d.run(ctx, t.in)
		if err != nil {
			t.future.Fail(err)
			continue
		}
		t.future.Complete(res)
	}
}

func (d *Dispatcher[I]) run(ctx context.Context, in I) (*results.Result, error) {
	if d.breaker == nil {
		return d.execute(ctx, in)
	}

	res, err := d.breaker.Execute(func() (*results.Result, error) {
		res, err := d.execute(ctx, in)
		if err == nil && res != nil && res.IsFailure() {
			return res, errFailureResult
		}
		return res, err
	})

	switch {
	case errors.Is(err, errFailureResult):
		return res, nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return nil, fmt.Errorf("%w: %s", ErrCircuitOpen, d.cmd.CommandType().Name())
	default:
		return res, err
	}
}

// execute keeps a panic let through by the command's policy from killing the worker.
func (d *Dispatcher[I]) execute(ctx context.Context, in I) (res *results.Result, err error) {
	defer func() {
		if v := recover(); v != nil {
			res, err = nil, &command.PanicError{Value: v, Stack: debug.Stack()}
		}
	}()

	return command.Execute(ctx, d.cmd, in)
}

// Submit runs the command for in and waits for its Result.
// The error is non-nil when the invocation could not be run (ErrQueueFull, ErrClosed,
// ErrCircuitOpen or a context error) or when the command's policy let a fault escape.
// A panic that escaped is reported as a *command.PanicError.
func (d *Dispatcher[I]) Submit(ctx context.Context, in I) (*results.Result, error) {
	return d.SubmitF(ctx, in).Get(ctx)
}

// SubmitF queues the command for in and returns a Future of its Result.
func (d *Dispatcher[I]) SubmitF(ctx context.Context, in I) *futures.Future[*results.Result] {
	f := futures.New[*results.Result]()
	t := task[I]{ctx: ctx, in: in, future: f}

	err := d.gate.Do(func() {
		if err := d.submit(ctx, d.queue, t); err != nil {
			f.Fail(err)
		}
	})
	if err != nil {
		f.Fail(ErrClosed)
	}

	return f
}

// Close stops accepting new invocations, waits for queued ones to finish and stops the
// workers. It is safe to call more than once.
func (d *Dispatcher[I]) Close() {
	d.gate.Close(func() {
		close(d.queue)
	})
	d.workers.Wait()
}
