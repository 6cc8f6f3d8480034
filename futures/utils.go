package futures

import (
	"context"

	"github.com/abevier/acmd/results"
)

// ResolveAll waits for every Future holding a Result and returns the Results in order.
// A Future that failed is reported as a Failure whose payload and error are the error.
// If ctx ends first, ResolveAll returns ctx.Err().
func ResolveAll(ctx context.Context, fs []*Future[*results.Result]) ([]*results.Result, error) {
	res := make([]*results.Result, 0, len(fs))

	for _, f := range fs {
		r, err := f.Get(ctx)
		// checked after Get so a cancellation racing the last Get is still reported
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if err != nil {
			r = results.Failure(err, results.WithErr(err))
		}
		res = append(res, r)
	}

	return res, nil
}
