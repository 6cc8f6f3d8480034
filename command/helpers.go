package command

import "github.com/abevier/acmd/results"

// ResultProducing is the set of helpers available to a command body.
type ResultProducing interface {
	Success(payload any, opts ...results.Option) *results.Result
	Failure(payload any, opts ...results.Option) *results.Result
	FailFast(payload any, opts ...results.Option)
}

var _ ResultProducing = (*Type)(nil)

// Success builds a successful Result. The type settings are not consulted.
func (t *Type) Success(payload any, opts ...results.Option) *results.Result {
	return results.Success(payload, opts...)
}

// Failure builds a failed Result. Without an error in opts the type's DefaultFailure is used.
func (t *Type) Failure(payload any, opts ...results.Option) *results.Result {
	return t.failure(t.settings.DefaultFailure.Value(), payload, opts)
}

// FailFast aborts the running command. Execute returns a Failure whose error is the
// one given in opts, or the type's FailFastError. DefaultFailure is never used here.
// FailFast does not return.
func (t *Type) FailFast(payload any, opts ...results.Option) {
	panic(t.signal(callerSite(1), payload, opts))
}

// FailFastErr is FailFast for bodies that return early instead of unwinding.
// Returning the error from Call has the same effect as calling FailFast.
func (t *Type) FailFastErr(payload any, opts ...results.Option) error {
	return t.signal(callerSite(1), payload, opts)
}

func (t *Type) signal(site string, payload any, opts []results.Option) *FailFastError {
	return &FailFastError{
		Failure: t.failure(t.settings.FailFastError.Value(), payload, opts),
		Site:    site,
	}
}

func (t *Type) failure(fallback, payload any, opts []results.Option) *results.Result {
	if fallback != nil {
		opts = append([]results.Option{results.WithErr(fallback)}, opts...)
	}
	return results.Failure(payload, opts...)
}
