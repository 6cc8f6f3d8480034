// Package results provides the two-variant outcome value returned by commands.
// A Result is either a Success or a Failure. Callers branch on IsSuccess or IsFailure
// and then read the payload, the error detail and the metadata.
//
// Once built, the payload, error and metadata of a Result never change. The trace is
// the only field that may be filled in later, and only once.
package results

import (
	"fmt"
	"reflect"
)

// Kind is the variant tag of a Result.
type Kind uint8

const (
	// KindInvalid is the zero Kind. A Result with this kind was not built by a constructor.
	KindInvalid Kind = iota
	KindSuccess
	KindFailure
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindFailure:
		return "failure"
	default:
		return "invalid"
	}
}

// Result holds a payload, an error detail and metadata.
// Use Success or Failure to create one.
type Result struct {
	kind    Kind
	payload any
	err     any
	meta    Meta
	trace   string
}

// Option configures a Result during construction.
type Option func(*Result)

// WithErr sets the error detail of a Failure. The detail can be an error, a string,
// a code or any other value. A nil detail is treated as not supplied.
// Success ignores this option.
func WithErr(err any) Option {
	return func(r *Result) {
		if err != nil {
			r.err = err
		}
	}
}

// WithMeta sets the metadata of the Result, replacing anything set before.
func WithMeta(m Meta) Option {
	return func(r *Result) {
		r.meta = m
	}
}

// WithMetaValue adds a single metadata entry.
func WithMetaValue(key string, value any) Option {
	return func(r *Result) {
		r.meta = r.meta.With(key, value)
	}
}

// Success creates a successful Result. Any error detail supplied through the options
// is dropped.
func Success(payload any, opts ...Option) *Result {
	r := build(KindSuccess, payload, opts)
	r.err = nil
	return r
}

// Failure creates a failed Result.
func Failure(payload any, opts ...Option) *Result {
	return build(KindFailure, payload, opts)
}

func build(kind Kind, payload any, opts []Option) *Result {
	r := &Result{kind: kind, payload: payload}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Kind returns the variant tag.
func (r *Result) Kind() Kind {
	return r.kind
}

// IsSuccess reports whether r is a Success. It depends only on the variant,
// a Success with a nil payload is still a Success.
func (r *Result) IsSuccess() bool {
	return r.kind == KindSuccess
}

// IsFailure reports whether r is a Failure. A Failure with a nil error is still a Failure.
func (r *Result) IsFailure() bool {
	return r.kind == KindFailure
}

// SuccessValue returns the payload when r is a Success.
func (r *Result) SuccessValue() (any, bool) {
	if r.kind != KindSuccess {
		return nil, false
	}
	return r.payload, true
}

// FailureValue returns the payload when r is a Failure.
func (r *Result) FailureValue() (any, bool) {
	if r.kind != KindFailure {
		return nil, false
	}
	return r.payload, true
}

// Payload returns the payload regardless of the variant.
func (r *Result) Payload() any {
	return r.payload
}

// Err returns the stored error detail. It is always nil for a Success.
func (r *Result) Err() any {
	return r.err
}

// Meta returns the metadata.
func (r *Result) Meta() Meta {
	return r.meta
}

// Trace returns the origin location recorded when a fault was captured, if any.
func (r *Result) Trace() string {
	return r.trace
}

// SetTrace records the origin location. Only the first non-empty trace is kept,
// SetTrace reports whether this call stored it.
// It must not be called while other goroutines read r.
func (r *Result) SetTrace(trace string) bool {
	if r.trace != "" || trace == "" {
		return false
	}
	r.trace = trace
	return true
}

// WithTrace returns a copy of r carrying trace. A copy of a Result that already has a
// trace keeps the original one. r itself is not modified.
func (r *Result) WithTrace(trace string) *Result {
	c := *r
	c.SetTrace(trace)
	return &c
}

// Equal reports whether r and other hold the same variant, payload, error,
// metadata and trace.
func (r *Result) Equal(other *Result) bool {
	if r == nil || other == nil {
		return r == other
	}
	return r.kind == other.kind &&
		r.trace == other.trace &&
		reflect.DeepEqual(r.payload, other.payload) &&
		reflect.DeepEqual(r.err, other.err) &&
		r.meta.Equal(other.meta)
}

func (r *Result) String() string {
	switch r.kind {
	case KindSuccess:
		return fmt.Sprintf("Success(%v)", r.payload)
	case KindFailure:
		return fmt.Sprintf("Failure(%v, err=%v)", r.payload, r.err)
	default:
		return "Result(invalid)"
	}
}
