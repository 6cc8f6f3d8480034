// Package command runs units of business logic whose outcome is always a results.Result.
//
// A command is any value with a Call method that also carries a *Type, usually by
// embedding it:
//
//	var greetType = command.NewType("greet", config.Settings{
//		FailFastError: config.Set("greeting aborted"),
//	})
//
//	type Greet struct{ *command.Type }
//
//	func (g Greet) Call(ctx context.Context, name string) (*results.Result, error) {
//		if name == "" {
//			return g.Failure(nil, results.WithErr("No message provided")), nil
//		}
//		return g.Success(strings.ToUpper(name)), nil
//	}
//
//	res, err := command.Execute(ctx, Greet{greetType}, "hello")
//
// Inside Call, the embedded Type provides the Success, Failure and FailFast helpers.
// FailFast aborts the command from any depth of nested calls. Execute catches the abort
// and returns the carried Failure. Any other panic, or an error returned by Call, is
// handled according to the type's unexpected error policy.
package command

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abevier/acmd/config"
	"github.com/abevier/acmd/results"
)

// Type is a command type: a name and its flattened settings.
// A Type is immutable and safe to share between goroutines.
type Type struct {
	name     string
	settings config.Settings
	logger   *slog.Logger
}

// NewType defines a top-level command type. Unset settings are taken from config.Root().
func NewType(name string, s config.Settings) *Type {
	return &Type{
		name:     name,
		settings: s.Inherit(config.Root()),
	}
}

// FromRegistry defines a command type from settings registered under name.
func FromRegistry(reg *config.Registry, name string) (*Type, error) {
	s, ok := reg.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", config.ErrNotFound, name)
	}
	return &Type{name: name, settings: s}, nil
}

// Extend defines a subtype. Settings left unset in s are inherited from t.
func (t *Type) Extend(name string, s config.Settings) *Type {
	return &Type{
		name:     name,
		settings: s.Inherit(t.settings),
		logger:   t.logger,
	}
}

// WithLogger returns a copy of t that logs to l.
func (t *Type) WithLogger(l *slog.Logger) *Type {
	c := *t
	c.logger = l
	return &c
}

// Name returns the type name.
func (t *Type) Name() string {
	return t.name
}

// Settings returns the flattened settings.
func (t *Type) Settings() config.Settings {
	return t.settings
}

// CommandType returns t. Embedding *Type in a struct makes the struct satisfy Typed.
func (t *Type) CommandType() *Type {
	return t
}

func (t *Type) log() *slog.Logger {
	if t.logger != nil {
		return t.logger
	}
	return slog.Default()
}

// Callable is the body of a command.
type Callable[I any] interface {
	Call(ctx context.Context, in I) (*results.Result, error)
}

// Typed is implemented by values that carry a command type.
type Typed interface {
	CommandType() *Type
}

// Command is a Callable with a command type. This is what Execute runs.
type Command[I any] interface {
	Callable[I]
	Typed
}

type funcCommand[I any] struct {
	*Type
	fn func(ctx context.Context, in I) (*results.Result, error)
}

func (f funcCommand[I]) Call(ctx context.Context, in I) (*results.Result, error) {
	return f.fn(ctx, in)
}

// Func turns fn into a Command of type t. The helpers are reached through t.
func Func[I any](t *Type, fn func(ctx context.Context, in I) (*results.Result, error)) Command[I] {
	return funcCommand[I]{Type: t, fn: fn}
}
