// Package config holds the per-command-type settings read by the command package:
// the default failure error, the fail-fast error and the unexpected error policy.
//
// Settings are flattened once when a command type is defined. A child's explicit
// settings win and anything left unset is taken from the parent, so reading a
// setting at call time is a plain field access.
package config

import "fmt"

// Setting is an optional value. The zero Setting is unset.
type Setting struct {
	value any
	set   bool
}

// Set returns a Setting holding v. A Setting created this way is set even when v is nil.
func Set(v any) Setting {
	return Setting{value: v, set: true}
}

// Get returns the value and whether it was set.
func (s Setting) Get() (any, bool) {
	return s.value, s.set
}

// Value returns the value, or nil when unset.
func (s Setting) Value() any {
	return s.value
}

// IsSet reports whether the setting holds a value.
func (s Setting) IsSet() bool {
	return s.set
}

func (s Setting) or(parent Setting) Setting {
	if s.set {
		return s
	}
	return parent
}

// Mode selects how faults that were not produced by a command's helpers are handled.
type Mode int

const (
	// ModeInherit takes the mode of the parent settings.
	ModeInherit Mode = iota
	// ModeDisabled lets the fault escape to the caller unchanged.
	ModeDisabled
	// ModePassthrough converts the fault into a Failure whose error is the fault.
	ModePassthrough
	// ModeMapped converts the fault into a Failure whose error is a configured value.
	ModeMapped
)

func (m Mode) String() string {
	switch m {
	case ModeInherit:
		return "inherit"
	case ModeDisabled:
		return "disabled"
	case ModePassthrough:
		return "passthrough"
	case ModeMapped:
		return "mapped"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Unexpected is the unexpected error policy. Value is only used by ModeMapped.
type Unexpected struct {
	Mode  Mode
	Value any
}

// Disabled returns a policy that lets unexpected faults escape.
func Disabled() Unexpected {
	return Unexpected{Mode: ModeDisabled}
}

// Passthrough returns a policy that uses the fault itself as the Failure error.
func Passthrough() Unexpected {
	return Unexpected{Mode: ModePassthrough}
}

// Mapped returns a policy that uses v as the Failure error.
func Mapped(v any) Unexpected {
	return Unexpected{Mode: ModeMapped, Value: v}
}

// Settings is the configuration of one command type.
type Settings struct {
	// DefaultFailure is the error used by Failure when none is supplied.
	DefaultFailure Setting
	// FailFastError is the error used by FailFast when none is supplied.
	FailFastError Setting
	// Unexpected is the policy for faults that escape the command body.
	Unexpected Unexpected
}

// Root returns the base every command type inherits from.
func Root() Settings {
	return Settings{
		Unexpected: Passthrough(),
	}
}

// Inherit returns s with every unset field taken from parent.
func (s Settings) Inherit(parent Settings) Settings {
	out := Settings{
		DefaultFailure: s.DefaultFailure.or(parent.DefaultFailure),
		FailFastError:  s.FailFastError.or(parent.FailFastError),
		Unexpected:     s.Unexpected,
	}
	if out.Unexpected.Mode == ModeInherit {
		out.Unexpected = parent.Unexpected
	}
	return out
}
