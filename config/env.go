package config

import (
	"fmt"
	"strconv"

	"github.com/caarlos0/env/v11"
)

// Env holds the environment overrides for the root settings.
type Env struct {
	DefaultFailure *string `env:"ACMD_DEFAULT_FAILURE"`
	FailFastError  *string `env:"ACMD_FAIL_FAST_ERROR"`
	UnexpectedErr  *string `env:"ACMD_UNEXPECTED_ERR"`
}

// Settings converts the environment values. Variables that are not present stay unset.
// ACMD_UNEXPECTED_ERR follows the YAML rules: a boolean selects passthrough or
// disabled and any other string is the mapped error.
func (e Env) Settings() Settings {
	var s Settings
	if e.DefaultFailure != nil {
		s.DefaultFailure = Set(*e.DefaultFailure)
	}
	if e.FailFastError != nil {
		s.FailFastError = Set(*e.FailFastError)
	}
	if e.UnexpectedErr != nil {
		if b, err := strconv.ParseBool(*e.UnexpectedErr); err == nil {
			s.Unexpected = parseUnexpected(b)
		} else {
			s.Unexpected = Mapped(*e.UnexpectedErr)
		}
	}
	return s
}

// FromEnv reads the root overrides from the environment. Pass env.Options to read
// from a fixed map instead of the process environment.
func FromEnv(opts ...env.Options) (Settings, error) {
	var (
		e   Env
		err error
	)
	if len(opts) > 0 {
		err = env.ParseWithOptions(&e, opts[0])
	} else {
		err = env.Parse(&e)
	}
	if err != nil {
		return Settings{}, fmt.Errorf("parse env: %w", err)
	}
	return e.Settings(), nil
}
