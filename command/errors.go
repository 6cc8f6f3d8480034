package command

import (
	"errors"
	"fmt"

	"github.com/abevier/acmd/results"
)

// FailFastMessage is the message of every FailFastError.
const FailFastMessage = "Fail Fast Triggered"

// FailFastError carries a prepared Failure from a FailFast call up to Execute.
// It is only ever seen by code that bypasses Execute, such as ExecuteRaw.
type FailFastError struct {
	// Failure is returned by Execute once the error is caught.
	Failure *results.Result
	// Site is the file:line of the FailFast call.
	Site string
}

func (e *FailFastError) Error() string {
	return FailFastMessage
}

// AsFailFast finds a FailFastError in err's chain.
func AsFailFast(err error) (*FailFastError, bool) {
	var ff *FailFastError
	if errors.As(err, &ff) {
		return ff, true
	}
	return nil, false
}

// PanicError is the fault recorded when a command body panics with anything
// other than a FailFastError.
type PanicError struct {
	// Value is the value passed to panic.
	Value any
	// Stack is the goroutine stack at the time of recovery.
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap returns Value when it is an error.
func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}
