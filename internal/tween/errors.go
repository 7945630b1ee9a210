package tween

import (
	"errors"
	"fmt"
	"time"

	"github.com/roach88/tween/internal/ir"
)

// SequenceError reports a configuration or control call made from the wrong
// lifecycle state. The instance is unaffected by the failed call.
type SequenceError struct {
	// Op is the rejected operation, e.g. "SetEasing".
	Op string

	// State is the state the instance was in.
	State State

	// Want is the state Op requires.
	Want State
}

// Error implements the error interface.
func (e *SequenceError) Error() string {
	return fmt.Sprintf("%s requires state %s, tween is %s", e.Op, e.Want, e.State)
}

// CallbackError reports an update callback failure during a tick.
// The tween has moved to StateError and its timer is stopped.
type CallbackError struct {
	// Tick is the tick index being delivered (0 is the Start delivery).
	Tick int

	// Elapsed is the elapsed time at the failing tick.
	Elapsed time.Duration

	// Err is the error returned by the callback, or a panic converted to an error.
	Err error
}

// Error implements the error interface.
func (e *CallbackError) Error() string {
	return fmt.Sprintf("update callback failed at tick %d (elapsed %s): %v", e.Tick, e.Elapsed, e.Err)
}

// Unwrap returns the callback's own error.
func (e *CallbackError) Unwrap() error {
	return e.Err
}

// IsValidationError returns true if err is or wraps an *ir.ValidationError.
func IsValidationError(err error) bool {
	return ir.IsValidationError(err)
}

// IsSequenceError returns true if err is or wraps a *SequenceError.
// Uses errors.As to handle wrapped errors.
func IsSequenceError(err error) bool {
	var se *SequenceError
	return errors.As(err, &se)
}

// IsCallbackError returns true if err is or wraps a *CallbackError.
// Uses errors.As to handle wrapped errors.
func IsCallbackError(err error) bool {
	var ce *CallbackError
	return errors.As(err, &ce)
}

func newSequenceError(op string, state, want State) *SequenceError {
	return &SequenceError{Op: op, State: state, Want: want}
}
