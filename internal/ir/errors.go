package ir

import (
	"errors"
	"fmt"
)

// ValidationError reports a value that violates the tween input contract:
// a non-numeric, nested or non-finite ValueSet entry, a key outside an
// allowed set, or a non-positive duration.
type ValidationError struct {
	// Field names the rejected input, e.g. "initial", "target", "duration".
	Field string

	// Key is the offending ValueSet key, empty for scalar fields.
	Key string

	// Reason is a human-readable description.
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("invalid %s: key %q: %s", e.Field, e.Key, e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidationError returns true if err is or wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// WithField returns a copy of err with Field replaced when err is a *ValidationError.
func WithField(err error, field string) error {
	var ve *ValidationError
	if errors.As(err, &ve) {
		cp := *ve
		cp.Field = field
		return &cp
	}
	return err
}
