package compiler

import (
	"fmt"
	"math"
	"strings"

	"github.com/roach88/tween/internal/easing"
	"github.com/roach88/tween/internal/ir"
)

// Validation error codes (E100-E199)
const (
	// General validation errors (E100)
	ErrUnsupportedIRType = "E100" // unsupported IR type for validation

	// TweenSpec errors (E101-E109)
	ErrTweenNameEmpty   = "E101" // name is required
	ErrValuesEmpty      = "E102" // from must hold at least one key
	ErrValueNotFinite   = "E103" // NaN or infinite value
	ErrKeyMismatch      = "E104" // from and to keys differ
	ErrDurationInvalid  = "E105" // duration must be positive
	ErrRefreshInvalid   = "E106" // refresh must be positive
	ErrRefreshTooCoarse = "E107" // refresh longer than duration (warning)
	ErrUnknownEasing    = "E108" // easing falls back to LINEAR (warning)
	ErrDuplicateName    = "E109" // duplicate tween name
)

// Severity distinguishes hard errors from warnings.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Tween    string   `json:"tween,omitempty"`
	Field    string   `json:"field"`
	Message  string   `json:"message"`
	Code     string   `json:"code"`
	Severity Severity `json:"severity"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Tween != "" {
		return fmt.Sprintf("[%s] %s: %s: %s", e.Code, e.Tween, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// IsWarning reports whether the finding leaves the definition runnable.
func (e ValidationError) IsWarning() bool {
	return e.Severity == SeverityWarning
}

// Validate validates compiled IR against schema rules.
// Returns all errors found (does not fail-fast).
// Supports TweenSpec and slices of TweenSpec pointers.
func Validate(v any) []ValidationError {
	switch spec := v.(type) {
	case *ir.TweenSpec:
		return validateTweenSpec(spec)
	case ir.TweenSpec:
		return validateTweenSpec(&spec)
	case []*ir.TweenSpec:
		return validateTweenSpecs(spec)
	default:
		return []ValidationError{{
			Field:    "type",
			Message:  fmt.Sprintf("unsupported IR type: %T", v),
			Code:     ErrUnsupportedIRType,
			Severity: SeverityError,
		}}
	}
}

// HasErrors reports whether errs contains anything other than warnings.
func HasErrors(errs []ValidationError) bool {
	for _, e := range errs {
		if !e.IsWarning() {
			return true
		}
	}
	return false
}

// validateTweenSpecs validates each spec and checks names are unique.
func validateTweenSpecs(specs []*ir.TweenSpec) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]bool)

	for i, spec := range specs {
		// E109: duplicate tween name
		if seen[spec.Name] {
			errs = append(errs, ValidationError{
				Tween:    spec.Name,
				Field:    fmt.Sprintf("tweens[%d].name", i),
				Message:  fmt.Sprintf("duplicate tween name: %q", spec.Name),
				Code:     ErrDuplicateName,
				Severity: SeverityError,
			})
		}
		seen[spec.Name] = true
		errs = append(errs, validateTweenSpec(spec)...)
	}
	return errs
}

// validateTweenSpec validates a tween definition.
func validateTweenSpec(spec *ir.TweenSpec) []ValidationError {
	var errs []ValidationError
	add := func(field, code string, sev Severity, format string, args ...any) {
		errs = append(errs, ValidationError{
			Tween:    spec.Name,
			Field:    field,
			Message:  fmt.Sprintf(format, args...),
			Code:     code,
			Severity: sev,
		})
	}

	// E101: name is required
	if strings.TrimSpace(spec.Name) == "" {
		add("name", ErrTweenNameEmpty, SeverityError, "name is required and must be non-empty")
	}

	// E102: at least one value to interpolate
	if len(spec.From) == 0 {
		add("from", ErrValuesEmpty, SeverityError, "from must hold at least one numeric value")
	}

	// E103: finite values only
	for _, field := range []struct {
		name string
		vs   ir.ValueSet
	}{{"from", spec.From}, {"to", spec.To}} {
		for _, k := range field.vs.SortedKeys() {
			if v := field.vs[k]; math.IsNaN(v) || math.IsInf(v, 0) {
				add(field.name+"."+k, ErrValueNotFinite, SeverityError, "expected finite number, got %v", v)
			}
		}
	}

	// E104: to must cover exactly the keys of from
	for _, k := range spec.From.SortedKeys() {
		if _, ok := spec.To[k]; !ok {
			add("to."+k, ErrKeyMismatch, SeverityError, "missing key %q present in from", k)
		}
	}
	for _, k := range spec.To.SortedKeys() {
		if _, ok := spec.From[k]; !ok {
			add("to."+k, ErrKeyMismatch, SeverityError, "unexpected key %q not present in from", k)
		}
	}

	// E105, E106: positive durations
	if spec.Duration <= 0 {
		add("duration", ErrDurationInvalid, SeverityError, "duration must be greater than 0, got %s", spec.Duration)
	}
	if spec.Refresh <= 0 {
		add("refresh", ErrRefreshInvalid, SeverityError, "refresh must be greater than 0, got %s", spec.Refresh)
	}

	// E107: runs but jumps straight to the target
	if spec.Duration > 0 && spec.Refresh > spec.Duration {
		add("refresh", ErrRefreshTooCoarse, SeverityWarning,
			"refresh %s exceeds duration %s, no intermediate values will be delivered", spec.Refresh, spec.Duration)
	}

	// E108: unknown easing runs as LINEAR
	if _, ok := easing.Parse(spec.Easing); !ok {
		add("easing", ErrUnknownEasing, SeverityWarning, "unknown easing %q, LINEAR will be used", spec.Easing)
	}

	return errs
}
