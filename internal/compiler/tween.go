package compiler

import (
	"fmt"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/tween/internal/ir"
)

// CompileTween parses a CUE value into a TweenSpec.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the tween struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`tween: fade: { from: {a: 0}, to: {a: 1}, duration: "1s" }`)
//	spec, err := CompileTween(v.LookupPath(cue.ParsePath("tween.fade")))
//
// duration and refresh accept a Go duration string ("250ms") or an integer
// number of milliseconds. refresh defaults to ir.DefaultRefresh and easing
// to "LINEAR". The easing name is kept as written; unknown names are
// reported by Validate and fall back to LINEAR at run time.
func CompileTween(v cue.Value) (*ir.TweenSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	spec := &ir.TweenSpec{
		Refresh: ir.DefaultRefresh,
		Easing:  "LINEAR",
	}

	// Parse tween name from struct label (the path selector)
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		spec.Name = labels[len(labels)-1].String()
	}

	var err error
	if spec.From, err = parseValues(v, "from"); err != nil {
		return nil, err
	}
	if spec.To, err = parseValues(v, "to"); err != nil {
		return nil, err
	}

	durationVal := v.LookupPath(cue.ParsePath("duration"))
	if !durationVal.Exists() {
		return nil, &CompileError{
			Field:   "duration",
			Message: "duration is required",
			Pos:     v.Pos(),
		}
	}
	if spec.Duration, err = parseDuration("duration", durationVal); err != nil {
		return nil, err
	}

	// Parse refresh (optional)
	refreshVal := v.LookupPath(cue.ParsePath("refresh"))
	if refreshVal.Exists() {
		if spec.Refresh, err = parseDuration("refresh", refreshVal); err != nil {
			return nil, err
		}
	}

	// Parse easing (optional)
	easingVal := v.LookupPath(cue.ParsePath("easing"))
	if easingVal.Exists() {
		name, err := easingVal.String()
		if err != nil {
			return nil, &CompileError{
				Field:   "easing",
				Message: "easing must be a string",
				Pos:     easingVal.Pos(),
			}
		}
		if name != "" {
			spec.Easing = name
		}
	}

	return spec, nil
}

// CompileTweens compiles every definition under the top-level "tween" field
// in declaration order. A value without a "tween" field compiles to nothing.
func CompileTweens(v cue.Value) ([]*ir.TweenSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	tweensVal := v.LookupPath(cue.ParsePath("tween"))
	if !tweensVal.Exists() {
		return nil, nil
	}

	iter, err := tweensVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var specs []*ir.TweenSpec
	for iter.Next() {
		spec, err := CompileTween(iter.Value())
		if err != nil {
			return nil, err
		}
		spec.Name = iter.Label()
		specs = append(specs, spec)
	}
	return specs, nil
}

// parseValues extracts a required flat numeric struct.
func parseValues(v cue.Value, field string) (ir.ValueSet, error) {
	val := v.LookupPath(cue.ParsePath(field))
	if !val.Exists() {
		return nil, &CompileError{
			Field:   field,
			Message: field + " is required",
			Pos:     v.Pos(),
		}
	}
	if val.IncompleteKind() != cue.StructKind {
		return nil, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("%s must be an object of numbers, got %v", field, val.IncompleteKind()),
			Pos:     val.Pos(),
		}
	}

	iter, err := val.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	vs := make(ir.ValueSet)
	for iter.Next() {
		key := iter.Label()
		num, err := extractNumber(iter.Value(), field+"."+key)
		if err != nil {
			return nil, err
		}
		vs[key] = num
	}
	return vs, nil
}

// extractNumber converts a concrete CUE int or float into a float64.
// Nested structs, lists, strings and booleans are rejected.
func extractNumber(v cue.Value, field string) (float64, error) {
	switch v.IncompleteKind() {
	case cue.IntKind, cue.FloatKind, cue.NumberKind:
		f, err := v.Float64()
		if err != nil {
			return 0, &CompileError{
				Field:   field,
				Message: fmt.Sprintf("expected a concrete number: %v", err),
				Pos:     v.Pos(),
			}
		}
		return f, nil
	case cue.StructKind, cue.ListKind:
		return 0, &CompileError{
			Field:   field,
			Message: "nested values are not supported, expected a number",
			Pos:     v.Pos(),
		}
	default:
		return 0, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("expected a number, got %v", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}
}

// parseDuration accepts a duration string or integer milliseconds.
// Sign is checked by Validate, not here.
func parseDuration(field string, v cue.Value) (time.Duration, error) {
	switch v.IncompleteKind() {
	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return 0, formatCUEError(err)
		}
		d, err := time.ParseDuration(s)
		if err != nil {
			return 0, &CompileError{
				Field:   field,
				Message: fmt.Sprintf("invalid duration %q: %v", s, err),
				Pos:     v.Pos(),
			}
		}
		return d, nil
	case cue.IntKind:
		ms, err := v.Int64()
		if err != nil {
			return 0, formatCUEError(err)
		}
		return time.Duration(ms) * time.Millisecond, nil
	default:
		return 0, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("%s must be a duration string or integer milliseconds, got %v", field, v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
