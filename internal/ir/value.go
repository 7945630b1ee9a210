package ir

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"unicode/utf16"
)

// ValueSet is a flat mapping of named numeric values.
// Use SortedKeys() for deterministic iteration.
type ValueSet map[string]float64

// ParseValueSet converts dynamically typed input (decoded YAML, JSON or CUE)
// into a ValueSet. Every entry must be a finite number; strings, booleans,
// nulls, lists and nested objects are rejected with a *ValidationError.
func ParseValueSet(raw map[string]any) (ValueSet, error) {
	if raw == nil {
		return nil, &ValidationError{Field: "values", Reason: "expected an object of numeric properties"}
	}

	vs := make(ValueSet, len(raw))
	for k, v := range raw {
		f, err := toFloat(v)
		if err != nil {
			return nil, &ValidationError{Field: "values", Key: k, Reason: err.Error()}
		}
		vs[k] = f
	}

	if err := vs.Validate(); err != nil {
		return nil, err
	}
	return vs, nil
}

// ParseNamedValueSet is ParseValueSet with errors attributed to field.
func ParseNamedValueSet(field string, raw map[string]any) (ValueSet, error) {
	vs, err := ParseValueSet(raw)
	if err != nil {
		return nil, WithField(err, field)
	}
	return vs, nil
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int8:
		return float64(n), nil
	case int16:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint:
		return float64(n), nil
	case uint8:
		return float64(n), nil
	case uint16:
		return float64(n), nil
	case uint32:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("expected number, got %q", n.String())
		}
		return f, nil
	case nil:
		return 0, fmt.Errorf("expected number, got null")
	case map[string]any, []any:
		return 0, fmt.Errorf("expected number, got nested %T", v)
	default:
		return 0, fmt.Errorf("expected number, got %T", v)
	}
}

// Validate checks every entry is a finite number.
func (vs ValueSet) Validate() error {
	for _, k := range vs.SortedKeys() {
		v := vs[k]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &ValidationError{Field: "values", Key: k, Reason: fmt.Sprintf("expected finite number, got %v", v)}
		}
	}
	return nil
}

// ValidateKeys checks that every key of vs is in allowed. Consumers with a
// constrained shape (positions, sizes) layer this on top of Validate.
func ValidateKeys(vs ValueSet, allowed ...string) error {
	for _, k := range vs.SortedKeys() {
		if !slices.Contains(allowed, k) {
			return &ValidationError{Field: "values", Key: k, Reason: fmt.Sprintf("key not allowed, expected one of %v", allowed)}
		}
	}
	return nil
}

// SameKeys checks that a and b have identical key sets.
// The error names the first differing key in canonical order.
func SameKeys(a, b ValueSet) error {
	for _, k := range a.SortedKeys() {
		if _, ok := b[k]; !ok {
			return &ValidationError{Field: "values", Key: k, Reason: "missing key"}
		}
	}
	for _, k := range b.SortedKeys() {
		if _, ok := a[k]; !ok {
			return &ValidationError{Field: "values", Key: k, Reason: "unexpected key"}
		}
	}
	return nil
}

// Clone returns an independent copy. Clone of nil is nil.
func (vs ValueSet) Clone() ValueSet {
	if vs == nil {
		return nil
	}
	out := make(ValueSet, len(vs))
	for k, v := range vs {
		out[k] = v
	}
	return out
}

// Equal reports whether both sets hold exactly the same keys and values.
func (vs ValueSet) Equal(other ValueSet) bool {
	if len(vs) != len(other) {
		return false
	}
	for k, v := range vs {
		ov, ok := other[k]
		if !ok || ov != v {
			return false
		}
	}
	return true
}

// Map converts the set to a generic map for YAML/JSON encoders.
func (vs ValueSet) Map() map[string]any {
	out := make(map[string]any, len(vs))
	for k, v := range vs {
		out[k] = v
	}
	return out
}

// SortedKeys returns keys in RFC 8785 canonical order (UTF-16 code units).
// Go's sort.Strings uses UTF-8 byte order, which differs outside the BMP.
func (vs ValueSet) SortedKeys() []string {
	keys := make([]string, 0, len(vs))
	for k := range vs {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysRFC8785)
	return keys
}

// compareKeysRFC8785 compares strings by UTF-16 code units.
func compareKeysRFC8785(a, b string) int {
	return slices.Compare(utf16.Encode([]rune(a)), utf16.Encode([]rune(b)))
}
