package store

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roach88/tween/internal/ir"
)

// marshalValues converts a ValueSet to canonical JSON TEXT for storage.
// Uses RFC 8785 canonical JSON for deterministic serialization.
func marshalValues(vs ir.ValueSet) (string, error) {
	if vs == nil {
		vs = ir.ValueSet{}
	}
	data, err := ir.MarshalCanonical(vs)
	if err != nil {
		return "", fmt.Errorf("marshal values: %w", err)
	}
	return string(data), nil
}

// unmarshalValues parses canonical JSON TEXT back into a ValueSet.
// Non-numeric entries are rejected by ir.ParseValueSet.
func unmarshalValues(data string) (ir.ValueSet, error) {
	if data == "" || data == "{}" {
		return ir.ValueSet{}, nil
	}

	dec := json.NewDecoder(strings.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("unmarshal values: %w", err)
	}

	vs, err := ir.ParseValueSet(raw)
	if err != nil {
		return nil, fmt.Errorf("unmarshal values: %w", err)
	}
	return vs, nil
}
