package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tween/internal/compiler"
)

func TestValidateValidSpecs(t *testing.T) {
	out, _, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), specsDir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ All 2 tween(s) valid")
	assert.NotContains(t, out, "warning")
}

func TestValidateValidSpecsJSON(t *testing.T) {
	out, _, err := execute(t, NewValidateCommand(&RootOptions{Format: "json"}), specsDir)
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Equal(t, 2, resp.Data.Tweens)
}

func TestValidateWarningsDoNotFail(t *testing.T) {
	dir := writeSpec(t, `
package test

tween: coarse: {
	from: {x: 0}
	to: {x: 1}
	duration: "10ms"
	refresh: "50ms"
	easing: "WOBBLE"
}
`)

	out, _, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), dir)
	require.NoError(t, err)
	assert.Contains(t, out, "warning [E107] coarse: refresh")
	assert.Contains(t, out, "warning [E108] coarse: easing")
	assert.Contains(t, out, "✓ All 1 tween(s) valid")
}

func TestValidateCollectsErrors(t *testing.T) {
	dir := writeSpec(t, `
package test

tween: keys: {
	from: {x: 0, y: 0}
	to: {x: 1, z: 1}
	duration: "100ms"
}

tween: broken: {
	from: {x: [1, 2]}
	to: {x: 1}
	duration: "100ms"
}

tween: keys2: {
	from: {x: 0}
	to: {x: 1}
	duration: -5
}
`)

	out, _, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, "nested values are not supported")
	assert.Contains(t, out, `missing key "y" present in from`)
	assert.Contains(t, out, `unexpected key "z" not present in from`)
	assert.Contains(t, out, "duration must be greater than 0")
}

func TestValidateErrorsJSON(t *testing.T) {
	dir := writeSpec(t, `
package test

tween: still: {
	from: {x: 0}
	to: {x: 0}
	duration: "100ms"
	refresh: 0
}
`)

	out, _, err := execute(t, NewValidateCommand(&RootOptions{Format: "json"}), dir)
	require.Error(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
		Error  *CLIError        `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.False(t, resp.Data.Valid)
	require.Len(t, resp.Data.Errors, 1)
	assert.Equal(t, compiler.ErrRefreshInvalid, resp.Data.Errors[0].Code)
	assert.Equal(t, compiler.ErrRefreshInvalid, resp.Error.Code)
}

func TestValidateNonExistentDirectory(t *testing.T) {
	out, _, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), "/nonexistent/specs")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E005]")
}

func TestValidateSpecsDir(t *testing.T) {
	result, err := ValidateSpecsDir(specsDir)
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)

	_, err = ValidateSpecsDir(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no CUE files found")
}
