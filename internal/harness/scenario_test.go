package harness

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tween/internal/ir"
)

func writeScenario(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/linear_fade.yaml")
	require.NoError(t, err)

	assert.Equal(t, "linear_fade", scenario.Name)
	assert.NotEmpty(t, scenario.Description)
	require.NotNil(t, scenario.Definition)
	assert.Equal(t, "50ms", scenario.Definition.Duration)
	assert.Equal(t, "LINEAR", scenario.Definition.Easing)
	assert.Len(t, scenario.Assertions, 7)
	assert.Nil(t, scenario.CancelAfter)
	assert.Nil(t, scenario.FailAt)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("/nonexistent/scenario.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestParseScenario_UnknownField(t *testing.T) {
	_, err := ParseScenario([]byte(`
name: typo
description: "misspelled assertions key"
tween: fade
assertion:
  - type: state
    state: FINISHED
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name: "missing name",
			content: `
description: "d"
tween: fade
assertions: [{type: state, state: FINISHED}]
`,
			wantErr: "name is required",
		},
		{
			name: "missing description",
			content: `
name: n
tween: fade
assertions: [{type: state, state: FINISHED}]
`,
			wantErr: "description is required",
		},
		{
			name: "no tween source",
			content: `
name: n
description: "d"
assertions: [{type: state, state: FINISHED}]
`,
			wantErr: "one of tween or definition is required",
		},
		{
			name: "both tween sources",
			content: `
name: n
description: "d"
tween: fade
definition: {from: {a: 0}, to: {a: 1}, duration: 1s}
assertions: [{type: state, state: FINISHED}]
`,
			wantErr: "mutually exclusive",
		},
		{
			name: "definition without duration",
			content: `
name: n
description: "d"
definition: {from: {a: 0}, to: {a: 1}}
assertions: [{type: state, state: FINISHED}]
`,
			wantErr: "definition.duration is required",
		},
		{
			name: "negative cancel_after",
			content: `
name: n
description: "d"
tween: fade
cancel_after: -1
assertions: [{type: state, state: FINISHED}]
`,
			wantErr: "cancel_after must be non-negative",
		},
		{
			name: "no assertions",
			content: `
name: n
description: "d"
tween: fade
`,
			wantErr: "assertions list is required",
		},
		{
			name: "unknown assertion type",
			content: `
name: n
description: "d"
tween: fade
assertions: [{type: trace_contains}]
`,
			wantErr: `unknown assertion type "trace_contains"`,
		},
		{
			name: "unknown state",
			content: `
name: n
description: "d"
tween: fade
assertions: [{type: state, state: DONE}]
`,
			wantErr: `unknown state "DONE"`,
		},
		{
			name: "sample without tick",
			content: `
name: n
description: "d"
tween: fade
assertions: [{type: sample, values: {a: 1}}]
`,
			wantErr: "tick is required for sample",
		},
		{
			name: "tick_count without count",
			content: `
name: n
description: "d"
tween: fade
assertions: [{type: tick_count}]
`,
			wantErr: "count is required for tick_count",
		},
		{
			name: "non-numeric expected value",
			content: `
name: n
description: "d"
tween: fade
assertions: [{type: final_values, values: {a: "x"}}]
`,
			wantErr: "assertions[0]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid scenario")
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScenarios_SortedAndFiltered(t *testing.T) {
	dir := t.TempDir()
	body := `
description: "d"
tween: fade
assertions: [{type: state, state: FINISHED}]
`
	writeScenario(t, dir, "b.yaml", "name: b"+body)
	writeScenario(t, dir, "a.yml", "name: a"+body)
	writeScenario(t, dir, "notes.txt", "not a scenario")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.yaml"), 0755))

	scenarios, err := LoadScenarios(dir)
	require.NoError(t, err)
	require.Len(t, scenarios, 2)
	assert.Equal(t, "a", scenarios[0].Name)
	assert.Equal(t, "b", scenarios[1].Name)
}

func TestLoadScenarios_NamesBadFile(t *testing.T) {
	dir := t.TempDir()
	path := writeScenario(t, dir, "broken.yaml", "name: [")

	_, err := LoadScenarios(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
}

func TestResolve_InlineDefinition(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/quad_in_curve.yaml")
	require.NoError(t, err)

	spec, err := scenario.Resolve(nil)
	require.NoError(t, err)
	assert.Equal(t, ir.TweenSpec{
		Name:     "quad_in_curve",
		From:     ir.ValueSet{"a": 0},
		To:       ir.ValueSet{"a": 16},
		Duration: 40 * time.Millisecond,
		Refresh:  10 * time.Millisecond,
		Easing:   "QUAD_IN",
	}, spec)
}

func TestResolve_InlineDefaults(t *testing.T) {
	s := &Scenario{
		Name: "defaults",
		Definition: &Definition{
			From:     map[string]any{"a": 0},
			To:       map[string]any{"a": 1},
			Duration: "1s",
		},
	}

	spec, err := s.Resolve(nil)
	require.NoError(t, err)
	assert.Equal(t, ir.DefaultRefresh, spec.Refresh)
	assert.Equal(t, "LINEAR", spec.Easing)
}

func TestResolve_NamedDefinition(t *testing.T) {
	fade := &ir.TweenSpec{Name: "fade", From: ir.ValueSet{"a": 0}, To: ir.ValueSet{"a": 1}}
	other := &ir.TweenSpec{Name: "other"}

	spec, err := (&Scenario{Name: "s", Tween: "fade"}).Resolve([]*ir.TweenSpec{other, fade})
	require.NoError(t, err)
	assert.Equal(t, *fade, spec)

	_, err = (&Scenario{Name: "s", Tween: "missing"}).Resolve([]*ir.TweenSpec{fade})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `tween "missing" not found`)
}

func TestResolve_BadInlineValues(t *testing.T) {
	s := &Scenario{
		Name: "bad",
		Definition: &Definition{
			From:     map[string]any{"a": map[string]any{"nested": 1}},
			To:       map[string]any{"a": 1},
			Duration: "1s",
		},
	}
	_, err := s.Resolve(nil)
	require.Error(t, err)
	assert.True(t, ir.IsValidationError(err))

	s.Definition.From = map[string]any{"a": 0}
	s.Definition.Duration = "soon"
	_, err = s.Resolve(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "definition.duration")
}
