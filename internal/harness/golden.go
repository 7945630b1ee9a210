package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/tween/internal/ir"
)

// TraceSnapshot captures the complete trace for a scenario execution.
// All fields use canonical JSON serialization for deterministic comparison.
type TraceSnapshot struct {
	ScenarioName string      `json:"scenario_name"`
	State        string      `json:"state"`
	Completed    bool        `json:"completed"`
	Samples      []ir.Sample `json:"samples"`
}

// NewTraceSnapshot builds the snapshot of result under scenarioName.
func NewTraceSnapshot(scenarioName string, result *Result) TraceSnapshot {
	return TraceSnapshot{
		ScenarioName: scenarioName,
		State:        result.State,
		Completed:    result.Completed,
		Samples:      result.Samples,
	}
}

// toCanonicalMap converts a TraceSnapshot to a map[string]any for canonical JSON serialization.
// This is required because ir.MarshalCanonical only handles IR types and primitives.
// Elapsed times are integer nanoseconds.
func (s TraceSnapshot) toCanonicalMap() map[string]any {
	samples := make([]any, len(s.Samples))
	for i, sample := range s.Samples {
		samples[i] = map[string]any{
			"tick":    int64(sample.Tick),
			"elapsed": int64(sample.Elapsed),
			"final":   sample.Final,
			"values":  sample.Values,
		}
	}

	return map[string]any{
		"scenario_name": s.ScenarioName,
		"state":         s.State,
		"completed":     s.Completed,
		"samples":       samples,
	}
}

// Marshal returns the canonical JSON encoding compared against golden files.
func (s TraceSnapshot) Marshal() ([]byte, error) {
	return ir.MarshalCanonical(s.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if trace doesn't match golden file.
func RunWithGolden(t *testing.T, scenario *Scenario, specs ...*ir.TweenSpec) (*Result, error) {
	t.Helper()

	result, err := Run(scenario, specs...)
	if err != nil {
		return nil, err
	}

	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares the given result's trace against a golden file.
// This is useful when you've already run a scenario and want to compare
// the result against a golden file without re-running.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot := NewTraceSnapshot(scenarioName, result)
	traceJSON, err := snapshot.Marshal()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, traceJSON)

	return nil
}
