package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/tween/internal/easing"
	"github.com/roach88/tween/internal/ir"
	"github.com/roach88/tween/internal/tween"
)

// Scenario defines a conformance test scenario.
// A scenario runs one tween to the end under a manual scheduler and asserts
// on the delivered samples and the final lifecycle state.
type Scenario struct {
	// Name uniquely identifies this scenario. Also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Tween names a compiled CUE definition to run.
	// Exactly one of Tween and Definition must be set.
	Tween string `yaml:"tween,omitempty"`

	// Definition is an inline tween definition.
	Definition *Definition `yaml:"definition,omitempty"`

	// InstanceID is an optional fixed instance ID for deterministic traces.
	// If empty, defaults to "test-tween-default".
	InstanceID string `yaml:"instance_id,omitempty"`

	// CancelAfter cancels the tween from inside the update callback at this
	// tick. Tick 0 is the delivery made by Start.
	CancelAfter *int `yaml:"cancel_after,omitempty"`

	// FailAt makes the update callback return an error at this tick.
	FailAt *int `yaml:"fail_at,omitempty"`

	// Assertions validate the delivered samples and final state.
	// Supported types: final_values, tick_count, sample_count, state,
	// completed, sample, error
	Assertions []Assertion `yaml:"assertions"`
}

// Definition is an inline tween definition, written the way the CUE
// definitions are: durations as Go duration strings.
type Definition struct {
	From     map[string]any `yaml:"from"`
	To       map[string]any `yaml:"to"`
	Duration string         `yaml:"duration"`
	Refresh  string         `yaml:"refresh,omitempty"`
	Easing   string         `yaml:"easing,omitempty"`
}

// Assertion validates the outcome of a scenario run.
type Assertion struct {
	// Type specifies the assertion type:
	// - "final_values": values of the last delivered sample
	// - "tick_count": intermediate ticks delivered, as tween.Ticks reports
	// - "sample_count": every delivered sample, including Start and final
	// - "state": final lifecycle state name
	// - "completed": whether the completion callback ran
	// - "sample": values of the sample delivered at Tick
	// - "error": the stop error contains Contains
	Type string `yaml:"type"`

	// Values are the expected values (used by final_values, sample).
	// Subset match - unlisted keys are not checked.
	Values map[string]any `yaml:"values,omitempty"`

	// Tolerance is the allowed absolute difference per value.
	// Zero means DefaultTolerance.
	Tolerance float64 `yaml:"tolerance,omitempty"`

	// Tick selects the sample (used by sample).
	Tick *int `yaml:"tick,omitempty"`

	// Count is the expected count (used by tick_count, sample_count).
	Count *int `yaml:"count,omitempty"`

	// State is the expected state name, e.g. "FINISHED" (used by state).
	State string `yaml:"state,omitempty"`

	// Completed is the expected completion flag (used by completed).
	Completed *bool `yaml:"completed,omitempty"`

	// Contains is the expected error substring (used by error).
	// Empty means the run must stop without an error.
	Contains string `yaml:"contains,omitempty"`
}

// Assertion type constants.
const (
	AssertFinalValues = "final_values"
	AssertTickCount   = "tick_count"
	AssertSampleCount = "sample_count"
	AssertState       = "state"
	AssertCompleted   = "completed"
	AssertSample      = "sample"
	AssertError       = "error"
)

// DefaultTolerance is used by value assertions that set no tolerance.
const DefaultTolerance = 1e-9

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML with strict field validation.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadScenarios loads every *.yaml and *.yml file in dir, sorted by path.
// The first file that fails to load aborts with an error naming it.
func LoadScenarios(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenarios directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch filepath.Ext(entry.Name()) {
		case ".yaml", ".yml":
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// Resolve returns the definition the scenario runs: the named entry of
// specs, or the inline definition named after the scenario.
func (s *Scenario) Resolve(specs []*ir.TweenSpec) (ir.TweenSpec, error) {
	if s.Definition != nil {
		return s.Definition.toSpec(s.Name)
	}
	for _, spec := range specs {
		if spec != nil && spec.Name == s.Tween {
			return *spec, nil
		}
	}
	return ir.TweenSpec{}, fmt.Errorf("scenario %q: tween %q not found", s.Name, s.Tween)
}

func (d *Definition) toSpec(name string) (ir.TweenSpec, error) {
	spec := ir.TweenSpec{
		Name:    name,
		Refresh: ir.DefaultRefresh,
		Easing:  string(easing.Linear),
	}

	var err error
	if spec.From, err = ir.ParseNamedValueSet("from", d.From); err != nil {
		return ir.TweenSpec{}, err
	}
	if spec.To, err = ir.ParseNamedValueSet("to", d.To); err != nil {
		return ir.TweenSpec{}, err
	}
	if spec.Duration, err = time.ParseDuration(d.Duration); err != nil {
		return ir.TweenSpec{}, fmt.Errorf("definition.duration: %w", err)
	}
	if d.Refresh != "" {
		if spec.Refresh, err = time.ParseDuration(d.Refresh); err != nil {
			return ir.TweenSpec{}, fmt.Errorf("definition.refresh: %w", err)
		}
	}
	if d.Easing != "" {
		spec.Easing = d.Easing
	}
	return spec, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	switch {
	case s.Tween == "" && s.Definition == nil:
		return fmt.Errorf("one of tween or definition is required")
	case s.Tween != "" && s.Definition != nil:
		return fmt.Errorf("tween and definition are mutually exclusive")
	}

	if d := s.Definition; d != nil {
		if d.From == nil {
			return fmt.Errorf("definition.from is required")
		}
		if d.To == nil {
			return fmt.Errorf("definition.to is required")
		}
		if d.Duration == "" {
			return fmt.Errorf("definition.duration is required")
		}
	}

	if s.CancelAfter != nil && *s.CancelAfter < 0 {
		return fmt.Errorf("cancel_after must be non-negative")
	}
	if s.FailAt != nil && *s.FailAt < 0 {
		return fmt.Errorf("fail_at must be non-negative")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}
	if a.Tolerance < 0 {
		return fmt.Errorf("assertions[%d]: tolerance must be non-negative", index)
	}

	switch a.Type {
	case AssertFinalValues:
		if len(a.Values) == 0 {
			return fmt.Errorf("assertions[%d]: values is required for final_values", index)
		}
	case AssertSample:
		if a.Tick == nil {
			return fmt.Errorf("assertions[%d]: tick is required for sample", index)
		}
		if len(a.Values) == 0 {
			return fmt.Errorf("assertions[%d]: values is required for sample", index)
		}
	case AssertTickCount, AssertSampleCount:
		if a.Count == nil {
			return fmt.Errorf("assertions[%d]: count is required for %s", index, a.Type)
		}
		if *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case AssertState:
		if _, ok := tween.ParseState(a.State); !ok {
			return fmt.Errorf("assertions[%d]: unknown state %q", index, a.State)
		}
	case AssertCompleted:
		if a.Completed == nil {
			return fmt.Errorf("assertions[%d]: completed is required for completed", index)
		}
	case AssertError:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	if a.Values != nil {
		if _, err := ir.ParseNamedValueSet("values", a.Values); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
	}

	return nil
}
