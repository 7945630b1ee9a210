package harness

import (
	"fmt"
	"math"
	"strings"

	"github.com/roach88/tween/internal/ir"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string      // Assertion type for categorization
	Expected string      // Human-readable expected outcome
	Actual   string      // Human-readable actual outcome
	Samples  []ir.Sample // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, s := range e.Samples {
		marker := ""
		if s.Final {
			marker = " (final)"
		}
		fmt.Fprintf(&buf, "  [%d] %s %s%s\n", s.Tick, s.Elapsed, formatValues(s.Values), marker)
	}

	return buf.String()
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertFinalValues:
			err = assertFinalValues(result, assertion)
		case AssertTickCount:
			err = assertCount(result, assertion, result.Ticks)
		case AssertSampleCount:
			err = assertCount(result, assertion, len(result.Samples))
		case AssertState:
			err = assertState(result, assertion)
		case AssertCompleted:
			err = assertCompleted(result, assertion)
		case AssertSample:
			err = assertSample(result, assertion)
		case AssertError:
			err = assertError(result, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}

// assertFinalValues checks the last delivered sample.
func assertFinalValues(result *Result, assertion Assertion) error {
	final, ok := result.Final()
	if !ok {
		return &AssertionError{
			Type:     AssertFinalValues,
			Expected: fmt.Sprintf("final values %v", assertion.Values),
			Actual:   "no samples delivered",
			Samples:  result.Samples,
		}
	}
	return matchValues(AssertFinalValues, final, assertion, result.Samples)
}

// assertSample checks the sample delivered at assertion.Tick.
func assertSample(result *Result, assertion Assertion) error {
	sample, ok := result.SampleAt(*assertion.Tick)
	if !ok {
		return &AssertionError{
			Type:     AssertSample,
			Expected: fmt.Sprintf("sample at tick %d", *assertion.Tick),
			Actual:   fmt.Sprintf("not delivered (%d samples)", len(result.Samples)),
			Samples:  result.Samples,
		}
	}
	return matchValues(AssertSample, sample, assertion, result.Samples)
}

func assertCount(result *Result, assertion Assertion, actual int) error {
	if actual == *assertion.Count {
		return nil
	}
	return &AssertionError{
		Type:     assertion.Type,
		Expected: fmt.Sprintf("%d", *assertion.Count),
		Actual:   fmt.Sprintf("%d", actual),
		Samples:  result.Samples,
	}
}

func assertState(result *Result, assertion Assertion) error {
	if result.State == assertion.State {
		return nil
	}
	actual := result.State
	if result.Err != "" {
		actual += " (" + result.Err + ")"
	}
	return &AssertionError{
		Type:     AssertState,
		Expected: assertion.State,
		Actual:   actual,
		Samples:  result.Samples,
	}
}

func assertCompleted(result *Result, assertion Assertion) error {
	if result.Completed == *assertion.Completed {
		return nil
	}
	return &AssertionError{
		Type:     AssertCompleted,
		Expected: fmt.Sprintf("completed=%t", *assertion.Completed),
		Actual:   fmt.Sprintf("completed=%t in state %s", result.Completed, result.State),
		Samples:  result.Samples,
	}
}

// assertError checks the stop error. An empty Contains requires no error.
func assertError(result *Result, assertion Assertion) error {
	if assertion.Contains == "" {
		if result.Err == "" {
			return nil
		}
		return &AssertionError{
			Type:     AssertError,
			Expected: "no error",
			Actual:   result.Err,
			Samples:  result.Samples,
		}
	}
	if strings.Contains(result.Err, assertion.Contains) {
		return nil
	}
	actual := result.Err
	if actual == "" {
		actual = "no error"
	}
	return &AssertionError{
		Type:     AssertError,
		Expected: fmt.Sprintf("error containing %q", assertion.Contains),
		Actual:   actual,
		Samples:  result.Samples,
	}
}

// matchValues checks that sample holds every expected value within tolerance.
// Extra keys in the sample are ignored.
func matchValues(kind string, sample ir.Sample, assertion Assertion, trace []ir.Sample) error {
	expected, err := ir.ParseNamedValueSet("values", assertion.Values)
	if err != nil {
		return fmt.Errorf("%s: %w", kind, err)
	}
	tolerance := assertion.Tolerance
	if tolerance == 0 {
		tolerance = DefaultTolerance
	}

	var mismatches []string
	for _, key := range expected.SortedKeys() {
		actual, ok := sample.Values[key]
		switch {
		case !ok:
			mismatches = append(mismatches, fmt.Sprintf("%s missing", key))
		case math.Abs(actual-expected[key]) > tolerance:
			mismatches = append(mismatches, fmt.Sprintf("%s=%v", key, actual))
		}
	}
	if len(mismatches) == 0 {
		return nil
	}

	return &AssertionError{
		Type:     kind,
		Expected: fmt.Sprintf("tick %d values %s (tolerance %g)", sample.Tick, formatValues(expected), tolerance),
		Actual:   strings.Join(mismatches, ", "),
		Samples:  trace,
	}
}

// formatValues renders a value set with sorted keys, e.g. "{a=1 b=2}".
func formatValues(vs ir.ValueSet) string {
	parts := make([]string, 0, len(vs))
	for _, k := range vs.SortedKeys() {
		parts = append(parts, fmt.Sprintf("%s=%v", k, vs[k]))
	}
	return "{" + strings.Join(parts, " ") + "}"
}
