package harness

import "github.com/roach88/tween/internal/ir"

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all assertions hold.
	Pass bool `json:"pass"`

	// RunID is the instance ID the run was recorded under.
	// Empty when the tween never became runnable.
	RunID string `json:"run_id,omitempty"`

	// Samples are the delivered samples in tick order, read back from the
	// trace store.
	Samples []ir.Sample `json:"samples"`

	// TraceHash is ir.TraceHash(Samples).
	TraceHash string `json:"trace_hash,omitempty"`

	// State is the final lifecycle state name.
	State string `json:"state"`

	// Err is the error the tween stopped with, if any.
	Err string `json:"error,omitempty"`

	// Completed reports whether the completion callback ran.
	Completed bool `json:"completed"`

	// Ticks is the intermediate tick count reported by the tween.
	Ticks int `json:"ticks"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Samples: []ir.Sample{},
		Errors:  []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Final returns the last delivered sample, or false if none was delivered.
func (r *Result) Final() (ir.Sample, bool) {
	if len(r.Samples) == 0 {
		return ir.Sample{}, false
	}
	return r.Samples[len(r.Samples)-1], true
}

// SampleAt returns the sample delivered at tick.
func (r *Result) SampleAt(tick int) (ir.Sample, bool) {
	for _, s := range r.Samples {
		if s.Tick == tick {
			return s, true
		}
	}
	return ir.Sample{}, false
}
