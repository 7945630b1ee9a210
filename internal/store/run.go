package store

import "github.com/roach88/tween/internal/ir"

// Run is a recorded tween execution.
type Run struct {
	// ID is the tween instance ID.
	ID string

	// Seq is the logical insertion order, assigned by WriteRun.
	Seq int64

	// Spec is the definition the run executed.
	Spec ir.TweenSpec

	// SpecHash is ir.SpecHash(Spec) at record time.
	SpecHash string

	// State is the final lifecycle state name, e.g. "FINISHED".
	// "RUNNING" means the recorder never finished the run.
	State string

	// Error is the failure message for ERROR, CANCELLED by context and INVALID runs.
	Error string

	EngineVersion string
	IRVersion     string
}

// Trace is a run with all of its samples in tick order.
type Trace struct {
	Run     Run
	Samples []ir.Sample
}

// Hash returns the content hash of the trace samples.
func (t Trace) Hash() (string, error) {
	return ir.TraceHash(t.Samples)
}

// Final returns the final sample, or false if the run never delivered one.
func (t Trace) Final() (ir.Sample, bool) {
	if n := len(t.Samples); n > 0 && t.Samples[n-1].Final {
		return t.Samples[n-1], true
	}
	return ir.Sample{}, false
}
