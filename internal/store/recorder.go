package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/roach88/tween/internal/ir"
)

// Recorder writes the samples of one running tween to the store.
//
// Pass Observe to tween.WithObserver. Observe never fails the tween: the
// first write error is kept and returned by Finish.
//
// Thread-safety: Recorder is safe for concurrent use via internal mutex.
type Recorder struct {
	store *Store
	ctx   context.Context
	runID string

	mu      sync.Mutex
	err     error
	samples int
}

// NewRecorder writes a RUNNING run record for spec under runID and returns a
// recorder for its samples.
func (s *Store) NewRecorder(ctx context.Context, runID string, spec ir.TweenSpec) (*Recorder, error) {
	if _, err := s.WriteRun(ctx, Run{ID: runID, Spec: spec, State: "RUNNING"}); err != nil {
		return nil, fmt.Errorf("new recorder: %w", err)
	}
	// Samples and the final state are still written after ctx is cancelled,
	// since cancelling ctx is how a run gets stopped.
	return &Recorder{store: s, ctx: context.WithoutCancel(ctx), runID: runID}, nil
}

// RunID returns the run being recorded.
func (r *Recorder) RunID() string {
	return r.runID
}

// Observe records one sample.
func (r *Recorder) Observe(sample ir.Sample) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return
	}
	if err := r.store.WriteSample(r.ctx, r.runID, sample); err != nil {
		r.err = err
		return
	}
	r.samples++
}

// Samples returns how many samples were written.
func (r *Recorder) Samples() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.samples
}

// Finish records the run's final state and the error it stopped with, if
// any. Returns the first sample write error, or the state update error.
func (r *Recorder) Finish(state string, runErr error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	msg := ""
	if runErr != nil {
		msg = runErr.Error()
	}
	// The final state is written even after a sample failure so the run
	// does not stay RUNNING.
	if err := r.store.UpdateRunState(r.ctx, r.runID, state, msg); err != nil && r.err == nil {
		r.err = err
	}
	return r.err
}
