package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/tween/internal/ir"
)

// createTestStore creates a new store in a temporary directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestSpec creates a minimal valid definition.
func createTestSpec(name string) ir.TweenSpec {
	return ir.TweenSpec{
		Name:     name,
		From:     ir.ValueSet{"a": 0, "b": 10},
		To:       ir.ValueSet{"a": 1, "b": -10},
		Duration: 30 * time.Millisecond,
		Refresh:  10 * time.Millisecond,
		Easing:   "QUAD_OUT",
	}
}

// createTestRun creates a run record for spec with the given ID and state.
func createTestRun(id string, spec ir.TweenSpec, state string) Run {
	return Run{ID: id, Spec: spec, State: state}
}
