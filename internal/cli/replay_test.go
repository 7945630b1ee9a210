package cli

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tween/internal/ir"
	"github.com/roach88/tween/internal/store"
)

// writeTrace stores trace in the database at dbPath.
func writeTrace(t *testing.T, dbPath string, trace store.Trace) {
	t.Helper()
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()
	_, err = st.WriteTrace(context.Background(), trace)
	require.NoError(t, err)
}

// recordedFade returns the fade definition and its full simulated trace.
func recordedFade(t *testing.T) (ir.TweenSpec, []ir.Sample) {
	t.Helper()
	specs, err := loadTweens(specsDir)
	require.NoError(t, err)
	spec, err := findTween(specs, "fade")
	require.NoError(t, err)
	samples, err := simulate(context.Background(), *spec)
	require.NoError(t, err)
	return *spec, samples
}

func TestReplayRecordedRunsAreDeterministic(t *testing.T) {
	dbPath := recordRuns(t, map[string]string{"run-fade": "fade", "run-slide": "slide"})

	out, _, err := execute(t, NewReplayCommand(&RootOptions{Format: "text"}), "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ run-fade fade FINISHED (7 sample(s))")
	assert.Contains(t, out, "✓ run-slide slide FINISHED (6 sample(s))")
	assert.Contains(t, out, "✓ All 2 run(s) verified deterministic")
}

func TestReplaySingleRunJSON(t *testing.T) {
	dbPath := recordRuns(t, map[string]string{"run-fade": "fade", "run-slide": "slide"})

	out, _, err := execute(t, NewReplayCommand(&RootOptions{Format: "json"}), "--db", dbPath, "--run", "run-slide")
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   ReplayResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.AllDeterministic)
	require.Len(t, resp.Data.Runs, 1)
	assert.Equal(t, "run-slide", resp.Data.Runs[0].RunID)
	assert.True(t, resp.Data.Runs[0].SpecHashOK)
	assert.Equal(t, 6, resp.Data.Runs[0].Replayed)
}

func TestReplayCancelledRunMatchesPrefix(t *testing.T) {
	spec, samples := recordedFade(t)
	dbPath := filepath.Join(t.TempDir(), "tween.db")
	writeTrace(t, dbPath, store.Trace{
		Run:     store.Run{ID: "run-cancelled", Spec: spec, State: "CANCELLED"},
		Samples: samples[:3],
	})

	out, _, err := execute(t, NewReplayCommand(&RootOptions{Format: "text"}), "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ run-cancelled fade CANCELLED (3 sample(s))")
}

func TestReplayDetectsTamperedSample(t *testing.T) {
	spec, samples := recordedFade(t)
	samples[2].Values = ir.ValueSet{"opacity": 0.9}

	dbPath := filepath.Join(t.TempDir(), "tween.db")
	writeTrace(t, dbPath, store.Trace{
		Run:     store.Run{ID: "run-tampered", Spec: spec, State: "FINISHED"},
		Samples: samples,
	})

	out, _, err := execute(t, NewReplayCommand(&RootOptions{Format: "text"}), "--db", dbPath)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ run-tampered fade FINISHED")
	assert.Contains(t, out, "tick 2: recorded [2] 10ms {opacity=0.9}")
}

func TestReplayDetectsSpecHashMismatch(t *testing.T) {
	spec, samples := recordedFade(t)
	dbPath := filepath.Join(t.TempDir(), "tween.db")
	writeTrace(t, dbPath, store.Trace{
		Run:     store.Run{ID: "run-edited", Spec: spec, SpecHash: "not-the-hash", State: "FINISHED"},
		Samples: samples,
	})

	out, _, err := execute(t, NewReplayCommand(&RootOptions{Format: "json"}), "--db", dbPath)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string       `json:"status"`
		Data   ReplayResult `json:"data"`
		Error  *CLIError    `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "E_DETERMINISM", resp.Error.Code)
	require.Len(t, resp.Data.Runs, 1)
	assert.False(t, resp.Data.Runs[0].SpecHashOK)
	assert.Equal(t, "stored definition does not match its spec hash", resp.Data.Runs[0].Reason)
}

func TestReplayTooManyRecordedSamples(t *testing.T) {
	spec, samples := recordedFade(t)
	extra := append(samples, ir.Sample{Tick: 7, Elapsed: 60 * time.Millisecond, Values: ir.ValueSet{"opacity": 1}})

	dbPath := filepath.Join(t.TempDir(), "tween.db")
	writeTrace(t, dbPath, store.Trace{
		Run:     store.Run{ID: "run-long", Spec: spec, State: "CANCELLED"},
		Samples: extra,
	})

	out, _, err := execute(t, NewReplayCommand(&RootOptions{Format: "text"}), "--db", dbPath)
	require.Error(t, err)
	assert.Contains(t, out, "recorded 8 samples, replay delivers only 7")
}

func TestReplayEmptyDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "tween.db")
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	out, _, err := execute(t, NewReplayCommand(&RootOptions{Format: "text"}), "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No runs found in database.")
}

func TestReplayUnknownRun(t *testing.T) {
	dbPath := recordRuns(t, map[string]string{"run-fade": "fade"})

	_, _, err := execute(t, NewReplayCommand(&RootOptions{Format: "text"}), "--db", dbPath, "--run", "missing")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), `run "missing" not found`)
}

func TestFirstDifference(t *testing.T) {
	a := []ir.Sample{
		{Tick: 0, Values: ir.ValueSet{"x": 0}},
		{Tick: 1, Elapsed: 10 * time.Millisecond, Values: ir.ValueSet{"x": 1}},
	}
	b := []ir.Sample{
		{Tick: 0, Values: ir.ValueSet{"x": 0}},
		{Tick: 1, Elapsed: 10 * time.Millisecond, Values: ir.ValueSet{"x": 2}},
	}

	assert.Equal(t, "tick 1: recorded [1] 10ms {x=1}, replayed [1] 10ms {x=2}", firstDifference(a, b))
	assert.Equal(t, "recorded 1 samples, replayed 2", firstDifference(a[:1], a))
}
