package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/tween/internal/ir"
	"github.com/roach88/tween/internal/store"
	"github.com/roach88/tween/internal/tween"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	RunID    string // optional - specific run only
}

// ReplayRunResult holds the replay result for a single run.
type ReplayRunResult struct {
	RunID         string `json:"run_id"`
	Name          string `json:"name"`
	State         string `json:"state"`
	Recorded      int    `json:"recorded"`
	Replayed      int    `json:"replayed"`
	SpecHashOK    bool   `json:"spec_hash_ok"`
	Deterministic bool   `json:"deterministic"`
	Reason        string `json:"reason,omitempty"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Runs             []ReplayRunResult `json:"runs"`
	TotalRuns        int               `json:"total_runs"`
	AllDeterministic bool              `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Re-simulate recorded runs and verify determinism",
		Long: `Re-simulate recorded runs and verify they reproduce the same samples.

Each run's stored definition is checked against its recorded spec hash,
then run again on a simulated clock. A finished run must reproduce its
recorded samples exactly; a cancelled or failed run must match the start
of the replayed trace.

Exit codes:
  0 - All runs are deterministic
  1 - Determinism verification failed (differences detected)
  2 - Command error (database not found, etc.)

Examples:
  tween replay --db ./tween.db
  tween replay --db ./tween.db --run 0192f0c4-...
  tween replay --db ./tween.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "replay specific run only")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := newFormatter(opts.RootOptions, cmd)

	st, err := openExistingStore(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	var runIDs []string
	if opts.RunID != "" {
		runIDs = []string{opts.RunID}
	} else {
		runs, err := st.ListRuns(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list runs", err)
		}
		for _, run := range runs {
			runIDs = append(runIDs, run.ID)
		}
	}

	result := ReplayResult{
		Runs:             make([]ReplayRunResult, 0, len(runIDs)),
		TotalRuns:        len(runIDs),
		AllDeterministic: true,
	}

	for _, id := range runIDs {
		trace, err := st.ReadTrace(ctx, id)
		if errors.Is(err, store.ErrRunNotFound) {
			return NewExitError(ExitCommandError, fmt.Sprintf("run %q not found", id))
		}
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to read run %s", id), err)
		}

		runResult, err := replayAndVerifyRun(ctx, trace)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay run %s", id), err)
		}
		formatter.VerboseLog("Replayed %s: %d recorded, %d replayed", id, runResult.Recorded, runResult.Replayed)

		result.Runs = append(result.Runs, runResult)
		if !runResult.Deterministic {
			result.AllDeterministic = false
		}
	}

	if formatter.JSON() {
		return outputReplayJSON(formatter, result)
	}
	return outputReplayText(formatter, result)
}

// replayAndVerifyRun re-simulates a recorded run and compares the samples.
func replayAndVerifyRun(ctx context.Context, trace store.Trace) (ReplayRunResult, error) {
	run := trace.Run
	result := ReplayRunResult{
		RunID:    run.ID,
		Name:     run.Spec.Name,
		State:    run.State,
		Recorded: len(trace.Samples),
	}

	specHash, err := ir.SpecHash(run.Spec)
	if err != nil {
		return result, fmt.Errorf("hashing definition: %w", err)
	}
	result.SpecHashOK = specHash == run.SpecHash
	if !result.SpecHashOK {
		result.Reason = "stored definition does not match its spec hash"
		return result, nil
	}

	replayed, err := simulate(ctx, run.Spec)
	if err != nil {
		return result, err
	}
	result.Replayed = len(replayed)

	// Only a finished run is expected to have delivered every sample.
	want := replayed
	if run.State != tween.StateFinished.String() {
		if len(trace.Samples) > len(replayed) {
			result.Reason = fmt.Sprintf("recorded %d samples, replay delivers only %d", len(trace.Samples), len(replayed))
			return result, nil
		}
		want = replayed[:len(trace.Samples)]
	}

	recordedHash, err := trace.Hash()
	if err != nil {
		return result, fmt.Errorf("hashing recorded trace: %w", err)
	}
	replayedHash, err := ir.TraceHash(want)
	if err != nil {
		return result, fmt.Errorf("hashing replayed trace: %w", err)
	}

	result.Deterministic = recordedHash == replayedHash
	if !result.Deterministic {
		result.Reason = firstDifference(trace.Samples, want)
	}
	return result, nil
}

// simulate runs spec to completion on a simulated clock and returns every
// delivered sample.
func simulate(ctx context.Context, spec ir.TweenSpec) ([]ir.Sample, error) {
	var samples []ir.Sample
	err := tween.Run(ctx, tween.ConfigFromSpec(spec, nil),
		tween.WithScheduler(tween.SimulatedScheduler{}),
		tween.WithLogger(slog.New(slog.DiscardHandler)),
		tween.WithObserver(func(s ir.Sample) { samples = append(samples, s) }),
	)
	if err != nil {
		return nil, fmt.Errorf("re-simulating %s: %w", spec.Name, err)
	}
	return samples, nil
}

// firstDifference describes where two sample sequences diverge.
func firstDifference(recorded, replayed []ir.Sample) string {
	for i := range min(len(recorded), len(replayed)) {
		r, p := recorded[i], replayed[i]
		if r.Tick != p.Tick || r.Elapsed != p.Elapsed || r.Final != p.Final || !r.Values.Equal(p.Values) {
			return fmt.Sprintf("tick %d: recorded %s, replayed %s", r.Tick, formatSample(r), formatSample(p))
		}
	}
	return fmt.Sprintf("recorded %d samples, replayed %d", len(recorded), len(replayed))
}

// outputReplayJSON outputs the replay result as JSON.
func outputReplayJSON(formatter *OutputFormatter, result ReplayResult) error {
	if result.AllDeterministic {
		return formatter.Success(result)
	}

	if err := formatter.Failure(CLIError{
		Code:    "E_DETERMINISM",
		Message: "determinism verification failed",
	}, result); err != nil {
		return err
	}
	// Non-deterministic = exit code 1
	return NewExitError(ExitFailure, "determinism verification failed")
}

// outputReplayText outputs the replay result as text.
func outputReplayText(formatter *OutputFormatter, result ReplayResult) error {
	w := formatter.Writer

	if result.TotalRuns == 0 {
		fmt.Fprintln(w, "No runs found in database.")
		return nil
	}

	for _, r := range result.Runs {
		if r.Deterministic {
			fmt.Fprintf(w, "✓ %s %s %s (%d sample(s))\n", truncateID(r.RunID), r.Name, r.State, r.Recorded)
			continue
		}
		fmt.Fprintf(w, "✗ %s %s %s\n", truncateID(r.RunID), r.Name, r.State)
		fmt.Fprintf(w, "  %s\n", r.Reason)
	}
	fmt.Fprintln(w)

	if !result.AllDeterministic {
		// Non-deterministic = exit code 1
		return NewExitError(ExitFailure, "determinism verification failed")
	}

	fmt.Fprintf(w, "✓ All %d run(s) verified deterministic\n", result.TotalRuns)
	return nil
}
