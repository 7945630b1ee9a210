package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/tween/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	RunID    string // optional - show one run instead of listing
	Name     string // optional - list runs of one definition
}

// RunSummary is one row of the run listing.
type RunSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Easing   string `json:"easing"`
	Duration string `json:"duration"`
	State    string `json:"state"`
	Samples  int    `json:"samples"`
	Error    string `json:"error,omitempty"`
}

// RunListResult holds the run listing.
type RunListResult struct {
	Runs []RunSummary `json:"runs"`
}

// TraceResult holds one recorded run and its samples.
type TraceResult struct {
	RunID         string       `json:"run_id"`
	Name          string       `json:"name"`
	Easing        string       `json:"easing"`
	Duration      string       `json:"duration"`
	Refresh       string       `json:"refresh"`
	State         string       `json:"state"`
	Error         string       `json:"error,omitempty"`
	SpecHash      string       `json:"spec_hash"`
	TraceHash     string       `json:"trace_hash"`
	EngineVersion string       `json:"engine_version"`
	Samples       []SampleView `json:"samples"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show recorded runs",
		Long: `Show tween runs recorded by "tween run --db".

Without --run, every recorded run is listed in the order it was recorded.
With --run, the run's definition, final state and every delivered sample
are shown together with the trace hash used by replay.

Examples:
  tween trace --db ./tween.db
  tween trace --db ./tween.db --name fade
  tween trace --db ./tween.db --run 0192f0c4-...
  tween trace --db ./tween.db --run 0192f0c4-... --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run ID to show")
	cmd.Flags().StringVar(&opts.Name, "name", "", "list only runs of this definition")

	return cmd
}

// openExistingStore opens path, refusing to create a new database.
func openExistingStore(path string) (*store.Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, WrapExitError(ExitCommandError, "database not found", err)
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := newFormatter(opts.RootOptions, cmd)

	st, err := openExistingStore(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	if opts.RunID != "" {
		return showTrace(ctx, st, opts.RunID, formatter)
	}
	return listRuns(ctx, st, opts.Name, formatter)
}

func listRuns(ctx context.Context, st *store.Store, name string, formatter *OutputFormatter) error {
	var (
		runs []store.Run
		err  error
	)
	if name != "" {
		runs, err = st.ListRunsByName(ctx, name)
	} else {
		runs, err = st.ListRuns(ctx)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	result := RunListResult{Runs: make([]RunSummary, 0, len(runs))}
	for _, run := range runs {
		samples, err := st.ReadSamples(ctx, run.ID)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to read samples of %s", run.ID), err)
		}
		result.Runs = append(result.Runs, RunSummary{
			ID:       run.ID,
			Name:     run.Spec.Name,
			Easing:   run.Spec.Easing,
			Duration: run.Spec.Duration.String(),
			State:    run.State,
			Samples:  len(samples),
			Error:    run.Error,
		})
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}

	w := formatter.Writer
	if len(result.Runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}

	fmt.Fprintf(w, "%-16s  %-16s  %-14s  %-8s  %-9s  %s\n", "RUN", "NAME", "EASING", "DURATION", "STATE", "SAMPLES")
	for _, r := range result.Runs {
		fmt.Fprintf(w, "%-16s  %-16s  %-14s  %-8s  %-9s  %d\n",
			truncateID(r.ID), r.Name, r.Easing, r.Duration, r.State, r.Samples)
	}
	return nil
}

func showTrace(ctx context.Context, st *store.Store, runID string, formatter *OutputFormatter) error {
	trace, err := st.ReadTrace(ctx, runID)
	if errors.Is(err, store.ErrRunNotFound) {
		_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("run %q not found", runID), nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("run %q not found", runID))
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read trace", err)
	}

	hash, err := trace.Hash()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to hash trace", err)
	}

	run := trace.Run
	result := TraceResult{
		RunID:         run.ID,
		Name:          run.Spec.Name,
		Easing:        run.Spec.Easing,
		Duration:      run.Spec.Duration.String(),
		Refresh:       run.Spec.Refresh.String(),
		State:         run.State,
		Error:         run.Error,
		SpecHash:      run.SpecHash,
		TraceHash:     hash,
		EngineVersion: run.EngineVersion,
		Samples:       sampleViews(trace.Samples),
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintln(w, "=== Run ===")
	fmt.Fprintf(w, "ID:       %s\n", result.RunID)
	fmt.Fprintf(w, "Tween:    %s (%s over %s every %s)\n", result.Name, result.Easing, result.Duration, result.Refresh)
	fmt.Fprintf(w, "From:     %s\n", formatValues(run.Spec.From))
	fmt.Fprintf(w, "To:       %s\n", formatValues(run.Spec.To))
	fmt.Fprintf(w, "State:    %s\n", result.State)
	if result.Error != "" {
		fmt.Fprintf(w, "Error:    %s\n", result.Error)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Samples ===")
	if len(trace.Samples) == 0 {
		fmt.Fprintln(w, "(none)")
	}
	for _, s := range trace.Samples {
		fmt.Fprintf(w, "  %s\n", formatSample(s))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Hashes ===")
	fmt.Fprintf(w, "Spec:     %s\n", result.SpecHash)
	fmt.Fprintf(w, "Trace:    %s\n", result.TraceHash)
	return nil
}
