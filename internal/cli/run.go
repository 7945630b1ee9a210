package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/tween/internal/ir"
	"github.com/roach88/tween/internal/store"
	"github.com/roach88/tween/internal/tween"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database string
	Simulate bool

	// Scheduler overrides the tick source (for testing).
	// If nil, --simulate selects tween.SimulatedScheduler and real time is the default.
	Scheduler tween.Scheduler

	// IDGenerator overrides run ID generation (for testing).
	// If nil, defaults to UUIDv7Generator.
	IDGenerator tween.IDGenerator
}

// RunReport is the outcome of one tween run.
type RunReport struct {
	Name      string       `json:"name"`
	RunID     string       `json:"run_id,omitempty"`
	State     string       `json:"state"`
	Error     string       `json:"error,omitempty"`
	Ticks     int          `json:"ticks"`
	TraceHash string       `json:"trace_hash,omitempty"`
	Samples   []SampleView `json:"samples"`
}

// Failed reports whether the run ended in ERROR or was rejected as INVALID.
func (r RunReport) Failed() bool {
	return r.State == tween.StateError.String() || r.State == tween.StateInvalid.String()
}

// RunResult holds the reports of every requested tween.
type RunResult struct {
	Runs []RunReport `json:"runs"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <specs-dir> <name>...",
		Short: "Run tween definitions and print their samples",
		Long: `Run one or more compiled tween definitions.

Each named definition runs on its own timer, concurrently with the others,
and every delivered sample is printed as it arrives. With --simulate the
ticks fire immediately instead of at the refresh interval; the samples are
identical either way. With --db every sample is recorded to a SQLite
database for later trace and replay.

Exit codes:
  0 - All tweens finished or were cancelled
  1 - A tween failed
  2 - Command error (invalid paths, unknown tween, etc.)

Example:
  tween run ./specs fade
  tween run ./specs fade slide --simulate --db ./tween.db`,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTweens(opts, args[0], args[1:], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database to record runs")
	cmd.Flags().BoolVar(&opts.Simulate, "simulate", false, "fire ticks immediately instead of in real time")

	return cmd
}

func runTweens(opts *RunOptions, specsDir string, names []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	logger.Debug("compiling specs", "dir", specsDir)
	specs, err := loadTweens(specsDir)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to compile specs", err)
	}

	selected := make([]*ir.TweenSpec, 0, len(names))
	width := 0
	for _, name := range names {
		spec, err := findTween(specs, name)
		if err != nil {
			return WrapExitError(ExitCommandError, "unknown tween", err)
		}
		selected = append(selected, spec)
		width = max(width, len(name))
	}

	var st *store.Store
	if opts.Database != "" {
		logger.Debug("opening database", "path", opts.Database)
		st, err = store.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing database", "error", closeErr)
			}
		}()
	}

	// Setup signal handling for graceful shutdown
	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, cancelling tweens", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	printer := &samplePrinter{w: cmd.OutOrStdout(), quiet: formatter.JSON(), width: width}
	reports := make([]RunReport, len(selected))

	// Tween failures are reported per run; only store errors stop the group.
	g, gctx := errgroup.WithContext(ctx)
	for i, spec := range selected {
		g.Go(func() error {
			report, err := runOne(gctx, opts, spec, st, logger, printer)
			reports[i] = report
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return WrapExitError(ExitCommandError, "run failed", err)
	}

	return outputRunResult(formatter, RunResult{Runs: reports})
}

// runOne runs spec to completion, recording it when st is set.
func runOne(ctx context.Context, opts *RunOptions, spec *ir.TweenSpec, st *store.Store, logger *slog.Logger, out *samplePrinter) (RunReport, error) {
	report := RunReport{Name: spec.Name, Samples: []SampleView{}}

	// Observer calls are sequential, and Wait orders them before the read.
	var (
		samples []ir.Sample
		rec     *store.Recorder
	)
	observe := func(s ir.Sample) {
		samples = append(samples, s)
		if rec != nil {
			rec.Observe(s)
		}
		out.print(spec.Name, s)
	}

	tweenOpts := []tween.Option{
		tween.WithLogger(logger.With("tween", spec.Name)),
		tween.WithScheduler(opts.scheduler()),
		tween.WithObserver(observe),
	}
	if opts.IDGenerator != nil {
		tweenOpts = append(tweenOpts, tween.WithIDGenerator(opts.IDGenerator))
	}

	tw, err := tween.Build(tween.ConfigFromSpec(*spec, nil), tweenOpts...)
	if err != nil {
		report.State = tween.StateInvalid.String()
		report.Error = err.Error()
		return report, nil
	}
	report.RunID = tw.ID()

	if st != nil {
		if rec, err = st.NewRecorder(ctx, tw.ID(), *spec); err != nil {
			return report, fmt.Errorf("recording %s: %w", spec.Name, err)
		}
	}

	if err := tw.Start(ctx, nil); err != nil && !tween.IsCallbackError(err) {
		return report, fmt.Errorf("starting %s: %w", spec.Name, err)
	}
	runErr := tw.Wait()

	report.State = tw.State().String()
	report.Ticks = tw.Ticks()
	report.Samples = sampleViews(samples)
	if runErr != nil {
		report.Error = runErr.Error()
	}
	if report.TraceHash, err = ir.TraceHash(samples); err != nil {
		return report, fmt.Errorf("hashing %s: %w", spec.Name, err)
	}

	if rec != nil {
		if err := rec.Finish(report.State, runErr); err != nil {
			return report, fmt.Errorf("recording %s: %w", spec.Name, err)
		}
	}

	logger.Debug("tween stopped", "tween", spec.Name, "run_id", report.RunID, "state", report.State)
	return report, nil
}

func (opts *RunOptions) scheduler() tween.Scheduler {
	switch {
	case opts.Scheduler != nil:
		return opts.Scheduler
	case opts.Simulate:
		return tween.SimulatedScheduler{}
	default:
		return tween.RealScheduler{}
	}
}

// samplePrinter serialises sample lines from concurrently running tweens.
type samplePrinter struct {
	mu    sync.Mutex
	w     io.Writer
	quiet bool
	width int
}

func (p *samplePrinter) print(name string, s ir.Sample) {
	if p.quiet {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "%-*s %s\n", p.width, name, formatSample(s))
}

// outputRunResult prints the per-run summary and maps failures to exit code 1.
func outputRunResult(formatter *OutputFormatter, result RunResult) error {
	failed := 0
	for _, r := range result.Runs {
		if r.Failed() {
			failed++
		}
	}

	var failure error
	if failed > 0 {
		failure = NewExitError(ExitFailure, fmt.Sprintf("%d tween(s) failed", failed))
	}

	if formatter.JSON() {
		if failed > 0 {
			first := CLIError{Code: "E_TWEEN_FAILED", Message: fmt.Sprintf("%d tween(s) failed", failed)}
			if err := formatter.Failure(first, result); err != nil {
				return err
			}
			return failure
		}
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintln(w)
	for _, r := range result.Runs {
		mark := "✓"
		if r.Failed() {
			mark = "✗"
		}
		fmt.Fprintf(w, "%s %s %s after %d tick(s)", mark, r.Name, r.State, r.Ticks)
		if r.RunID != "" {
			fmt.Fprintf(w, " [run %s]", r.RunID)
		}
		fmt.Fprintln(w)
		if r.Error != "" {
			fmt.Fprintf(w, "  %s\n", r.Error)
		}
	}

	return failure
}
