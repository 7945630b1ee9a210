package harness

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/tween/internal/easing"
	"github.com/roach88/tween/internal/ir"
	"github.com/roach88/tween/internal/store"
	"github.com/roach88/tween/internal/testutil"
	"github.com/roach88/tween/internal/tween"
)

// Harness is the test execution engine.
// It runs one scenario with a manual scheduler, a fixed instance ID and a
// fresh in-memory trace store.
type Harness struct {
	store     *store.Store
	scheduler *testutil.ManualScheduler
	ids       *testutil.FixedIDGenerator
	logger    *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// specs supplies the compiled definitions that scenario.Tween may name.
// Each scenario runs in a fresh in-memory database for isolation, and ticks
// are fired one at a time until the tween stops, so results are reproducible.
//
// Execution flow:
// 1. Resolve the definition and create a fresh in-memory database
// 2. Configure the tween; invalid input ends the run in INVALID
// 3. Start it, fire ticks until it stops, and record every sample
// 4. Read the trace back and evaluate assertions against it
//
// A returned error means the scenario could not be executed at all;
// assertion failures are reported in Result.Errors.
func Run(scenario *Scenario, specs ...*ir.TweenSpec) (*Result, error) {
	spec, err := scenario.Resolve(specs)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		store:     st,
		scheduler: testutil.NewManualScheduler(),
		ids:       testutil.NewFixedIDGenerator(scenario.InstanceID),
		logger:    testutil.DiscardLogger(), // Suppress logs in tests
	}

	ctx := context.Background()
	result := NewResult()
	if err := h.execute(ctx, scenario, spec, result); err != nil {
		return nil, fmt.Errorf("failed to execute scenario %q: %w", scenario.Name, err)
	}

	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(errMsg)
	}

	return result, nil
}

// execute drives the tween through its whole lifecycle and fills result.
func (h *Harness) execute(ctx context.Context, scenario *Scenario, spec ir.TweenSpec, result *Result) error {
	var (
		tw        *tween.Tween
		rec       *store.Recorder
		calls     int
		completed bool
	)

	// Callbacks run on the tween goroutine one at a time, so calls needs no
	// lock. tw and rec are set before Start.
	onUpdate := func(ir.ValueSet) error {
		tick := calls
		calls++
		if scenario.FailAt != nil && tick == *scenario.FailAt {
			return fmt.Errorf("scenario failure at tick %d", tick)
		}
		if scenario.CancelAfter != nil && tick == *scenario.CancelAfter {
			return tw.Cancel()
		}
		return nil
	}

	tw, err := tween.New(spec.From,
		tween.WithRefreshRate(spec.Refresh),
		tween.WithScheduler(h.scheduler),
		tween.WithLogger(h.logger),
		tween.WithIDGenerator(h.ids),
		tween.WithObserver(func(s ir.Sample) { rec.Observe(s) }),
	)
	if err != nil {
		result.State = tween.StateInvalid.String()
		result.Err = err.Error()
		return nil
	}

	if err := tw.SetTarget(spec.To, spec.Duration); err != nil {
		if !ir.IsValidationError(err) {
			return err
		}
		result.State = tw.State().String()
		result.Err = err.Error()
		return nil
	}
	if err := tw.SetEasing(easing.Curve(spec.Easing)); err != nil {
		return err
	}
	if err := tw.OnUpdate(onUpdate); err != nil {
		return err
	}

	rec, err = h.store.NewRecorder(ctx, tw.ID(), spec)
	if err != nil {
		return err
	}
	result.RunID = tw.ID()

	if err := tw.Start(ctx, func() { completed = true }); err != nil {
		if !tween.IsCallbackError(err) {
			return err
		}
	} else if ticker := h.scheduler.Last(); ticker != nil {
		ticker.Drain()
	}

	runErr := tw.Wait()
	state := tw.State()
	if err := rec.Finish(state.String(), runErr); err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	trace, err := h.store.ReadTrace(ctx, tw.ID())
	if err != nil {
		return fmt.Errorf("failed to read trace: %w", err)
	}
	hash, err := trace.Hash()
	if err != nil {
		return err
	}

	result.Samples = trace.Samples
	result.TraceHash = hash
	result.State = state.String()
	result.Completed = completed
	result.Ticks = tw.Ticks()
	if runErr != nil {
		result.Err = runErr.Error()
	}
	return nil
}
