package tween

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/roach88/tween/internal/easing"
	"github.com/roach88/tween/internal/ir"
)

// UpdateFunc receives the current values once per tick.
// Returning an error (or panicking) moves the tween to StateError.
type UpdateFunc func(values ir.ValueSet) error

// Option configures a Tween at construction.
type Option func(*Tween)

// WithRefreshRate sets the tick interval.
//
// Default: 10ms (ir.DefaultRefresh). Non-positive values fail construction.
func WithRefreshRate(d time.Duration) Option {
	return func(t *Tween) {
		t.refresh = d
	}
}

// WithScheduler replaces the wall-clock ticker.
// Tests use testutil.ManualScheduler to fire ticks explicitly.
func WithScheduler(s Scheduler) Option {
	return func(t *Tween) {
		t.scheduler = s
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(t *Tween) {
		t.logger = l
	}
}

// WithIDGenerator sets the instance ID source. Default: UUIDv7Generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(t *Tween) {
		t.ids = g
	}
}

// WithObserver registers fn to receive every successfully delivered sample,
// after the update callback returns. Used by the trace recorder and harness.
func WithObserver(fn func(ir.Sample)) Option {
	return func(t *Tween) {
		t.observer = fn
	}
}

// volatileItem is the per-key working state of a configured tween.
// step is only consulted under LINEAR easing.
type volatileItem struct {
	value float64
	step  float64
}

// Tween interpolates a ValueSet towards a target over a fixed duration.
//
// Configuration is strictly ordered: New, SetTarget, SetEasing, OnUpdate,
// Start. Each call checks the lifecycle state and returns *SequenceError when
// made out of order. Build performs the whole sequence from a Config.
//
// Thread-safety model:
//   - All methods are safe from any goroutine.
//   - Ticks run on a single goroutine per instance and never overlap.
//   - Callbacks run without the instance lock held, so a callback may call
//     Cancel or any accessor.
//
// INVARIANTS:
//   - initial and target always share the same key set
//   - the final delivered values equal target exactly
//   - the completion callback runs at most once, only after the final update
type Tween struct {
	mu sync.Mutex

	id    string
	state State
	err   error

	initial ir.ValueSet
	target  ir.ValueSet
	keys    []string
	items   map[string]*volatileItem

	duration time.Duration
	refresh  time.Duration
	elapsed  time.Duration
	ticks    int
	curve    easing.Curve

	onUpdate   UpdateFunc
	onComplete func()
	observer   func(ir.Sample)

	scheduler Scheduler
	logger    *slog.Logger
	ids       IDGenerator

	stop     chan struct{}
	done     chan struct{}
	doneOnce sync.Once
}

// New constructs an IDLE tween from initial values.
//
// Fails with *ir.ValidationError when initial is nil or holds a non-finite
// value, or when the refresh rate is not positive. No instance is returned
// on failure.
func New(initial ir.ValueSet, opts ...Option) (*Tween, error) {
	if initial == nil {
		return nil, &ir.ValidationError{Field: "initial", Reason: "expected an object of numeric properties"}
	}
	if err := initial.Validate(); err != nil {
		return nil, ir.WithField(err, "initial")
	}

	t := &Tween{
		state:     StateIdle,
		initial:   initial.Clone(),
		keys:      initial.SortedKeys(),
		refresh:   ir.DefaultRefresh,
		curve:     easing.Linear,
		scheduler: RealScheduler{},
		logger:    slog.Default(),
		ids:       UUIDv7Generator{},
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}

	if err := ir.ValidateDuration("refresh", t.refresh); err != nil {
		return nil, err
	}

	t.id = t.ids.Generate()
	t.logger = t.logger.With("tween", t.id)
	return t, nil
}

// NewFromMap is New for dynamically typed input such as decoded JSON or YAML.
// Any non-numeric or nested entry fails with *ir.ValidationError.
func NewFromMap(initial map[string]any, opts ...Option) (*Tween, error) {
	vs, err := ir.ParseNamedValueSet("initial", initial)
	if err != nil {
		return nil, err
	}
	return New(vs, opts...)
}

// SetTarget stores the target values and duration. Valid from StateIdle.
//
// target must hold finite values under exactly the initial keys, and
// duration must be positive. Invalid input moves the tween to StateInvalid
// and returns *ir.ValidationError.
func (t *Tween) SetTarget(target ir.ValueSet, duration time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != StateIdle {
		return newSequenceError("SetTarget", t.state, StateIdle)
	}

	if err := t.validateTarget(target, duration); err != nil {
		t.invalidateLocked(err)
		return err
	}

	t.target = target.Clone()
	t.duration = duration
	t.state = StateConstructed
	return nil
}

func (t *Tween) validateTarget(target ir.ValueSet, duration time.Duration) error {
	if target == nil {
		return &ir.ValidationError{Field: "target", Reason: "expected an object of numeric properties"}
	}
	if err := target.Validate(); err != nil {
		return ir.WithField(err, "target")
	}
	if err := ir.SameKeys(t.initial, target); err != nil {
		return ir.WithField(err, "target")
	}
	return ir.ValidateDuration("duration", duration)
}

// SetEasing selects the easing curve and computes the per-key working state.
// Valid from StateConstructed. Unknown curves fall back to easing.Linear.
func (t *Tween) SetEasing(curve easing.Curve) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != StateConstructed {
		return newSequenceError("SetEasing", t.state, StateConstructed)
	}

	t.curve, _ = easing.Parse(string(curve))

	ratio := float64(t.refresh) / float64(t.duration)
	t.items = make(map[string]*volatileItem, len(t.keys))
	for _, k := range t.keys {
		t.items[k] = &volatileItem{
			value: t.initial[k],
			step:  (t.target[k] - t.initial[k]) * ratio,
		}
	}

	t.state = StateWaiting
	return nil
}

// OnUpdate registers the per-tick callback. Valid from StateWaiting.
// A nil fn is accepted and ignores every update.
func (t *Tween) OnUpdate(fn UpdateFunc) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != StateWaiting {
		return newSequenceError("OnUpdate", t.state, StateWaiting)
	}

	t.onUpdate = fn
	t.state = StateReady
	return nil
}

// Start delivers the initial values synchronously, then starts ticking at the
// refresh rate. Valid from StateReady.
//
// onComplete (may be nil) runs once after the final update on normal
// completion; it does not run after Cancel, context cancellation or a
// callback failure. Cancelling ctx stops the tween like Cancel, and Wait then
// returns ctx.Err().
//
// If the initial delivery fails, the tween moves to StateError and Start
// returns the *CallbackError. A nil ctx is treated as context.Background().
func (t *Tween) Start(ctx context.Context, onComplete func()) error {
	if ctx == nil {
		ctx = context.Background()
	}

	t.mu.Lock()
	if t.state != StateReady {
		defer t.mu.Unlock()
		return newSequenceError("Start", t.state, StateReady)
	}

	t.onComplete = onComplete
	t.stop = make(chan struct{})
	t.state = StateRunning
	values := t.snapshotLocked()
	t.mu.Unlock()

	t.logger.Debug("tween started",
		"easing", string(t.curve),
		"duration", t.duration,
		"refresh", t.refresh,
		"keys", len(t.keys))

	if err := t.deliver(0, 0, values, false); err != nil {
		return err
	}

	t.mu.Lock()
	if t.state != StateRunning {
		// Cancelled during the initial delivery; no loop will close done.
		t.closeDone()
		t.mu.Unlock()
		return nil
	}
	ticker := t.scheduler.NewTicker(t.refresh)
	stop := t.stop
	t.mu.Unlock()

	go t.loop(ctx, ticker, stop)
	return nil
}

// Cancel stops a running tween before its next tick. Valid from StateRunning.
//
// The tween moves to StateCancelled, no further updates are delivered and
// the completion callback does not run. A tick already delivering when
// Cancel is called runs to the end; Done closes after it returns.
func (t *Tween) Cancel() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != StateRunning {
		return newSequenceError("Cancel", t.state, StateRunning)
	}
	if t.stop == nil {
		return nil
	}

	t.state = StateCancelled
	close(t.stop)
	t.logger.Debug("tween cancelled", "ticks", t.ticks, "elapsed", t.elapsed)
	return nil
}

// Done returns a channel closed once the tween stops for any reason:
// finished, cancelled, failed or invalidated.
func (t *Tween) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the tween stops and returns Err.
func (t *Tween) Wait() error {
	<-t.done
	return t.Err()
}

// Err returns why the tween stopped: nil after completion or Cancel, the
// *CallbackError after a callback failure, the *ir.ValidationError after
// invalid input, or the context error after context cancellation.
func (t *Tween) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// State returns the current lifecycle state.
func (t *Tween) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Elapsed returns the elapsed tween time, advanced by the refresh rate after
// every successfully delivered intermediate tick.
func (t *Tween) Elapsed() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.elapsed
}

// Ticks returns the number of intermediate ticks delivered so far. The
// initial delivery made by Start and the final target delivery are not counted.
func (t *Tween) Ticks() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ticks
}

// ID returns the instance ID.
func (t *Tween) ID() string {
	return t.id
}

// Easing returns the curve in effect, after unknown names fell back to Linear.
func (t *Tween) Easing() easing.Curve {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.curve
}

func (t *Tween) snapshotLocked() ir.ValueSet {
	vs := make(ir.ValueSet, len(t.keys))
	for _, k := range t.keys {
		vs[k] = t.items[k].value
	}
	return vs
}

func (t *Tween) invalidateLocked(err error) {
	t.state = StateInvalid
	t.err = err
	t.closeDone()
}

func (t *Tween) closeDone() {
	t.doneOnce.Do(func() { close(t.done) })
}
