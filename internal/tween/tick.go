package tween

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/tween/internal/easing"
	"github.com/roach88/tween/internal/ir"
)

// loop is the single goroutine that drives a running tween.
// It exits when the tween stops, releases the ticker and closes done, so
// Done never fires while a callback of this tween is still running.
func (t *Tween) loop(ctx context.Context, ticker Ticker, stop <-chan struct{}) {
	defer t.closeDone()
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			t.cancelWithContext(ctx.Err())
			return
		case <-ticker.C():
			if ctx.Err() != nil {
				t.cancelWithContext(ctx.Err())
				return
			}
			if !t.tick() {
				return
			}
		}
	}
}

// tick runs one scheduled step and reports whether the loop should continue.
//
// A tick is intermediate only while a whole refresh interval fits in the
// remaining duration, so a run delivers floor(duration/refresh) intermediate
// ticks and the final delivery is never later than duration.
func (t *Tween) tick() bool {
	t.mu.Lock()
	if t.state != StateRunning {
		t.mu.Unlock()
		return false
	}

	// An intermediate tick needs a whole refresh interval left; otherwise
	// this is the final tick, which delivers the exact target.
	if t.elapsed+t.refresh > t.duration {
		return t.finishLocked()
	}

	t.advanceLocked()
	index := t.ticks + 1
	elapsed := t.elapsed
	values := t.snapshotLocked()
	t.mu.Unlock()

	if err := t.deliver(index, elapsed, values, false); err != nil {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.elapsed += t.refresh
	t.ticks++
	return t.state == StateRunning
}

// advanceLocked moves every working value one tick forward. LINEAR adds the
// precomputed step; other curves recompute from progress at the current
// elapsed time.
func (t *Tween) advanceLocked() {
	if t.curve == easing.Linear {
		for _, k := range t.keys {
			t.items[k].value += t.items[k].step
		}
		return
	}

	progress := float64(t.elapsed) / float64(t.duration)
	m := easing.Multiplier(t.curve, progress)
	for _, k := range t.keys {
		from := t.initial[k]
		t.items[k].value = from + (t.target[k]-from)*m
	}
}

// finishLocked delivers the exact target, then completes. Called with t.mu
// held; releases it.
func (t *Tween) finishLocked() bool {
	index := t.ticks + 1
	elapsed := t.elapsed
	values := t.target.Clone()
	for _, k := range t.keys {
		t.items[k].value = t.target[k]
	}
	t.mu.Unlock()

	if err := t.deliver(index, elapsed, values, true); err != nil {
		return false
	}

	t.mu.Lock()
	if t.state != StateRunning {
		// Cancelled from inside the final callback.
		t.mu.Unlock()
		return false
	}
	t.state = StateFinished
	onComplete := t.onComplete
	ticks := t.ticks
	t.mu.Unlock()

	t.logger.Debug("tween finished", "ticks", ticks, "elapsed", elapsed)
	t.complete(onComplete)
	return false
}

// complete runs the completion callback. A panic is logged rather than
// killing the loop goroutine, which still has to close done.
func (t *Tween) complete(onComplete func()) {
	if onComplete == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			t.logger.Warn("completion callback panicked", "panic", r)
		}
	}()
	onComplete()
}

// deliver invokes the update callback without the lock held. On failure the
// tween moves to StateError and the *CallbackError is returned; on success
// the observer sees the sample.
func (t *Tween) deliver(index int, elapsed time.Duration, values ir.ValueSet, final bool) error {
	if err := t.invoke(values.Clone()); err != nil {
		cbErr := &CallbackError{Tick: index, Elapsed: elapsed, Err: err}
		t.fail(cbErr)
		return cbErr
	}

	if t.observer != nil {
		t.observer(ir.Sample{Tick: index, Elapsed: elapsed, Values: values, Final: final})
	}
	return nil
}

func (t *Tween) invoke(values ir.ValueSet) (err error) {
	if t.onUpdate == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return t.onUpdate(values)
}

func (t *Tween) fail(err *CallbackError) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.logger.Warn("update callback failed", "tick", err.Tick, "elapsed", err.Elapsed, "error", err.Err)
	if t.state != StateRunning {
		return
	}
	t.state = StateError
	t.err = err
	t.closeDone()
}

func (t *Tween) cancelWithContext(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != StateRunning {
		return
	}
	t.state = StateCancelled
	t.err = err
	t.logger.Debug("tween cancelled", "ticks", t.ticks, "elapsed", t.elapsed, "cause", err)
}
