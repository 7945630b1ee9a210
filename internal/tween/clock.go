package tween

import (
	"sync"
	"time"
)

// Ticker delivers the ticks of one running tween.
type Ticker interface {
	// C returns the channel on which ticks are delivered.
	C() <-chan time.Time

	// Stop releases the ticker. No ticks are delivered after Stop returns.
	Stop()
}

// Scheduler creates the repeating timer that drives a running tween.
//
// The tween loop receives from Ticker.C on a single goroutine, so a slow tick
// delays the next one instead of overlapping it.
//
// Implemented by RealScheduler (production) and testutil.ManualScheduler (tests).
type Scheduler interface {
	NewTicker(d time.Duration) Ticker
}

// RealScheduler ticks on wall-clock time via time.Ticker.
//
// time.Ticker drops ticks for slow receivers. Elapsed time advances by the
// refresh interval per delivered tick, so a callback that overruns the
// interval stretches the run's wall-clock time instead of queueing ticks.
type RealScheduler struct{}

// NewTicker implements Scheduler.
func (RealScheduler) NewTicker(d time.Duration) Ticker {
	return realTicker{time.NewTicker(d)}
}

type realTicker struct {
	t *time.Ticker
}

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

// SimulatedScheduler ticks as fast as the tween consumes ticks. Tick times
// still advance by the interval, so a simulated run delivers exactly the
// values a wall-clock run would, without waiting. Used for dry runs and replay.
type SimulatedScheduler struct{}

// NewTicker implements Scheduler.
func (SimulatedScheduler) NewTicker(d time.Duration) Ticker {
	t := &simTicker{
		c:    make(chan time.Time),
		stop: make(chan struct{}),
	}
	go t.run(d)
	return t
}

type simTicker struct {
	c    chan time.Time
	stop chan struct{}
	once sync.Once
}

func (t *simTicker) run(d time.Duration) {
	var now time.Time
	for {
		now = now.Add(d)
		select {
		case t.c <- now:
		case <-t.stop:
			return
		}
	}
}

func (t *simTicker) C() <-chan time.Time { return t.c }

func (t *simTicker) Stop() {
	t.once.Do(func() { close(t.stop) })
}
