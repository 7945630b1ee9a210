// Package tween implements the numeric interpolation engine.
//
// A Tween moves a flat set of named numbers from initial to target values
// over a fixed duration, delivering a snapshot to an update callback on a
// fixed cadence and shaping the motion with an easing curve.
//
// ARCHITECTURE:
//
// Lifecycle:
// Configuration is a strict sequence, each step guarded by the state enum:
//
//	New -> IDLE -> SetTarget -> CONSTRUCTED -> SetEasing -> WAITING
//	    -> OnUpdate -> READY -> Start -> RUNNING
//
// A running tween ends FINISHED, CANCELLED or ERROR. Invalid configuration
// input ends it INVALID. Build does the whole sequence from a Config.
//
// Tick Loop:
// Start delivers the initial values synchronously, then one goroutine per
// instance receives ticks from its Scheduler and runs them one at a time.
// 1. Enough time left for a whole interval: advance values and deliver.
// 2. Otherwise: deliver the exact target, finish, run the completion callback.
//
// LINEAR advances each value by a precomputed step of
// (target-initial)*refresh/duration, so a run delivers floor(duration/refresh)
// intermediate ticks. Every other curve recomputes each value from
// easing.Multiplier at the current elapsed time.
//
// Cancellation:
// Cancel and context cancellation are observed only at tick boundaries.
// Callbacks run without the instance lock, so calling Cancel from inside a
// callback stops the tween once that callback returns.
//
// Failures:
// A callback that returns an error or panics moves the tween to ERROR. The
// failure is surfaced as *CallbackError from Start (initial delivery) or from
// Wait and Err (later ticks). A failed tween cannot be resumed.
package tween
