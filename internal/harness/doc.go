// Package harness provides a conformance testing framework for the tween engine.
//
// A scenario is a YAML file that names a compiled CUE definition (or carries
// one inline), optionally cancels or fails the run at a given tick, and
// lists assertions on the outcome:
//
//	name: linear_fade
//	description: "LINEAR 0 to 100 over 50ms delivers five intermediate ticks"
//	definition:
//	  from: {a: 0}
//	  to: {a: 100}
//	  duration: 50ms
//	  refresh: 10ms
//	assertions:
//	  - type: tick_count
//	    count: 5
//	  - type: final_values
//	    values: {a: 100}
//
// Run executes the real engine. Ticks come from a testutil.ManualScheduler
// and are fired one at a time until the tween stops, the instance ID is
// fixed, and every delivered sample is recorded to a fresh in-memory trace
// store and read back before assertions run. The same scenario therefore
// always produces byte-identical traces, which RunWithGolden compares
// against testdata/golden using goldie.
//
// Ticks are numbered as the engine numbers them: 0 is the delivery made by
// Start, 1..n are intermediate ticks, and n+1 is the final target delivery.
package harness
