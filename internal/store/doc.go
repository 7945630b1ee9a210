// Package store provides SQLite-backed storage for recorded tween runs.
//
// The store is an append-only trace log with:
//   - Runs: one row per executed tween, with its definition and outcome
//   - Samples: every delivered update of a run, keyed by tick
//
// A recorded run is an observation, never engine state: runs are inspected
// and replayed, not resumed.
//
// # Critical Patterns
//
// Logical Ordering
//   - Runs are ordered by seq INTEGER assigned at insert, NEVER timestamps
//   - Samples are ordered by tick
//
// Deterministic Query Results
//   - All queries include ORDER BY (seq ASC, id ASC COLLATE BINARY or tick ASC)
//   - Ensures identical results across replays
//
// Idempotent Writes
//   - ON CONFLICT DO NOTHING on runs(id) and samples(run_id, tick)
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Value sets are stored as RFC 8785 canonical JSON (internal/ir/canonical.go)
// and definitions carry the content hash from internal/ir/hash.go.
package store
