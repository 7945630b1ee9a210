package store

import (
	"context"
	"fmt"

	"github.com/roach88/tween/internal/ir"
)

// WriteRun inserts a run record and returns its assigned seq.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - writing the same ID twice
// keeps the first record and returns its seq.
//
// The definition's value sets are serialized to canonical JSON per RFC 8785.
// EngineVersion and IRVersion default to the current ir versions.
func (s *Store) WriteRun(ctx context.Context, run Run) (int64, error) {
	fromJSON, err := marshalValues(run.Spec.From)
	if err != nil {
		return 0, fmt.Errorf("write run: %w", err)
	}
	toJSON, err := marshalValues(run.Spec.To)
	if err != nil {
		return 0, fmt.Errorf("write run: %w", err)
	}

	if run.SpecHash == "" {
		if run.SpecHash, err = ir.SpecHash(run.Spec); err != nil {
			return 0, fmt.Errorf("write run: %w", err)
		}
	}
	if run.EngineVersion == "" {
		run.EngineVersion = ir.EngineVersion
	}
	if run.IRVersion == "" {
		run.IRVersion = ir.IRVersion
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("write run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, seq, name, easing, duration_ns, refresh_ns, from_values, to_values,
		 spec_hash, state, error, engine_version, ir_version)
		VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM runs), ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.Spec.Name,
		run.Spec.Easing,
		int64(run.Spec.Duration),
		int64(run.Spec.Refresh),
		fromJSON,
		toJSON,
		run.SpecHash,
		run.State,
		run.Error,
		run.EngineVersion,
		run.IRVersion,
	)
	if err != nil {
		return 0, fmt.Errorf("write run: %w", err)
	}

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT seq FROM runs WHERE id = ?`, run.ID).Scan(&seq); err != nil {
		return 0, fmt.Errorf("write run: read seq: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("write run: commit: %w", err)
	}
	return seq, nil
}

// UpdateRunState records the final state of a run and its failure message, if any.
// Returns an error if the run does not exist.
func (s *Store) UpdateRunState(ctx context.Context, runID, state, errMsg string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE runs SET state = ?, error = ? WHERE id = ?
	`, state, errMsg, runID)
	if err != nil {
		return fmt.Errorf("update run state: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update run state: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("update run state: run %q not found", runID)
	}
	return nil
}

// WriteSample inserts one delivered update of a run.
// Uses ON CONFLICT(run_id, tick) DO NOTHING for idempotency.
//
// Note: The run referenced by runID must exist (foreign key constraint).
func (s *Store) WriteSample(ctx context.Context, runID string, sample ir.Sample) error {
	valuesJSON, err := marshalValues(sample.Values)
	if err != nil {
		return fmt.Errorf("write sample: %w", err)
	}

	final := 0
	if sample.Final {
		final = 1
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO samples (run_id, tick, elapsed_ns, final, value_set)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(run_id, tick) DO NOTHING
	`,
		runID,
		sample.Tick,
		int64(sample.Elapsed),
		final,
		valuesJSON,
	)
	if err != nil {
		return fmt.Errorf("write sample: %w", err)
	}
	return nil
}

// WriteTrace writes a run followed by all of its samples.
// Used to import traces recorded elsewhere and by tests.
func (s *Store) WriteTrace(ctx context.Context, trace Trace) (int64, error) {
	seq, err := s.WriteRun(ctx, trace.Run)
	if err != nil {
		return 0, err
	}
	for _, sample := range trace.Samples {
		if err := s.WriteSample(ctx, trace.Run.ID, sample); err != nil {
			return 0, err
		}
	}
	return seq, nil
}
