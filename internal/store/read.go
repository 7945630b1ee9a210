package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/tween/internal/ir"
)

// ErrRunNotFound is returned when a run ID has no record.
var ErrRunNotFound = errors.New("run not found")

const runColumns = `id, seq, name, easing, duration_ns, refresh_ns, from_values, to_values,
	spec_hash, state, error, engine_version, ir_version`

// ReadRun returns a single run by ID.
// Returns an error wrapping ErrRunNotFound if no such run exists.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("read run %q: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("read run %q: %w", id, err)
	}
	return run, nil
}

// ListRuns returns every recorded run in insertion order.
// Results are ordered deterministically: ORDER BY seq ASC, id ASC COLLATE BINARY.
//
// Returns an empty slice (not nil) if no runs exist.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	return s.queryRuns(ctx, `SELECT `+runColumns+` FROM runs ORDER BY seq ASC, id COLLATE BINARY ASC`)
}

// ListRunsByName returns the runs of one definition in insertion order.
func (s *Store) ListRunsByName(ctx context.Context, name string) ([]Run, error) {
	return s.queryRuns(ctx, `SELECT `+runColumns+` FROM runs WHERE name = ? ORDER BY seq ASC, id COLLATE BINARY ASC`, name)
}

func (s *Store) queryRuns(ctx context.Context, query string, args ...any) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadSamples returns every sample of a run ordered by tick.
//
// Returns an empty slice (not nil) if the run has no samples.
func (s *Store) ReadSamples(ctx context.Context, runID string) ([]ir.Sample, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT tick, elapsed_ns, final, value_set
		FROM samples
		WHERE run_id = ?
		ORDER BY tick ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query samples: %w", err)
	}
	defer rows.Close()

	samples := []ir.Sample{}
	for rows.Next() {
		var (
			sample     ir.Sample
			elapsedNS  int64
			final      int
			valuesJSON string
		)
		if err := rows.Scan(&sample.Tick, &elapsedNS, &final, &valuesJSON); err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		sample.Elapsed = time.Duration(elapsedNS)
		sample.Final = final == 1
		if sample.Values, err = unmarshalValues(valuesJSON); err != nil {
			return nil, fmt.Errorf("sample %d: %w", sample.Tick, err)
		}
		samples = append(samples, sample)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate samples: %w", err)
	}
	return samples, nil
}

// ReadTrace returns a run together with its samples.
func (s *Store) ReadTrace(ctx context.Context, runID string) (Trace, error) {
	run, err := s.ReadRun(ctx, runID)
	if err != nil {
		return Trace{}, err
	}
	samples, err := s.ReadSamples(ctx, runID)
	if err != nil {
		return Trace{}, fmt.Errorf("read trace %q: %w", runID, err)
	}
	return Trace{Run: run, Samples: samples}, nil
}

// LastRun returns the most recently recorded run.
// Returns an error wrapping ErrRunNotFound on an empty store.
func (s *Store) LastRun(ctx context.Context) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY seq DESC LIMIT 1`)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("last run: %w", ErrRunNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("last run: %w", err)
	}
	return run, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run              Run
		durationNS       int64
		refreshNS        int64
		fromJSON, toJSON string
	)
	err := row.Scan(
		&run.ID,
		&run.Seq,
		&run.Spec.Name,
		&run.Spec.Easing,
		&durationNS,
		&refreshNS,
		&fromJSON,
		&toJSON,
		&run.SpecHash,
		&run.State,
		&run.Error,
		&run.EngineVersion,
		&run.IRVersion,
	)
	if err != nil {
		return Run{}, err
	}

	run.Spec.Duration = time.Duration(durationNS)
	run.Spec.Refresh = time.Duration(refreshNS)
	if run.Spec.From, err = unmarshalValues(fromJSON); err != nil {
		return Run{}, fmt.Errorf("run %q from: %w", run.ID, err)
	}
	if run.Spec.To, err = unmarshalValues(toJSON); err != nil {
		return Run{}, fmt.Errorf("run %q to: %w", run.ID, err)
	}
	return run, nil
}
