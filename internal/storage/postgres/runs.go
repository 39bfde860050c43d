package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/veilrun/internal/game/run"
)

// ErrSnapshotNotFound is returned when no snapshot is saved under a run ID.
// It matches run.ErrNoSnapshot under errors.Is.
var ErrSnapshotNotFound = fmt.Errorf("%w: snapshot not found", run.ErrNoSnapshot)

var _ run.Store = (*RunRepository)(nil)

// RunRepository persists run snapshots as opaque JSONB payloads and keeps
// the run history.
type RunRepository struct {
	db *pgxpool.Pool
}

// NewRunRepository creates a RunRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewRunRepository(db *pgxpool.Pool) *RunRepository {
	return &RunRepository{db: db}
}

// SaveSnapshot inserts or replaces the snapshot for runID.
//
// Precondition: runID must be non-empty; data must be a JSON document.
// Postcondition: The stored snapshot equals data as a JSON value.
func (r *RunRepository) SaveSnapshot(ctx context.Context, runID string, data []byte) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO save_state (run_id, snapshot, updated_at)
		VALUES ($1, $2::jsonb, NOW())
		ON CONFLICT (run_id) DO UPDATE
			SET snapshot = EXCLUDED.snapshot, updated_at = NOW()`,
		runID, string(data),
	)
	if err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot returns the snapshot saved for runID.
//
// Postcondition: Returns the payload or ErrSnapshotNotFound.
func (r *RunRepository) LoadSnapshot(ctx context.Context, runID string) ([]byte, error) {
	var payload string
	err := r.db.QueryRow(ctx, `
		SELECT snapshot::text FROM save_state WHERE run_id = $1`,
		runID,
	).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}
	return []byte(payload), nil
}

// ClearSnapshot deletes the snapshot for runID.
//
// Postcondition: Returns nil on success, ErrSnapshotNotFound if nothing was deleted.
func (r *RunRepository) ClearSnapshot(ctx context.Context, runID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM save_state WHERE run_id = $1`, runID)
	if err != nil {
		return fmt.Errorf("clearing snapshot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSnapshotNotFound
	}
	return nil
}

// SavedRunIDs lists the runs with a saved snapshot, most recently saved first.
func (r *RunRepository) SavedRunIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT run_id FROM save_state ORDER BY updated_at DESC, run_id`)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scanning snapshots: %w", err)
	}
	return ids, nil
}

// AppendHistory records a finished run.
//
// Precondition: e.Level >= 1; e.Result is one of the run outcomes.
func (r *RunRepository) AppendHistory(ctx context.Context, e run.HistoryEntry) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO run_history (run_id, ended_at, difficulty, class, level, result, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.RunID, e.EndedAt, e.Difficulty, e.Class, e.Level, string(e.Result), e.Note,
	)
	if err != nil {
		return fmt.Errorf("appending run history: %w", err)
	}
	return nil
}

// ListHistory returns up to limit history entries, newest first. A limit
// below 1 uses run.DefaultHistoryLimit.
//
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *RunRepository) ListHistory(ctx context.Context, limit int) ([]run.HistoryEntry, error) {
	if limit < 1 {
		limit = run.DefaultHistoryLimit
	}
	rows, err := r.db.Query(ctx, `
		SELECT run_id, ended_at, difficulty, class, level, result, note
		FROM run_history ORDER BY ended_at DESC, id DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing run history: %w", err)
	}
	defer rows.Close()

	var out []run.HistoryEntry
	for rows.Next() {
		var (
			e      run.HistoryEntry
			result string
		)
		if err := rows.Scan(&e.RunID, &e.EndedAt, &e.Difficulty, &e.Class, &e.Level, &result, &e.Note); err != nil {
			return nil, fmt.Errorf("scanning run history: %w", err)
		}
		e.Result = run.Outcome(result)
		out = append(out, e)
	}
	return out, rows.Err()
}
