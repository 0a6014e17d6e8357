package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/jakechorley/shift-roster/pkg/db"
)

const runColumns = `id::text, label, solver, status, objective, num_workers, num_days, first_day,
	granted_requests, total_requests, duration_ms, created_at, published_at`

// InsertRun inserts a run with its assignments and statistics in one transaction
func (d *DB) InsertRun(ctx context.Context, run *db.RosterRun, assignments []db.RosterAssignment, statistics []db.RosterStatistic) error {
	createdAt, err := parseTimestamp(run.CreatedAt)
	if err != nil {
		return fmt.Errorf("invalid created_at: %w", err)
	}

	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO roster_run (id, label, solver, status, objective, num_workers, num_days, first_day,
			granted_requests, total_requests, duration_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, run.ID, run.Label, run.Solver, run.Status, run.Objective, run.NumWorkers, run.NumDays, run.FirstDay,
		run.GrantedRequests, run.TotalRequests, run.DurationMS, createdAt)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	assignmentRows := make([][]any, len(assignments))
	for i, a := range assignments {
		assignmentRows[i] = []any{a.RunID, a.Worker, a.DayOffset, a.DayLabel, a.ShiftCode}
	}
	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"roster_assignment"},
		[]string{"run_id", "worker", "day_offset", "day_label", "shift_code"},
		pgx.CopyFromRows(assignmentRows),
	)
	if err != nil {
		return fmt.Errorf("failed to insert assignments: %w", err)
	}

	batch := &pgx.Batch{}
	for _, s := range statistics {
		batch.Queue(`
			INSERT INTO roster_statistic (run_id, worker, early, middle, late, off)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, s.RunID, s.Worker, s.Early, s.Middle, s.Late, s.Off)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert statistics: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}

	d.logger.Debug("Inserted run",
		zap.String("runID", run.ID),
		zap.Int("assignments", len(assignments)),
		zap.Int("statistics", len(statistics)))
	return nil
}

// GetRuns retrieves all runs, newest first
func (d *DB) GetRuns(ctx context.Context) ([]db.RosterRun, error) {
	rows, err := d.pool.Query(ctx, `SELECT `+runColumns+` FROM roster_run ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []db.RosterRun
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return runs, nil
}

// GetRun retrieves a single run
func (d *DB) GetRun(ctx context.Context, runID string) (*db.RosterRun, error) {
	row := d.pool.QueryRow(ctx, `SELECT `+runColumns+` FROM roster_run WHERE id = $1`, runID)
	r, err := scanRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", db.ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// GetAssignments retrieves the schedule cells of a run ordered by worker and day
func (d *DB) GetAssignments(ctx context.Context, runID string) ([]db.RosterAssignment, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT run_id::text, worker, day_offset, day_label, shift_code
		FROM roster_assignment
		WHERE run_id = $1
		ORDER BY worker, day_offset
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments: %w", err)
	}
	defer rows.Close()

	var assignments []db.RosterAssignment
	for rows.Next() {
		var a db.RosterAssignment
		if err := rows.Scan(&a.RunID, &a.Worker, &a.DayOffset, &a.DayLabel, &a.ShiftCode); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		assignments = append(assignments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assignments: %w", err)
	}

	return assignments, nil
}

// GetStatistics retrieves the per-worker statistics of a run ordered by worker
func (d *DB) GetStatistics(ctx context.Context, runID string) ([]db.RosterStatistic, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT run_id::text, worker, early, middle, late, off
		FROM roster_statistic
		WHERE run_id = $1
		ORDER BY worker
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query statistics: %w", err)
	}
	defer rows.Close()

	var statistics []db.RosterStatistic
	for rows.Next() {
		var s db.RosterStatistic
		if err := rows.Scan(&s.RunID, &s.Worker, &s.Early, &s.Middle, &s.Late, &s.Off); err != nil {
			return nil, fmt.Errorf("failed to scan statistic: %w", err)
		}
		statistics = append(statistics, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating statistics: %w", err)
	}

	return statistics, nil
}

// SetRunPublished sets the published_at of a run
func (d *DB) SetRunPublished(ctx context.Context, runID string, at time.Time) error {
	tag, err := d.pool.Exec(ctx, `
		UPDATE roster_run SET published_at = $2 WHERE id = $1
	`, runID, at.UTC())
	if err != nil {
		return fmt.Errorf("failed to set run published_at: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", db.ErrRunNotFound, runID)
	}
	return nil
}

func scanRun(row pgx.Row) (*db.RosterRun, error) {
	var r db.RosterRun
	var createdAt time.Time
	var publishedAt *time.Time
	err := row.Scan(&r.ID, &r.Label, &r.Solver, &r.Status, &r.Objective, &r.NumWorkers, &r.NumDays, &r.FirstDay,
		&r.GrantedRequests, &r.TotalRequests, &r.DurationMS, &createdAt, &publishedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	r.CreatedAt = createdAt.UTC().Format(db.TimestampFormat)
	if publishedAt != nil {
		r.PublishedAt = publishedAt.UTC().Format(db.TimestampFormat)
	}
	return &r, nil
}

func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Now().UTC(), nil
	}
	return time.Parse(db.TimestampFormat, s)
}
