package db

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jakechorley/shift-roster/pkg/sheetssql"
)

// InsertRun appends the run and its rows. Sheets has no transactions, so the run row is
// written last and readers never see a run without its assignments.
func (db *DB) InsertRun(ctx context.Context, run *RosterRun, assignments []RosterAssignment, statistics []RosterStatistic) error {
	if err := sheetssql.InsertModels(db.ssql, assignments); err != nil {
		return fmt.Errorf("failed to insert assignments: %w", err)
	}
	if err := sheetssql.InsertModels(db.ssql, statistics); err != nil {
		return fmt.Errorf("failed to insert statistics: %w", err)
	}
	if err := sheetssql.InsertModels(db.ssql, []RosterRun{*run}); err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// GetRuns retrieves all runs, newest first
func (db *DB) GetRuns(ctx context.Context) ([]RosterRun, error) {
	runs, err := sheetssql.GetTableAs[RosterRun](db.ssql)
	if err != nil {
		return nil, fmt.Errorf("failed to get runs: %w", err)
	}
	sort.SliceStable(runs, func(i, j int) bool { return runs[i].CreatedAt > runs[j].CreatedAt })
	return runs, nil
}

// GetRun retrieves a single run
func (db *DB) GetRun(ctx context.Context, runID string) (*RosterRun, error) {
	runs, err := sheetssql.GetWhere(db.ssql, func(r RosterRun) bool { return r.ID == runID })
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return &runs[0], nil
}

// GetAssignments retrieves the schedule cells of a run ordered by worker and day
func (db *DB) GetAssignments(ctx context.Context, runID string) ([]RosterAssignment, error) {
	assignments, err := sheetssql.GetWhere(db.ssql, func(a RosterAssignment) bool { return a.RunID == runID })
	if err != nil {
		return nil, fmt.Errorf("failed to get assignments: %w", err)
	}
	sort.SliceStable(assignments, func(i, j int) bool {
		if assignments[i].Worker != assignments[j].Worker {
			return assignments[i].Worker < assignments[j].Worker
		}
		return assignments[i].DayOffset < assignments[j].DayOffset
	})
	return assignments, nil
}

// GetStatistics retrieves the per-worker statistics of a run ordered by worker
func (db *DB) GetStatistics(ctx context.Context, runID string) ([]RosterStatistic, error) {
	statistics, err := sheetssql.GetWhere(db.ssql, func(s RosterStatistic) bool { return s.RunID == runID })
	if err != nil {
		return nil, fmt.Errorf("failed to get statistics: %w", err)
	}
	sort.SliceStable(statistics, func(i, j int) bool { return statistics[i].Worker < statistics[j].Worker })
	return statistics, nil
}

// SetRunPublished records when the run was published
func (db *DB) SetRunPublished(ctx context.Context, runID string, at time.Time) error {
	n, err := sheetssql.UpdateWhere(db.ssql,
		func(r RosterRun) bool { return r.ID == runID },
		func(r *RosterRun) { r.PublishedAt = at.UTC().Format(TimestampFormat) },
	)
	if err != nil {
		return fmt.Errorf("failed to set run published_at: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}
