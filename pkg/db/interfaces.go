package db

import (
	"context"
	"errors"
	"time"
)

// ErrRunNotFound is returned when no run has the requested id
var ErrRunNotFound = errors.New("run not found")

// RunWriter records finished runs
type RunWriter interface {
	InsertRun(ctx context.Context, run *RosterRun, assignments []RosterAssignment, statistics []RosterStatistic) error
}

// RunReader reads run history
type RunReader interface {
	GetRuns(ctx context.Context) ([]RosterRun, error)
	GetRun(ctx context.Context, runID string) (*RosterRun, error)
	GetAssignments(ctx context.Context, runID string) ([]RosterAssignment, error)
	GetStatistics(ctx context.Context, runID string) ([]RosterStatistic, error)
}

// RunStore defines the interface for run history operations
type RunStore interface {
	RunWriter
	RunReader
	SetRunPublished(ctx context.Context, runID string, at time.Time) error
}

// Database defines the interface for all database operations.
// Both the SheetsSQL-backed db.DB and postgres.DB implement this interface.
type Database interface {
	RunStore
	Close()
}
