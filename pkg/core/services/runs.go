package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/shift-roster/internal/config"
	"github.com/jakechorley/shift-roster/pkg/core/decoder"
	"github.com/jakechorley/shift-roster/pkg/core/model"
	"github.com/jakechorley/shift-roster/pkg/db"
)

// RunDetail is a stored run with its roster rebuilt from the stored assignments
type RunDetail struct {
	Run        *db.RosterRun
	Schedule   *model.Schedule
	Statistics []model.WorkerStatistics
}

// SaveRun records a generated roster in the run history
func SaveRun(ctx context.Context, store db.RunWriter, logger *zap.Logger, result *GenerateResult) (*db.RosterRun, error) {
	run, assignments, statistics := runRecords(result)

	logger.Debug("Saving run",
		zap.String("run_id", run.ID),
		zap.Int("assignments", len(assignments)),
		zap.Int("statistics", len(statistics)))

	if err := store.InsertRun(ctx, run, assignments, statistics); err != nil {
		return nil, fmt.Errorf("failed to save run: %w", err)
	}
	return run, nil
}

// runRecords converts a result into the rows stored in the run history
func runRecords(result *GenerateResult) (*db.RosterRun, []db.RosterAssignment, []db.RosterStatistic) {
	schedule := result.Schedule
	run := &db.RosterRun{
		ID:              result.RunID,
		Label:           result.Label,
		Solver:          result.SolverName,
		Status:          result.Status.String(),
		Objective:       int(result.Objective),
		NumWorkers:      schedule.NumWorkers(),
		NumDays:         schedule.NumDays(),
		FirstDay:        schedule.Days[0].Label,
		GrantedRequests: result.GrantedRequests,
		TotalRequests:   result.TotalRequests,
		DurationMS:      int(result.Duration.Milliseconds()),
		CreatedAt:       result.CreatedAt.UTC().Format(db.TimestampFormat),
	}

	assignments := make([]db.RosterAssignment, 0, schedule.NumWorkers()*schedule.NumDays())
	for w, row := range schedule.Codes {
		for d, code := range row {
			assignments = append(assignments, db.RosterAssignment{
				RunID:     run.ID,
				Worker:    w,
				DayOffset: d,
				DayLabel:  schedule.Days[d].Label,
				ShiftCode: code,
			})
		}
	}

	statistics := make([]db.RosterStatistic, 0, len(result.Statistics))
	for _, ws := range result.Statistics {
		statistics = append(statistics, db.RosterStatistic{
			RunID:  run.ID,
			Worker: ws.Worker,
			Early:  ws.Early,
			Middle: ws.Middle,
			Late:   ws.Late,
			Off:    ws.Off,
		})
	}

	return run, assignments, statistics
}

// ListRuns returns the run history, newest first
func ListRuns(ctx context.Context, store db.RunReader, logger *zap.Logger) ([]db.RosterRun, error) {
	logger.Debug("Fetching runs")
	runs, err := store.GetRuns(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch runs: %w", err)
	}
	logger.Debug("Found runs", zap.Int("count", len(runs)))
	return runs, nil
}

// ShowRun loads a stored run and rebuilds its roster.
// If runID is empty the latest run is shown.
func ShowRun(ctx context.Context, store db.RunReader, logger *zap.Logger, runID string) (*RunDetail, error) {
	run, err := findRun(ctx, store, logger, runID)
	if err != nil {
		return nil, err
	}

	logger.Debug("Fetching assignments", zap.String("run_id", run.ID))
	assignments, err := store.GetAssignments(ctx, run.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assignments: %w", err)
	}

	schedule, err := scheduleFromAssignments(run, assignments)
	if err != nil {
		return nil, fmt.Errorf("run %s is corrupt: %w", run.ID, err)
	}

	// Statistics are derived from the schedule; stored rows are only checked against it
	statistics := decoder.Statistics(schedule)
	stored, err := store.GetStatistics(ctx, run.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch statistics: %w", err)
	}
	if err := compareStatistics(stored, statistics); err != nil {
		logger.Warn("Stored statistics disagree with the schedule", zap.String("run_id", run.ID), zap.Error(err))
	}

	return &RunDetail{Run: run, Schedule: schedule, Statistics: statistics}, nil
}

// PublishRun writes a stored run's tables to the output spreadsheet and marks it published.
// If runID is empty the latest run is published.
func PublishRun(
	ctx context.Context,
	store db.RunStore,
	publisher TablePublisher,
	cfg config.SheetsConfig,
	logger *zap.Logger,
	runID string,
) (*RunDetail, error) {
	detail, err := ShowRun(ctx, store, logger, runID)
	if err != nil {
		return nil, err
	}

	if err := PublishTables(publisher, cfg, detail.Schedule, detail.Statistics, logger); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := store.SetRunPublished(ctx, detail.Run.ID, now); err != nil {
		return nil, fmt.Errorf("failed to mark run as published: %w", err)
	}
	detail.Run.PublishedAt = now.Format(db.TimestampFormat)

	logger.Info("Run published", zap.String("run_id", detail.Run.ID), zap.String("spreadsheet_id", cfg.OutputSheetID))
	return detail, nil
}

func findRun(ctx context.Context, store db.RunReader, logger *zap.Logger, runID string) (*db.RosterRun, error) {
	if runID != "" {
		logger.Debug("Fetching run", zap.String("run_id", runID))
		run, err := store.GetRun(ctx, runID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch run: %w", err)
		}
		return run, nil
	}

	runs, err := ListRuns(ctx, store, logger)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("no runs found")
	}
	return &runs[0], nil
}

// scheduleFromAssignments rebuilds the dense schedule of a run, requiring one assignment per cell
func scheduleFromAssignments(run *db.RosterRun, assignments []db.RosterAssignment) (*model.Schedule, error) {
	if len(assignments) != run.NumWorkers*run.NumDays {
		return nil, fmt.Errorf("found %d assignments, expected %d", len(assignments), run.NumWorkers*run.NumDays)
	}

	days := make([]model.Day, run.NumDays)
	codes := make([][]int, run.NumWorkers)
	seen := make([][]bool, run.NumWorkers)
	for w := range codes {
		codes[w] = make([]int, run.NumDays)
		seen[w] = make([]bool, run.NumDays)
	}

	for _, a := range assignments {
		if a.Worker < 0 || a.Worker >= run.NumWorkers || a.DayOffset < 0 || a.DayOffset >= run.NumDays {
			return nil, fmt.Errorf("assignment (%d, %d) is outside the roster", a.Worker, a.DayOffset)
		}
		if seen[a.Worker][a.DayOffset] {
			return nil, fmt.Errorf("duplicate assignment (%d, %d)", a.Worker, a.DayOffset)
		}
		if a.ShiftCode != model.OffCode && !model.ShiftType(a.ShiftCode).IsValid() {
			return nil, fmt.Errorf("assignment (%d, %d) has invalid shift code %d", a.Worker, a.DayOffset, a.ShiftCode)
		}
		seen[a.Worker][a.DayOffset] = true
		codes[a.Worker][a.DayOffset] = a.ShiftCode
		days[a.DayOffset] = dayFromLabel(a.DayOffset, a.DayLabel)
	}

	return &model.Schedule{Days: days, Codes: codes}, nil
}

func dayFromLabel(offset int, label string) model.Day {
	day := model.Day{Offset: offset, Label: label}
	if date, err := time.Parse(model.DateFormat, label); err == nil {
		day.Date = date
	}
	return day
}

func compareStatistics(stored []db.RosterStatistic, computed []model.WorkerStatistics) error {
	if len(stored) != len(computed) {
		return fmt.Errorf("%d stored rows for %d workers", len(stored), len(computed))
	}
	for i, s := range stored {
		c := computed[i]
		if s.Worker != c.Worker || s.Early != c.Early || s.Middle != c.Middle || s.Late != c.Late || s.Off != c.Off {
			return fmt.Errorf("worker %d: stored %+v, computed %+v", s.Worker, s, c)
		}
	}
	return nil
}
