package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/shift-roster/pkg/core/model"
	"github.com/jakechorley/shift-roster/pkg/db"
	"github.com/jakechorley/shift-roster/pkg/milp"
)

// memRunStore keeps runs in insertion order
type memRunStore struct {
	runs        []db.RosterRun
	assignments map[string][]db.RosterAssignment
	statistics  map[string][]db.RosterStatistic
	insertErr   error
}

func newMemRunStore() *memRunStore {
	return &memRunStore{
		assignments: make(map[string][]db.RosterAssignment),
		statistics:  make(map[string][]db.RosterStatistic),
	}
}

func (m *memRunStore) InsertRun(ctx context.Context, run *db.RosterRun, assignments []db.RosterAssignment, statistics []db.RosterStatistic) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.runs = append(m.runs, *run)
	m.assignments[run.ID] = assignments
	m.statistics[run.ID] = statistics
	return nil
}

func (m *memRunStore) GetRuns(ctx context.Context) ([]db.RosterRun, error) {
	runs := make([]db.RosterRun, 0, len(m.runs))
	for i := len(m.runs) - 1; i >= 0; i-- {
		runs = append(runs, m.runs[i])
	}
	return runs, nil
}

func (m *memRunStore) GetRun(ctx context.Context, runID string) (*db.RosterRun, error) {
	for i := range m.runs {
		if m.runs[i].ID == runID {
			run := m.runs[i]
			return &run, nil
		}
	}
	return nil, fmt.Errorf("run %s: %w", runID, db.ErrRunNotFound)
}

func (m *memRunStore) GetAssignments(ctx context.Context, runID string) ([]db.RosterAssignment, error) {
	return m.assignments[runID], nil
}

func (m *memRunStore) GetStatistics(ctx context.Context, runID string) ([]db.RosterStatistic, error) {
	return m.statistics[runID], nil
}

func (m *memRunStore) SetRunPublished(ctx context.Context, runID string, at time.Time) error {
	for i := range m.runs {
		if m.runs[i].ID == runID {
			m.runs[i].PublishedAt = at.UTC().Format(db.TimestampFormat)
			return nil
		}
	}
	return db.ErrRunNotFound
}

func sampleResult(id string) *GenerateResult {
	schedule, stats := sampleSchedule()
	return &GenerateResult{
		RunID:           id,
		Label:           "march",
		SolverName:      "sat",
		Status:          milp.StatusOptimal,
		Objective:       1,
		Schedule:        schedule,
		Statistics:      stats,
		GrantedRequests: 1,
		TotalRequests:   2,
		Duration:        1500 * time.Millisecond,
		CreatedAt:       time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestSaveRun(t *testing.T) {
	store := newMemRunStore()

	run, err := SaveRun(context.Background(), store, zap.NewNop(), sampleResult("run-1"))
	require.NoError(t, err)

	assert.Equal(t, db.RosterRun{
		ID:              "run-1",
		Label:           "march",
		Solver:          "sat",
		Status:          "optimal",
		Objective:       1,
		NumWorkers:      2,
		NumDays:         2,
		FirstDay:        "1",
		GrantedRequests: 1,
		TotalRequests:   2,
		DurationMS:      1500,
		CreatedAt:       "2024-03-01T09:00:00Z",
	}, *run)
	assert.False(t, run.IsPublished())

	require.Len(t, store.assignments["run-1"], 4)
	assert.Equal(t, db.RosterAssignment{RunID: "run-1", Worker: 1, DayOffset: 1, DayLabel: "2", ShiftCode: 2}, store.assignments["run-1"][3])
	assert.Equal(t, []db.RosterStatistic{
		{RunID: "run-1", Worker: 0, Early: 1, Off: 1},
		{RunID: "run-1", Worker: 1, Late: 1, Off: 1},
	}, store.statistics["run-1"])
}

func TestSaveRun_StoreError(t *testing.T) {
	store := newMemRunStore()
	store.insertErr = errors.New("connection refused")

	run, err := SaveRun(context.Background(), store, zap.NewNop(), sampleResult("run-1"))
	assert.Nil(t, run)
	assert.ErrorContains(t, err, "failed to save run: connection refused")
}

func TestShowRun(t *testing.T) {
	store := newMemRunStore()
	ctx := context.Background()
	_, err := SaveRun(ctx, store, zap.NewNop(), sampleResult("run-1"))
	require.NoError(t, err)
	_, err = SaveRun(ctx, store, zap.NewNop(), sampleResult("run-2"))
	require.NoError(t, err)

	want, wantStats := sampleSchedule()

	t.Run("by id", func(t *testing.T) {
		detail, err := ShowRun(ctx, store, zap.NewNop(), "run-1")
		require.NoError(t, err)
		assert.Equal(t, "run-1", detail.Run.ID)
		assert.Equal(t, want, detail.Schedule)
		assert.Equal(t, wantStats, detail.Statistics)
	})

	t.Run("latest", func(t *testing.T) {
		detail, err := ShowRun(ctx, store, zap.NewNop(), "")
		require.NoError(t, err)
		assert.Equal(t, "run-2", detail.Run.ID)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := ShowRun(ctx, store, zap.NewNop(), "missing")
		assert.ErrorIs(t, err, db.ErrRunNotFound)
	})
}

func TestShowRun_NoRuns(t *testing.T) {
	_, err := ShowRun(context.Background(), newMemRunStore(), zap.NewNop(), "")
	assert.ErrorContains(t, err, "no runs found")
}

func TestShowRun_DatedDays(t *testing.T) {
	store := newMemRunStore()
	result := sampleResult("run-1")
	result.Schedule.Days = []model.Day{
		{Offset: 0, Label: "2024-03-01", Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{Offset: 1, Label: "2024-03-02", Date: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)},
	}
	_, err := SaveRun(context.Background(), store, zap.NewNop(), result)
	require.NoError(t, err)

	detail, err := ShowRun(context.Background(), store, zap.NewNop(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, result.Schedule.Days, detail.Schedule.Days)
	assert.True(t, detail.Schedule.Days[1].IsDated())
}

func TestShowRun_CorruptAssignments(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func([]db.RosterAssignment) []db.RosterAssignment
		wantErr string
	}{
		{
			name:    "missing cell",
			mutate:  func(a []db.RosterAssignment) []db.RosterAssignment { return a[:3] },
			wantErr: "found 3 assignments, expected 4",
		},
		{
			name: "duplicate cell",
			mutate: func(a []db.RosterAssignment) []db.RosterAssignment {
				a[3] = a[2]
				return a
			},
			wantErr: "duplicate assignment (1, 0)",
		},
		{
			name: "worker out of range",
			mutate: func(a []db.RosterAssignment) []db.RosterAssignment {
				a[3].Worker = 5
				return a
			},
			wantErr: "assignment (5, 1) is outside the roster",
		},
		{
			name: "invalid shift code",
			mutate: func(a []db.RosterAssignment) []db.RosterAssignment {
				a[0].ShiftCode = 7
				return a
			},
			wantErr: "invalid shift code 7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemRunStore()
			_, err := SaveRun(context.Background(), store, zap.NewNop(), sampleResult("run-1"))
			require.NoError(t, err)
			store.assignments["run-1"] = tt.mutate(store.assignments["run-1"])

			_, err = ShowRun(context.Background(), store, zap.NewNop(), "run-1")
			require.Error(t, err)
			assert.Contains(t, err.Error(), "run run-1 is corrupt")
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestShowRun_RecomputesStatistics(t *testing.T) {
	store := newMemRunStore()
	_, err := SaveRun(context.Background(), store, zap.NewNop(), sampleResult("run-1"))
	require.NoError(t, err)
	store.statistics["run-1"][0].Early = 9

	detail, err := ShowRun(context.Background(), store, zap.NewNop(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, 1, detail.Statistics[0].Early)
}

func TestPublishRun(t *testing.T) {
	store := newMemRunStore()
	ctx := context.Background()
	_, err := SaveRun(ctx, store, zap.NewNop(), sampleResult("run-1"))
	require.NoError(t, err)

	publisher := &mockPublisher{}
	detail, err := PublishRun(ctx, store, publisher, outputSheetsConfig(), zap.NewNop(), "run-1")
	require.NoError(t, err)

	assert.True(t, detail.Run.IsPublished())
	assert.Len(t, publisher.published, 2)
	assert.Equal(t, []string{"0", "1"}, publisher.published["out-sheet/Schedule"].Index)

	stored, err := store.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.True(t, stored.IsPublished())
}

func TestPublishRun_PublishFailureLeavesRunUnpublished(t *testing.T) {
	store := newMemRunStore()
	ctx := context.Background()
	_, err := SaveRun(ctx, store, zap.NewNop(), sampleResult("run-1"))
	require.NoError(t, err)

	_, err = PublishRun(ctx, store, &mockPublisher{err: errors.New("forbidden")}, outputSheetsConfig(), zap.NewNop(), "")
	assert.ErrorContains(t, err, "forbidden")

	stored, err := store.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.False(t, stored.IsPublished())
}
