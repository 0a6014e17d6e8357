package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/shift-roster/pkg/core/model"
	"github.com/jakechorley/shift-roster/pkg/core/normalizer"
	"github.com/jakechorley/shift-roster/pkg/milp"
)

func TestGenerateRoster_TwoWorkersThreeDays(t *testing.T) {
	req := GenerateRequest{Label: "three-days", Input: threeDayInput(t), Rules: looseRules()}

	result, err := GenerateRoster(context.Background(), newSolver(), zap.NewNop(), req)
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, "three-days", result.Label)
	assert.Equal(t, "sat", result.SolverName)
	assert.Equal(t, milp.StatusOptimal, result.Status)

	s := result.Schedule
	require.Equal(t, 2, s.NumWorkers())
	require.Equal(t, 3, s.NumDays())

	// Each day has exactly the demanded shift
	expected := []model.ShiftType{model.Early, model.Middle, model.Late}
	for d, shift := range expected {
		staffed := 0
		for w := 0; w < s.NumWorkers(); w++ {
			if s.Works(w, d, shift) {
				staffed++
			} else {
				assert.True(t, s.IsOff(w, d), "worker %d day %d", w, d)
			}
		}
		assert.Equal(t, 1, staffed, "day %d", d)
	}

	// Everyone works within the workload bounds
	require.Len(t, result.Statistics, 2)
	for _, ws := range result.Statistics {
		assert.GreaterOrEqual(t, ws.Worked(), 1)
		assert.LessOrEqual(t, ws.Worked(), 3)
		assert.Equal(t, 3, ws.Worked()+ws.Off)
	}
	assert.Equal(t, 0, result.TotalRequests)
}

func TestGenerateRoster_DemandAboveWorkers(t *testing.T) {
	in := threeDayInput(t)
	in.Demand = mustTable(t, "demand", `
day,early_shift,middle_shift,late_shift
1,2,1,0
2,0,1,0
3,0,0,1`)

	result, err := GenerateRoster(context.Background(), newSolver(), zap.NewNop(), GenerateRequest{Input: in, Rules: looseRules()})
	require.Error(t, err)
	assert.Nil(t, result)

	var infeasible *model.InfeasibleModelError
	require.True(t, errors.As(err, &infeasible))
	assert.Contains(t, infeasible.Hints, "day 1 demands 3 workers but only 2 of 2 are available")
}

func TestGenerateRoster_WorkerOnVacationAllPeriod(t *testing.T) {
	in := threeDayInput(t)
	in.Vacation = mustTable(t, "vacation", `
day,0,1
1,1,0
2,1,0
3,1,0`)

	_, err := GenerateRoster(context.Background(), newSolver(), zap.NewNop(), GenerateRequest{Input: in, Rules: looseRules()})
	var infeasible *model.InfeasibleModelError
	require.True(t, errors.As(err, &infeasible))
	assert.Contains(t, infeasible.Hints, "worker 1 is available on 0 days but must work at least 1 shifts")

	// Without a minimum workload the absent worker is simply off every day
	rules := looseRules()
	rules.MinShiftsPerWorker = 0
	result, err := GenerateRoster(context.Background(), newSolver(), zap.NewNop(), GenerateRequest{Input: in, Rules: rules})
	require.NoError(t, err)
	assert.Equal(t, []int{model.OffCode, model.OffCode, model.OffCode}, result.Schedule.Codes[1])
	assert.Equal(t, model.WorkerStatistics{Worker: 1, Off: 3}, result.Statistics[1])
}

func TestGenerateRoster_GrantsPreferences(t *testing.T) {
	in := threeDayInput(t)
	in.Preferences = mustTable(t, "preferences", `
worker,day_1,day_2,day_3
0,-,1,-
1,0,-,2`)

	result, err := GenerateRoster(context.Background(), newSolver(), zap.NewNop(), GenerateRequest{Input: in, Rules: looseRules()})
	require.NoError(t, err)

	assert.Equal(t, 3, result.TotalRequests)
	assert.Equal(t, 3, result.GrantedRequests)
	assert.Equal(t, int64(3), result.Objective)
	assert.Equal(t, []int{model.OffCode, 1, model.OffCode}, result.Schedule.Codes[0])
	assert.Equal(t, []int{0, model.OffCode, 2}, result.Schedule.Codes[1])
}

func TestGenerateRoster_InvalidInput(t *testing.T) {
	in := threeDayInput(t)
	in.Vacation = mustTable(t, "vacation", `
day,0,1
1,1,1
2,1,1`)

	_, err := GenerateRoster(context.Background(), newSolver(), zap.NewNop(), GenerateRequest{Input: in, Rules: looseRules()})
	var validation *model.ValidationError
	require.True(t, errors.As(err, &validation))
	assert.Equal(t, normalizer.VacationTable, validation.Table)
}

func TestGenerateRoster_SolverStatuses(t *testing.T) {
	tests := []struct {
		name     string
		solution *milp.Solution
		wantErr  string
	}{
		{name: "unbounded", solution: &milp.Solution{Status: milp.StatusUnbounded}, wantErr: "solver returned status unbounded"},
		{name: "error with detail", solution: &milp.Solution{Status: milp.StatusError, Detail: "time limit reached"}, wantErr: "status error: time limit reached"},
		{name: "unknown", solution: &milp.Solution{Status: milp.StatusUnknown}, wantErr: "status unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			solver := &stubSolver{solution: func(*milp.Model) *milp.Solution { return tt.solution }}
			result, err := GenerateRoster(context.Background(), solver, zap.NewNop(), GenerateRequest{Input: threeDayInput(t), Rules: looseRules()})
			require.Error(t, err)
			assert.Nil(t, result)
			assert.Contains(t, err.Error(), tt.wantErr)

			var infeasible *model.InfeasibleModelError
			assert.False(t, errors.As(err, &infeasible))
		})
	}
}

func TestGenerateRoster_SolverFailure(t *testing.T) {
	solver := &stubSolver{err: errors.New("cbc crashed")}
	_, err := GenerateRoster(context.Background(), solver, zap.NewNop(), GenerateRequest{Input: threeDayInput(t), Rules: looseRules()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to solve model: cbc crashed")
}

func TestGenerateRoster_RejectsInvalidAssignment(t *testing.T) {
	// All zero leaves demand unmet
	solver := &stubSolver{solution: func(m *milp.Model) *milp.Solution {
		return &milp.Solution{Status: milp.StatusFeasible, Values: make([]int64, m.NumVars())}
	}}

	result, err := GenerateRoster(context.Background(), solver, zap.NewNop(), GenerateRequest{Input: threeDayInput(t), Rules: looseRules()})
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "violating")
}

func TestGenerateRoster_RejectsDoubleShift(t *testing.T) {
	// Every variable set decodes to three shifts per day
	solver := &stubSolver{solution: func(m *milp.Model) *milp.Solution {
		values := make([]int64, m.NumVars())
		for i := range values {
			values[i] = 1
		}
		return &milp.Solution{Status: milp.StatusFeasible, Values: values}
	}}

	_, err := GenerateRoster(context.Background(), solver, zap.NewNop(), GenerateRequest{Input: threeDayInput(t), Rules: looseRules()})
	var decodeErr *model.DecodeError
	require.True(t, errors.As(err, &decodeErr))
	assert.Equal(t, 0, decodeErr.Worker)
	assert.Len(t, decodeErr.Shifts, 3)
}
