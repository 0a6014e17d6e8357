package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/shift-roster/pkg/core/decoder"
	"github.com/jakechorley/shift-roster/pkg/core/model"
)

func TestValidateInputs(t *testing.T) {
	summary, err := ValidateInputs(zap.NewNop(), GenerateRequest{Input: threeDayInput(t), Rules: looseRules()})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.NumWorkers)
	assert.Equal(t, 3, summary.NumDays)
	assert.Equal(t, "1", summary.FirstDay)
	assert.Equal(t, "3", summary.LastDay)
	assert.Equal(t, 3, summary.TotalDemand)
	assert.Equal(t, 0, summary.TotalRequests)
	// x, startWork and startFree per worker, day and shift
	assert.Equal(t, 3*2*3*3, summary.Variables)
	assert.Equal(t, 3*3, summary.Families["demand"])
	assert.Equal(t, 2*3, summary.Families["single_shift"])
	assert.Equal(t, 2*2, summary.Families["workload"])
	assert.Empty(t, summary.Hints)

	total := 0
	for _, n := range summary.Families {
		total += n
	}
	assert.Equal(t, summary.Constraints, total)
}

func TestValidateInputs_ReportsHints(t *testing.T) {
	in := threeDayInput(t)
	in.Vacation = mustTable(t, "vacation", `
day,0,1
1,1,0
2,1,0
3,1,0`)

	summary, err := ValidateInputs(zap.NewNop(), GenerateRequest{Input: in, Rules: looseRules()})
	require.NoError(t, err)
	assert.Equal(t, []string{"worker 1 is available on 0 days but must work at least 1 shifts"}, summary.Hints)
}

func TestValidateInputs_InvalidInput(t *testing.T) {
	in := threeDayInput(t)
	in.Demand = mustTable(t, "demand", `
day,early_shift,middle_shift,late_shift
1,1,0,0
2,0,x,0
3,0,0,1`)

	summary, err := ValidateInputs(zap.NewNop(), GenerateRequest{Input: in, Rules: looseRules()})
	assert.Nil(t, summary)
	var validation *model.ValidationError
	require.True(t, errors.As(err, &validation))
	assert.Equal(t, "demand", validation.Table)
	assert.Equal(t, "2", validation.Row)
}

func TestExportModel(t *testing.T) {
	var buf bytes.Buffer
	problem, err := ExportModel(&buf, zap.NewNop(), GenerateRequest{Input: threeDayInput(t), Rules: looseRules()})
	require.NoError(t, err)
	assert.Equal(t, 2, problem.NumWorkers)

	lp := buf.String()
	assert.True(t, strings.HasPrefix(lp, "\\ Model"))
	assert.Contains(t, lp, "Maximize\n")
	assert.Contains(t, lp, "Subject To\n")
	assert.Contains(t, lp, " demand_d0_early:")
	assert.Contains(t, lp, "Binary\n")
	assert.True(t, strings.HasSuffix(lp, "End\n"))
}

func TestExportModel_InvalidInput(t *testing.T) {
	in := threeDayInput(t)
	in.Preferences = mustTable(t, "preferences", `
worker,day_1,day_2,day_3
0,,,`)

	var buf bytes.Buffer
	_, err := ExportModel(&buf, zap.NewNop(), GenerateRequest{Input: in, Rules: looseRules()})
	require.Error(t, err)
	assert.Zero(t, buf.Len())
}

func TestCheckSchedule(t *testing.T) {
	req := GenerateRequest{Label: "check", Input: threeDayInput(t), Rules: looseRules()}
	result, err := GenerateRoster(context.Background(), newSolver(), zap.NewNop(), req)
	require.NoError(t, err)

	check, err := CheckSchedule(zap.NewNop(), req, decoder.ToScheduleTable(result.Schedule))
	require.NoError(t, err)
	assert.Empty(t, check.Violations)
	assert.Equal(t, result.Schedule.Codes, check.Schedule.Codes)
	assert.Equal(t, result.Statistics, check.Statistics)
}

func TestCheckSchedule_ReportsViolations(t *testing.T) {
	req := GenerateRequest{Input: threeDayInput(t), Rules: looseRules()}
	table := mustTable(t, "schedule", `
worker,day_1,day_2,day_3
1,-1,-1,-1
0,-1,-1,-1`)

	check, err := CheckSchedule(zap.NewNop(), req, table)
	require.NoError(t, err)

	families := map[string]bool{}
	for _, v := range check.Violations {
		families[v.Family] = true
	}
	assert.True(t, families["demand"])
	assert.True(t, families["workload"])
	assert.Equal(t, 0, check.GrantedRequests)
}

func TestCheckSchedule_WrongShape(t *testing.T) {
	req := GenerateRequest{Input: threeDayInput(t), Rules: looseRules()}

	_, err := CheckSchedule(zap.NewNop(), req, mustTable(t, "schedule", `
worker,day_1,day_2
0,0,-1
1,-1,1`))
	assert.Error(t, err)

	_, err = CheckSchedule(zap.NewNop(), req, mustTable(t, "schedule", `
worker,day_1,day_2,day_3
0,0,1,2`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schedule has 1 workers but the input has 2")
}
