package services

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/jakechorley/shift-roster/pkg/core/decoder"
	"github.com/jakechorley/shift-roster/pkg/core/formulation"
	"github.com/jakechorley/shift-roster/pkg/core/model"
	"github.com/jakechorley/shift-roster/pkg/core/normalizer"
	"github.com/jakechorley/shift-roster/pkg/milp"
	"github.com/jakechorley/shift-roster/pkg/tables"
)

// InputSummary describes validated input and the size of the model it produces
type InputSummary struct {
	NumWorkers    int
	NumDays       int
	FirstDay      string
	LastDay       string
	TotalDemand   int
	TotalRequests int
	Variables     int
	Constraints   int
	Families      map[string]int

	// Hints lists violated necessary conditions; the run is certainly infeasible if non-empty
	Hints []string
}

// ValidateInputs normalizes the input and builds the model without solving it
func ValidateInputs(logger *zap.Logger, req GenerateRequest) (*InputSummary, error) {
	f, err := buildFormulation(logger, req)
	if err != nil {
		return nil, err
	}

	p := f.Problem
	summary := &InputSummary{
		NumWorkers:    p.NumWorkers,
		NumDays:       p.NumDays(),
		FirstDay:      p.Days[0].Label,
		LastDay:       p.Days[p.NumDays()-1].Label,
		TotalDemand:   p.TotalDemand(),
		TotalRequests: totalRequests(p),
		Variables:     f.Model.NumVars(),
		Constraints:   f.Model.NumConstraints(),
		Families:      f.Model.FamilySizes(),
		Hints:         formulation.Diagnose(p, req.Rules),
	}

	logger.Debug("Inputs validated",
		zap.Int("workers", summary.NumWorkers),
		zap.Int("days", summary.NumDays),
		zap.Int("hints", len(summary.Hints)))

	return summary, nil
}

// ScheduleCheck is an existing roster checked against the input and rules
type ScheduleCheck struct {
	Schedule        *model.Schedule
	Statistics      []model.WorkerStatistics
	Violations      []formulation.Violation
	GrantedRequests int
	TotalRequests   int
}

// CheckSchedule parses a schedule table, such as a hand-edited roster, and checks it
// against every constraint family without solving
func CheckSchedule(logger *zap.Logger, req GenerateRequest, table *tables.Table) (*ScheduleCheck, error) {
	f, err := buildFormulation(logger, req)
	if err != nil {
		return nil, err
	}

	p := f.Problem
	schedule, err := decoder.FromScheduleTable(table, p.Days)
	if err != nil {
		return nil, fmt.Errorf("failed to parse schedule: %w", err)
	}
	if len(schedule.Codes) != p.NumWorkers {
		return nil, fmt.Errorf("schedule has %d workers but the input has %d", len(schedule.Codes), p.NumWorkers)
	}

	check := &ScheduleCheck{
		Schedule:        schedule,
		Statistics:      decoder.Statistics(schedule),
		Violations:      f.Validate(schedule),
		GrantedRequests: formulation.GrantedRequests(p, schedule),
		TotalRequests:   totalRequests(p),
	}

	logger.Debug("Schedule checked",
		zap.String("label", req.Label),
		zap.Int("violations", len(check.Violations)),
		zap.Int("granted_requests", check.GrantedRequests))

	return check, nil
}

// ExportModel writes the bound model of a run in CPLEX LP format
func ExportModel(w io.Writer, logger *zap.Logger, req GenerateRequest) (*model.Problem, error) {
	f, err := buildFormulation(logger, req)
	if err != nil {
		return nil, err
	}

	if err := milp.WriteLP(w, f.Model); err != nil {
		return nil, fmt.Errorf("failed to write LP model: %w", err)
	}
	logger.Debug("Model exported", zap.Int("variables", f.Model.NumVars()), zap.Int("constraints", f.Model.NumConstraints()))

	return f.Problem, nil
}

func buildFormulation(logger *zap.Logger, req GenerateRequest) (*formulation.Formulation, error) {
	logger.Debug("Normalizing input tables", zap.String("label", req.Label))
	problem, err := normalizer.Normalize(req.Input, req.Options)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize input: %w", err)
	}

	logger.Debug("Building model", zap.String("label", req.Label))
	f, err := formulation.Build(problem, req.Rules)
	if err != nil {
		return nil, fmt.Errorf("failed to build model: %w", err)
	}
	return f, nil
}
