package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jakechorley/shift-roster/pkg/core/decoder"
	"github.com/jakechorley/shift-roster/pkg/core/formulation"
	"github.com/jakechorley/shift-roster/pkg/core/model"
	"github.com/jakechorley/shift-roster/pkg/core/normalizer"
	"github.com/jakechorley/shift-roster/pkg/milp"
)

// GenerateRequest describes one scheduling run
type GenerateRequest struct {
	// Label names the run in logs and run history (e.g. the input directory)
	Label   string
	Input   normalizer.Input
	Options normalizer.Options
	Rules   model.Rules
}

// GenerateResult is a solved and verified roster
type GenerateResult struct {
	RunID           string
	Label           string
	SolverName      string
	Status          milp.Status
	Objective       int64
	Problem         *model.Problem
	Schedule        *model.Schedule
	Statistics      []model.WorkerStatistics
	GrantedRequests int
	TotalRequests   int
	Duration        time.Duration
	CreatedAt       time.Time
}

// GenerateRoster normalizes the input, builds the model, solves it and decodes the roster.
// The decoded roster is checked against the model before it is returned; no partial
// roster is ever returned on failure.
func GenerateRoster(ctx context.Context, solver milp.Solver, logger *zap.Logger, req GenerateRequest) (*GenerateResult, error) {
	started := time.Now()
	logger = logger.With(zap.String("label", req.Label))
	logger.Debug("Generating roster", zap.String("solver", solver.Name()))

	logger.Debug("Normalizing input tables")
	problem, err := normalizer.Normalize(req.Input, req.Options)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize input: %w", err)
	}
	logger.Debug("Input normalized",
		zap.Int("workers", problem.NumWorkers),
		zap.Int("days", problem.NumDays()),
		zap.Int("total_demand", problem.TotalDemand()))

	logger.Debug("Building model")
	f, err := formulation.Build(problem, req.Rules)
	if err != nil {
		return nil, fmt.Errorf("failed to build model: %w", err)
	}
	logger.Debug("Model built",
		zap.Int("variables", f.Model.NumVars()),
		zap.Int("constraints", f.Model.NumConstraints()),
		zap.Any("families", f.Model.FamilySizes()))

	logger.Debug("Solving model")
	solution, err := solver.Solve(ctx, f.Model)
	if err != nil {
		return nil, fmt.Errorf("failed to solve model: %w", err)
	}
	logger.Debug("Solver finished",
		zap.Stringer("status", solution.Status),
		zap.Int64("objective", solution.Objective),
		zap.String("detail", solution.Detail))

	if err := checkStatus(solution, problem, req.Rules); err != nil {
		return nil, err
	}

	logger.Debug("Decoding solution")
	decoded, err := decoder.Decode(solution, f.Vars, problem.Days)
	if err != nil {
		return nil, fmt.Errorf("failed to decode solution: %w", err)
	}

	if err := verify(f, solution, decoded.Schedule); err != nil {
		return nil, err
	}

	result := &GenerateResult{
		RunID:           uuid.NewString(),
		Label:           req.Label,
		SolverName:      solver.Name(),
		Status:          solution.Status,
		Objective:       solution.Objective,
		Problem:         problem,
		Schedule:        decoded.Schedule,
		Statistics:      decoded.Statistics,
		GrantedRequests: formulation.GrantedRequests(problem, decoded.Schedule),
		TotalRequests:   totalRequests(problem),
		Duration:        time.Since(started),
		CreatedAt:       started.UTC(),
	}

	logger.Info("Roster generated",
		zap.String("run_id", result.RunID),
		zap.Stringer("status", result.Status),
		zap.Int("granted_requests", result.GrantedRequests),
		zap.Int("total_requests", result.TotalRequests),
		zap.Duration("duration", result.Duration))

	return result, nil
}

// checkStatus maps a solution without an assignment to the matching error
func checkStatus(solution *milp.Solution, problem *model.Problem, rules model.Rules) error {
	switch solution.Status {
	case milp.StatusOptimal, milp.StatusFeasible:
		return nil
	case milp.StatusInfeasible:
		return &model.InfeasibleModelError{Hints: formulation.Diagnose(problem, rules)}
	default:
		msg := fmt.Sprintf("solver returned status %s", solution.Status)
		if solution.Detail != "" {
			msg += ": " + solution.Detail
		}
		return errors.New(msg)
	}
}

// verify checks the raw assignment and the decoded schedule against every row of the model
func verify(f *formulation.Formulation, solution *milp.Solution, schedule *model.Schedule) error {
	violations, err := f.Model.Check(solution.Values)
	if err != nil {
		return fmt.Errorf("failed to check solution: %w", err)
	}
	if len(violations) > 0 {
		return fmt.Errorf("solver returned an assignment violating %d rows, first: %s", len(violations), violations[0])
	}

	if scheduleViolations := f.Validate(schedule); len(scheduleViolations) > 0 {
		return fmt.Errorf("decoded roster violates %d constraints, first: %s", len(scheduleViolations), scheduleViolations[0])
	}
	return nil
}

// totalRequests counts the shift requests in the preference table
func totalRequests(p *model.Problem) int {
	total := 0
	for _, worker := range p.Preference {
		for _, day := range worker {
			for _, weight := range day {
				if weight != 0 {
					total++
				}
			}
		}
	}
	return total
}
