// Package satsolver solves all-binary models exactly with the gini SAT solver.
//
// Every linear row is compiled to a cardinality constraint over literals using
// sorting networks. The objective is maximized by re-solving under the assumption that
// at least one more objective unit is satisfied than in the incumbent, until that
// assumption is refuted (optimal) or the solve is stopped (feasible).
package satsolver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-air/gini"
	"github.com/go-air/gini/z"
	"go.uber.org/zap"

	"github.com/jakechorley/shift-roster/pkg/milp"
)

// Name is the registry name of this solver
const Name = "sat"

const defaultPollInterval = 20 * time.Millisecond

var errTimeLimit = errors.New("time limit reached")

// Solver is a milp.Solver for models whose variables are all binary
type Solver struct {
	timeLimit    time.Duration
	pollInterval time.Duration
	logger       *zap.Logger
}

// Option configures a Solver
type Option func(*Solver)

// WithTimeLimit stops the search after d. Zero means no limit.
func WithTimeLimit(d time.Duration) Option {
	return func(s *Solver) {
		s.timeLimit = d
	}
}

// WithLogger sets the logger used for search progress
func WithLogger(logger *zap.Logger) Option {
	return func(s *Solver) {
		s.logger = logger
	}
}

// New creates a SAT-backed solver
func New(opts ...Option) *Solver {
	s := &Solver{
		pollInterval: defaultPollInterval,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Solver) Name() string {
	return Name
}

// Solve searches for an assignment maximizing the objective.
// When the context is cancelled or the time limit is reached after a feasible
// assignment was found, the incumbent is returned with StatusFeasible.
func (s *Solver) Solve(ctx context.Context, m *milp.Model) (*milp.Solution, error) {
	enc, err := encode(m)
	if err != nil {
		return nil, err
	}
	if enc.conflict != "" {
		s.logger.Debug("Row can never be satisfied", zap.String("row", enc.conflict))
		return &milp.Solution{Status: milp.StatusInfeasible, Detail: fmt.Sprintf("row %s can never be satisfied", enc.conflict)}, nil
	}

	g := gini.New()
	enc.circuit.ToCnf(g)
	for _, root := range enc.roots {
		g.Add(root)
		g.Add(0)
	}

	s.logger.Debug("Encoded model",
		zap.String("model", m.Name()),
		zap.Int("variables", m.NumVars()),
		zap.Int("rows", m.NumConstraints()),
		zap.Int("roots", len(enc.roots)),
		zap.Int("objective_units", len(enc.objUnits)),
		zap.Int("sat_variables", int(g.MaxVar())))

	var deadline <-chan time.Time
	if s.timeLimit > 0 {
		timer := time.NewTimer(s.timeLimit)
		defer timer.Stop()
		deadline = timer.C
	}

	var incumbent []int64
	satisfied := 0
	for {
		// Ask for one more satisfied objective unit than the incumbent has
		if incumbent != nil {
			if satisfied == len(enc.objUnits) {
				return milp.NewSolution(m, milp.StatusOptimal, incumbent)
			}
			g.Assume(enc.objAtLeast[satisfied])
		}

		result, err := s.search(ctx, g, deadline)
		if err != nil {
			if incumbent == nil {
				if errors.Is(err, errTimeLimit) {
					return &milp.Solution{Status: milp.StatusError, Detail: "time limit reached before a feasible assignment was found"}, nil
				}
				return nil, fmt.Errorf("sat search interrupted: %w", err)
			}
			s.logger.Debug("Search stopped with incumbent", zap.Error(err))
			return milp.NewSolution(m, milp.StatusFeasible, incumbent)
		}

		switch result {
		case 1:
			incumbent = readValues(g, enc.vars)
			satisfied = countTrue(g, enc.objUnits)
			s.logger.Debug("Found improving assignment", zap.Int64("objective", m.ObjectiveValue(incumbent)))
			if len(enc.objUnits) == 0 {
				return milp.NewSolution(m, milp.StatusOptimal, incumbent)
			}
		case -1:
			if incumbent == nil {
				return &milp.Solution{Status: milp.StatusInfeasible, Detail: "constraints are unsatisfiable"}, nil
			}
			return milp.NewSolution(m, milp.StatusOptimal, incumbent)
		default:
			return nil, fmt.Errorf("sat search ended with unknown result %d", result)
		}
	}
}

// search runs one solve in the background, polling for cancellation
func (s *Solver) search(ctx context.Context, g *gini.Gini, deadline <-chan time.Time) (int, error) {
	running := g.GoSolve()
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		if result, done := running.Test(); done {
			return result, nil
		}
		select {
		case <-ctx.Done():
			running.Stop()
			return 0, ctx.Err()
		case <-deadline:
			running.Stop()
			return 0, errTimeLimit
		case <-ticker.C:
		}
	}
}

func readValues(g *gini.Gini, vars []z.Lit) []int64 {
	values := make([]int64, len(vars))
	for i, lit := range vars {
		if g.Value(lit) {
			values[i] = 1
		}
	}
	return values
}

func countTrue(g *gini.Gini, lits []z.Lit) int {
	count := 0
	for _, lit := range lits {
		if g.Value(lit) {
			count++
		}
	}
	return count
}
