package milp

import (
	"context"
	"fmt"
)

// Status is the outcome of a solve
type Status int

const (
	StatusUnknown Status = iota
	// StatusOptimal means the assignment is proven optimal
	StatusOptimal
	// StatusFeasible means the assignment is feasible but optimality was not proven
	StatusFeasible
	StatusInfeasible
	StatusUnbounded
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusFeasible:
		return "feasible"
	case StatusInfeasible:
		return "infeasible"
	case StatusUnbounded:
		return "unbounded"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// HasAssignment returns true if the status carries variable values
func (s Status) HasAssignment() bool {
	return s == StatusOptimal || s == StatusFeasible
}

// Solution is a solver's answer for a Model.
// Values is indexed by VarID and only set when Status.HasAssignment().
type Solution struct {
	Status    Status
	Values    []int64
	Objective int64
	// Detail carries solver-specific context for non-assignment statuses
	Detail string
}

// Value returns the value of variable v
func (s *Solution) Value(v VarID) int64 {
	return s.Values[v]
}

// BoolValue returns true if binary variable v is set
func (s *Solution) BoolValue(v VarID) bool {
	return s.Values[v] != 0
}

// Solver solves a Model. Implementations must not modify the model.
type Solver interface {
	Name() string
	Solve(ctx context.Context, m *Model) (*Solution, error)
}

// NewSolution validates raw values against the model and computes the objective
func NewSolution(m *Model, status Status, values []int64) (*Solution, error) {
	if len(values) != m.NumVars() {
		return nil, fmt.Errorf("solution has %d values, model has %d variables", len(values), m.NumVars())
	}
	return &Solution{
		Status:    status,
		Values:    values,
		Objective: m.ObjectiveValue(values),
	}, nil
}
