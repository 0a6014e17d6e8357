// Package milp describes mixed-integer linear models independently of any solver.
//
// A `Builder` declares variables and rows; `Builder.Build` freezes them into an
// immutable `Model` that solver back ends read. `Solution` carries a solver's answer
// and `Model.Check` evaluates an assignment against every row.
package milp

import "fmt"

// Op is the relation between a row's linear expression and its right-hand side
type Op int

const (
	LessEqual Op = iota
	GreaterEqual
	Equal
)

func (o Op) String() string {
	switch o {
	case LessEqual:
		return "<="
	case GreaterEqual:
		return ">="
	case Equal:
		return "="
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// Sense is the optimization direction of the objective
type Sense int

const (
	Maximize Sense = iota
	Minimize
)

func (s Sense) String() string {
	if s == Minimize {
		return "minimize"
	}
	return "maximize"
}

// Var is a declared variable
type Var struct {
	ID      VarID
	Name    string
	Lower   int64
	Upper   int64
	Integer bool
}

// IsBinary returns true for integer variables with domain [0, 1]
func (v Var) IsBinary() bool {
	return v.Integer && v.Lower == 0 && v.Upper == 1
}

// Constraint is a linear row: sum(Terms) Op RHS.
// Family groups rows emitted by the same rule.
type Constraint struct {
	Name   string
	Family string
	Terms  []Term
	Op     Op
	RHS    int64
}

// Satisfied returns true if the row holds under the assignment
func (c Constraint) Satisfied(values []int64) bool {
	lhs := evaluate(c.Terms, values)
	switch c.Op {
	case LessEqual:
		return lhs <= c.RHS
	case GreaterEqual:
		return lhs >= c.RHS
	default:
		return lhs == c.RHS
	}
}

// Objective is the linear objective of the model
type Objective struct {
	Sense  Sense
	Terms  []Term
	Offset int64
}

// Model is an immutable mixed-integer linear model.
// Use Builder to create one.
type Model struct {
	name        string
	vars        []Var
	constraints []Constraint
	objective   Objective
}

// Name returns the model name
func (m *Model) Name() string {
	return m.name
}

// NumVars returns the number of declared variables
func (m *Model) NumVars() int {
	return len(m.vars)
}

// NumConstraints returns the number of rows
func (m *Model) NumConstraints() int {
	return len(m.constraints)
}

// Var returns the variable with the given id
func (m *Model) Var(id VarID) Var {
	return m.vars[id]
}

// Vars returns a copy of the declared variables
func (m *Model) Vars() []Var {
	return append([]Var(nil), m.vars...)
}

// Constraint returns the i-th row
func (m *Model) Constraint(i int) Constraint {
	return m.constraints[i]
}

// Constraints returns a copy of the rows
func (m *Model) Constraints() []Constraint {
	return append([]Constraint(nil), m.constraints...)
}

// Objective returns the objective
func (m *Model) Objective() Objective {
	return m.objective
}

// AllBinary returns true if every variable is binary
func (m *Model) AllBinary() bool {
	for _, v := range m.vars {
		if !v.IsBinary() {
			return false
		}
	}
	return true
}

// FamilySizes returns the number of rows per family
func (m *Model) FamilySizes() map[string]int {
	sizes := make(map[string]int)
	for _, c := range m.constraints {
		sizes[c.Family]++
	}
	return sizes
}

// ObjectiveValue evaluates the objective under the assignment
func (m *Model) ObjectiveValue(values []int64) int64 {
	return evaluate(m.objective.Terms, values) + m.objective.Offset
}

// Violation names a row or variable bound broken by an assignment
type Violation struct {
	Constraint string
	Family     string
	LHS        int64
	Op         Op
	RHS        int64
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %d %s %d does not hold", v.Constraint, v.LHS, v.Op, v.RHS)
}

// Check evaluates the assignment against every variable bound and row.
// An empty result means the assignment is feasible.
func (m *Model) Check(values []int64) ([]Violation, error) {
	if len(values) != len(m.vars) {
		return nil, fmt.Errorf("assignment has %d values, model has %d variables", len(values), len(m.vars))
	}

	var violations []Violation
	for _, v := range m.vars {
		val := values[v.ID]
		if val < v.Lower {
			violations = append(violations, Violation{Constraint: v.Name, Family: "bounds", LHS: val, Op: GreaterEqual, RHS: v.Lower})
		}
		if val > v.Upper {
			violations = append(violations, Violation{Constraint: v.Name, Family: "bounds", LHS: val, Op: LessEqual, RHS: v.Upper})
		}
	}
	for _, c := range m.constraints {
		if !c.Satisfied(values) {
			violations = append(violations, Violation{
				Constraint: c.Name,
				Family:     c.Family,
				LHS:        evaluate(c.Terms, values),
				Op:         c.Op,
				RHS:        c.RHS,
			})
		}
	}
	return violations, nil
}
