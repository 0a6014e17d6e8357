package milp

import (
	"errors"
	"fmt"
)

// ErrUnknownVar is returned when a row or the objective references an undeclared variable
var ErrUnknownVar = errors.New("variable is not part of the model")

// Builder accumulates variables and rows for a single Model.
// A Builder is not safe for concurrent use.
type Builder struct {
	name        string
	vars        []Var
	varNames    map[string]VarID
	constraints []Constraint
	consNames   map[string]int
	objective   Objective
	err         error
}

// NewBuilder creates a builder for a model with the given name
func NewBuilder(name string) *Builder {
	return &Builder{
		name:      name,
		varNames:  make(map[string]VarID),
		consNames: make(map[string]int),
	}
}

// NewBoolVar declares a binary variable
func (b *Builder) NewBoolVar(name string) VarID {
	return b.NewIntVar(0, 1, name)
}

// NewIntVar declares an integer variable with domain [lb, ub]
func (b *Builder) NewIntVar(lb, ub int64, name string) VarID {
	id := VarID(len(b.vars))
	if name == "" {
		name = fmt.Sprintf("v%d", id)
	}
	if _, exists := b.varNames[name]; exists {
		b.fail(fmt.Errorf("variable with name %s already exists", name))
	}
	if lb > ub {
		b.fail(fmt.Errorf("variable %s has empty domain [%d, %d]", name, lb, ub))
	}
	b.varNames[name] = id
	b.vars = append(b.vars, Var{ID: id, Name: name, Lower: lb, Upper: ub, Integer: true})
	return id
}

// AddConstraint adds the row `expr op rhs`. The expression offset is moved to the right-hand side.
func (b *Builder) AddConstraint(family, name string, expr *LinearExpr, op Op, rhs int64) {
	if name == "" {
		name = fmt.Sprintf("%s_%d", family, len(b.constraints))
	}
	if _, exists := b.consNames[name]; exists {
		b.fail(fmt.Errorf("constraint with name %s already exists", name))
		return
	}
	terms := expr.Terms()
	if err := b.checkTerms(terms); err != nil {
		b.fail(fmt.Errorf("constraint %s: %w", name, err))
		return
	}
	b.consNames[name] = len(b.constraints)
	b.constraints = append(b.constraints, Constraint{
		Name:   name,
		Family: family,
		Terms:  terms,
		Op:     op,
		RHS:    rhs - expr.Offset(),
	})
}

// AddLessOrEqual adds the row `expr <= rhs`
func (b *Builder) AddLessOrEqual(family, name string, expr *LinearExpr, rhs int64) {
	b.AddConstraint(family, name, expr, LessEqual, rhs)
}

// AddGreaterOrEqual adds the row `expr >= rhs`
func (b *Builder) AddGreaterOrEqual(family, name string, expr *LinearExpr, rhs int64) {
	b.AddConstraint(family, name, expr, GreaterEqual, rhs)
}

// AddEquality adds the row `expr == rhs`
func (b *Builder) AddEquality(family, name string, expr *LinearExpr, rhs int64) {
	b.AddConstraint(family, name, expr, Equal, rhs)
}

// Maximize sets the objective to maximize expr
func (b *Builder) Maximize(expr *LinearExpr) {
	b.setObjective(Maximize, expr)
}

// Minimize sets the objective to minimize expr
func (b *Builder) Minimize(expr *LinearExpr) {
	b.setObjective(Minimize, expr)
}

func (b *Builder) setObjective(sense Sense, expr *LinearExpr) {
	terms := expr.Terms()
	if err := b.checkTerms(terms); err != nil {
		b.fail(fmt.Errorf("objective: %w", err))
		return
	}
	b.objective = Objective{Sense: sense, Terms: terms, Offset: expr.Offset()}
}

// Build freezes the builder into an immutable Model.
// It returns the first error recorded while declaring variables or rows.
func (b *Builder) Build() (*Model, error) {
	if b.err != nil {
		return nil, b.err
	}
	return &Model{
		name:        b.name,
		vars:        append([]Var(nil), b.vars...),
		constraints: append([]Constraint(nil), b.constraints...),
		objective: Objective{
			Sense:  b.objective.Sense,
			Terms:  append([]Term(nil), b.objective.Terms...),
			Offset: b.objective.Offset,
		},
	}, nil
}

func (b *Builder) checkTerms(terms []Term) error {
	for _, t := range terms {
		if t.Var < 0 || int(t.Var) >= len(b.vars) {
			return fmt.Errorf("%w: index %d", ErrUnknownVar, t.Var)
		}
	}
	return nil
}

func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}
