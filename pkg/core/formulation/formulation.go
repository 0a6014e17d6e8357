// Package formulation turns a normalized scheduling problem into a mixed-integer linear model.
//
// Construction happens in two stages. A Schema declares the constraint families
// parametrically over the (worker, day, shift) index sets and the labour rules.
// Binding a Schema to a concrete Problem declares the variables, emits every row and
// sets the preference objective, producing an immutable Formulation.
package formulation

import (
	"errors"
	"fmt"

	"github.com/jakechorley/shift-roster/pkg/core/model"
	"github.com/jakechorley/shift-roster/pkg/milp"
)

// Formulation is a bound model together with the index it was built over
type Formulation struct {
	Model   *milp.Model
	Vars    *Vars
	Problem *model.Problem
	Rules   model.Rules

	families []Family
}

// Build binds the default schema for rules to the problem
func Build(p *model.Problem, rules model.Rules) (*Formulation, error) {
	return NewSchema(rules).Bind(p)
}

// Encode returns the variable assignment that represents the schedule
func (f *Formulation) Encode(s *model.Schedule) ([]int64, error) {
	return f.Vars.Assignment(s, f.Model.NumVars())
}

// Validate checks a decoded schedule against every constraint family.
// An empty slice indicates the schedule satisfies the model.
func (f *Formulation) Validate(s *model.Schedule) []Violation {
	var violations []Violation
	for _, family := range f.families {
		violations = append(violations, family.Validate(f.Problem, f.Rules, s)...)
	}
	return violations
}

// Violation is a broken constraint found in a decoded schedule.
// Worker, Day and Shift are -1 when not applicable.
type Violation struct {
	Family  string
	Worker  int
	Day     int
	Shift   int
	Message string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Family, v.Message)
}

// binding is the state of a Schema being bound to a Problem
type binding struct {
	builder *milp.Builder
	vars    *Vars
	problem *model.Problem
	rules   model.Rules
	err     error
}

func (b *binding) add(family, name string, expr *milp.LinearExpr, op milp.Op, rhs int64) {
	b.builder.AddConstraint(family, name, expr, op, rhs)
}

// x returns the assignment variable after checking the index
func (b *binding) x(family string, w, d int, s model.ShiftType) milp.VarID {
	b.check(family, w, d, s)
	return b.vars.X(w, d, s)
}

func (b *binding) startWork(family string, w, d int, s model.ShiftType) milp.VarID {
	b.check(family, w, d, s)
	return b.vars.StartWork(w, d, s)
}

func (b *binding) startFree(family string, w, d int, s model.ShiftType) milp.VarID {
	b.check(family, w, d, s)
	return b.vars.StartFree(w, d, s)
}

func (b *binding) check(family string, w, d int, s model.ShiftType) {
	if b.err != nil || b.vars.contains(w, d, s) {
		return
	}
	b.err = &model.ModelConstructionError{
		Family: family,
		Worker: w,
		Day:    d,
		Shift:  int(s),
		Reason: fmt.Sprintf("index outside %d workers x %d days x %d shifts",
			b.vars.numWorkers, b.vars.numDays, model.NumShiftTypes),
	}
}

func asConstructionError(family string, err error) error {
	var mce *model.ModelConstructionError
	if errors.As(err, &mce) {
		return err
	}
	return &model.ModelConstructionError{Family: family, Worker: -1, Day: -1, Shift: -1, Reason: err.Error()}
}

func rowName(family string, parts ...any) string {
	name := family
	for _, p := range parts {
		name += fmt.Sprintf("_%v", p)
	}
	return name
}
