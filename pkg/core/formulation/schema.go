package formulation

import (
	"fmt"

	"github.com/jakechorley/shift-roster/pkg/core/model"
	"github.com/jakechorley/shift-roster/pkg/milp"
)

// Family is one kind of constraint of the roster model.
//
// emit adds the family's rows for the bound problem. Validate checks a decoded
// schedule against the same rule without going through the solver.
type Family interface {
	Name() string
	emit(b *binding)
	Validate(p *model.Problem, rules model.Rules, s *model.Schedule) []Violation
}

// Schema declares the constraint families of the model for a set of labour rules
type Schema struct {
	rules    model.Rules
	families []Family
}

// NewSchema returns the schema with every family of the roster model, in emission order
func NewSchema(rules model.Rules) *Schema {
	return NewSchemaWithFamilies(rules,
		DemandFamily{},
		SingleShiftFamily{},
		WorkloadFamily{},
		TransitionLinkFamily{},
		TransitionExclusivityFamily{},
		MinRunFamily{},
		MaxRunFamily{},
		MinRestFamily{},
		TurnaroundFamily{},
		VacationFamily{},
	)
}

// NewSchemaWithFamilies returns a schema restricted to the given families
func NewSchemaWithFamilies(rules model.Rules, families ...Family) *Schema {
	return &Schema{rules: rules, families: families}
}

// Families returns the names of the declared families in emission order
func (s *Schema) Families() []string {
	names := make([]string, len(s.families))
	for i, f := range s.families {
		names[i] = f.Name()
	}
	return names
}

// Bind instantiates the schema over a problem
func (s *Schema) Bind(p *model.Problem) (*Formulation, error) {
	if err := checkRules(s.rules); err != nil {
		return nil, asConstructionError("schema", err)
	}
	if err := p.CheckDimensions(); err != nil {
		return nil, asConstructionError("schema", err)
	}

	builder := milp.NewBuilder(fmt.Sprintf("roster_%dw_%dd", p.NumWorkers, p.NumDays()))
	b := &binding{
		builder: builder,
		vars:    declareVars(builder, p.NumWorkers, p.NumDays()),
		problem: p,
		rules:   s.rules,
	}

	for _, family := range s.families {
		family.emit(b)
		if b.err != nil {
			return nil, b.err
		}
	}
	emitPreferenceObjective(b)
	if b.err != nil {
		return nil, b.err
	}

	m, err := builder.Build()
	if err != nil {
		return nil, asConstructionError("build", err)
	}

	return &Formulation{
		Model:    m,
		Vars:     b.vars,
		Problem:  p,
		Rules:    s.rules,
		families: s.families,
	}, nil
}

func checkRules(r model.Rules) error {
	if r.MinShiftsPerWorker < 0 || r.MaxShiftsPerWorker < r.MinShiftsPerWorker {
		return fmt.Errorf("workload bounds [%d, %d] are empty", r.MinShiftsPerWorker, r.MaxShiftsPerWorker)
	}
	if r.MinShiftLength < 1 || r.MaxShiftLength < r.MinShiftLength {
		return fmt.Errorf("run length bounds [%d, %d] are empty", r.MinShiftLength, r.MaxShiftLength)
	}
	if r.MinFreeLength < 1 {
		return fmt.Errorf("minimum rest length %d must be positive", r.MinFreeLength)
	}
	return nil
}
