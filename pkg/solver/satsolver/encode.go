package satsolver

import (
	"fmt"

	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"

	"github.com/jakechorley/shift-roster/pkg/milp"
)

// encoding is a binary model compiled to a circuit.
// Every row is a cardinality constraint over a multiset of literals; roots holds the
// circuit outputs that must be true.
type encoding struct {
	circuit *logic.C
	vars    []z.Lit
	roots   []z.Lit

	// objUnits are the objective expanded into unit literals, maximized by count.
	// objAtLeast[k] holds iff at least k+1 units are true.
	objUnits   []z.Lit
	objAtLeast []z.Lit

	// conflict names the first row found unsatisfiable while encoding
	conflict string
}

// unitLits expands c*x into |c| copies of x, or of not x when c is negative.
// It returns the literals and the constant the expansion shifts the sum by.
func unitLits(lits []z.Lit, terms []milp.Term) ([]z.Lit, int64) {
	var units []z.Lit
	var shift int64
	for _, t := range terms {
		lit := lits[t.Var]
		coeff := t.Coeff
		if coeff < 0 {
			lit = lit.Not()
			coeff = -coeff
			shift += coeff
		}
		for i := int64(0); i < coeff; i++ {
			units = append(units, lit)
		}
	}
	return units, shift
}

func encode(m *milp.Model) (*encoding, error) {
	if !m.AllBinary() {
		return nil, fmt.Errorf("model %s has non-binary variables", m.Name())
	}

	c := logic.NewCCap(4 * m.NumVars())
	e := &encoding{circuit: c, vars: make([]z.Lit, m.NumVars())}
	for i := range e.vars {
		e.vars[i] = c.Lit()
	}

	for _, row := range m.Constraints() {
		if !e.addRow(row) {
			e.conflict = row.Name
			return e, nil
		}
	}

	obj := m.Objective()
	terms := obj.Terms
	if obj.Sense == milp.Minimize {
		terms = make([]milp.Term, len(obj.Terms))
		for i, t := range obj.Terms {
			terms[i] = milp.Term{Var: t.Var, Coeff: -t.Coeff}
		}
	}
	e.objUnits, _ = unitLits(e.vars, terms)
	if units := e.objUnits; len(units) > 0 {
		sorter := c.CardSort(units)
		e.objAtLeast = make([]z.Lit, len(units))
		for k := range e.objAtLeast {
			e.objAtLeast[k] = sorter.Geq(k + 1)
		}
	}
	return e, nil
}

// addRow encodes one row. It returns false if the row can never be satisfied.
func (e *encoding) addRow(row milp.Constraint) bool {
	units, shift := unitLits(e.vars, row.Terms)
	bound := row.RHS + shift
	n := int64(len(units))

	needLeq := row.Op == milp.LessEqual || row.Op == milp.Equal
	needGeq := row.Op == milp.GreaterEqual || row.Op == milp.Equal

	if (needLeq && bound < 0) || (needGeq && bound > n) {
		return false
	}
	// Drop bounds every assignment meets
	if needLeq && bound >= n {
		needLeq = false
	}
	if needGeq && bound <= 0 {
		needGeq = false
	}
	if !needLeq && !needGeq {
		return true
	}

	switch {
	case needGeq && bound == 1 && !needLeq:
		e.roots = append(e.roots, e.circuit.Ors(units...))
	case needLeq && bound == 0 && !needGeq:
		for _, u := range units {
			e.roots = append(e.roots, u.Not())
		}
	default:
		sorter := e.circuit.CardSort(units)
		if needLeq {
			e.roots = append(e.roots, sorter.Leq(int(bound)))
		}
		if needGeq {
			e.roots = append(e.roots, sorter.Geq(int(bound)))
		}
	}
	return true
}
