package milp

// VarID is the index of a variable in the model
type VarID int32

// Term is a variable with an integer coefficient
type Term struct {
	Var   VarID
	Coeff int64
}

// LinearExpr is a container for a linear expression with a constant offset
type LinearExpr struct {
	terms  []Term
	offset int64
}

// NewLinearExpr creates a new empty LinearExpr
func NewLinearExpr() *LinearExpr {
	return &LinearExpr{}
}

// Add adds the variable with coefficient 1 and returns the expression
func (l *LinearExpr) Add(v VarID) *LinearExpr {
	return l.AddTerm(v, 1)
}

// AddTerm adds the variable with the given coefficient and returns the expression
func (l *LinearExpr) AddTerm(v VarID, coeff int64) *LinearExpr {
	l.terms = append(l.terms, Term{Var: v, Coeff: coeff})
	return l
}

// AddSum adds each variable with coefficient 1 and returns the expression
func (l *LinearExpr) AddSum(vs ...VarID) *LinearExpr {
	for _, v := range vs {
		l.Add(v)
	}
	return l
}

// AddConstant adds c to the offset and returns the expression
func (l *LinearExpr) AddConstant(c int64) *LinearExpr {
	l.offset += c
	return l
}

// Terms returns the terms with duplicate variables merged and zero coefficients dropped.
// Order follows the first occurrence of each variable.
func (l *LinearExpr) Terms() []Term {
	index := make(map[VarID]int, len(l.terms))
	merged := make([]Term, 0, len(l.terms))
	for _, t := range l.terms {
		if i, ok := index[t.Var]; ok {
			merged[i].Coeff += t.Coeff
			continue
		}
		index[t.Var] = len(merged)
		merged = append(merged, t)
	}

	out := merged[:0]
	for _, t := range merged {
		if t.Coeff != 0 {
			out = append(out, t)
		}
	}
	return out
}

// Offset returns the constant part of the expression
func (l *LinearExpr) Offset() int64 {
	return l.offset
}

func evaluate(terms []Term, values []int64) int64 {
	var sum int64
	for _, t := range terms {
		sum += t.Coeff * values[t.Var]
	}
	return sum
}
