package formulation

import (
	"fmt"

	"github.com/jakechorley/shift-roster/pkg/core/model"
	"github.com/jakechorley/shift-roster/pkg/milp"
)

// The run families constrain trailing windows of day offsets. A window of length L
// ending at day d covers offsets d-L+1..d and is only emitted once d >= L, so no
// window reaches day 0, whose transition markers are not linked to x.

// MinRunFamily prevents runs of a shift shorter than MinShiftLength.
//
// Rows (one per worker, shift and day d >= L, L = MinShiftLength):
//
//	sum_{i=d-L+1..d} startWork[w,i,s] <= x[w,d,s]
//
// A run that started inside the window must still be active at d.
type MinRunFamily struct{}

func (MinRunFamily) Name() string {
	return "min_run"
}

func (f MinRunFamily) emit(b *binding) {
	emitWindows(b, f.Name(), b.rules.MinShiftLength, func(expr *milp.LinearExpr, w, d int, s model.ShiftType) (milp.Op, int64) {
		for i := d - b.rules.MinShiftLength + 1; i <= d; i++ {
			expr.Add(b.startWork(f.Name(), w, i, s))
		}
		expr.AddTerm(b.x(f.Name(), w, d, s), -1)
		return milp.LessEqual, 0
	})
}

func (f MinRunFamily) Validate(p *model.Problem, rules model.Rules, s *model.Schedule) []Violation {
	return validateWindows(p, s, f.Name(), rules.MinShiftLength, func(x, startWork, _ []int, d int) bool {
		return windowSum(startWork, d, rules.MinShiftLength) <= x[d]
	}, func(w, d int, st model.ShiftType) string {
		return fmt.Sprintf("worker %d has a %s run shorter than %d days ending before day %s", w, st, rules.MinShiftLength, p.Days[d].Label)
	})
}

// MaxRunFamily prevents runs of a shift longer than MaxShiftLength.
//
// Rows (one per worker, shift and day d >= M, M = MaxShiftLength):
//
//	sum_{i=d-M+1..d} startWork[w,i,s] >= x[w,d,s]
//
// A run active at d must have started within the last M days.
type MaxRunFamily struct{}

func (MaxRunFamily) Name() string {
	return "max_run"
}

func (f MaxRunFamily) emit(b *binding) {
	emitWindows(b, f.Name(), b.rules.MaxShiftLength, func(expr *milp.LinearExpr, w, d int, s model.ShiftType) (milp.Op, int64) {
		for i := d - b.rules.MaxShiftLength + 1; i <= d; i++ {
			expr.Add(b.startWork(f.Name(), w, i, s))
		}
		expr.AddTerm(b.x(f.Name(), w, d, s), -1)
		return milp.GreaterEqual, 0
	})
}

func (f MaxRunFamily) Validate(p *model.Problem, rules model.Rules, s *model.Schedule) []Violation {
	return validateWindows(p, s, f.Name(), rules.MaxShiftLength, func(x, startWork, _ []int, d int) bool {
		return windowSum(startWork, d, rules.MaxShiftLength) >= x[d]
	}, func(w, d int, st model.ShiftType) string {
		return fmt.Sprintf("worker %d has a %s run longer than %d days on day %s", w, st, rules.MaxShiftLength, p.Days[d].Label)
	})
}

// MinRestFamily keeps a worker off a shift for MinFreeLength days after a run of it ends.
//
// Rows (one per worker, shift and day d >= F, F = MinFreeLength):
//
//	sum_{i=d-F+1..d} startFree[w,i,s] + x[w,d,s] <= 1
type MinRestFamily struct{}

func (MinRestFamily) Name() string {
	return "min_rest"
}

func (f MinRestFamily) emit(b *binding) {
	emitWindows(b, f.Name(), b.rules.MinFreeLength, func(expr *milp.LinearExpr, w, d int, s model.ShiftType) (milp.Op, int64) {
		for i := d - b.rules.MinFreeLength + 1; i <= d; i++ {
			expr.Add(b.startFree(f.Name(), w, i, s))
		}
		expr.Add(b.x(f.Name(), w, d, s))
		return milp.LessEqual, 1
	})
}

func (f MinRestFamily) Validate(p *model.Problem, rules model.Rules, s *model.Schedule) []Violation {
	return validateWindows(p, s, f.Name(), rules.MinFreeLength, func(x, _, startFree []int, d int) bool {
		return windowSum(startFree, d, rules.MinFreeLength)+x[d] <= 1
	}, func(w, d int, st model.ShiftType) string {
		return fmt.Sprintf("worker %d returns to %s on day %s less than %d days after leaving it", w, st, p.Days[d].Label, rules.MinFreeLength)
	})
}

type windowRow func(expr *milp.LinearExpr, w, d int, s model.ShiftType) (milp.Op, int64)

func emitWindows(b *binding, family string, length int, row windowRow) {
	for w := 0; w < b.problem.NumWorkers; w++ {
		for _, s := range model.ShiftTypes {
			for d := length; d < b.problem.NumDays(); d++ {
				expr := milp.NewLinearExpr()
				op, rhs := row(expr, w, d, s)
				b.add(family, rowName(family, fmt.Sprintf("w%d", w), fmt.Sprintf("d%d", d), s), expr, op, rhs)
			}
		}
	}
}

type windowCheck func(x, startWork, startFree []int, d int) bool

func validateWindows(p *model.Problem, s *model.Schedule, family string, length int, holds windowCheck, describe func(w, d int, st model.ShiftType) string) []Violation {
	var violations []Violation
	for w := 0; w < s.NumWorkers(); w++ {
		for _, st := range model.ShiftTypes {
			x, startWork, startFree := transitions(s, w, st)
			for d := length; d < s.NumDays(); d++ {
				if holds(x, startWork, startFree, d) {
					continue
				}
				violations = append(violations, Violation{
					Family:  family,
					Worker:  w,
					Day:     d,
					Shift:   int(st),
					Message: describe(w, d, st),
				})
			}
		}
	}
	return violations
}

func windowSum(series []int, d, length int) int {
	sum := 0
	for i := d - length + 1; i <= d; i++ {
		sum += series[i]
	}
	return sum
}
