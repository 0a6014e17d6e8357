package formulation

import (
	"fmt"

	"github.com/jakechorley/shift-roster/pkg/core/model"
	"github.com/jakechorley/shift-roster/pkg/milp"
)

// TransitionLinkFamily ties the run start/end markers to changes of x.
//
// Rows (one per worker, shift and day d >= 1):
//
//	x[w,d,s] - x[w,d-1,s] - startWork[w,d,s] + startFree[w,d,s] == 0
//
// Skipped on day 0, which has no predecessor.
type TransitionLinkFamily struct{}

func (TransitionLinkFamily) Name() string {
	return "link"
}

func (f TransitionLinkFamily) emit(b *binding) {
	for w := 0; w < b.problem.NumWorkers; w++ {
		for _, s := range model.ShiftTypes {
			for d := 1; d < b.problem.NumDays(); d++ {
				expr := milp.NewLinearExpr().
					Add(b.x(f.Name(), w, d, s)).
					AddTerm(b.x(f.Name(), w, d-1, s), -1).
					AddTerm(b.startWork(f.Name(), w, d, s), -1).
					Add(b.startFree(f.Name(), w, d, s))
				b.add(f.Name(), rowName(f.Name(), fmt.Sprintf("w%d", w), fmt.Sprintf("d%d", d), s), expr, milp.Equal, 0)
			}
		}
	}
}

// Validate has nothing to check: transitions of a decoded schedule are derived from it
func (TransitionLinkFamily) Validate(*model.Problem, model.Rules, *model.Schedule) []Violation {
	return nil
}

// TransitionExclusivityFamily forbids a day from both starting and ending a run of a shift.
//
// Rows (one per worker, shift and day):
//
//	startWork[w,d,s] + startFree[w,d,s] <= 1
//
// Without it a day where x does not change could carry startWork = startFree = 1,
// and that phantom start would satisfy the maximum run window.
type TransitionExclusivityFamily struct{}

func (TransitionExclusivityFamily) Name() string {
	return "exclusive"
}

func (f TransitionExclusivityFamily) emit(b *binding) {
	for w := 0; w < b.problem.NumWorkers; w++ {
		for _, s := range model.ShiftTypes {
			for d := 0; d < b.problem.NumDays(); d++ {
				expr := milp.NewLinearExpr().
					Add(b.startWork(f.Name(), w, d, s)).
					Add(b.startFree(f.Name(), w, d, s))
				b.add(f.Name(), rowName(f.Name(), fmt.Sprintf("w%d", w), fmt.Sprintf("d%d", d), s), expr, milp.LessEqual, 1)
			}
		}
	}
}

func (TransitionExclusivityFamily) Validate(*model.Problem, model.Rules, *model.Schedule) []Violation {
	return nil
}

// TurnaroundFamily forbids a Late shift followed by an Early shift on the next day.
//
// Rows (one per worker and day d <= N-2):
//
//	x[w,d,Late] + x[w,d+1,Early] <= 1
//
// Skipped on the last day, which has no successor.
type TurnaroundFamily struct{}

func (TurnaroundFamily) Name() string {
	return "turnaround"
}

func (f TurnaroundFamily) emit(b *binding) {
	for w := 0; w < b.problem.NumWorkers; w++ {
		for d := 0; d+1 < b.problem.NumDays(); d++ {
			expr := milp.NewLinearExpr().
				Add(b.x(f.Name(), w, d, model.Late)).
				Add(b.x(f.Name(), w, d+1, model.Early))
			b.add(f.Name(), rowName(f.Name(), fmt.Sprintf("w%d", w), fmt.Sprintf("d%d", d)), expr, milp.LessEqual, 1)
		}
	}
}

func (f TurnaroundFamily) Validate(p *model.Problem, _ model.Rules, s *model.Schedule) []Violation {
	var violations []Violation
	for w := 0; w < s.NumWorkers(); w++ {
		for d := 0; d+1 < s.NumDays(); d++ {
			if s.Works(w, d, model.Late) && s.Works(w, d+1, model.Early) {
				violations = append(violations, Violation{
					Family:  f.Name(),
					Worker:  w,
					Day:     d,
					Shift:   int(model.Late),
					Message: fmt.Sprintf("worker %d works late on day %s and early on day %s", w, p.Days[d].Label, p.Days[d+1].Label),
				})
			}
		}
	}
	return violations
}

// transitions returns the canonical x, startWork and startFree series of one worker and shift
func transitions(s *model.Schedule, w int, st model.ShiftType) (x, startWork, startFree []int) {
	n := s.NumDays()
	x = make([]int, n)
	startWork = make([]int, n)
	startFree = make([]int, n)
	for d := 0; d < n; d++ {
		if s.Works(w, d, st) {
			x[d] = 1
		}
		if d == 0 {
			startWork[d] = x[d]
			continue
		}
		startWork[d] = max(0, x[d]-x[d-1])
		startFree[d] = max(0, x[d-1]-x[d])
	}
	return x, startWork, startFree
}
