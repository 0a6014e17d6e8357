package formulation

import (
	"fmt"

	"github.com/jakechorley/shift-roster/pkg/core/model"
	"github.com/jakechorley/shift-roster/pkg/milp"
)

// DemandFamily staffs every shift with exactly the demanded headcount.
//
// Rows (one per day and shift):
//
//	sum_w x[w,d,s] == Demand[d,s]
type DemandFamily struct{}

func (DemandFamily) Name() string {
	return "demand"
}

func (f DemandFamily) emit(b *binding) {
	for d := range b.problem.Days {
		for _, s := range model.ShiftTypes {
			expr := milp.NewLinearExpr()
			for w := 0; w < b.problem.NumWorkers; w++ {
				expr.Add(b.x(f.Name(), w, d, s))
			}
			b.add(f.Name(), rowName(f.Name(), fmt.Sprintf("d%d", d), s), expr, milp.Equal, int64(b.problem.Demand[d][s]))
		}
	}
}

func (f DemandFamily) Validate(p *model.Problem, _ model.Rules, s *model.Schedule) []Violation {
	var violations []Violation
	for d := range p.Days {
		for _, st := range model.ShiftTypes {
			staffed := 0
			for w := 0; w < s.NumWorkers(); w++ {
				if s.Works(w, d, st) {
					staffed++
				}
			}
			if staffed != p.Demand[d][st] {
				violations = append(violations, Violation{
					Family:  f.Name(),
					Worker:  -1,
					Day:     d,
					Shift:   int(st),
					Message: fmt.Sprintf("day %s has %d %s workers, demand is %d", p.Days[d].Label, staffed, st, p.Demand[d][st]),
				})
			}
		}
	}
	return violations
}

// SingleShiftFamily allows at most one shift per worker and day.
//
// Rows (one per worker and day):
//
//	sum_s x[w,d,s] <= 1
type SingleShiftFamily struct{}

func (SingleShiftFamily) Name() string {
	return "single_shift"
}

func (f SingleShiftFamily) emit(b *binding) {
	for w := 0; w < b.problem.NumWorkers; w++ {
		for d := range b.problem.Days {
			expr := milp.NewLinearExpr()
			for _, s := range model.ShiftTypes {
				expr.Add(b.x(f.Name(), w, d, s))
			}
			b.add(f.Name(), rowName(f.Name(), fmt.Sprintf("w%d", w), fmt.Sprintf("d%d", d)), expr, milp.LessEqual, 1)
		}
	}
}

// Validate reports cells that hold neither a shift code nor the off code.
// A schedule table cannot hold two shifts in one cell.
func (f SingleShiftFamily) Validate(_ *model.Problem, _ model.Rules, s *model.Schedule) []Violation {
	var violations []Violation
	for w, row := range s.Codes {
		for d, code := range row {
			if code != model.OffCode && !model.ShiftType(code).IsValid() {
				violations = append(violations, Violation{
					Family:  f.Name(),
					Worker:  w,
					Day:     d,
					Shift:   -1,
					Message: fmt.Sprintf("worker %d has invalid code %d on day %d", w, code, d),
				})
			}
		}
	}
	return violations
}

// WorkloadFamily bounds the number of shifts each worker takes over the period.
//
// Rows (two per worker):
//
//	sum_{d,s} x[w,d,s] >= MinShiftsPerWorker
//	sum_{d,s} x[w,d,s] <= MaxShiftsPerWorker
type WorkloadFamily struct{}

func (WorkloadFamily) Name() string {
	return "workload"
}

func (f WorkloadFamily) emit(b *binding) {
	for w := 0; w < b.problem.NumWorkers; w++ {
		expr := milp.NewLinearExpr()
		for d := range b.problem.Days {
			for _, s := range model.ShiftTypes {
				expr.Add(b.x(f.Name(), w, d, s))
			}
		}
		worker := fmt.Sprintf("w%d", w)
		b.add(f.Name(), rowName(f.Name(), "min", worker), expr, milp.GreaterEqual, int64(b.rules.MinShiftsPerWorker))
		b.add(f.Name(), rowName(f.Name(), "max", worker), expr, milp.LessEqual, int64(b.rules.MaxShiftsPerWorker))
	}
}

func (f WorkloadFamily) Validate(_ *model.Problem, rules model.Rules, s *model.Schedule) []Violation {
	var violations []Violation
	for w, row := range s.Codes {
		worked := 0
		for _, code := range row {
			if code != model.OffCode {
				worked++
			}
		}
		if worked < rules.MinShiftsPerWorker || worked > rules.MaxShiftsPerWorker {
			violations = append(violations, Violation{
				Family:  f.Name(),
				Worker:  w,
				Day:     -1,
				Shift:   -1,
				Message: fmt.Sprintf("worker %d works %d shifts, allowed range is [%d, %d]", w, worked, rules.MinShiftsPerWorker, rules.MaxShiftsPerWorker),
			})
		}
	}
	return violations
}

// VacationFamily keeps workers off on days their vacation cap is 0.
//
// Rows (one per worker and day):
//
//	sum_s x[w,d,s] <= VacationCap[w,d]
type VacationFamily struct{}

func (VacationFamily) Name() string {
	return "vacation"
}

func (f VacationFamily) emit(b *binding) {
	for w := 0; w < b.problem.NumWorkers; w++ {
		for d := range b.problem.Days {
			expr := milp.NewLinearExpr()
			for _, s := range model.ShiftTypes {
				expr.Add(b.x(f.Name(), w, d, s))
			}
			b.add(f.Name(), rowName(f.Name(), fmt.Sprintf("w%d", w), fmt.Sprintf("d%d", d)), expr, milp.LessEqual, int64(b.problem.VacationCap[w][d]))
		}
	}
}

func (f VacationFamily) Validate(p *model.Problem, _ model.Rules, s *model.Schedule) []Violation {
	var violations []Violation
	for w, row := range s.Codes {
		for d, code := range row {
			if code != model.OffCode && p.VacationCap[w][d] == 0 {
				violations = append(violations, Violation{
					Family:  f.Name(),
					Worker:  w,
					Day:     d,
					Shift:   code,
					Message: fmt.Sprintf("worker %d is on vacation on day %s but works %s", w, p.Days[d].Label, model.ShiftType(code)),
				})
			}
		}
	}
	return violations
}
