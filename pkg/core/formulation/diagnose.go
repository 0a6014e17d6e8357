package formulation

import (
	"fmt"

	"github.com/jakechorley/shift-roster/pkg/core/model"
)

// Diagnose lists necessary conditions for feasibility that the problem already violates.
// An empty result does not imply the model is feasible.
func Diagnose(p *model.Problem, rules model.Rules) []string {
	var hints []string

	for d, day := range p.Days {
		dayTotal := 0
		for _, s := range model.ShiftTypes {
			dayTotal += p.Demand[d][s]
		}
		available := 0
		for w := 0; w < p.NumWorkers; w++ {
			available += p.VacationCap[w][d]
		}
		if dayTotal > available {
			hints = append(hints, fmt.Sprintf("day %s demands %d workers but only %d of %d are available",
				day.Label, dayTotal, available, p.NumWorkers))
		}
	}

	for w := 0; w < p.NumWorkers; w++ {
		if available := p.AvailableDays(w); available < rules.MinShiftsPerWorker {
			hints = append(hints, fmt.Sprintf("worker %d is available on %d days but must work at least %d shifts",
				w, available, rules.MinShiftsPerWorker))
		}
	}

	total := p.TotalDemand()
	if lower := p.NumWorkers * rules.MinShiftsPerWorker; total < lower {
		hints = append(hints, fmt.Sprintf("total demand %d is below the minimum workload of %d workers (%d)",
			total, p.NumWorkers, lower))
	}
	if upper := p.NumWorkers * rules.MaxShiftsPerWorker; total > upper {
		hints = append(hints, fmt.Sprintf("total demand %d exceeds the maximum workload of %d workers (%d)",
			total, p.NumWorkers, upper))
	}

	return hints
}
