package formulation

import (
	"github.com/jakechorley/shift-roster/pkg/core/model"
	"github.com/jakechorley/shift-roster/pkg/milp"
)

// emitPreferenceObjective maximizes the number of granted shift requests:
//
//	maximize sum_{w,d,s} Preference[w,d,s] * x[w,d,s]
func emitPreferenceObjective(b *binding) {
	const family = "objective"
	expr := milp.NewLinearExpr()
	for w := 0; w < b.problem.NumWorkers; w++ {
		for d := range b.problem.Days {
			for _, s := range model.ShiftTypes {
				if weight := b.problem.Preference[w][d][s]; weight != 0 {
					expr.AddTerm(b.x(family, w, d, s), int64(weight))
				}
			}
		}
	}
	b.builder.Maximize(expr)
}

// GrantedRequests counts the preference requests a schedule satisfies
func GrantedRequests(p *model.Problem, s *model.Schedule) int {
	granted := 0
	for w, row := range s.Codes {
		for d, code := range row {
			if code != model.OffCode && p.Preference[w][d][code] != 0 {
				granted++
			}
		}
	}
	return granted
}
