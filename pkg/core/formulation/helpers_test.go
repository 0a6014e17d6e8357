package formulation

import (
	"strconv"

	"github.com/jakechorley/shift-roster/pkg/core/model"
)

// newProblem builds a problem with full availability and no preferences
func newProblem(numWorkers int, demand [][model.NumShiftTypes]int) *model.Problem {
	numDays := len(demand)
	p := &model.Problem{
		NumWorkers:  numWorkers,
		Demand:      demand,
		VacationCap: make([][]int, numWorkers),
		Preference:  make([][][model.NumShiftTypes]int, numWorkers),
	}
	for d := 0; d < numDays; d++ {
		p.Days = append(p.Days, model.Day{Offset: d, Label: strconv.Itoa(d + 1)})
	}
	for w := 0; w < numWorkers; w++ {
		p.VacationCap[w] = make([]int, numDays)
		for d := range p.VacationCap[w] {
			p.VacationCap[w][d] = 1
		}
		p.Preference[w] = make([][model.NumShiftTypes]int, numDays)
	}
	return p
}

func looseRules() model.Rules {
	return model.Rules{
		MinShiftsPerWorker: 0,
		MaxShiftsPerWorker: 100,
		MinShiftLength:     1,
		MaxShiftLength:     100,
		MinFreeLength:      1,
	}
}

func scheduleOf(p *model.Problem, codes [][]int) *model.Schedule {
	return &model.Schedule{Days: p.Days, Codes: codes}
}
