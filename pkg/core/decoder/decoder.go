// Package decoder turns a solver assignment back into a roster
package decoder

import (
	"fmt"

	"github.com/jakechorley/shift-roster/pkg/core/formulation"
	"github.com/jakechorley/shift-roster/pkg/core/model"
	"github.com/jakechorley/shift-roster/pkg/milp"
)

// Result is a decoded roster with its per-worker statistics
type Result struct {
	Schedule   *model.Schedule
	Statistics []model.WorkerStatistics
}

// Decode reads the assignment variables of a solution into a schedule.
// Shift types are scanned in their fixed order; a worker with no shift on a day is off.
// More than one shift on the same day is a DecodeError.
func Decode(sol *milp.Solution, vars *formulation.Vars, days []model.Day) (*Result, error) {
	if !sol.Status.HasAssignment() {
		return nil, fmt.Errorf("cannot decode a solution with status %s", sol.Status)
	}
	if len(days) != vars.NumDays() {
		return nil, fmt.Errorf("decoding %d days with a variable index over %d days", len(days), vars.NumDays())
	}

	codes := make([][]int, vars.NumWorkers())
	for w := range codes {
		codes[w] = make([]int, vars.NumDays())
		for d := range codes[w] {
			code, err := decodeCell(sol, vars, w, d)
			if err != nil {
				return nil, err
			}
			codes[w][d] = code
		}
	}

	schedule := &model.Schedule{Days: days, Codes: codes}
	return &Result{
		Schedule:   schedule,
		Statistics: Statistics(schedule),
	}, nil
}

func decodeCell(sol *milp.Solution, vars *formulation.Vars, w, d int) (int, error) {
	var set []model.ShiftType
	for _, s := range model.ShiftTypes {
		id := vars.X(w, d, s)
		if int(id) >= len(sol.Values) {
			return 0, fmt.Errorf("solution has %d values, variable %d is out of range", len(sol.Values), id)
		}
		if sol.BoolValue(id) {
			set = append(set, s)
		}
	}

	switch len(set) {
	case 0:
		return model.OffCode, nil
	case 1:
		return set[0].Code(), nil
	default:
		return 0, &model.DecodeError{Worker: w, Day: d, Shifts: set}
	}
}

// Statistics counts, for each worker, the days spent on each shift type and off
func Statistics(s *model.Schedule) []model.WorkerStatistics {
	stats := make([]model.WorkerStatistics, s.NumWorkers())
	for w, row := range s.Codes {
		stats[w].Worker = w
		for _, code := range row {
			switch code {
			case model.Early.Code():
				stats[w].Early++
			case model.Middle.Code():
				stats[w].Middle++
			case model.Late.Code():
				stats[w].Late++
			case model.OffCode:
				stats[w].Off++
			}
		}
	}
	return stats
}
