package formulation

import (
	"fmt"

	"github.com/jakechorley/shift-roster/pkg/core/model"
	"github.com/jakechorley/shift-roster/pkg/milp"
)

// Vars indexes the decision variables of a bound formulation over (worker, day, shift)
type Vars struct {
	numWorkers int
	numDays    int
	x          []milp.VarID
	startWork  []milp.VarID
	startFree  []milp.VarID
}

func declareVars(b *milp.Builder, numWorkers, numDays int) *Vars {
	size := numWorkers * numDays * model.NumShiftTypes
	v := &Vars{
		numWorkers: numWorkers,
		numDays:    numDays,
		x:          make([]milp.VarID, size),
		startWork:  make([]milp.VarID, size),
		startFree:  make([]milp.VarID, size),
	}

	// Declared per (worker, day, shift) so that related variables sit next to each other
	for w := 0; w < numWorkers; w++ {
		for d := 0; d < numDays; d++ {
			for _, s := range model.ShiftTypes {
				i := v.index(w, d, s)
				suffix := fmt.Sprintf("w%d_d%d_%s", w, d, s)
				v.x[i] = b.NewBoolVar("x_" + suffix)
				v.startWork[i] = b.NewBoolVar("sw_" + suffix)
				v.startFree[i] = b.NewBoolVar("sf_" + suffix)
			}
		}
	}
	return v
}

func (v *Vars) index(w, d int, s model.ShiftType) int {
	return (w*v.numDays+d)*model.NumShiftTypes + int(s)
}

func (v *Vars) contains(w, d int, s model.ShiftType) bool {
	return w >= 0 && w < v.numWorkers && d >= 0 && d < v.numDays && s.IsValid()
}

// NumWorkers returns the size of the worker index set
func (v *Vars) NumWorkers() int {
	return v.numWorkers
}

// NumDays returns the size of the day index set
func (v *Vars) NumDays() int {
	return v.numDays
}

// X returns the assignment variable: worker w works shift s on day d
func (v *Vars) X(w, d int, s model.ShiftType) milp.VarID {
	return v.x[v.index(w, d, s)]
}

// StartWork returns the variable marking the first day of a run of shift s
func (v *Vars) StartWork(w, d int, s model.ShiftType) milp.VarID {
	return v.startWork[v.index(w, d, s)]
}

// StartFree returns the variable marking the first day off shift s after a run of it
func (v *Vars) StartFree(w, d int, s model.ShiftType) milp.VarID {
	return v.startFree[v.index(w, d, s)]
}

// Assignment encodes a schedule as variable values.
// Transition variables take their canonical values: on the first day a run of the
// worked shift starts; afterwards they follow the day-to-day change of x.
func (v *Vars) Assignment(s *model.Schedule, numVars int) ([]int64, error) {
	if s.NumWorkers() != v.numWorkers || s.NumDays() != v.numDays {
		return nil, fmt.Errorf("schedule is %dx%d, formulation is %dx%d",
			s.NumWorkers(), s.NumDays(), v.numWorkers, v.numDays)
	}

	values := make([]int64, numVars)
	for w := 0; w < v.numWorkers; w++ {
		if len(s.Codes[w]) != v.numDays {
			return nil, fmt.Errorf("schedule row of worker %d has %d days, expected %d", w, len(s.Codes[w]), v.numDays)
		}
		for d := 0; d < v.numDays; d++ {
			code := s.Codes[w][d]
			if code != model.OffCode && !model.ShiftType(code).IsValid() {
				return nil, fmt.Errorf("worker %d day %d has invalid shift code %d", w, d, code)
			}
			for _, st := range model.ShiftTypes {
				cur := boolValue(code == st.Code())
				values[v.X(w, d, st)] = cur
				if d == 0 {
					values[v.StartWork(w, d, st)] = cur
					continue
				}
				prev := boolValue(s.Codes[w][d-1] == st.Code())
				values[v.StartWork(w, d, st)] = max(0, cur-prev)
				values[v.StartFree(w, d, st)] = max(0, prev-cur)
			}
		}
	}
	return values, nil
}

func boolValue(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
