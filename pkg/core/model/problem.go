package model

import (
	"fmt"
	"time"
)

// DateFormat is the layout used for dated day labels
const DateFormat = "2006-01-02"

// Day is a single day of the roster period
type Day struct {
	// Offset from the first day of the period (0-based, dense)
	Offset int

	// Label as given in the input tables (e.g. "1" or "2024-03-01")
	Label string

	// Date of the day, zero if the period is not dated
	Date time.Time
}

// IsDated returns true if the day carries a calendar date
func (d Day) IsDated() bool {
	return !d.Date.IsZero()
}

// Problem is the normalized, indexed input of a scheduling run.
// All slices are dense: days by offset, workers by id.
type Problem struct {
	Days       []Day
	NumWorkers int

	// Demand[d][s] is the required headcount of shift s on day d
	Demand [][NumShiftTypes]int

	// VacationCap[w][d] is 0 if worker w must be off on day d, 1 otherwise
	VacationCap [][]int

	// Preference[w][d][s] is 1 if worker w asked for shift s on day d
	Preference [][][NumShiftTypes]int
}

// NumDays returns the length of the roster period
func (p *Problem) NumDays() int {
	return len(p.Days)
}

// CheckDimensions verifies that every indexed structure matches the worker and day counts
func (p *Problem) CheckDimensions() error {
	numDays := len(p.Days)
	if numDays == 0 {
		return fmt.Errorf("problem has no days")
	}
	if p.NumWorkers <= 0 {
		return fmt.Errorf("problem has no workers")
	}
	for i, day := range p.Days {
		if day.Offset != i {
			return fmt.Errorf("day %q has offset %d at position %d", day.Label, day.Offset, i)
		}
	}
	if len(p.Demand) != numDays {
		return fmt.Errorf("demand covers %d days, expected %d", len(p.Demand), numDays)
	}
	if len(p.VacationCap) != p.NumWorkers {
		return fmt.Errorf("vacation caps cover %d workers, expected %d", len(p.VacationCap), p.NumWorkers)
	}
	if len(p.Preference) != p.NumWorkers {
		return fmt.Errorf("preferences cover %d workers, expected %d", len(p.Preference), p.NumWorkers)
	}
	for w := 0; w < p.NumWorkers; w++ {
		if len(p.VacationCap[w]) != numDays {
			return fmt.Errorf("vacation caps of worker %d cover %d days, expected %d", w, len(p.VacationCap[w]), numDays)
		}
		if len(p.Preference[w]) != numDays {
			return fmt.Errorf("preferences of worker %d cover %d days, expected %d", w, len(p.Preference[w]), numDays)
		}
	}
	return nil
}

// TotalDemand returns the number of shifts to staff over the whole period
func (p *Problem) TotalDemand() int {
	total := 0
	for _, day := range p.Demand {
		for _, n := range day {
			total += n
		}
	}
	return total
}

// AvailableDays returns the number of days worker w may be scheduled
func (p *Problem) AvailableDays(w int) int {
	count := 0
	for _, c := range p.VacationCap[w] {
		count += c
	}
	return count
}
