// Package normalizer converts raw demand, vacation and preference tables into the
// dense, indexed Problem the model builder works on.
package normalizer

import (
	"fmt"
	"strconv"
	"time"

	"github.com/jakechorley/shift-roster/pkg/core/model"
	"github.com/jakechorley/shift-roster/pkg/tables"
)

// Table names used in validation errors
const (
	DemandTable     = "demand"
	VacationTable   = "vacation"
	PreferenceTable = "preferences"
)

// Input holds the three raw tables of a scheduling run
type Input struct {
	// Demand is indexed by day label with one column per shift type
	Demand *tables.Table

	// Vacation is indexed by day label with one column per worker id
	Vacation *tables.Table

	// Preferences is indexed by worker id with one column per day
	Preferences *tables.Table
}

// Options adjust how the tables are interpreted
type Options struct {
	// Start dates integer-labelled days: day offset d falls on Start + d days
	Start *time.Time

	// Overrides replace the demand of dated days, applied in order
	Overrides []DemandOverride
}

// Normalize validates the input tables and builds the problem they describe
func Normalize(in Input, opts Options) (*model.Problem, error) {
	if in.Demand == nil || in.Vacation == nil || in.Preferences == nil {
		return nil, &model.ValidationError{Table: "input", Reason: "demand, vacation and preference tables are all required"}
	}

	days, err := parseDays(in.Demand, opts.Start)
	if err != nil {
		return nil, err
	}

	demand, err := parseDemand(in.Demand)
	if err != nil {
		return nil, err
	}

	if err := applyOverrides(days, demand, opts.Overrides); err != nil {
		return nil, err
	}

	numWorkers, workerRows, err := parseWorkerIndex(in.Preferences)
	if err != nil {
		return nil, err
	}

	vacation, err := parseVacation(in.Vacation, days, numWorkers)
	if err != nil {
		return nil, err
	}

	preference, err := parsePreferences(in.Preferences, days, workerRows)
	if err != nil {
		return nil, err
	}

	return &model.Problem{
		Days:        days,
		NumWorkers:  numWorkers,
		Demand:      demand,
		VacationCap: vacation,
		Preference:  preference,
	}, nil
}

// parseDemand reads the three shift columns of the demand table
func parseDemand(t *tables.Table) ([][model.NumShiftTypes]int, error) {
	if len(t.Columns) != model.NumShiftTypes {
		return nil, &model.ValidationError{
			Table:  DemandTable,
			Reason: fmt.Sprintf("expected %d shift columns, found %d", model.NumShiftTypes, len(t.Columns)),
		}
	}

	var columns [model.NumShiftTypes]int
	for _, s := range model.ShiftTypes {
		col, ok := shiftColumn(t, s)
		if !ok {
			return nil, &model.ValidationError{
				Table:  DemandTable,
				Column: shiftColumnNames[s][0],
				Reason: fmt.Sprintf("missing %s shift column", s),
			}
		}
		columns[s] = col
	}

	demand := make([][model.NumShiftTypes]int, t.NumRows())
	for d := range demand {
		for _, s := range model.ShiftTypes {
			n, err := parseCount(t.Cell(d, columns[s]))
			if err != nil {
				return nil, &model.ValidationError{
					Table:  DemandTable,
					Row:    t.Index[d],
					Column: t.Columns[columns[s]],
					Reason: err.Error(),
				}
			}
			demand[d][s] = n
		}
	}
	return demand, nil
}

var shiftColumnNames = [model.NumShiftTypes][]string{
	model.Early:  {"early_shift", "early"},
	model.Middle: {"middle_shift", "middle"},
	model.Late:   {"late_shift", "late"},
}

func shiftColumn(t *tables.Table, s model.ShiftType) (int, bool) {
	for _, name := range shiftColumnNames[s] {
		if i, ok := t.ColumnIndex(name); ok {
			return i, true
		}
	}
	return -1, false
}

// parseWorkerIndex checks that the preference table is indexed by worker ids 0..W-1.
// It returns the worker count and the table row of each worker.
func parseWorkerIndex(t *tables.Table) (int, []int, error) {
	if t.NumRows() == 0 {
		return 0, nil, &model.ValidationError{Table: PreferenceTable, Reason: "table has no workers"}
	}

	numWorkers := t.NumRows()
	rows := make([]int, numWorkers)
	for i := range rows {
		rows[i] = -1
	}

	for i, label := range t.Index {
		id, err := parseWorkerID(label)
		if err != nil || id >= numWorkers {
			return 0, nil, &model.ValidationError{
				Table:  PreferenceTable,
				Row:    label,
				Reason: fmt.Sprintf("worker id must be an integer in [0, %d)", numWorkers),
			}
		}
		if rows[id] != -1 {
			return 0, nil, &model.ValidationError{Table: PreferenceTable, Row: label, Reason: "duplicate worker id"}
		}
		rows[id] = i
	}
	return numWorkers, rows, nil
}

func parseWorkerID(s string) (int, error) {
	id, err := parseInteger(s)
	if err != nil {
		return 0, err
	}
	if id < 0 {
		return 0, fmt.Errorf("negative worker id %d", id)
	}
	return id, nil
}

// parseVacation reads the day-indexed vacation table into VacationCap[w][d]
func parseVacation(t *tables.Table, days []model.Day, numWorkers int) ([][]int, error) {
	if t.NumRows() != len(days) {
		return nil, &model.ValidationError{
			Table:  VacationTable,
			Reason: fmt.Sprintf("table covers %d days, demand covers %d", t.NumRows(), len(days)),
		}
	}
	for d, label := range t.Index {
		if label != days[d].Label {
			return nil, &model.ValidationError{
				Table:  VacationTable,
				Row:    label,
				Reason: fmt.Sprintf("expected day %s at position %d", days[d].Label, d+1),
			}
		}
	}

	if len(t.Columns) != numWorkers {
		return nil, &model.ValidationError{
			Table:  VacationTable,
			Reason: fmt.Sprintf("table has %d worker columns, preferences list %d workers", len(t.Columns), numWorkers),
		}
	}
	columns := make([]int, numWorkers)
	for i := range columns {
		columns[i] = -1
	}
	for i, name := range t.Columns {
		id, err := parseWorkerID(name)
		if err != nil || id >= numWorkers {
			return nil, &model.ValidationError{
				Table:  VacationTable,
				Column: name,
				Reason: fmt.Sprintf("worker id must be an integer in [0, %d)", numWorkers),
			}
		}
		if columns[id] != -1 {
			return nil, &model.ValidationError{Table: VacationTable, Column: name, Reason: "duplicate worker id"}
		}
		columns[id] = i
	}

	caps := make([][]int, numWorkers)
	for w := range caps {
		caps[w] = make([]int, len(days))
		for d := range days {
			v, err := parseInteger(t.Cell(d, columns[w]))
			if err != nil || (v != 0 && v != 1) {
				return nil, &model.ValidationError{
					Table:  VacationTable,
					Row:    t.Index[d],
					Column: t.Columns[columns[w]],
					Reason: fmt.Sprintf("vacation cap must be 0 or 1, got %q", t.Cell(d, columns[w])),
				}
			}
			caps[w][d] = v
		}
	}
	return caps, nil
}

// parsePreferences reads the worker-indexed preference table into a dense weight structure
func parsePreferences(t *tables.Table, days []model.Day, workerRows []int) ([][][model.NumShiftTypes]int, error) {
	offsets, err := preferenceColumns(t, days)
	if err != nil {
		return nil, err
	}

	preference := make([][][model.NumShiftTypes]int, len(workerRows))
	for w, row := range workerRows {
		preference[w] = make([][model.NumShiftTypes]int, len(days))
		for col, d := range offsets {
			s, ok, err := parseShiftRequest(t.Cell(row, col))
			if err != nil {
				return nil, &model.ValidationError{
					Table:  PreferenceTable,
					Row:    t.Index[row],
					Column: t.Columns[col],
					Reason: err.Error(),
				}
			}
			if ok {
				preference[w][d][s] = 1
			}
		}
	}
	return preference, nil
}

// preferenceColumns maps each preference column to a day offset.
// A column names a day by its label, optionally prefixed with "day_", or by its
// 1-based position in the period as "day_<n>".
func preferenceColumns(t *tables.Table, days []model.Day) ([]int, error) {
	byLabel := make(map[string]int, len(days))
	for _, day := range days {
		byLabel[day.Label] = day.Offset
	}

	offsets := make([]int, len(t.Columns))
	seen := make(map[int]string, len(t.Columns))
	for i, name := range t.Columns {
		d, ok := resolveDayColumn(name, byLabel, len(days))
		if !ok {
			return nil, &model.ValidationError{Table: PreferenceTable, Column: name, Reason: "column does not name a day of the period"}
		}
		if other, dup := seen[d]; dup {
			return nil, &model.ValidationError{
				Table:  PreferenceTable,
				Column: name,
				Reason: fmt.Sprintf("day %s is also named by column %s", days[d].Label, other),
			}
		}
		seen[d] = name
		offsets[i] = d
	}
	return offsets, nil
}

func resolveDayColumn(name string, byLabel map[string]int, numDays int) (int, bool) {
	if d, ok := byLabel[name]; ok {
		return d, true
	}
	rest, prefixed := cutPrefixFold(name, "day_")
	if !prefixed {
		return 0, false
	}
	if d, ok := byLabel[rest]; ok {
		return d, true
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 1 || n > numDays {
		return 0, false
	}
	return n - 1, true
}
