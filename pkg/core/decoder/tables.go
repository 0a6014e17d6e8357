package decoder

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jakechorley/shift-roster/pkg/core/model"
	"github.com/jakechorley/shift-roster/pkg/tables"
)

// Output table names
const (
	ScheduleTable   = "schedule"
	StatisticsTable = "statistics"
)

// DayColumn returns the schedule column name of a day
func DayColumn(day model.Day) string {
	return "day_" + day.Label
}

// ToScheduleTable renders a schedule as a worker-indexed table with one column per day
func ToScheduleTable(s *model.Schedule) *tables.Table {
	columns := make([]string, len(s.Days))
	for i, day := range s.Days {
		columns[i] = DayColumn(day)
	}

	t := tables.New(ScheduleTable, "worker", columns...)
	for w, row := range s.Codes {
		cells := make([]string, len(row))
		for d, code := range row {
			cells[d] = strconv.Itoa(code)
		}
		// Row width always matches the header
		_ = t.AppendRow(strconv.Itoa(w), cells...)
	}
	return t
}

// ToStatisticsTable renders worker statistics as a worker-indexed table
func ToStatisticsTable(stats []model.WorkerStatistics) *tables.Table {
	t := tables.New(StatisticsTable, "worker", "early", "middle", "late", "off")
	for _, ws := range stats {
		_ = t.AppendRow(strconv.Itoa(ws.Worker),
			strconv.Itoa(ws.Early),
			strconv.Itoa(ws.Middle),
			strconv.Itoa(ws.Late),
			strconv.Itoa(ws.Off),
		)
	}
	return t
}

// FromScheduleTable parses a schedule table written by ToScheduleTable against the given days.
// Rows must be labelled 0..n-1 but may appear in any order.
func FromScheduleTable(t *tables.Table, days []model.Day) (*model.Schedule, error) {
	if len(t.Columns) != len(days) {
		return nil, fmt.Errorf("schedule table has %d day columns, expected %d", len(t.Columns), len(days))
	}
	for i, day := range days {
		if t.Columns[i] != DayColumn(day) {
			return nil, fmt.Errorf("schedule column %d is %s, expected %s", i, t.Columns[i], DayColumn(day))
		}
	}

	// Rows are looked up by worker label so a sorted sheet still parses
	codes := make([][]int, t.NumRows())
	for w := range codes {
		row, ok := t.Row(strconv.Itoa(w))
		if !ok {
			return nil, fmt.Errorf("schedule table has %d rows but no row for worker %d", t.NumRows(), w)
		}
		codes[w] = make([]int, len(days))
		for d := range days {
			cell := strings.TrimSpace(row[d])
			code, err := strconv.Atoi(cell)
			if err != nil || (code != model.OffCode && !model.ShiftType(code).IsValid()) {
				return nil, fmt.Errorf("schedule cell (%d, %s) holds invalid code %q", w, days[d].Label, cell)
			}
			codes[w][d] = code
		}
	}
	return &model.Schedule{Days: days, Codes: codes}, nil
}
