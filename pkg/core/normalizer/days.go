package normalizer

import (
	"fmt"
	"strconv"
	"time"

	"github.com/jakechorley/shift-roster/pkg/core/model"
	"github.com/jakechorley/shift-roster/pkg/tables"
)

// parseDays reads the day sequence from the demand index.
// Labels are either consecutive integers or consecutive ISO dates; gaps are rejected
// because the run-length windows count days by offset.
func parseDays(t *tables.Table, start *time.Time) ([]model.Day, error) {
	if t.NumRows() == 0 {
		return nil, &model.ValidationError{Table: DemandTable, Reason: "table has no days"}
	}

	seen := make(map[string]bool, t.NumRows())
	for _, label := range t.Index {
		if seen[label] {
			return nil, &model.ValidationError{Table: DemandTable, Row: label, Reason: "duplicate day"}
		}
		seen[label] = true
	}

	if _, err := time.Parse(model.DateFormat, t.Index[0]); err == nil {
		return parseDatedDays(t.Index)
	}
	return parseNumberedDays(t.Index, start)
}

func parseDatedDays(labels []string) ([]model.Day, error) {
	days := make([]model.Day, len(labels))
	for i, label := range labels {
		date, err := time.Parse(model.DateFormat, label)
		if err != nil {
			return nil, &model.ValidationError{
				Table:  DemandTable,
				Row:    label,
				Reason: fmt.Sprintf("day labels must all be dates in %s format", model.DateFormat),
			}
		}
		if i > 0 {
			if expected := days[i-1].Date.AddDate(0, 0, 1); !date.Equal(expected) {
				return nil, &model.ValidationError{
					Table:  DemandTable,
					Row:    label,
					Reason: fmt.Sprintf("days are not contiguous: expected %s", expected.Format(model.DateFormat)),
				}
			}
		}
		days[i] = model.Day{Offset: i, Label: label, Date: date}
	}
	return days, nil
}

func parseNumberedDays(labels []string, start *time.Time) ([]model.Day, error) {
	days := make([]model.Day, len(labels))
	prev := 0
	for i, label := range labels {
		n, err := strconv.Atoi(label)
		if err != nil {
			return nil, &model.ValidationError{
				Table:  DemandTable,
				Row:    label,
				Reason: fmt.Sprintf("day labels must all be integers or all be dates in %s format", model.DateFormat),
			}
		}
		if i > 0 && n != prev+1 {
			return nil, &model.ValidationError{
				Table:  DemandTable,
				Row:    label,
				Reason: fmt.Sprintf("days are not contiguous: expected %d", prev+1),
			}
		}
		prev = n

		days[i] = model.Day{Offset: i, Label: label}
		if start != nil {
			days[i].Date = start.AddDate(0, 0, i)
		}
	}
	return days, nil
}
