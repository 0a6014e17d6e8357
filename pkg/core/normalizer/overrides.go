package normalizer

import (
	"fmt"

	"github.com/teambition/rrule-go"

	"github.com/jakechorley/shift-roster/pkg/core/model"
)

// DemandOverride replaces the demand of every day matching an RRule.
// A nil shift count leaves that shift's demand unchanged.
type DemandOverride struct {
	RRule  string
	Early  *int
	Middle *int
	Late   *int
}

func (o DemandOverride) count(s model.ShiftType) *int {
	switch s {
	case model.Early:
		return o.Early
	case model.Middle:
		return o.Middle
	case model.Late:
		return o.Late
	}
	return nil
}

// applyOverrides rewrites demand in place for the dated days each override applies to
func applyOverrides(days []model.Day, demand [][model.NumShiftTypes]int, overrides []DemandOverride) error {
	if len(overrides) == 0 {
		return nil
	}
	if !days[0].IsDated() {
		return &model.ValidationError{
			Table:  DemandTable,
			Reason: "demand overrides need dated days; use date labels or configure a period start",
		}
	}

	first := days[0].Date
	last := days[len(days)-1].Date

	for i, override := range overrides {
		rule, err := rrule.StrToRRule(override.RRule)
		if err != nil {
			return fmt.Errorf("failed to parse rrule for demand override %d: %w", i, err)
		}
		for _, s := range model.ShiftTypes {
			if n := override.count(s); n != nil && *n < 0 {
				return fmt.Errorf("demand override %d sets a negative %s headcount", i, s)
			}
		}

		rule.DTStart(first)
		matches := make(map[string]bool)
		for _, occurrence := range rule.Between(first, last, true) {
			matches[occurrence.Format(model.DateFormat)] = true
		}

		for d, day := range days {
			if !matches[day.Date.Format(model.DateFormat)] {
				continue
			}
			for _, s := range model.ShiftTypes {
				if n := override.count(s); n != nil {
					demand[d][s] = *n
				}
			}
		}
	}
	return nil
}
