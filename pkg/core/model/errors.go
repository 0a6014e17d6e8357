package model

import (
	"fmt"
	"strings"
)

// ValidationError reports malformed or index-mismatched input tables
type ValidationError struct {
	Table  string
	Row    string
	Column string
	Reason string
}

func (e *ValidationError) Error() string {
	var location []string
	if e.Row != "" {
		location = append(location, "row "+e.Row)
	}
	if e.Column != "" {
		location = append(location, "column "+e.Column)
	}
	if len(location) == 0 {
		return fmt.Sprintf("invalid %s table: %s", e.Table, e.Reason)
	}
	return fmt.Sprintf("invalid %s table (%s): %s", e.Table, strings.Join(location, ", "), e.Reason)
}

// ModelConstructionError reports an index inconsistency found while emitting constraints.
// Worker, Day and Shift are -1 when not applicable.
type ModelConstructionError struct {
	Family string
	Worker int
	Day    int
	Shift  int
	Reason string
}

func (e *ModelConstructionError) Error() string {
	return fmt.Sprintf("model construction failed in %s (worker=%d, day=%d, shift=%d): %s",
		e.Family, e.Worker, e.Day, e.Shift, e.Reason)
}

// InfeasibleModelError reports that no roster satisfies the constraints.
// Hints name necessary conditions that the input already violates, if any were found.
type InfeasibleModelError struct {
	Hints []string
}

func (e *InfeasibleModelError) Error() string {
	msg := "no feasible roster exists; relax workload bounds, run-length bounds or vacation caps"
	if len(e.Hints) > 0 {
		msg += ": " + strings.Join(e.Hints, "; ")
	}
	return msg
}

// DecodeError reports a solver assignment with more than one shift for a worker on a day
type DecodeError struct {
	Worker int
	Day    int
	Shifts []ShiftType
}

func (e *DecodeError) Error() string {
	names := make([]string, len(e.Shifts))
	for i, s := range e.Shifts {
		names[i] = s.String()
	}
	return fmt.Sprintf("worker %d has %d shifts on day %d (%s)", e.Worker, len(e.Shifts), e.Day, strings.Join(names, ", "))
}
