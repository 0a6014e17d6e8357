package model

// Schedule is the decoded roster: Codes[w][d] is a shift code or OffCode
type Schedule struct {
	Days  []Day
	Codes [][]int
}

// NumWorkers returns the number of rows in the schedule
func (s *Schedule) NumWorkers() int {
	return len(s.Codes)
}

// NumDays returns the number of columns in the schedule
func (s *Schedule) NumDays() int {
	return len(s.Days)
}

// Works returns true if worker w works shift t on day d
func (s *Schedule) Works(w, d int, t ShiftType) bool {
	return s.Codes[w][d] == t.Code()
}

// IsOff returns true if worker w has no shift on day d
func (s *Schedule) IsOff(w, d int) bool {
	return s.Codes[w][d] == OffCode
}

// WorkerStatistics counts the days a worker spends on each shift type and off
type WorkerStatistics struct {
	Worker int
	Early  int
	Middle int
	Late   int
	Off    int
}

// Worked returns the total number of shifts assigned to the worker
func (ws WorkerStatistics) Worked() int {
	return ws.Early + ws.Middle + ws.Late
}

// Count returns the number of days the worker spends on shift type t
func (ws WorkerStatistics) Count(t ShiftType) int {
	switch t {
	case Early:
		return ws.Early
	case Middle:
		return ws.Middle
	case Late:
		return ws.Late
	}
	return 0
}
