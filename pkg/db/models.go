package db

import "time"

// TimestampFormat is the layout of timestamp columns
const TimestampFormat = time.RFC3339

// RosterRun represents one scheduling run
type RosterRun struct {
	ID              string `ssql_header:"id" ssql_type:"uuid"`
	Label           string `ssql_header:"label" ssql_type:"text"`
	Solver          string `ssql_header:"solver" ssql_type:"text"`
	Status          string `ssql_header:"status" ssql_type:"text"`
	Objective       int    `ssql_header:"objective" ssql_type:"int"`
	NumWorkers      int    `ssql_header:"num_workers" ssql_type:"int"`
	NumDays         int    `ssql_header:"num_days" ssql_type:"int"`
	FirstDay        string `ssql_header:"first_day" ssql_type:"text"`
	GrantedRequests int    `ssql_header:"granted_requests" ssql_type:"int"`
	TotalRequests   int    `ssql_header:"total_requests" ssql_type:"int"`
	DurationMS      int    `ssql_header:"duration_ms" ssql_type:"int"`
	CreatedAt       string `ssql_header:"created_at" ssql_type:"timestamp"`
	PublishedAt     string `ssql_header:"published_at" ssql_type:"timestamp"`
}

// IsPublished returns true if the run's tables were written to the output spreadsheet
func (r RosterRun) IsPublished() bool {
	return r.PublishedAt != ""
}

// RosterAssignment represents one schedule cell of a run; ShiftCode is -1 for a day off
type RosterAssignment struct {
	RunID     string `ssql_header:"run_id" ssql_type:"uuid"`
	Worker    int    `ssql_header:"worker" ssql_type:"int"`
	DayOffset int    `ssql_header:"day_offset" ssql_type:"int"`
	DayLabel  string `ssql_header:"day_label" ssql_type:"text"`
	ShiftCode int    `ssql_header:"shift_code" ssql_type:"int"`
}

// RosterStatistic represents the shift counts of one worker in a run
type RosterStatistic struct {
	RunID  string `ssql_header:"run_id" ssql_type:"uuid"`
	Worker int    `ssql_header:"worker" ssql_type:"int"`
	Early  int    `ssql_header:"early" ssql_type:"int"`
	Middle int    `ssql_header:"middle" ssql_type:"int"`
	Late   int    `ssql_header:"late" ssql_type:"int"`
	Off    int    `ssql_header:"off" ssql_type:"int"`
}
