package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jakechorley/shift-roster/pkg/core/model"
	"github.com/jakechorley/shift-roster/pkg/core/services"
	"github.com/jakechorley/shift-roster/pkg/db"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorDim    = "\033[2m"
)

var shiftColors = map[int]string{
	model.Early.Code():  colorGreen,
	model.Middle.Code(): colorYellow,
	model.Late.Code():   colorBlue,
	model.OffCode:       colorDim,
}

// shiftLetter returns the one-letter cell used in the roster grid
func shiftLetter(code int) string {
	switch code {
	case model.Early.Code():
		return "E"
	case model.Middle.Code():
		return "M"
	case model.Late.Code():
		return "L"
	default:
		return "."
	}
}

// printSchedule prints the roster as a worker by day grid followed by each worker's totals
func printSchedule(w io.Writer, schedule *model.Schedule, statistics []model.WorkerStatistics, color bool) {
	const workerColWidth = 8
	dayColWidth := 3
	for _, day := range schedule.Days {
		dayColWidth = max(dayColWidth, len(day.Label)+1)
	}

	fmt.Fprintf(w, "%-*s", workerColWidth, "worker")
	for _, day := range schedule.Days {
		fmt.Fprintf(w, "%-*s", dayColWidth, day.Label)
	}
	fmt.Fprintf(w, "  %5s %6s %4s %3s\n", "early", "middle", "late", "off")

	fmt.Fprintln(w, strings.Repeat("-", workerColWidth+dayColWidth*len(schedule.Days)+22))

	for i, row := range schedule.Codes {
		fmt.Fprintf(w, "%-*d", workerColWidth, i)
		for _, code := range row {
			cell := fmt.Sprintf("%-*s", dayColWidth, shiftLetter(code))
			if color {
				cell = shiftColors[code] + cell + colorReset
			}
			fmt.Fprint(w, cell)
		}
		if i < len(statistics) {
			ws := statistics[i]
			fmt.Fprintf(w, "  %5d %6d %4d %3d", ws.Early, ws.Middle, ws.Late, ws.Off)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Legend: E = early, M = middle, L = late, . = off")
}

// printResult prints the outcome of a generate run
func printResult(w io.Writer, result *services.GenerateResult) {
	fmt.Fprintf(w, "\n✓ Roster generated!\n\n")
	fmt.Fprintf(w, "Run ID:     %s\n", result.RunID)
	if result.Label != "" {
		fmt.Fprintf(w, "Label:      %s\n", result.Label)
	}
	fmt.Fprintf(w, "Solver:     %s (%s)\n", result.SolverName, result.Status)
	fmt.Fprintf(w, "Requests:   %d of %d granted\n", result.GrantedRequests, result.TotalRequests)
	fmt.Fprintf(w, "Duration:   %s\n\n", result.Duration.Round(time.Millisecond))
}

// printRuns prints the run history as a table, newest first
func printRuns(w io.Writer, runs []db.RosterRun) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs found.")
		return
	}

	fmt.Fprintf(w, "\nFound %d runs:\n\n", len(runs))
	fmt.Fprintf(w, "%-36s  %-20s  %-16s  %-6s  %-5s  %-9s  %s\n", "ID", "CREATED", "LABEL", "SOLVER", "SIZE", "REQUESTS", "PUBLISHED")
	for _, run := range runs {
		published := "no"
		if run.IsPublished() {
			published = run.PublishedAt
		}
		fmt.Fprintf(w, "%-36s  %-20s  %-16s  %-6s  %-5s  %-9s  %s\n",
			run.ID,
			run.CreatedAt,
			truncate(run.Label, 16),
			run.Solver,
			fmt.Sprintf("%dx%d", run.NumWorkers, run.NumDays),
			fmt.Sprintf("%d/%d", run.GrantedRequests, run.TotalRequests),
			published,
		)
	}
	fmt.Fprintln(w)
}

// printRun prints a stored run's details and roster
func printRun(w io.Writer, detail *services.RunDetail, color bool) {
	run := detail.Run
	fmt.Fprintf(w, "\nRun ID:     %s\n", run.ID)
	if run.Label != "" {
		fmt.Fprintf(w, "Label:      %s\n", run.Label)
	}
	fmt.Fprintf(w, "Created:    %s\n", run.CreatedAt)
	fmt.Fprintf(w, "Solver:     %s (%s)\n", run.Solver, run.Status)
	fmt.Fprintf(w, "Requests:   %d of %d granted\n", run.GrantedRequests, run.TotalRequests)
	if run.IsPublished() {
		fmt.Fprintf(w, "Published:  %s\n", run.PublishedAt)
	}
	fmt.Fprintln(w)
	printSchedule(w, detail.Schedule, detail.Statistics, color)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
