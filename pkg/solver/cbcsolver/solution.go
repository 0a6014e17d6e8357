package cbcsolver

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/jakechorley/shift-roster/pkg/milp"
)

type parsedSolution struct {
	header string
	status milp.Status
	values []int64
}

// parseSolution reads a cbc solution file: a status line followed by
// "<index> <name> <value> <reduced cost>" lines for the non-zero columns.
// Lines flagged "**" (infeasible values) carry the marker as their first field.
func parseSolution(r io.Reader, index map[string]milp.VarID, numVars int) (*parsedSolution, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to read cbc solution: %w", err)
		}
		return nil, fmt.Errorf("cbc solution file is empty")
	}

	header := strings.TrimSpace(scanner.Text())
	sol := &parsedSolution{
		header: header,
		status: headerStatus(header),
		values: make([]int64, numVars),
	}

	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) > 0 && fields[0] == "**" {
			fields = fields[1:]
		}
		if len(fields) < 3 {
			continue
		}
		id, ok := index[fields[1]]
		if !ok {
			return nil, fmt.Errorf("cbc solution names unknown column %s", fields[1])
		}
		value, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, fmt.Errorf("cbc solution has invalid value %q for column %s", fields[2], fields[1])
		}
		sol.values[id] = int64(math.Round(value))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read cbc solution: %w", err)
	}
	return sol, nil
}

// headerStatus maps the first line of a solution file to a status
func headerStatus(header string) milp.Status {
	lower := strings.ToLower(header)
	switch {
	case strings.HasPrefix(lower, "optimal"):
		return milp.StatusOptimal
	case strings.Contains(lower, "infeasible"):
		return milp.StatusInfeasible
	case strings.Contains(lower, "unbounded"):
		return milp.StatusUnbounded
	case strings.HasPrefix(lower, "stopped") && strings.Contains(lower, "objective value"):
		// Stopped on a limit with an integer solution in hand
		return milp.StatusFeasible
	default:
		return milp.StatusError
	}
}
