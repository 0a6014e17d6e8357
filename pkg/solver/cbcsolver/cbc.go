// Package cbcsolver solves models with the COIN-OR CBC command line solver.
// The model is handed over as a CPLEX LP file and the answer is read back from
// CBC's solution file.
package cbcsolver

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/shift-roster/pkg/milp"
)

// Name is the registry name of this solver
const Name = "cbc"

// DefaultBinary is the executable looked up on PATH when none is configured
const DefaultBinary = "cbc"

// Solver is a milp.Solver that runs the cbc executable
type Solver struct {
	binary    string
	timeLimit time.Duration
	workDir   string
	logger    *zap.Logger
}

// Option configures a Solver
type Option func(*Solver)

// WithBinary sets the path of the cbc executable
func WithBinary(path string) Option {
	return func(s *Solver) {
		if path != "" {
			s.binary = path
		}
	}
}

// WithTimeLimit passes a time limit to cbc. Zero means no limit.
func WithTimeLimit(d time.Duration) Option {
	return func(s *Solver) {
		s.timeLimit = d
	}
}

// WithWorkDir keeps the model and solution files in dir instead of a temporary directory
func WithWorkDir(dir string) Option {
	return func(s *Solver) {
		s.workDir = dir
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Solver) {
		s.logger = logger
	}
}

// New creates a CBC-backed solver
func New(opts ...Option) *Solver {
	s := &Solver{
		binary: DefaultBinary,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Solver) Name() string {
	return Name
}

// Solve writes the model, runs cbc on it and parses the solution file
func (s *Solver) Solve(ctx context.Context, m *milp.Model) (*milp.Solution, error) {
	binary, err := exec.LookPath(s.binary)
	if err != nil {
		return nil, fmt.Errorf("cbc executable not found: %w", err)
	}

	dir := s.workDir
	if dir == "" {
		dir, err = os.MkdirTemp("", "roster-cbc-")
		if err != nil {
			return nil, fmt.Errorf("failed to create work directory: %w", err)
		}
		defer os.RemoveAll(dir)
	}

	modelPath := filepath.Join(dir, "model.lp")
	solutionPath := filepath.Join(dir, "solution.txt")
	if err := writeModel(modelPath, m); err != nil {
		return nil, err
	}

	args := []string{modelPath}
	if s.timeLimit > 0 {
		args = append(args, "-sec", timeLimitSeconds(s.timeLimit))
	}
	args = append(args, "-solve", "-solu", solutionPath)

	s.logger.Debug("Running cbc", zap.String("binary", binary), zap.Strings("args", args))

	var output bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Stdout = &output
	cmd.Stderr = &output
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("cbc interrupted: %w", ctx.Err())
		}
		return &milp.Solution{Status: milp.StatusError, Detail: fmt.Sprintf("cbc failed: %v: %s", err, lastLine(output.Bytes()))}, nil
	}

	f, err := os.Open(solutionPath)
	if err != nil {
		return &milp.Solution{Status: milp.StatusError, Detail: fmt.Sprintf("cbc wrote no solution: %s", lastLine(output.Bytes()))}, nil
	}
	defer f.Close()

	index, err := milp.LPVarIndex(m)
	if err != nil {
		return nil, err
	}
	parsed, err := parseSolution(f, index, m.NumVars())
	if err != nil {
		return nil, err
	}
	s.logger.Debug("cbc finished", zap.String("status_line", parsed.header), zap.Stringer("status", parsed.status))

	if !parsed.status.HasAssignment() {
		return &milp.Solution{Status: parsed.status, Detail: parsed.header}, nil
	}
	return milp.NewSolution(m, parsed.status, parsed.values)
}

func writeModel(path string, m *milp.Model) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create model file: %w", err)
	}
	if err := milp.WriteLP(f, m); err != nil {
		f.Close()
		return fmt.Errorf("failed to write model file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close model file: %w", err)
	}
	return nil
}

func lastLine(b []byte) string {
	lines := bytes.Split(bytes.TrimSpace(b), []byte("\n"))
	return string(lines[len(lines)-1])
}

// timeLimitSeconds renders a time limit for -sec, rounded up to whole seconds.
// CBC reads -sec 0 as no limit.
func timeLimitSeconds(d time.Duration) string {
	return strconv.Itoa(max(1, int(math.Ceil(d.Seconds()))))
}
