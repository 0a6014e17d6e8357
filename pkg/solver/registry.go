// Package solver selects a milp.Solver back end by name
package solver

import (
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/shift-roster/pkg/milp"
	"github.com/jakechorley/shift-roster/pkg/solver/cbcsolver"
	"github.com/jakechorley/shift-roster/pkg/solver/satsolver"
)

// Settings configure whichever back end is selected
type Settings struct {
	Name      string
	TimeLimit time.Duration
	// CBCBinary is the cbc executable, looked up on PATH when empty
	CBCBinary string
}

type factory func(settings Settings, logger *zap.Logger) (milp.Solver, error)

var factories = map[string]factory{
	satsolver.Name: func(settings Settings, logger *zap.Logger) (milp.Solver, error) {
		return satsolver.New(
			satsolver.WithTimeLimit(settings.TimeLimit),
			satsolver.WithLogger(logger),
		), nil
	},
	cbcsolver.Name: func(settings Settings, logger *zap.Logger) (milp.Solver, error) {
		return cbcsolver.New(
			cbcsolver.WithBinary(settings.CBCBinary),
			cbcsolver.WithTimeLimit(settings.TimeLimit),
			cbcsolver.WithLogger(logger),
		), nil
	},
}

// DefaultName is the solver used when none is configured
const DefaultName = satsolver.Name

// New returns the solver registered under settings.Name
func New(settings Settings, logger *zap.Logger) (milp.Solver, error) {
	name := settings.Name
	if name == "" {
		name = DefaultName
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	create, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown solver %q (available: %v)", name, Names())
	}
	return create(settings, logger.With(zap.String("solver", name)))
}

// Names lists the solvers compiled into this binary
func Names() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
