package services

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/jakechorley/shift-roster/internal/config"
	"github.com/jakechorley/shift-roster/pkg/core/normalizer"
	"github.com/jakechorley/shift-roster/pkg/tables"
)

// Input file names inside an input directory
const (
	DemandFile      = "demand.csv"
	VacationFile    = "vacation.csv"
	PreferencesFile = "preferences.csv"
)

// TableReader reads a spreadsheet tab as a table
type TableReader interface {
	ReadTable(spreadsheetID, tab string) (*tables.Table, error)
}

// LoadInputsFromDir reads demand.csv, vacation.csv and preferences.csv from dir
func LoadInputsFromDir(dir string, logger *zap.Logger) (normalizer.Input, error) {
	logger.Debug("Reading input directory", zap.String("dir", dir))

	var in normalizer.Input
	for _, file := range []struct {
		name  string
		table **tables.Table
	}{
		{DemandFile, &in.Demand},
		{VacationFile, &in.Vacation},
		{PreferencesFile, &in.Preferences},
	} {
		t, err := tables.ReadCSVFile(filepath.Join(dir, file.name))
		if err != nil {
			return normalizer.Input{}, fmt.Errorf("failed to read %s: %w", file.name, err)
		}
		*file.table = t
	}

	return in, nil
}

// LoadInputsFromSheets reads the demand, vacation and preference tabs of the input spreadsheet
func LoadInputsFromSheets(reader TableReader, cfg config.SheetsConfig, logger *zap.Logger) (normalizer.Input, error) {
	if cfg.InputSheetID == "" {
		return normalizer.Input{}, fmt.Errorf("no input spreadsheet configured (sheets.inputSheetID)")
	}
	logger.Debug("Reading input spreadsheet", zap.String("spreadsheet_id", cfg.InputSheetID))

	var in normalizer.Input
	for _, tab := range []struct {
		name  string
		table **tables.Table
	}{
		{cfg.DemandTab, &in.Demand},
		{cfg.VacationTab, &in.Vacation},
		{cfg.PreferencesTab, &in.Preferences},
	} {
		t, err := reader.ReadTable(cfg.InputSheetID, tab.name)
		if err != nil {
			return normalizer.Input{}, fmt.Errorf("failed to read tab %s: %w", tab.name, err)
		}
		*tab.table = t
	}

	return in, nil
}

// NormalizerOptions builds the table interpretation options from the configuration
func NormalizerOptions(cfg *config.Config) normalizer.Options {
	opts := normalizer.Options{Start: cfg.Period.StartDate()}
	for _, o := range cfg.DemandOverrides {
		opts.Overrides = append(opts.Overrides, normalizer.DemandOverride{
			RRule:  o.RRule,
			Early:  o.Early,
			Middle: o.Middle,
			Late:   o.Late,
		})
	}
	return opts
}
