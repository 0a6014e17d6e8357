package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"

	"github.com/jakechorley/shift-roster/pkg/core/model"
)

// EnvPrefix prefixes every environment variable that overrides the config file
const EnvPrefix = "ROSTER_"

// configDirName is searched in the home directory after the working directory
const configDirName = ".shift-roster"

// DemandOverride replaces the demand of the days matching an rrule.
// Shifts left nil keep the demand from the input table.
type DemandOverride struct {
	RRule  string `yaml:"rrule" validate:"required"`
	Early  *int   `yaml:"early,omitempty" validate:"omitempty,min=0"`
	Middle *int   `yaml:"middle,omitempty" validate:"omitempty,min=0"`
	Late   *int   `yaml:"late,omitempty" validate:"omitempty,min=0"`
}

// PeriodConfig dates a period whose input tables use numbered days
type PeriodConfig struct {
	Start string `yaml:"start,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// StartDate returns the configured start date, or nil if the period is undated
func (p PeriodConfig) StartDate() *time.Time {
	if p.Start == "" {
		return nil
	}
	start, err := time.Parse(model.DateFormat, p.Start)
	if err != nil {
		return nil
	}
	return &start
}

// SolverConfig selects and tunes the solver back end
type SolverConfig struct {
	Name        string        `yaml:"name" env:"NAME" validate:"omitempty,oneof=sat cbc"`
	TimeLimit   time.Duration `yaml:"timeLimit" env:"TIME_LIMIT" validate:"min=0"`
	CBCBinary   string        `yaml:"cbcBinary,omitempty" env:"CBC_BINARY"`
	Parallelism int           `yaml:"parallelism" env:"PARALLELISM" validate:"min=0"`
}

// SheetsConfig names the spreadsheets and tabs used for input and output
type SheetsConfig struct {
	InputSheetID   string `yaml:"inputSheetID,omitempty"`
	DemandTab      string `yaml:"demandTab,omitempty"`
	VacationTab    string `yaml:"vacationTab,omitempty"`
	PreferencesTab string `yaml:"preferencesTab,omitempty"`
	OutputSheetID  string `yaml:"outputSheetID,omitempty"`
	ScheduleTab    string `yaml:"scheduleTab,omitempty"`
	StatisticsTab  string `yaml:"statisticsTab,omitempty"`
}

// DatabaseConfig selects where run history is stored.
// Backend "postgres" uses DSN, backend "sheets" uses SheetID. Empty disables run history.
type DatabaseConfig struct {
	Backend string `yaml:"backend,omitempty" env:"BACKEND" validate:"omitempty,oneof=postgres sheets"`
	DSN     string `yaml:"dsn,omitempty" env:"DSN" validate:"required_if=Backend postgres"`
	SheetID string `yaml:"sheetID,omitempty" env:"SHEET_ID" validate:"required_if=Backend sheets"`
}

// Config represents the application configuration
type Config struct {
	Rules           model.Rules      `yaml:"rules"`
	Period          PeriodConfig     `yaml:"period,omitempty"`
	DemandOverrides []DemandOverride `yaml:"demandOverrides,omitempty" validate:"dive"`
	Solver          SolverConfig     `yaml:"solver" envPrefix:"SOLVER_"`
	Sheets          SheetsConfig     `yaml:"sheets,omitempty"`
	Database        DatabaseConfig   `yaml:"database,omitempty" envPrefix:"DATABASE_"`
	OutputDir       string           `yaml:"outputDir,omitempty" env:"OUTPUT_DIR"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Default returns the configuration used for keys the config file leaves out
func Default() *Config {
	return &Config{
		Rules: model.DefaultRules(),
		Solver: SolverConfig{
			Name:        "sat",
			TimeLimit:   time.Minute,
			Parallelism: 2,
		},
		Sheets: SheetsConfig{
			DemandTab:      "demand",
			VacationTab:    "vacation",
			PreferencesTab: "preferences",
			ScheduleTab:    "schedule",
			StatisticsTab:  "statistics",
		},
		OutputDir: "out",
	}
}

// LoadWithEnv loads roster_config.<env>.yaml (roster_config.yaml if env is empty),
// applies .env and ROSTER_* environment overrides and validates the result
func LoadWithEnv(envName string) (*Config, error) {
	configPath, err := findFile(configFileName(envName))
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyEnv loads a .env file from the working directory, if present, and overrides
// config values with ROSTER_* environment variables
func ApplyEnv(cfg *Config) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env file: %w", err)
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	return nil
}

// Validate validates the configuration struct and checks rrule syntax
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	for i, override := range cfg.DemandOverrides {
		if _, err := rrule.StrToRRule(override.RRule); err != nil {
			return fmt.Errorf("invalid rrule in demandOverrides[%d]: %w", i, err)
		}
	}

	return nil
}

func configFileName(envName string) string {
	if envName == "" {
		return "roster_config.yaml"
	}
	return "roster_config." + envName + ".yaml"
}

// findFile searches the current directory, then ~/.shift-roster, then the home directory
func findFile(name string) (string, error) {
	if _, err := os.Stat(name); err == nil {
		return name, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	for _, dir := range []string{filepath.Join(homeDir, configDirName), homeDir} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("%s not found in current directory or home directory", name)
}
