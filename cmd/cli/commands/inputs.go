package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jakechorley/shift-roster/pkg/core/normalizer"
	"github.com/jakechorley/shift-roster/pkg/core/services"
)

// inputFlags select where a command reads its input tables from
type inputFlags struct {
	dir    string
	sheets bool
	label  string
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.dir, "input", "i", "", "Directory containing demand.csv, vacation.csv and preferences.csv")
	cmd.Flags().BoolVar(&f.sheets, "sheets", false, "Read the input tabs of the configured input spreadsheet")
	cmd.Flags().StringVar(&f.label, "label", "", "Label recorded with the run (defaults to the input directory name)")
	cmd.MarkFlagsMutuallyExclusive("input", "sheets")
	cmd.MarkFlagsOneRequired("input", "sheets")
}

// request loads the input tables and combines them with the configured rules
func (f *inputFlags) request(app *AppContext) (services.GenerateRequest, error) {
	label := f.label

	var in normalizer.Input
	var err error
	if f.sheets {
		client, clientErr := app.SheetsClient()
		if clientErr != nil {
			return services.GenerateRequest{}, clientErr
		}
		in, err = services.LoadInputsFromSheets(client, app.Cfg.Sheets, app.Logger)
		if label == "" {
			label = "sheets"
		}
	} else {
		in, err = services.LoadInputsFromDir(f.dir, app.Logger)
		if label == "" {
			label = filepath.Base(filepath.Clean(f.dir))
		}
	}
	if err != nil {
		return services.GenerateRequest{}, fmt.Errorf("failed to load input: %w", err)
	}

	return services.GenerateRequest{
		Label:   label,
		Input:   in,
		Options: services.NormalizerOptions(app.Cfg),
		Rules:   app.Cfg.Rules,
	}, nil
}
