package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/shift-roster/pkg/core/model"
	"github.com/jakechorley/shift-roster/pkg/core/services"
)

// GenerateCmd creates the generate command
func GenerateCmd(app *AppContext) *cobra.Command {
	var (
		input      inputFlags
		solverName string
		outDir     string
		noWrite    bool
		save       bool
		publish    bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a roster from demand, vacation and preference tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := input.request(app)
			if err != nil {
				return err
			}

			solver, err := app.Solver(solverName)
			if err != nil {
				return err
			}

			result, err := services.GenerateRoster(app.Ctx, solver, app.Logger, req)
			if err != nil {
				var infeasible *model.InfeasibleModelError
				if errors.As(err, &infeasible) {
					printHints(infeasible.Hints)
				}
				return err
			}

			printResult(os.Stdout, result)
			printSchedule(os.Stdout, result.Schedule, result.Statistics, true)

			if !noWrite {
				dir := outDir
				if dir == "" {
					dir = app.Cfg.OutputDir
				}
				paths, err := services.WriteOutputs(dir, result.Schedule, result.Statistics, app.Logger)
				if err != nil {
					return err
				}
				fmt.Println()
				for _, path := range paths {
					fmt.Printf("Wrote %s\n", path)
				}
			}

			if save {
				store, err := app.Database()
				if err != nil {
					return err
				}
				run, err := services.SaveRun(app.Ctx, store, app.Logger, result)
				if err != nil {
					return err
				}
				fmt.Printf("Saved run %s\n", run.ID)

				if publish {
					client, err := app.SheetsClient()
					if err != nil {
						return err
					}
					if _, err := services.PublishRun(app.Ctx, store, client, app.Cfg.Sheets, app.Logger, run.ID); err != nil {
						return err
					}
					fmt.Printf("Published run %s to spreadsheet %s\n", run.ID, app.Cfg.Sheets.OutputSheetID)
				}
				return nil
			}

			if publish {
				client, err := app.SheetsClient()
				if err != nil {
					return err
				}
				if err := services.PublishTables(client, app.Cfg.Sheets, result.Schedule, result.Statistics, app.Logger); err != nil {
					return err
				}
				app.Logger.Info("Roster published", zap.String("spreadsheet_id", app.Cfg.Sheets.OutputSheetID))
				fmt.Printf("Published roster to spreadsheet %s\n", app.Cfg.Sheets.OutputSheetID)
			}

			return nil
		},
	}

	input.register(cmd)
	cmd.Flags().StringVar(&solverName, "solver", "", "Solver back end (overrides solver.name)")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Directory for schedule.csv and statistics.csv (overrides outputDir)")
	cmd.Flags().BoolVar(&noWrite, "no-write", false, "Do not write the output CSV files")
	cmd.Flags().BoolVar(&save, "save", false, "Record the run in the run history")
	cmd.Flags().BoolVar(&publish, "publish", false, "Write the roster to the output spreadsheet")

	return cmd
}

func printHints(hints []string) {
	if len(hints) == 0 {
		return
	}
	fmt.Println("\n⚠️  The input cannot be rostered:")
	for _, hint := range hints {
		fmt.Printf("  ✗ %s\n", hint)
	}
	fmt.Println()
}
