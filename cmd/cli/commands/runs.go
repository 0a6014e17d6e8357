package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jakechorley/shift-roster/pkg/core/services"
)

// ListRunsCmd creates the listRuns command
func ListRunsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "listRuns",
		Short: "List the runs recorded in the run history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.Database()
			if err != nil {
				return err
			}

			runs, err := services.ListRuns(app.Ctx, store, app.Logger)
			if err != nil {
				return err
			}

			printRuns(os.Stdout, runs)
			return nil
		},
	}
}

// ShowRunCmd creates the showRun command
func ShowRunCmd(app *AppContext) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "showRun [run_id]",
		Short: "Show a recorded run (defaults to the latest run)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var runID string
			if len(args) > 0 {
				runID = args[0]
			}

			store, err := app.Database()
			if err != nil {
				return err
			}

			detail, err := services.ShowRun(app.Ctx, store, app.Logger, runID)
			if err != nil {
				return err
			}
			printRun(os.Stdout, detail, true)

			if outDir != "" {
				paths, err := services.WriteOutputs(outDir, detail.Schedule, detail.Statistics, app.Logger)
				if err != nil {
					return err
				}
				fmt.Println()
				for _, path := range paths {
					fmt.Printf("Wrote %s\n", path)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Also write the run's schedule.csv and statistics.csv to this directory")
	return cmd
}

// PublishRunCmd creates the publishRun command
func PublishRunCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "publishRun [run_id]",
		Short: "Publish a recorded run to the output spreadsheet (defaults to the latest run)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var runID string
			if len(args) > 0 {
				runID = args[0]
			}

			store, err := app.Database()
			if err != nil {
				return err
			}
			client, err := app.SheetsClient()
			if err != nil {
				return err
			}

			detail, err := services.PublishRun(app.Ctx, store, client, app.Cfg.Sheets, app.Logger, runID)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Run %s published to spreadsheet %s\n", detail.Run.ID, app.Cfg.Sheets.OutputSheetID)
			fmt.Printf("  Tabs: %s, %s\n\n", app.Cfg.Sheets.ScheduleTab, app.Cfg.Sheets.StatisticsTab)
			return nil
		},
	}
}
