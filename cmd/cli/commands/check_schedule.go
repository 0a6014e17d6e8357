package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jakechorley/shift-roster/pkg/core/services"
	"github.com/jakechorley/shift-roster/pkg/tables"
)

// CheckScheduleCmd creates the checkSchedule command
func CheckScheduleCmd(app *AppContext) *cobra.Command {
	var (
		input        inputFlags
		schedulePath string
	)

	cmd := &cobra.Command{
		Use:   "checkSchedule",
		Short: "Check an existing schedule.csv against the input tables and rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := input.request(app)
			if err != nil {
				return err
			}

			table, err := tables.ReadCSVFile(schedulePath)
			if err != nil {
				return err
			}

			check, err := services.CheckSchedule(app.Logger, req, table)
			if err != nil {
				return err
			}

			printSchedule(os.Stdout, check.Schedule, check.Statistics, true)
			fmt.Printf("\nRequests granted: %d/%d\n", check.GrantedRequests, check.TotalRequests)

			if len(check.Violations) > 0 {
				fmt.Printf("\n✗ Schedule breaks %d constraints:\n", len(check.Violations))
				for _, v := range check.Violations {
					fmt.Printf("  %s\n", v)
				}
				fmt.Println()
				return fmt.Errorf("schedule %s violates %d constraints", schedulePath, len(check.Violations))
			}

			fmt.Printf("\n✓ Schedule satisfies every constraint\n\n")
			return nil
		},
	}

	input.register(cmd)
	cmd.Flags().StringVarP(&schedulePath, "schedule", "s", "", "Schedule CSV to check, as written by generate")
	_ = cmd.MarkFlagRequired("schedule")
	return cmd
}
