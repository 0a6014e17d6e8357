package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/jakechorley/shift-roster/pkg/core/services"
)

// ValidateInputsCmd creates the validateInputs command
func ValidateInputsCmd(app *AppContext) *cobra.Command {
	var input inputFlags

	cmd := &cobra.Command{
		Use:   "validateInputs",
		Short: "Check the input tables and report the size of the model without solving it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := input.request(app)
			if err != nil {
				return err
			}

			summary, err := services.ValidateInputs(app.Logger, req)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Input tables are valid\n\n")
			fmt.Printf("Workers:      %d\n", summary.NumWorkers)
			fmt.Printf("Days:         %d (%s to %s)\n", summary.NumDays, summary.FirstDay, summary.LastDay)
			fmt.Printf("Demand:       %d shifts\n", summary.TotalDemand)
			fmt.Printf("Requests:     %d\n", summary.TotalRequests)
			fmt.Printf("Variables:    %d\n", summary.Variables)
			fmt.Printf("Constraints:  %d\n\n", summary.Constraints)

			families := make([]string, 0, len(summary.Families))
			for family := range summary.Families {
				families = append(families, family)
			}
			sort.Strings(families)
			for _, family := range families {
				fmt.Printf("  %-22s %d\n", family, summary.Families[family])
			}
			fmt.Println()

			printHints(summary.Hints)
			return nil
		},
	}

	input.register(cmd)
	return cmd
}
