package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/shift-roster/pkg/core/services"
)

// ExportModelCmd creates the exportModel command
func ExportModelCmd(app *AppContext) *cobra.Command {
	var (
		input inputFlags
		out   string
	)

	cmd := &cobra.Command{
		Use:   "exportModel",
		Short: "Write the model built from the input tables in CPLEX LP format",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := input.request(app)
			if err != nil {
				return err
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", out, err)
			}
			defer f.Close()

			problem, err := services.ExportModel(f, app.Logger, req)
			if err != nil {
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("failed to close %s: %w", out, err)
			}

			app.Logger.Info("Model exported", zap.String("path", out))
			fmt.Printf("\n✓ Wrote model for %d workers over %d days to %s\n\n", problem.NumWorkers, problem.NumDays(), out)
			return nil
		},
	}

	input.register(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "model.lp", "LP file to write")
	return cmd
}
