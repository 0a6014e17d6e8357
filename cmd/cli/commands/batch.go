package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jakechorley/shift-roster/pkg/core/services"
)

// BatchCmd creates the batch command
func BatchCmd(app *AppContext) *cobra.Command {
	var (
		solverName  string
		outDir      string
		parallelism int
		save        bool
	)

	cmd := &cobra.Command{
		Use:   "batch <input_dir>...",
		Short: "Generate one roster per input directory, running them in parallel",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reqs := make([]services.GenerateRequest, 0, len(args))
			labels := make(map[string]int, len(args))
			for _, dir := range args {
				input := inputFlags{dir: dir}
				req, err := input.request(app)
				if err != nil {
					return fmt.Errorf("%s: %w", dir, err)
				}
				// Labels name the output directories so they must be unique
				labels[req.Label]++
				if n := labels[req.Label]; n > 1 {
					req.Label = fmt.Sprintf("%s-%d", req.Label, n)
				}
				reqs = append(reqs, req)
			}

			solver, err := app.Solver(solverName)
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("parallelism") {
				parallelism = app.Cfg.Solver.Parallelism
			}
			results := services.GenerateRosters(app.Ctx, solver, app.Logger, reqs, parallelism)

			base := outDir
			if base == "" {
				base = app.Cfg.OutputDir
			}

			failed := 0
			fmt.Println()
			for _, r := range results {
				if r.Err != nil {
					failed++
					fmt.Printf("✗ %s: %v\n", r.Label, r.Err)
					continue
				}

				if _, err := services.WriteOutputs(filepath.Join(base, r.Label), r.Result.Schedule, r.Result.Statistics, app.Logger); err != nil {
					return err
				}
				if save {
					store, err := app.Database()
					if err != nil {
						return err
					}
					if _, err := services.SaveRun(app.Ctx, store, app.Logger, r.Result); err != nil {
						return err
					}
				}
				fmt.Printf("✓ %s: %s, %d of %d requests granted (run %s)\n",
					r.Label, r.Result.Status, r.Result.GrantedRequests, r.Result.TotalRequests, r.Result.RunID)
			}
			fmt.Println()

			if failed > 0 {
				return fmt.Errorf("%d of %d runs failed", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&solverName, "solver", "", "Solver back end (overrides solver.name)")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Directory receiving one output directory per run (overrides outputDir)")
	cmd.Flags().IntVarP(&parallelism, "parallelism", "p", 0, "Maximum concurrent runs (overrides solver.parallelism, 0 = unlimited)")
	cmd.Flags().BoolVar(&save, "save", false, "Record each successful run in the run history")

	return cmd
}
