package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakechorley/shift-roster/pkg/solver"
	"github.com/jakechorley/shift-roster/pkg/utils"
)

// LogoutCmd creates the logout command
func LogoutCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored Google OAuth token for this environment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			utils.ClearToken()

			store, err := utils.DefaultTokenStore(app.Env)
			if err != nil {
				return err
			}
			if err := store.Delete(); err != nil {
				return err
			}

			fmt.Printf("✓ Removed token %s\n", store.Path())
			return nil
		},
	}
}

// ListSolversCmd creates the listSolvers command
func ListSolversCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "listSolvers",
		Short: "List the solver back ends compiled into this binary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range solver.Names() {
				marker := " "
				if name == app.Cfg.Solver.Name {
					marker = "*"
				}
				fmt.Printf("%s %s\n", marker, name)
			}
			return nil
		},
	}
}
