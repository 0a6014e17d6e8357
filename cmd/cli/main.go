package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/shift-roster/cmd/cli/commands"
	"github.com/jakechorley/shift-roster/internal/config"
	"github.com/jakechorley/shift-roster/pkg/utils/logging"
)

var (
	env     string
	logDir  string
	verbose bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app := &commands.AppContext{Ctx: ctx}

	rootCmd := &cobra.Command{
		Use:   "roster",
		Short: "Shift roster generator",
		Long: `A CLI tool that builds shift rosters from staffing demand, vacations and preferences
by solving a mixed-integer model, and keeps a history of generated runs.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp(app)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			app.Close()
			if app.Logger != nil {
				_ = app.Logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment selecting roster_config.<env>.yaml (default roster_config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", logging.DefaultDir, "Directory for log files")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show debug logs on the console")

	rootCmd.AddCommand(commands.GenerateCmd(app))
	rootCmd.AddCommand(commands.ValidateInputsCmd(app))
	rootCmd.AddCommand(commands.ExportModelCmd(app))
	rootCmd.AddCommand(commands.CheckScheduleCmd(app))
	rootCmd.AddCommand(commands.BatchCmd(app))
	rootCmd.AddCommand(commands.ListRunsCmd(app))
	rootCmd.AddCommand(commands.ShowRunCmd(app))
	rootCmd.AddCommand(commands.PublishRunCmd(app))
	rootCmd.AddCommand(commands.ListSolversCmd(app))
	rootCmd.AddCommand(commands.LogoutCmd(app))
	rootCmd.AddCommand(commands.InteractiveCmd(app))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up the logger and configuration. Clients and the database are opened on first use.
func initApp(app *commands.AppContext) error {
	var err error
	app.Env = env

	app.Logger, err = logging.InitLogger(env, logging.Options{Dir: logDir, Verbose: verbose})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.Logger.Debug("Starting application", zap.String("environment", env))

	app.Logger.Debug("Loading configuration")
	app.Cfg, err = config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.Logger.Debug("Configuration loaded successfully",
		zap.String("solver", app.Cfg.Solver.Name),
		zap.String("database_backend", app.Cfg.Database.Backend))

	return nil
}
