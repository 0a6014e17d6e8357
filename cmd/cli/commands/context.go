package commands

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/shift-roster/internal/config"
	"github.com/jakechorley/shift-roster/pkg/clients/sheetsclient"
	"github.com/jakechorley/shift-roster/pkg/db"
	"github.com/jakechorley/shift-roster/pkg/milp"
	"github.com/jakechorley/shift-roster/pkg/postgres"
	"github.com/jakechorley/shift-roster/pkg/solver"
)

// AppContext holds the application dependencies shared across all commands.
// The sheets client and database are created on first use so that commands working
// on local files need neither OAuth credentials nor a database.
type AppContext struct {
	Env    string
	Cfg    *config.Config
	Logger *zap.Logger
	Ctx    context.Context

	sheetsClient *sheetsclient.Client
	database     db.Database
}

// SheetsClient returns the Google Sheets client, authenticating on first use
func (app *AppContext) SheetsClient() (*sheetsclient.Client, error) {
	if app.sheetsClient != nil {
		return app.sheetsClient, nil
	}

	app.Logger.Info("Loading OAuth client configuration")
	oauthCfg, err := config.LoadOAuthClientWithEnv(app.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to load OAuth client config: %w", err)
	}

	app.Logger.Info("Initializing sheets client")
	client, err := sheetsclient.NewClient(app.Ctx, oauthCfg, app.Env, app.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}
	app.Logger.Debug("Sheets client initialized successfully")

	app.sheetsClient = client
	return client, nil
}

// Database returns the run history store selected by database.backend, connecting on first use
func (app *AppContext) Database() (db.Database, error) {
	if app.database != nil {
		return app.database, nil
	}

	cfg := app.Cfg.Database
	switch cfg.Backend {
	case "postgres":
		app.Logger.Info("Connecting to database")
		pg, err := postgres.NewDB(app.Ctx, cfg.DSN, app.Logger)
		if err != nil {
			return nil, err
		}
		if err := pg.RunMigrations(app.Ctx); err != nil {
			pg.Close()
			return nil, err
		}
		app.database = pg

	case "sheets":
		client, err := app.SheetsClient()
		if err != nil {
			return nil, err
		}
		app.Logger.Info("Connecting to database", zap.String("spreadsheet_id", cfg.SheetID))
		sheetsDB, err := db.Open(client, cfg.SheetID)
		if err != nil {
			return nil, err
		}
		app.database = sheetsDB

	default:
		return nil, fmt.Errorf("run history is disabled (set database.backend to postgres or sheets)")
	}

	app.Logger.Info("Database initialized successfully", zap.String("backend", cfg.Backend))
	return app.database, nil
}

// Solver returns the configured solver, or the named one if name is not empty
func (app *AppContext) Solver(name string) (milp.Solver, error) {
	settings := solver.Settings{
		Name:      app.Cfg.Solver.Name,
		TimeLimit: app.Cfg.Solver.TimeLimit,
		CBCBinary: app.Cfg.Solver.CBCBinary,
	}
	if name != "" {
		settings.Name = name
	}
	return solver.New(settings, app.Logger)
}

// Close releases the database connection if one was opened
func (app *AppContext) Close() {
	if app.database != nil {
		app.database.Close()
	}
}
