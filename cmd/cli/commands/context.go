package commands

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/ward-overtime/internal/config"
	"github.com/jakechorley/ward-overtime/pkg/clients/sheetsclient"
	"github.com/jakechorley/ward-overtime/pkg/core/services"
	"github.com/jakechorley/ward-overtime/pkg/metrics"
	"github.com/jakechorley/ward-overtime/pkg/postgres"
)

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Env          string
	Cfg          *config.Config
	SheetsClient *sheetsclient.Client // nil when sheets are not configured
	Database     *postgres.DB // connected on first use, see database
	Metrics      *metrics.Manager
	Logger       *zap.Logger
	Ctx          context.Context
}

// database connects to Postgres the first time a command needs it
func (app *AppContext) database() (*postgres.DB, error) {
	if app.Database != nil {
		return app.Database, nil
	}

	app.Logger.Info("Connecting to database")
	database, err := postgres.NewDB(app.Ctx, app.Cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.Logger.Debug("Database connected successfully")

	app.Database = database
	return database, nil
}

// rosterSource resolves the --source flag
func (app *AppContext) rosterSource(name string) (services.RosterSource, error) {
	switch name {
	case services.SourceDatabase:
		return app.database()
	case services.SourceSheets:
		if app.SheetsClient == nil {
			return nil, fmt.Errorf("sheets are not configured for environment %s", app.Env)
		}
		return services.NewSheetsSource(app.SheetsClient, app.Cfg.Sheets)
	default:
		return nil, fmt.Errorf("unknown source %q (want %s or %s)", name, services.SourceDatabase, services.SourceSheets)
	}
}

// instrument counts the command's outcome and writes the metrics textfile when one is configured
func instrument(app *AppContext, name string, run func(cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := run(cmd, args)

		app.Metrics.RecordCommand(name, err)
		if app.Cfg.MetricsFile != "" {
			if writeErr := app.Metrics.WriteTextfile(app.Cfg.MetricsFile); writeErr != nil {
				app.Logger.Warn("Failed to write metrics", zap.Error(writeErr))
			}
		}

		return err
	}
}

// parseYearMonth parses the <year> <month> arguments
func parseYearMonth(args []string) (int, time.Month, error) {
	year, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, 0, fmt.Errorf("year must be a number: %w", err)
	}

	month, err := strconv.Atoi(args[1])
	if err != nil {
		return 0, 0, fmt.Errorf("month must be a number: %w", err)
	}
	if month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("month must be between 1 and 12, got %d", month)
	}

	return year, time.Month(month), nil
}
