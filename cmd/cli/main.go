package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/ward-overtime/cmd/cli/commands"
	"github.com/jakechorley/ward-overtime/internal/config"
	"github.com/jakechorley/ward-overtime/pkg/clients/sheetsclient"
	"github.com/jakechorley/ward-overtime/pkg/metrics"
	"github.com/jakechorley/ward-overtime/pkg/utils/logging"
)

var (
	env        string
	configPath string
	logsDir    string
	app        = &commands.AppContext{}
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cli",
		Short: "Ward overtime CLI - Allocate and check nurse overtime",
		Long:  `A CLI tool for allocating monthly nurse overtime fairly and checking schedules for over-long work stretches.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: test, prod, etc.)")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to the config file (default overtime_config.<env>.yaml)")
	rootCmd.PersistentFlags().StringVar(&logsDir, "logs-dir", logging.DefaultDir, "Directory for log files")
	rootCmd.MarkPersistentFlagRequired("env")

	rootCmd.AddCommand(commands.MigrateCmd(app))
	rootCmd.AddCommand(commands.CalendarCmd(app))
	rootCmd.AddCommand(commands.AllocateCmd(app))
	rootCmd.AddCommand(commands.ValidateCmd(app))
	rootCmd.AddCommand(commands.SyncRosterCmd(app))
	rootCmd.AddCommand(commands.ListRunsCmd(app))
	rootCmd.AddCommand(commands.ShowRunCmd(app))

	err := rootCmd.Execute()
	cleanup()
	if err != nil {
		os.Exit(1)
	}
}

// initApp sets up logger, config, clients and metrics
func initApp() error {
	var err error
	app.Env = env
	app.Ctx = context.Background()

	// Initialize logger
	app.Logger, err = logging.InitLogger(env, logsDir)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.Logger.Info("Starting application", zap.String("environment", env))

	// Load configuration
	app.Logger.Info("Loading configuration")
	if configPath != "" {
		app.Cfg, err = config.LoadFromPath(configPath)
	} else {
		app.Cfg, err = config.LoadWithEnv(env)
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.Logger.Debug("Configuration loaded successfully",
		zap.String("senior_picker", app.Cfg.SeniorPicker),
		zap.Int("work_stretch_limit", app.Cfg.WorkStretchLimit))

	// Initialize metrics
	app.Metrics = metrics.NewManager(metrics.WithConstLabels(map[string]string{"env": env}))

	// The database is connected lazily by the commands that use it

	// Initialize sheets client
	if app.Cfg.Sheets == nil {
		app.Logger.Info("Sheets not configured, spreadsheet commands are unavailable")
		return nil
	}

	app.Logger.Info("Initializing sheets client")
	app.SheetsClient, err = sheetsclient.NewClient(app.Ctx, app.Cfg.Sheets.CredentialsFile)
	if err != nil {
		return fmt.Errorf("failed to create sheets client: %w", err)
	}
	app.Logger.Debug("Sheets client initialized successfully",
		zap.String("spreadsheet_id", app.Cfg.Sheets.SpreadsheetID))

	return nil
}

// cleanup releases whatever initApp managed to set up
func cleanup() {
	if app.Database != nil {
		app.Database.Close()
	}
	if app.Logger != nil {
		_ = app.Logger.Sync()
	}
}
