package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/exam-timetabler/cmd/cli/commands"
	"github.com/jakechorley/exam-timetabler/internal/config"
	"github.com/jakechorley/exam-timetabler/pkg/core/timetabler"
	"github.com/jakechorley/exam-timetabler/pkg/db"
	"github.com/jakechorley/exam-timetabler/pkg/postgres"
	"github.com/jakechorley/exam-timetabler/pkg/utils/logging"
)

var (
	env     string
	verbose bool
	app     = &commands.AppContext{}
	cleanup []func()
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	app.Ctx = ctx

	rootCmd := &cobra.Command{
		Use:   "cli",
		Short: "Exam Timetabler CLI - Generate conflict-free exam timetables",
		Long:  `A CLI tool for scheduling university exams into days, time slots and rooms with a genetic algorithm or simulated annealing.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			for _, fn := range cleanup {
				fn()
			}
			if app.Logger != nil {
				app.Logger.Sync()
			}
		},
		SilenceUsage: true,
	}

	// Add persistent flags
	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: test, prod, etc.)")
	rootCmd.MarkPersistentFlagRequired("env")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show debug logs on the console")

	// Add all commands
	rootCmd.AddCommand(commands.GenerateCmd(app))
	rootCmd.AddCommand(commands.ListDataCmd(app))
	rootCmd.AddCommand(commands.ImportDataCmd(app))
	rootCmd.AddCommand(commands.ServeCmd(app))

	if err := rootCmd.Execute(); err != nil {
		stop()
		os.Exit(1)
	}
}

// initApp sets up logger, config, dataset store and engine
func initApp() error {
	var err error

	// Initialize logger
	app.Logger, err = logging.InitLogger(env, verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.Logger.Info("Starting application", zap.String("environment", env))

	// Load configuration
	app.Logger.Info("Loading configuration")
	app.Cfg, err = config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.Logger.Debug("Configuration loaded successfully",
		zap.String("dataset_source", app.Cfg.Dataset.Source),
		zap.String("algorithm", string(app.Cfg.Algorithm)))

	// Initialize dataset store
	app.Store, err = openStore(app.Cfg)
	if err != nil {
		return err
	}

	app.Engine = timetabler.NewEngine(app.Logger)

	return nil
}

func openStore(cfg *config.Config) (db.DatasetStore, error) {
	switch cfg.Dataset.Source {
	case config.SourcePostgres:
		app.Logger.Info("Connecting to database")
		pg, err := postgres.NewDB(app.Ctx, cfg.Database.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		cleanup = append(cleanup, pg.Close)

		app.Logger.Info("Running database migrations")
		applied, err := pg.RunMigrations(app.Ctx, app.Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		app.Logger.Info("Database initialized successfully", zap.Strings("applied_migrations", applied))
		return pg, nil

	default:
		if cfg.Dataset.Path == "" {
			app.Logger.Info("No dataset path configured, using the built-in dataset")
			return db.NewFileStore(db.DefaultDataset()), nil
		}

		app.Logger.Info("Loading dataset file", zap.String("path", cfg.Dataset.Path))
		store, err := db.OpenFileStore(cfg.Dataset.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open dataset: %w", err)
		}
		return store, nil
	}
}
