// Package app wires the application together: configuration, logging,
// database, the Bedrock client, and the review pipeline.
package app

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/vantorre/redline/internal/bedrock"
	"github.com/vantorre/redline/internal/config"
	"github.com/vantorre/redline/internal/database"
	"github.com/vantorre/redline/internal/github"
	"github.com/vantorre/redline/internal/history"
	"github.com/vantorre/redline/internal/loggy"
	"github.com/vantorre/redline/internal/results"
	"github.com/vantorre/redline/internal/review"
	"github.com/vantorre/redline/internal/workspace"
)

// App holds the initialized application services
type App struct {
	Config  *config.Config
	Bedrock *bedrock.Client
	Scanner *workspace.Scanner
	GitHub  *github.Service
	Store   *results.Store
	Runs    history.Repository
	Reviews *review.Service
}

// New initializes the application: config, logger, database, and services.
// A missing or unhealthy database is not fatal; reviews then run without
// history persistence.
func New() (*App, error) {
	cfg, err := initConfig()
	if err != nil {
		return nil, err
	}

	if err := initLogger(cfg); err != nil {
		return nil, err
	}
	logger := loggy.GetGlobalLogger()

	loggy.Debug("application initializing",
		"config_dir", cfg.ConfigDir(),
		"model", cfg.Bedrock.ModelID,
		"log_level", cfg.Logging.Level)

	runs := initHistory(cfg, logger)

	ctx := context.Background()
	client, err := bedrock.NewClient(ctx, cfg.AWS, cfg.Bedrock, logger)
	if err != nil {
		return nil, fmt.Errorf("initializing bedrock client: %w", err)
	}

	scanner := workspace.NewScanner(logger)
	store := results.NewStore(cfg.Review.ResultsDir, logger)

	githubService, err := github.NewService(cfg.GitHub, logger)
	if err != nil {
		loggy.Warn("github source unavailable", "error", err)
		githubService = nil
	}

	reviews := review.NewService(client, scanner, githubService, store, runs, cfg, logger)

	return &App{
		Config:  cfg,
		Bedrock: client,
		Scanner: scanner,
		GitHub:  githubService,
		Store:   store,
		Runs:    runs,
		Reviews: reviews,
	}, nil
}

func initConfig() (*config.Config, error) {
	cfg, err := config.LoadFromEnv("", "")
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	config.Set(cfg)
	return cfg, nil
}

func initLogger(cfg *config.Config) error {
	err := loggy.Init(loggy.Config{
		Level:     loggy.ParseLevel(cfg.Logging.Level),
		Format:    cfg.Logging.Format,
		Output:    cfg.Logging.Output,
		AddSource: cfg.Logging.AddSource,
	})
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	return nil
}

// initHistory opens the SQLite store and applies pending migrations. Any
// failure downgrades to file-sink-only persistence.
func initHistory(cfg *config.Config, logger *loggy.Logger) history.Repository {
	if err := database.InitDB(cfg); err != nil {
		loggy.Warn("database unavailable, review history disabled", "error", err)
		return nil
	}

	applied, err := database.RunMigrations()
	if err != nil {
		loggy.Warn("migrations failed, review history disabled", "error", err)
		return nil
	}
	if applied > 0 {
		loggy.Info("applied database migrations", "count", applied)
	}

	db, err := database.DB()
	if err != nil {
		loggy.Warn("database handle unavailable, review history disabled", "error", err)
		return nil
	}

	return history.NewSQLRepository(db, logger)
}

// Shutdown releases application resources
func (a *App) Shutdown() error {
	loggy.Debug("shutting down application")

	if err := database.CloseDB(); err != nil {
		loggy.Error("closing database", "error", err)
	}
	return nil
}

// FromContext retrieves the App instance stashed in the CLI metadata
func FromContext(c *cli.Context) (*App, error) {
	if c.App.Metadata == nil {
		return nil, fmt.Errorf("app metadata not found in context")
	}

	a, ok := c.App.Metadata["app"].(*App)
	if !ok {
		return nil, fmt.Errorf("app instance not found in context")
	}
	return a, nil
}
