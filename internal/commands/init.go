package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/vantorre/redline/internal/config"
	"github.com/vantorre/redline/internal/database"
	"github.com/vantorre/redline/internal/utils"
)

// InitCommand returns the CLI command for first-time setup
func InitCommand() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Initialize or update the redline environment",
		Description: "Creates the configuration directory with a commented .env template\n" +
			"and brings the review history database up to the current schema. Safe\n" +
			"to re-run after upgrades; an existing .env is backed up first.",
		Action: initAction,
	}
}

func initAction(c *cli.Context) error {
	utils.PrintHeading("Initializing redline")

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("resolving user home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".redline")
	utils.PrintKeyValue("Configuration directory", configDir)

	if err := config.SetupConfigDirectory(configDir, true); err != nil {
		utils.PrintWarning(fmt.Sprintf("Could not write configuration template: %v", err))
	}

	cfg, err := config.LoadFromEnv(configDir, "")
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	utils.PrintInfo("Initializing database")
	if err := database.InitDB(cfg); err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}

	applied, err := database.RunMigrations()
	if err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}
	if applied > 0 {
		utils.PrintSuccess(fmt.Sprintf("Applied %d migration(s)", applied))
	} else {
		utils.PrintInfo("Database schema is already up to date")
	}

	utils.PrintSuccess("redline initialized")
	utils.PrintKeyValue("Config file", filepath.Join(configDir, ".env"))
	utils.PrintKeyValue("Database", cfg.Database.Path)
	utils.PrintKeyValue("Results directory", cfg.Review.ResultsDir)
	fmt.Println()
	utils.PrintInfo("Set your AWS credentials in the config file, then run 'redline diagnose'")
	return nil
}
