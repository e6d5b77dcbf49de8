package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/vantorre/redline/internal/database"
	"github.com/vantorre/redline/internal/utils"
)

// MigrateCommand returns the CLI command for managing database migrations
func MigrateCommand() *cli.Command {
	return &cli.Command{
		Name:   "migrate",
		Usage:  "Manage database migrations",
		Hidden: true,
		Subcommands: []*cli.Command{
			{
				Name:  "up",
				Usage: "Apply all pending migrations",
				Action: func(c *cli.Context) error {
					applied, err := database.RunMigrations()
					if err != nil {
						return cli.Exit(fmt.Sprintf("applying migrations: %v", err), 1)
					}
					if applied > 0 {
						utils.PrintSuccess(fmt.Sprintf("Applied %d migration(s)", applied))
					} else {
						utils.PrintInfo("Database schema is already up to date")
					}
					return nil
				},
			},
			{
				Name:  "down",
				Usage: "Revert the most recent migration(s)",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "steps",
						Usage: "Number of migrations to revert",
						Value: 1,
					},
				},
				Action: func(c *cli.Context) error {
					steps := c.Int("steps")
					utils.PrintWarning(fmt.Sprintf("Reverting %d migration(s)", steps))

					if err := database.RevertMigrations(steps); err != nil {
						return cli.Exit(fmt.Sprintf("reverting migrations: %v", err), 1)
					}
					utils.PrintSuccess("Migration(s) reverted")
					return nil
				},
			},
			{
				Name:  "create",
				Usage: "Create a new migration file pair (development only)",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "name",
						Aliases:  []string{"n"},
						Usage:    "Migration name, e.g. add_tags_column",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "path",
						Usage:    "Directory the migration files are created in",
						Required: true,
					},
				},
				Action: createMigrationAction,
			},
		},
	}
}

func createMigrationAction(c *cli.Context) error {
	name := c.String("name")
	path := c.String("path")

	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("creating migrations directory: %w", err)
	}

	next, err := nextMigrationNumber(path)
	if err != nil {
		return fmt.Errorf("determining next migration number: %w", err)
	}

	upFile := filepath.Join(path, fmt.Sprintf("%06d_%s.up.sql", next, name))
	downFile := filepath.Join(path, fmt.Sprintf("%06d_%s.down.sql", next, name))

	if err := os.WriteFile(upFile, []byte("-- Write your UP migration SQL here\n"), 0644); err != nil {
		return fmt.Errorf("creating up migration: %w", err)
	}
	if err := os.WriteFile(downFile, []byte("-- Write your DOWN migration SQL here\n"), 0644); err != nil {
		return fmt.Errorf("creating down migration: %w", err)
	}

	utils.PrintSuccess("Migration created")
	utils.PrintKeyValue("Up", upFile)
	utils.PrintKeyValue("Down", downFile)
	utils.PrintWarning("Copy the files to internal/migrations/sql/ and rebuild to embed them")
	return nil
}

// nextMigrationNumber scans existing migration files and returns the next
// sequential version.
func nextMigrationNumber(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 1, nil
		}
		return 0, err
	}

	var numbers []int
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".up.sql") {
			continue
		}
		prefix, _, found := strings.Cut(entry.Name(), "_")
		if !found {
			continue
		}
		if n, err := strconv.Atoi(prefix); err == nil {
			numbers = append(numbers, n)
		}
	}

	if len(numbers) == 0 {
		return 1, nil
	}
	sort.Ints(numbers)
	return numbers[len(numbers)-1] + 1, nil
}
