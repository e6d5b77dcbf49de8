package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/vantorre/redline/internal/app"
	fixtui "github.com/vantorre/redline/internal/commands/fix"
	"github.com/vantorre/redline/internal/review"
	"github.com/vantorre/redline/internal/utils"
)

// FixCommand returns the CLI command for applying review suggestions
func FixCommand() *cli.Command {
	return &cli.Command{
		Name:  "fix",
		Usage: "Apply a suggestion from a saved review record",
		Description: "Loads an archived review record, extracts the fenced code fragment\n" +
			"from one issue's suggestion, and splices it into the target file. The\n" +
			"original file is kept next to it with a .backup suffix.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "record",
				Aliases: []string{"r"},
				Usage:   "Path to a saved review record (default: most recent archive)",
			},
			&cli.IntFlag{
				Name:    "issue",
				Aliases: []string{"i"},
				Usage:   "Index of the issue to apply, starting at 0",
			},
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "Target file, overriding the path recorded on the issue",
			},
			&cli.IntFlag{
				Name:    "context",
				Aliases: []string{"c"},
				Usage:   "Lines replaced on each side of the issue line (overrides config)",
			},
			&cli.BoolFlag{
				Name:  "interactive",
				Usage: "Browse issues and apply fixes in a TUI",
			},
		},
		Action: fixAction,
	}
}

func fixAction(c *cli.Context) error {
	a, err := app.FromContext(c)
	if err != nil {
		return err
	}

	rec, recordPath, err := loadRecord(c, a)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	if target := c.String("file"); target != "" {
		for _, issue := range rec.Issues {
			issue.FilePath = ""
		}
		rec.FilePath = target
	}

	if c.Bool("interactive") {
		return fixtui.Run(c.Context, a.Reviews, rec, recordPath, c.Int("context"))
	}

	result, err := a.Reviews.ApplyFix(c.Context, rec, c.Int("issue"), c.Int("context"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("applying fix: %v", err), 1)
	}

	utils.PrintSuccess(result.Message)
	utils.PrintKeyValue("File", result.Path)
	utils.PrintKeyValue("Backup", result.BackupPath)
	return nil
}

// loadRecord reads the record named by --record, or the most recently
// archived one when the flag is omitted.
func loadRecord(c *cli.Context, a *app.App) (*review.Record, string, error) {
	path := c.String("record")
	if path == "" {
		saved, err := a.Store.List(1)
		if err != nil {
			return nil, "", fmt.Errorf("listing archived records: %w", err)
		}
		if len(saved) == 0 {
			return nil, "", fmt.Errorf("no archived review records; run a review first or pass --record")
		}
		path = saved[0].Path
		utils.PrintInfo("Using most recent record: " + path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("reading record: %w", err)
	}

	var rec review.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, "", fmt.Errorf("parsing record %s: %w", path, err)
	}
	return &rec, path, nil
}
