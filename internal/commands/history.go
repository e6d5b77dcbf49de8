package commands

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/vantorre/redline/internal/app"
	"github.com/vantorre/redline/internal/utils"
)

// HistoryCommand returns the CLI command for listing past review runs
func HistoryCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List recent review runs",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Number of runs to show",
				Value:   10,
			},
		},
		Action: historyAction,
	}
}

func historyAction(c *cli.Context) error {
	a, err := app.FromContext(c)
	if err != nil {
		return err
	}
	if a.Runs == nil {
		return cli.Exit("review history is unavailable: database could not be opened", 1)
	}

	runs, err := a.Runs.ListRuns(c.Context, c.Int("limit"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("listing runs: %v", err), 1)
	}
	if len(runs) == 0 {
		utils.PrintInfo("No review runs recorded yet")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			run.ID,
			run.FilePath,
			run.Source,
			fmt.Sprintf("%.1f", run.OverallScore),
			fmt.Sprintf("%d (%d/%d/%d)", run.IssueCount, run.HighCount, run.MediumCount, run.LowCount),
			run.CreatedAt.Local().Format(time.DateTime),
		})
	}

	utils.PrintTable("Review History",
		[]string{"Run", "Target", "Source", "Score", "Issues (H/M/L)", "When"},
		rows)

	counts, err := a.Runs.CountBySeverity(c.Context)
	if err != nil {
		utils.PrintWarning(fmt.Sprintf("severity totals unavailable: %v", err))
		return nil
	}
	utils.PrintKeyValue("All-time issues",
		fmt.Sprintf("%d total, %d high, %d medium, %d low",
			counts.Total(), counts.High, counts.Medium, counts.Low))
	return nil
}
