package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/vantorre/redline/internal/app"
	"github.com/vantorre/redline/internal/loggy"
	"github.com/vantorre/redline/internal/review"
)

// ReviewCommand returns the CLI command for running code reviews
func ReviewCommand() *cli.Command {
	return &cli.Command{
		Name:      "review",
		Usage:     "Review code with the configured Bedrock model",
		ArgsUsage: "[path...]",
		Description: "Reviews the given files, a directory, git changes, or a GitHub pull\n" +
			"request. With no arguments and piped stdin, reviews the piped code.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"d"},
				Usage:   "Review all source files under a directory",
			},
			&cli.StringFlag{
				Name:  "diff",
				Usage: "Review changes between two revisions, as 'base..head'",
			},
			&cli.BoolFlag{
				Name:    "staged",
				Aliases: []string{"s"},
				Usage:   "Review the files currently staged in git",
			},
			&cli.StringFlag{
				Name:  "repo",
				Usage: "Repository path for --diff and --staged",
				Value: ".",
			},
			&cli.StringFlag{
				Name:  "pr",
				Usage: "Review a GitHub pull request, as 'owner/repo#N'",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the raw review record as JSON",
			},
			&cli.BoolFlag{
				Name:  "no-save",
				Usage: "Skip archiving the record to the results directory and history",
			},
			&cli.IntFlag{
				Name:  "max-files",
				Usage: "Cap on files per batch review (overrides config)",
			},
		},
		Action: reviewAction,
	}
}

func reviewAction(c *cli.Context) error {
	a, err := app.FromContext(c)
	if err != nil {
		return err
	}

	if max := c.Int("max-files"); max > 0 {
		a.Config.Review.MaxFiles = max
	}
	if c.Bool("no-save") {
		a.Reviews.DisablePersistence()
	}

	rec, err := runRequestedReview(c, a)
	if err != nil {
		return cli.Exit(fmt.Sprintf("review failed: %v", err), 1)
	}

	if c.Bool("json") {
		data, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling record: %w", err)
		}
		fmt.Println(string(data))
	} else {
		renderRecord(rec)
	}

	if rec.Failed() {
		return cli.Exit("", 1)
	}
	return nil
}

// runRequestedReview dispatches to the review driver the flags select
func runRequestedReview(c *cli.Context, a *app.App) (*review.Record, error) {
	ctx := c.Context

	switch {
	case c.String("pr") != "":
		return a.Reviews.ReviewPullRequest(ctx, c.String("pr"))

	case c.String("diff") != "":
		base, head, err := parseDiffRange(c.String("diff"))
		if err != nil {
			return nil, err
		}
		return a.Reviews.ReviewRepo(ctx, c.String("repo"), base, head)

	case c.Bool("staged"):
		return a.Reviews.ReviewStaged(ctx, c.String("repo"))

	case c.String("dir") != "":
		return a.Reviews.ReviewDirectory(ctx, c.String("dir"), c.Int("max-files"))

	case c.NArg() == 1:
		return a.Reviews.ReviewFile(ctx, c.Args().First()), nil

	case c.NArg() > 1:
		return a.Reviews.ReviewFiles(ctx, c.Args().Slice()), nil
	}

	// No target given; fall back to piped stdin
	if stdinIsPiped() {
		code, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		if len(code) == 0 {
			return nil, fmt.Errorf("stdin was empty")
		}
		loggy.Debug("reviewing piped stdin", "bytes", len(code))
		return a.Reviews.ReviewCode(ctx, string(code), "", ""), nil
	}

	return nil, fmt.Errorf("nothing to review: pass file paths, --dir, --diff, --staged, or --pr")
}

// parseDiffRange splits a 'base..head' revision range. A bare revision is
// compared against HEAD.
func parseDiffRange(s string) (base, head string, err error) {
	base, head, found := strings.Cut(s, "..")
	if !found {
		return s, "HEAD", nil
	}
	if base == "" || head == "" {
		return "", "", fmt.Errorf("invalid revision range %q, expected 'base..head'", s)
	}
	return base, head, nil
}

func stdinIsPiped() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice == 0
}
