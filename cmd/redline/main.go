package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/vantorre/redline/internal/app"
	"github.com/vantorre/redline/internal/commands"
)

// Version information, populated at build time via ldflags
var (
	Version    = "dev"
	BuildTime  = "unknown"
	CommitHash = "unknown"
)

func main() {
	cliApp := &cli.App{
		Name:  "redline",
		Usage: "Bedrock-powered code review from the terminal",
		Description: "redline reviews code with an AWS Bedrock model: single files,\n" +
			"directories, git changes, or GitHub pull requests. When run without a\n" +
			"subcommand it behaves like 'redline review'.",
		Version: fmt.Sprintf("%s (built %s, commit %s)", Version, BuildTime, CommitHash),
		Compiled: func() time.Time {
			t, err := time.Parse(time.RFC3339, BuildTime)
			if err != nil {
				return time.Now()
			}
			return t
		}(),
		Before: func(c *cli.Context) error {
			application, err := app.New()
			if err != nil {
				return fmt.Errorf("initializing application: %w", err)
			}

			c.App.Metadata = map[string]interface{}{
				"app": application,
			}
			return nil
		},
		After: func(c *cli.Context) error {
			if a, ok := c.App.Metadata["app"].(*app.App); ok {
				return a.Shutdown()
			}
			return nil
		},
		Commands: []*cli.Command{
			commands.ReviewCommand(),
			commands.FixCommand(),
			commands.HistoryCommand(),
			commands.ServeCommand(),
			commands.DiagnoseCommand(),
			commands.InitCommand(),
			commands.MigrateCommand(),
		},
		Action: func(c *cli.Context) error {
			// Bare invocation runs a review
			return commands.ReviewCommand().Action(c)
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
