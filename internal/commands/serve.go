package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/vantorre/redline/internal/app"
	"github.com/vantorre/redline/internal/loggy"
	"github.com/vantorre/redline/internal/server"
	"github.com/vantorre/redline/internal/utils"
)

// ServeCommand returns the CLI command for running the REST API server
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the REST API server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (overrides config)",
			},
		},
		Action: serveAction,
	}
}

func serveAction(c *cli.Context) error {
	a, err := app.FromContext(c)
	if err != nil {
		return err
	}

	addr := c.String("addr")
	if addr == "" {
		addr = a.Config.Server.Addr
	}

	srv := server.New(a.Reviews, a.Scanner, a.Store, a.Runs, a.Config, loggy.GetGlobalLogger())

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(addr)
	}()

	utils.PrintInfo("API server listening on " + addr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return cli.Exit(fmt.Sprintf("server failed: %v", err), 1)
		}
		return nil
	case sig := <-quit:
		loggy.Info("shutting down API server", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return cli.Exit(fmt.Sprintf("shutdown failed: %v", err), 1)
	}
	utils.PrintSuccess("Server stopped")
	return nil
}
