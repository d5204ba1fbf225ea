package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/crate/internal/shared"
	"github.com/urfave/cli/v3"
)

const version = "0.1.0"

func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:     "crate",
		Usage:    "Sync releases from a music blog into genre playlists on Spotify",
		Version:  version,
		Commands: r.register(),
	}
}

func main() {
	logger := shared.NewLogger(nil)
	runner := NewRunner(RunnerOpts{Logger: logger, EnvFile: ".env"})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp(runner).Run(ctx, os.Args); err != nil {
		switch {
		case errors.Is(err, context.Canceled):
			logger.Warn("interrupted")
			stop()
			os.Exit(130)
		default:
			stop()
			logger.Fatalf("application error: %v", err)
		}
	}
}
