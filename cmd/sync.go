package main

import (
	"context"
	"time"

	"github.com/desertthunder/crate/internal/auth"
	"github.com/desertthunder/crate/internal/formatter"
	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/scraper"
	"github.com/desertthunder/crate/internal/services"
	"github.com/desertthunder/crate/internal/shared"
	"github.com/desertthunder/crate/internal/tasks"
	"github.com/urfave/cli/v3"
)

// applySyncFlags overrides config values with flags given on the command line.
func applySyncFlags(config *shared.Config, cmd *cli.Command) {
	if cmd.IsSet("start") {
		config.Scraper.StartPage = cmd.Int("start")
	}
	if cmd.IsSet("end") {
		config.Scraper.EndPage = cmd.Int("end")
	}
	if cmd.IsSet("dry-run") {
		config.Sync.DryRun = cmd.Bool("dry-run")
	}
	if cmd.IsSet("report-dir") {
		config.Sync.ReportDir = cmd.String("report-dir")
	}
}

// newEngine wires the auth manager, the Spotify client and the scraper into a [tasks.PlaylistEngine].
func (r *Runner) newEngine(config *shared.Config) tasks.SyncEngine {
	manager := auth.NewManager(auth.ManagerOpts{
		Spotify:    config.Spotify,
		Server:     config.Server,
		Logger:     r.logger,
		Output:     r.output,
		HTTPClient: r.httpClient,
	})
	spotify := services.NewSpotifyServiceFromConfig(config.Spotify, manager, r.httpClient)

	return tasks.NewPlaylistEngine(tasks.EngineOpts{
		Auth:      manager,
		Pages:     scraper.New(config.Scraper, r.logger),
		Catalog:   spotify,
		Playlists: spotify,
		Targets:   config.Playlists,
		StartPage: config.Scraper.StartPage,
		EndPage:   config.Scraper.EndPage,
		DryRun:    config.Sync.DryRun,
		Position:  config.Sync.InsertPosition,
		Pacer:     tasks.NewPacer(config.Pacing),
		Logger:    r.logger,
	})
}

// Sync runs the full pipeline, then writes the not-found report and prints the summary.
//
// The report and summary are produced for aborted runs too; the run's error is returned afterwards.
func (r *Runner) Sync(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}
	applySyncFlags(config, cmd)
	if err := config.Validate(); err != nil {
		return err
	}

	engine := r.engine
	if engine == nil {
		engine = r.newEngine(config)
	}

	r.writePlainHeader("crate sync")
	r.writePlain("Pages: %d to %d\n", config.Scraper.StartPage, config.Scraper.EndPage)
	if config.Sync.DryRun {
		r.writePlain("%s\n", r.styles.Warn("Dry run: playlists will not be modified"))
	}

	progress := make(chan tasks.ProgressUpdate, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.logger.Debug(update.Message, "phase", update.Phase, "step", update.Step, "total", update.Total)
		}
	}()

	result, runErr := engine.Run(ctx, progress)
	close(progress)
	<-done

	if result == nil {
		return runErr
	}

	r.writeReport(config.Sync.ReportDir, result.NotFound)
	r.writeSummary(result, runErr)
	return runErr
}

func (r *Runner) writeReport(dir string, entries []models.NotFoundEntry) {
	path, err := formatter.WriteNotFoundReport(dir, entries, time.Now())
	if err != nil {
		r.logger.Error("failed to save not-found report", "error", err)
		r.writePlain("%s\n", r.styles.Error("Could not save the not-found report"))
		return
	}
	if path != "" {
		r.writePlain("%s\n", r.styles.OK("Not found albums saved to "+path))
	}
}

func (r *Runner) writeSummary(result *tasks.RunResult, runErr error) {
	r.writePlainln("Summary")
	if err := formatter.WriteSummary(r.output, result.Stats); err != nil {
		r.logger.Error("failed to print summary", "error", err)
	}

	elapsed := result.FinishedAt.Sub(result.StartedAt).Round(time.Second)
	r.logger.Info("sync finished", "run", result.RunID, "pages", result.Pages, "elapsed", elapsed)
	status := tasks.ErrorSummary(runErr)
	if runErr != nil {
		r.writePlain("%s\n", r.styles.Error(status))
		return
	}
	r.writePlain("%s\n", r.styles.OK(status+" in "+elapsed.String()))
}
