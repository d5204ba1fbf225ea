// package tasks implements the sync run: authorize, preload playlists, then walk the listing pages.
//
// The core abstraction is SyncEngine. Runs emit progress updates via channels for non-blocking status
// reporting to the CLI layer.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/crate/internal/genre"
	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/services"
	"github.com/desertthunder/crate/internal/shared"
)

// RunResult contains everything a run produced, including partial results of an aborted run.
type RunResult struct {
	RunID      string
	Stats      *models.RunStats
	NotFound   []models.NotFoundEntry
	Pages      int // Listing pages fetched
	DryRun     bool
	StartedAt  time.Time
	FinishedAt time.Time
}

// SyncEngine runs one sync.
type SyncEngine interface {
	Run(ctx context.Context, progress chan<- ProgressUpdate) (*RunResult, error)
}

// Authenticator ensures a usable credential before any API call, authorizing interactively if needed.
type Authenticator interface {
	Token(ctx context.Context) (string, error)
}

// PageFetcher returns the releases listed on one page. Failures yield no releases.
type PageFetcher interface {
	FetchPage(ctx context.Context, index int) []models.Release
}

// EngineOpts configures a [PlaylistEngine].
type EngineOpts struct {
	Auth      Authenticator // nil skips authorization
	Pages     PageFetcher
	Catalog   services.Catalog
	Playlists services.PlaylistStore
	Targets   shared.PlaylistsConfig
	StartPage int
	EndPage   int
	DryRun    bool
	Position  int
	Pacer     *Pacer
	Logger    *log.Logger
	Now       func() time.Time
}

// PlaylistEngine implements [SyncEngine] as a strictly sequential pipeline.
type PlaylistEngine struct {
	auth      Authenticator
	pages     PageFetcher
	catalog   services.Catalog
	sync      *PlaylistSync
	targets   shared.PlaylistsConfig
	startPage int
	endPage   int
	dryRun    bool
	pacer     *Pacer
	logger    *log.Logger
	now       func() time.Time
}

// NewPlaylistEngine creates a new PlaylistEngine from opts.
func NewPlaylistEngine(opts EngineOpts) *PlaylistEngine {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Pacer == nil {
		opts.Pacer = NoPacing()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	logger := shared.WithLogger(opts.Logger, "component", "sync")
	return &PlaylistEngine{
		auth:      opts.Auth,
		pages:     opts.Pages,
		catalog:   opts.Catalog,
		sync:      NewPlaylistSync(opts.Playlists, opts.Pacer, logger, opts.Position),
		targets:   opts.Targets,
		startPage: opts.StartPage,
		endPage:   opts.EndPage,
		dryRun:    opts.DryRun,
		pacer:     opts.Pacer,
		logger:    logger,
		now:       opts.Now,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *PlaylistEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Run authorizes, preloads every configured playlist, then processes pages start..end in order.
//
// An authentication error or a cancelled context stops the run; the partial result is returned with it.
func (e *PlaylistEngine) Run(ctx context.Context, progress chan<- ProgressUpdate) (*RunResult, error) {
	result := &RunResult{
		RunID:     shared.GenerateID(),
		Stats:     models.NewRunStats(),
		NotFound:  []models.NotFoundEntry{},
		DryRun:    e.dryRun,
		StartedAt: e.now(),
	}
	defer func() { result.FinishedAt = e.now() }()
	e.logger.Info("sync started", "run", result.RunID, "start", e.startPage, "end", e.endPage, "dry_run", e.dryRun)

	if e.auth != nil {
		e.sendProgress(progress, authorizeUpdate())
		if _, err := e.auth.Token(ctx); err != nil {
			return result, err
		}
	}

	if err := e.preload(ctx, progress); err != nil {
		return result, err
	}

	total := e.endPage - e.startPage + 1
	for page := e.startPage; page <= e.endPage; page++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		step := page - e.startPage + 1
		e.sendProgress(progress, fetchPageUpdate(step, total, page))

		releases := e.pages.FetchPage(ctx, page)
		result.Pages++
		e.logger.Info("page fetched", "page", page, "releases", len(releases))

		for i, release := range releases {
			if err := e.process(ctx, progress, result, release, i+1, len(releases)); err != nil {
				return result, err
			}
		}

		if err := e.pacer.Wait(ctx, PausePage); err != nil {
			return result, err
		}
	}

	e.sendProgress(progress, completeUpdate(result))
	return result, nil
}

func (e *PlaylistEngine) preload(ctx context.Context, progress chan<- ProgressUpdate) error {
	var configured []models.Destination
	for _, dest := range models.Destinations() {
		if e.targets.ByName(dest.String()) != "" {
			configured = append(configured, dest)
		}
	}

	for i, dest := range configured {
		id := e.targets.ByName(dest.String())
		e.sendProgress(progress, preloadUpdate(i+1, len(configured), dest, id))

		n, err := e.sync.Load(ctx, dest, id)
		if err != nil {
			return err
		}
		e.logger.Info("playlist loaded", "destination", dest, "playlist", id, "tracks", n)
	}
	return nil
}

// target resolves the destination whose playlist receives dest's tracks, falling back to REST.
func (e *PlaylistEngine) target(dest models.Destination) (models.Destination, bool) {
	if _, ok := e.sync.State(dest); ok {
		return dest, true
	}
	if _, ok := e.sync.State(models.Rest); ok {
		return models.Rest, true
	}
	return dest, false
}

// process handles one release. Only fatal errors are returned.
func (e *PlaylistEngine) process(ctx context.Context, progress chan<- ProgressUpdate, result *RunResult, release models.Release, step, total int) error {
	classified := genre.ClassifyRelease(release)
	dest := classified.Destination
	result.Stats.RecordProcessed(dest)
	e.sendProgress(progress, matchReleaseUpdate(step, total, classified))

	logger := e.logger.With("artist", release.Artist, "album", release.Album, "destination", dest)

	albumID, err := e.catalog.SearchAlbum(ctx, release.Artist, release.Album)
	if stop(ctx, err) {
		return err
	}
	if err := e.pacer.Wait(ctx, PauseSearch); err != nil {
		return err
	}
	if err != nil {
		logger.Warn("search failed", "error", err)
	}

	if albumID == "" {
		result.Stats.RecordNotFound(dest)
		result.NotFound = append(result.NotFound, models.NewNotFoundEntry(classified))
		logger.Info("album not found")
		return nil
	}

	uris, err := e.catalog.AlbumTracks(ctx, albumID)
	if stop(ctx, err) {
		return err
	}
	if err := e.pacer.Wait(ctx, PauseTracks); err != nil {
		return err
	}
	if err != nil {
		logger.Warn("track listing failed", "album_id", albumID, "error", err)
	}
	if len(uris) == 0 {
		logger.Info("album has no tracks", "album_id", albumID)
		return nil
	}

	target, ok := e.target(dest)
	if !ok {
		logger.Warn("no playlist configured, skipping")
		return nil
	}

	_, fresh := e.sync.FilterNew(target, uris)
	if len(fresh) == 0 {
		result.Stats.RecordSkipped(dest)
		logger.Debug("all tracks already present")
		return nil
	}

	if e.dryRun {
		logger.Info("dry run, skipping write", "tracks", len(fresh), "playlist_destination", target)
		return nil
	}

	added, err := e.sync.Append(ctx, target, fresh)
	result.Stats.RecordAdded(dest, added)
	if stop(ctx, err) {
		return err
	}
	if err != nil {
		logger.Error("write failed", "added", added, "wanted", len(fresh), "error", err)
	}
	if added > 0 {
		logger.Info("tracks added", "tracks", added, "playlist_destination", target)
		e.sendProgress(progress, writeTracksUpdate(classified, added))
	}
	return nil
}

// stop reports whether err must end the run.
func stop(ctx context.Context, err error) bool {
	if err == nil {
		return false
	}
	return shared.IsFatal(err) || errors.Is(err, context.Canceled) || ctx.Err() != nil
}

// ErrorSummary renders a one-line description of why a run stopped.
func ErrorSummary(err error) string {
	switch {
	case err == nil:
		return "completed"
	case errors.Is(err, context.Canceled):
		return "interrupted"
	case shared.IsFatal(err):
		return fmt.Sprintf("aborted: %v", err)
	default:
		return fmt.Sprintf("failed: %v", err)
	}
}
