package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/services"
	"github.com/desertthunder/crate/internal/shared"
)

// PlaylistSync tracks the known track URIs of each destination playlist for one run.
//
// Destinations sharing a playlist ID share one known set.
type PlaylistSync struct {
	store    services.PlaylistStore
	pacer    *Pacer
	logger   *log.Logger
	position int

	playlists map[models.Destination]string
	states    map[string]*models.PlaylistState
}

// NewPlaylistSync creates a [PlaylistSync] that inserts at position (negative appends).
func NewPlaylistSync(store services.PlaylistStore, pacer *Pacer, logger *log.Logger, position int) *PlaylistSync {
	return &PlaylistSync{
		store:     store,
		pacer:     pacer,
		logger:    logger,
		position:  position,
		playlists: make(map[models.Destination]string),
		states:    make(map[string]*models.PlaylistState),
	}
}

// Register binds dest to playlistID with an empty known set.
func (s *PlaylistSync) Register(dest models.Destination, playlistID string) *models.PlaylistState {
	s.playlists[dest] = playlistID
	state, ok := s.states[playlistID]
	if !ok {
		state = models.NewPlaylistState(playlistID)
		s.states[playlistID] = state
	}
	return state
}

// State returns the known set bound to dest.
func (s *PlaylistSync) State(dest models.Destination) (*models.PlaylistState, bool) {
	id, ok := s.playlists[dest]
	if !ok {
		return nil, false
	}
	return s.states[id], true
}

// Load registers dest and fills its known set from the playlist's current contents.
func (s *PlaylistSync) Load(ctx context.Context, dest models.Destination, playlistID string) (int, error) {
	state := s.Register(dest, playlistID)
	if state.Len() > 0 {
		return state.Len(), nil
	}

	known, err := s.Preload(ctx, playlistID)
	for uri := range known {
		state.Insert(uri)
	}
	return state.Len(), err
}

// Preload reads every page of a playlist, pacing between pages.
//
// A failed page ends the loop and keeps what was accumulated. Only authentication and context
// errors are returned.
func (s *PlaylistSync) Preload(ctx context.Context, playlistID string) (map[string]struct{}, error) {
	known := make(map[string]struct{})
	logger := s.logger.With("playlist", playlistID)

	for offset, total := 0, 1; offset < total; {
		page, err := s.store.PlaylistTracks(ctx, playlistID, services.PlaylistPageSize, offset)
		if err != nil {
			if shared.IsFatal(err) || ctx.Err() != nil {
				return known, err
			}
			logger.Warn("preload stopped early", "offset", offset, "loaded", len(known), "error", err)
			return known, nil
		}

		for _, uri := range page.URIs {
			known[uri] = struct{}{}
		}

		total = page.Total
		step := page.Limit
		if step <= 0 {
			step = services.PlaylistPageSize
		}
		offset += step

		if err := s.pacer.Wait(ctx, PausePreload); err != nil {
			return known, err
		}
	}

	logger.Debug("preloaded playlist", "tracks", len(known))
	return known, nil
}

// FilterNew returns the candidate count and the candidates not yet known for dest, in order.
//
// Duplicates within candidates collapse to their first occurrence. Nothing is mutated.
func (s *PlaylistSync) FilterNew(dest models.Destination, candidates []string) (int, []string) {
	state, _ := s.State(dest)

	fresh := make([]string, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	for _, uri := range candidates {
		if _, dup := seen[uri]; dup {
			continue
		}
		seen[uri] = struct{}{}
		if state.Contains(uri) {
			continue
		}
		fresh = append(fresh, uri)
	}
	return len(candidates), fresh
}

// Append writes uris to dest's playlist in chunks of [services.MaxTracksPerWrite], pacing after each
// chunk whether or not it was written.
//
// URIs enter the known set only once their chunk is confirmed. The first failed chunk stops the call;
// the count written so far is returned with the error.
func (s *PlaylistSync) Append(ctx context.Context, dest models.Destination, uris []string) (int, error) {
	state, ok := s.State(dest)
	if !ok {
		return 0, fmt.Errorf("%w: no playlist registered for %s", shared.ErrInvalidArgument, dest)
	}

	added := 0
	for _, chunk := range shared.Chunk(uris, services.MaxTracksPerWrite) {
		err := s.store.AddTracks(ctx, state.PlaylistID, chunk, s.position)
		if err == nil {
			state.Insert(chunk...)
			added += len(chunk)
		}

		if waitErr := s.pacer.Wait(ctx, PauseWrite); err == nil {
			err = waitErr
		}
		if err != nil {
			return added, err
		}
	}
	return added, nil
}
