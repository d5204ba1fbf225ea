// Spotify API implementation of [Catalog] and [PlaylistStore]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/desertthunder/crate/internal/shared"
	"golang.org/x/time/rate"
)

const (
	defaultSpotifyBaseURL = "https://api.spotify.com/v1"

	// MaxTracksPerWrite is the most URIs the API accepts in one insert.
	MaxTracksPerWrite = 100
	// PlaylistPageSize is the page size used when listing playlist tracks.
	PlaylistPageSize = 100
	albumTrackLimit  = 50
)

var (
	_ Catalog       = (*SpotifyService)(nil)
	_ PlaylistStore = (*SpotifyService)(nil)
)

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyAlbum represents a simplified Spotify album.
type SpotifyAlbum struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Artists     []SpotifyArtist `json:"artists"`
	ReleaseDate string          `json:"release_date"`
	TotalTracks int             `json:"total_tracks"`
	URI         string          `json:"uri"`
}

// SpotifyTrack represents a simplified Spotify track.
type SpotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Artists    []SpotifyArtist `json:"artists"`
	DurationMS int             `json:"duration_ms"`
	URI        string          `json:"uri"`
}

// SpotifyPaging is the envelope of paginated responses.
type SpotifyPaging[T any] struct {
	Items    []T     `json:"items"`
	Total    int     `json:"total"`
	Limit    int     `json:"limit"`
	Offset   int     `json:"offset"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
}

// SpotifyPlaylistTrack represents a track within a playlist context. Track is nil for removed items.
type SpotifyPlaylistTrack struct {
	AddedAt string        `json:"added_at"`
	Track   *SpotifyTrack `json:"track"`
}

type searchAlbumsResponse struct {
	Albums SpotifyPaging[SpotifyAlbum] `json:"albums"`
}

type addTracksRequest struct {
	URIs     []string `json:"uris"`
	Position *int     `json:"position,omitempty"`
}

type snapshotResponse struct {
	SnapshotID string `json:"snapshot_id"`
}

// SpotifyOpts configures a [SpotifyService].
type SpotifyOpts struct {
	BaseURL              string
	MaxRequestsPerSecond float64
	HTTPClient           *http.Client
}

// SpotifyService talks to the Spotify Web API with a bearer token fetched per request.
type SpotifyService struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenProvider
	limiter    *rate.Limiter
}

// NewSpotifyService creates a new Spotify service that authenticates every request through tokens.
func NewSpotifyService(tokens TokenProvider, opts SpotifyOpts) *SpotifyService {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultSpotifyBaseURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	limit := rate.Inf
	if opts.MaxRequestsPerSecond > 0 && !math.IsInf(opts.MaxRequestsPerSecond, 1) {
		limit = rate.Limit(opts.MaxRequestsPerSecond)
	}

	return &SpotifyService{
		baseURL:    opts.BaseURL,
		httpClient: opts.HTTPClient,
		tokens:     tokens,
		limiter:    rate.NewLimiter(limit, 1),
	}
}

// NewSpotifyServiceFromConfig creates a [SpotifyService] from the spotify config section.
func NewSpotifyServiceFromConfig(cfg shared.SpotifyConfig, tokens TokenProvider, client *http.Client) *SpotifyService {
	return NewSpotifyService(tokens, SpotifyOpts{
		BaseURL:              cfg.APIURL,
		MaxRequestsPerSecond: cfg.MaxRequestsPerSecond,
		HTTPClient:           client,
	})
}

// doRequest performs an authenticated HTTP request to the Spotify API.
//
// A 401 response is returned as [shared.ErrAuth]; other failures as [shared.ErrAPIRequest].
func (s *SpotifyService) doRequest(ctx context.Context, method, endpoint string, body any, result any) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
	}

	token, err := s.tokens.Token(ctx)
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %w", shared.ErrAPIRequest, err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: request failed: %w", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w: %w: %s %s", shared.ErrAuth, shared.ErrTokenExpired, method, endpoint)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: spotify API error: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("%w: failed to decode response: %w", shared.ErrAPIRequest, err)
		}
	}

	return nil
}

// SearchQuery builds the structured album query.
func SearchQuery(artist, album string) string {
	return "artist:" + artist + " album:" + album
}

// SearchAlbum searches for an album and returns the first result's ID, or "" when the result set is empty.
func (s *SpotifyService) SearchAlbum(ctx context.Context, artist, album string) (string, error) {
	params := url.Values{}
	params.Set("q", SearchQuery(artist, album))
	params.Set("type", "album")
	params.Set("limit", "1")

	var response searchAlbumsResponse
	if err := s.doRequest(ctx, http.MethodGet, "/search?"+params.Encode(), nil, &response); err != nil {
		return "", err
	}

	if len(response.Albums.Items) == 0 {
		return "", nil
	}
	return response.Albums.Items[0].ID, nil
}

// AlbumTracks returns the URIs of an album's tracks from a single page.
func (s *SpotifyService) AlbumTracks(ctx context.Context, albumID string) ([]string, error) {
	endpoint := fmt.Sprintf("/albums/%s/tracks?limit=%d", url.PathEscape(albumID), albumTrackLimit)

	var response SpotifyPaging[SpotifyTrack]
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	uris := make([]string, 0, len(response.Items))
	for _, track := range response.Items {
		if track.URI != "" {
			uris = append(uris, track.URI)
		}
	}
	return uris, nil
}

// PlaylistTracks retrieves one page of a playlist's track URIs.
func (s *SpotifyService) PlaylistTracks(ctx context.Context, playlistID string, limit, offset int) (*TrackPage, error) {
	if limit <= 0 || limit > PlaylistPageSize {
		limit = PlaylistPageSize
	}

	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))
	params.Set("fields", "items(track(uri)),total,limit,offset")
	endpoint := fmt.Sprintf("/playlists/%s/tracks?%s", url.PathEscape(playlistID), params.Encode())

	var response SpotifyPaging[SpotifyPlaylistTrack]
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	page := &TrackPage{
		URIs:   make([]string, 0, len(response.Items)),
		Total:  response.Total,
		Offset: offset,
		Limit:  limit,
	}
	for _, item := range response.Items {
		if item.Track != nil && item.Track.URI != "" {
			page.URIs = append(page.URIs, item.Track.URI)
		}
	}
	return page, nil
}

// AddTracks inserts up to [MaxTracksPerWrite] URIs into a playlist.
//
// Failures other than authentication are returned wrapped in [shared.ErrWrite].
func (s *SpotifyService) AddTracks(ctx context.Context, playlistID string, uris []string, position int) error {
	if len(uris) == 0 {
		return nil
	}
	if len(uris) > MaxTracksPerWrite {
		return fmt.Errorf("%w: %w: at most %d URIs per request, got %d", shared.ErrWrite, shared.ErrInvalidArgument, MaxTracksPerWrite, len(uris))
	}

	body := addTracksRequest{URIs: uris}
	if position >= 0 {
		body.Position = &position
	}

	endpoint := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistID))
	var response snapshotResponse
	if err := s.doRequest(ctx, http.MethodPost, endpoint, body, &response); err != nil {
		if shared.IsFatal(err) {
			return err
		}
		return fmt.Errorf("%w: %w", shared.ErrWrite, err)
	}
	return nil
}
