// package services defines the catalog and playlist interfaces backed by the Spotify Web API
package services

import (
	"context"
)

// TokenProvider returns a currently valid bearer token. It is consulted before every request.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// Catalog finds albums and their tracks.
type Catalog interface {
	// SearchAlbum returns the ID of the first album matching artist and album, or "" when there is none.
	SearchAlbum(ctx context.Context, artist, album string) (string, error)

	// AlbumTracks returns the track URIs of an album.
	AlbumTracks(ctx context.Context, albumID string) ([]string, error)
}

// PlaylistStore reads and writes playlist contents.
type PlaylistStore interface {
	// PlaylistTracks returns one page of a playlist's track URIs along with the total count.
	PlaylistTracks(ctx context.Context, playlistID string, limit, offset int) (*TrackPage, error)

	// AddTracks inserts uris at position; a negative position appends.
	AddTracks(ctx context.Context, playlistID string, uris []string, position int) error
}

// TrackPage is one page of track URIs from a paginated listing.
type TrackPage struct {
	URIs   []string
	Total  int
	Offset int
	Limit  int
}
