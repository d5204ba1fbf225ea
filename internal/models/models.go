package models

import (
	"fmt"
	"time"

	"golang.org/x/oauth2"
)

// Destination identifies one of the curated target playlists.
type Destination int

const (
	Bass Destination = iota
	Techno
	House
	DNB
	Ambient
	Rest
)

// Destinations lists every destination in declaration order.
func Destinations() []Destination {
	return []Destination{Bass, Techno, House, DNB, Ambient, Rest}
}

func (d Destination) String() string {
	switch d {
	case Bass:
		return "BASS"
	case Techno:
		return "TECHNO"
	case House:
		return "HOUSE"
	case DNB:
		return "DNB"
	case Ambient:
		return "AMBIENT"
	case Rest:
		return "REST"
	default:
		return fmt.Sprintf("Destination(%d)", int(d))
	}
}

// Release is one entry scraped from a listing page.
type Release struct {
	Artist    string
	Album     string
	SourceURL string
	Tags      []string
}

// ClassifiedRelease is a [Release] with its destination assigned once by the classifier.
type ClassifiedRelease struct {
	Release
	Destination Destination
}

// Credential is the bearer credential for the catalog API.
//
// An empty RefreshToken means no refresh is possible.
type Credential struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// ValidAt reports whether the access token can be used at t.
func (c *Credential) ValidAt(t time.Time) bool {
	return c != nil && c.AccessToken != "" && t.Before(c.ExpiresAt)
}

// CredentialFromToken converts an [oauth2.Token].
func CredentialFromToken(tok *oauth2.Token) *Credential {
	return &Credential{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    tok.Expiry,
	}
}

// Token converts the credential back to an [oauth2.Token].
func (c *Credential) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  c.AccessToken,
		RefreshToken: c.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       c.ExpiresAt,
	}
}

// PlaylistState is the set of track URIs known to be in a playlist.
//
// URIs are only ever inserted.
type PlaylistState struct {
	PlaylistID string
	Known      map[string]struct{}
}

// NewPlaylistState creates an empty state for playlistID.
func NewPlaylistState(playlistID string) *PlaylistState {
	return &PlaylistState{PlaylistID: playlistID, Known: make(map[string]struct{})}
}

// Contains reports whether uri is known.
func (p *PlaylistState) Contains(uri string) bool {
	if p == nil {
		return false
	}
	_, ok := p.Known[uri]
	return ok
}

// Insert adds uris to the known set.
func (p *PlaylistState) Insert(uris ...string) {
	for _, uri := range uris {
		p.Known[uri] = struct{}{}
	}
}

// Len returns the number of known URIs.
func (p *PlaylistState) Len() int {
	return len(p.Known)
}

// NotFoundEntry records a release that had no catalog match.
type NotFoundEntry struct {
	Artist      string
	Album       string
	SourceURL   string
	Tags        []string
	Destination Destination
}

// NewNotFoundEntry builds an entry from a classified release.
func NewNotFoundEntry(r ClassifiedRelease) NotFoundEntry {
	return NotFoundEntry{
		Artist:      r.Artist,
		Album:       r.Album,
		SourceURL:   r.SourceURL,
		Tags:        r.Tags,
		Destination: r.Destination,
	}
}
