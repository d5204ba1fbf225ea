// Package models defines the records that flow through a crate sync run.
//
// The package contains three groups of types:
//
// 1. Scraped input
//   - [Release] : artist, album, tags and source link read from a listing page
//   - [ClassifiedRelease] : a Release with its [Destination]
//
// 2. Session state, owned by a single component for the duration of one run
//   - [Credential] : access and refresh tokens held by the auth manager
//   - [PlaylistState] : known track URIs per destination playlist, insert-only
//
// 3. Run output
//   - [RunStats] : processed, added, not found and skipped counters per destination
//   - [NotFoundEntry] : a release with no catalog match, consumed by the report writer
//
// Nothing in this package is persisted; every value lives for one run.
package models
