// Package services implements the Spotify Web API calls used by a sync run.
//
// # Interfaces
//
// [Catalog] covers album search and track listing. [PlaylistStore] covers reading a
// playlist page and inserting tracks. [SpotifyService] implements both over plain REST.
//
// # Authentication
//
// Every request asks a [TokenProvider] for a bearer token first, so refresh and
// re-login live outside this package. A 401 response maps to [shared.ErrAuth]
// wrapping [shared.ErrTokenExpired], which callers treat as fatal.
//
// # Rate Limiting
//
// Requests wait on a token bucket sized by spotify.max_requests_per_second.
// A zero value disables the ceiling.
//
// # Error Handling
//
//   - [shared.ErrAuth] : the token was rejected or could not be obtained
//   - [shared.ErrAPIRequest] : transport failure, non-2xx status, or undecodable body
//   - [shared.ErrWrite] : a playlist insert failed
package services
