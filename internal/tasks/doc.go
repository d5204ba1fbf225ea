// Package tasks runs a sync: blog listing pages in, Spotify playlist inserts out.
//
// # Pipeline
//
// [PlaylistEngine.Run] is strictly sequential:
//
//  1. Ensure a usable credential through the [Authenticator], authorizing interactively if needed
//  2. Preload the known track URIs of every configured destination playlist
//  3. For each page from start to end, fetch the releases and for each one:
//     classify, search the album, list its tracks, drop the known ones, and insert the rest
//
// Releases without a catalog match are collected for the not-found report.
// A destination without a playlist writes to the REST playlist instead.
//
// # Pacing
//
// [Pacer] sleeps a fixed delay after each remote call (search, tracks, write, page, preload),
// whether or not the call succeeded. Every sleep returns early when the context is cancelled.
//
// # Playlist State
//
// [PlaylistSync] owns one known set per playlist. A URI enters the set only after the write
// containing it succeeded, so a failed chunk can be retried by a later run.
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data.
// Updates use select with default to prevent blocking.
//
// # Errors
//
// Anything wrapping [shared.ErrAuth] ends the run, as does a cancelled context.
// The partial [RunResult] is returned alongside the error. Every other failure is logged and
// the release is counted as not found, trackless, or partially written.
package tasks
