// Package server provides the HTTP routing, middleware, and OAuth handling behind the local callback acceptor.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
// [RequestLogger] is the only middleware the acceptor installs.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # OAuth Handler
//
// [OAuthHandler] serves three routes:
//   - "/" renders an entry page linking to /login
//   - "/login" issues a random state nonce and redirects to the authorization page
//   - "/callback" validates the state, exchanges the code, and publishes the result
//
// It only processes one callback. A state that does not match the last issued nonce
// yields [shared.ErrStateMismatch].
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
