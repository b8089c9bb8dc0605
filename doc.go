// Package session manages the client side of an authenticated API session:
// it keeps the current bearer token and user profile, talks to the auth
// endpoints (sign up, login, logout, refresh), and restores state across
// process restarts.
//
// Session lifecycle:
//   - Controller owns the session value and is its sole writer. It moves
//     between Unauthenticated, Authenticated, and Refreshing through an
//     explicit transition table; readers only ever observe immutable
//     snapshots via Session().
//   - Start reconstructs a prior session from the configured Store. Loading
//     reports true until reconstruction finishes, whether or not a session
//     was found.
//
// Token refresh:
//   - Controller.Transport wraps an http.RoundTripper so that any request
//     answered with 401 triggers at most one refresh-and-retry. A marker on
//     the retried request's context prevents 401/refresh loops; if the
//     refresh itself fails the controller forces a logout and the caller
//     sees the original 401 untouched.
//
// Activity sinks:
//   - ActivitySink is a light-weight audit emitter used by the controller to
//     describe login, logout, refresh, and restore events. Sinks run
//     best-effort (errors are logged) so you can forward to a file or queue
//     without blocking authentication.
package session
