// Package auth attaches the signed-in user's credentials to backend calls.
//
// A TokenSource yields bearer tokens. StaticToken serves a fixed token;
// NewJWTSource wraps another source and refuses tokens whose exp claim has
// passed, so expired sessions fail fast instead of round-tripping to the
// backend for a 401. Signatures are not verified here; the backend does that.
//
// Transport is an http.RoundTripper that sets the Authorization header on
// each request. A token stored in the request context with WithToken takes
// precedence over the configured source.
package auth
