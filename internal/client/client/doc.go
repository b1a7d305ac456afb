// Package client talks to the vidtube HTTP API on behalf of the CLI.
//
// HTTPClient sends the access token as a Bearer header and keeps both tokens
// in a SessionStore, so a session survives restarts of the CLI. When the
// server rejects the access token the client rotates the session once with
// the refresh token and retries the call.
//
// Common conditions are exposed as sentinel errors that callers can match
// with errors.Is: ErrUnavailable and ErrUnauthorized. Other API failures are
// returned as *APIError carrying the server's message.
package client
