package authenticator

import "net/http"

// Authenticator is the token surface the router consumes: a gate for
// protected routes and an issuer for the identity flows.
type Authenticator interface {
	RequireAuth(h http.Handler) http.Handler
	IssueToken(userID string) (string, error)
}
