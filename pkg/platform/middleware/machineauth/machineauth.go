// Package machineauth gates client check-in endpoints with a fleet-wide
// shared enrollment token. Only the bcrypt hash of the token is configured
// on the server.
package machineauth

import (
	"net/http"

	dErrors "muster/pkg/domain-errors"
	"muster/pkg/platform/httputil"
	"muster/pkg/platform/secrets"
)

// TokenHeader carries the enrollment token on check-in requests.
const TokenHeader = "X-Machine-Token"

// Middleware verifies the enrollment token against the configured hash.
type Middleware struct {
	tokenHash string
}

// New constructs the middleware. An empty hash disables the check, for
// development setups where machines are trusted by network position.
func New(tokenHash string) *Middleware {
	return &Middleware{tokenHash: tokenHash}
}

// Handler wraps next with enrollment token verification.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.tokenHash == "" {
			next.ServeHTTP(w, r)
			return
		}
		token := r.Header.Get(TokenHeader)
		if token == "" {
			httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing machine token"))
			return
		}
		if err := secrets.Verify(token, m.tokenHash); err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid machine token"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
