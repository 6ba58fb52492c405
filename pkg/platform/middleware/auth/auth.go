// Package auth authenticates operators from bearer JWTs issued by the
// fleet's identity provider. It only establishes *who* the operator is;
// what they may see is decided per request by the scope resolver.
package auth

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	id "muster/pkg/domain"
	dErrors "muster/pkg/domain-errors"
	"muster/pkg/platform/httputil"
	"muster/pkg/requestcontext"
)

// Claims are the JWT claims we require from the identity provider.
type Claims struct {
	jwt.RegisteredClaims
}

// Middleware validates the Authorization header and stores the operator ID
// in the request context. Requests without a valid token are rejected.
type Middleware struct {
	signingKey []byte
}

// New constructs the operator auth middleware with the shared signing key.
func New(signingKey string) *Middleware {
	return &Middleware{signingKey: []byte(signingKey)}
}

// Handler wraps next with bearer-token authentication.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing bearer token"))
			return
		}
		raw := strings.TrimPrefix(header, "Bearer ")

		operatorID, err := m.validate(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}

		ctx := requestcontext.WithOperatorID(r.Context(), operatorID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *Middleware) validate(raw string) (id.OperatorID, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "unexpected signing method")
		}
		return m.signingKey, nil
	})
	if err != nil || !token.Valid {
		return id.OperatorID{}, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	operatorID, err := id.ParseOperatorID(claims.Subject)
	if err != nil {
		return id.OperatorID{}, dErrors.New(dErrors.CodeUnauthorized, "token subject is not an operator id")
	}
	return operatorID, nil
}
