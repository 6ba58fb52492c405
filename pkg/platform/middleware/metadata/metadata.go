// Package metadata extracts transport-level client metadata (IP, request ID)
// early in the middleware chain.
package metadata

import (
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"muster/pkg/requestcontext"
)

const headerRequestID = "X-Request-Id"

// ClientMetadata records the client IP and a request correlation ID in the
// context. An inbound X-Request-Id is honored so IDs survive proxies;
// otherwise a fresh UUID is minted.
func ClientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ctx = requestcontext.WithClientIP(ctx, ClientIPFromRequest(r))

		requestID := r.Header.Get(headerRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx = requestcontext.WithRequestID(ctx, requestID)
		w.Header().Set(headerRequestID, requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClientIPFromRequest resolves the originating client IP, preferring the
// first entry of X-Forwarded-For when present.
func ClientIPFromRequest(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
