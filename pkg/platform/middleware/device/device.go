// Package device captures managed-client details from check-in requests.
// The fleet clients report their name, version, and OS through the
// User-Agent header (for example "muster-client/2.4 (darwin)").
package device

import (
	"net/http"

	ua "github.com/mssola/useragent"

	"muster/pkg/requestcontext"
)

// Capture parses the User-Agent header into requestcontext.ClientInfo so
// check-in handlers and audit events can record which client build talked to
// us without re-parsing the header.
func Capture(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("User-Agent")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}

		parsed := ua.New(header)
		name, version := parsed.Browser()
		info := requestcontext.ClientInfo{
			Name:    name,
			Version: version,
			OS:      parsed.OS(),
		}
		ctx := requestcontext.WithClient(r.Context(), info)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
