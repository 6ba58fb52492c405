// Package httpserver builds the shared http.Server used by cmd/server.
package httpserver

import (
	"net/http"
	"time"
)

// New builds an HTTP server tuned for check-in traffic: many small requests,
// slow fleet clients tolerated on the body but not on headers.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
