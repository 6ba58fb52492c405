// Package httpapi assembles the HTTP surface: middleware chain, module
// handlers, health and metrics endpoints.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"muster/pkg/platform/middleware/auth"
	"muster/pkg/platform/middleware/device"
	"muster/pkg/platform/middleware/machineauth"
	"muster/pkg/platform/middleware/metadata"
	"muster/pkg/platform/middleware/requesttime"
)

// Registrar is anything that can mount its endpoints on a chi router. Every
// module handler implements it.
type Registrar interface {
	Register(r chi.Router)
}

// Config selects what the router wires.
type Config struct {
	Auth        *auth.Middleware
	MachineAuth *machineauth.Middleware

	// Client carries endpoints machines call during check-in; they
	// authenticate with the enrollment token, not operator JWTs.
	Client []Registrar

	// Operator carries administrator endpoints behind JWT auth.
	Operator []Registrar
}

// NewRouter builds the service router.
func NewRouter(cfg Config) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(device.Capture)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		if cfg.MachineAuth != nil {
			r.Use(cfg.MachineAuth.Handler)
		}
		for _, h := range cfg.Client {
			h.Register(r)
		}
	})

	r.Group(func(r chi.Router) {
		if cfg.Auth != nil {
			r.Use(cfg.Auth.Handler)
		}
		for _, h := range cfg.Operator {
			h.Register(r)
		}
	})

	return r
}
