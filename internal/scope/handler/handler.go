package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"muster/internal/scope"
	id "muster/pkg/domain"
	dErrors "muster/pkg/domain-errors"
	"muster/pkg/platform/httputil"
	"muster/pkg/requestcontext"
)

// Service defines the interface for visibility operations.
type Service interface {
	VisibleMachineIDs(ctx context.Context, pref scope.Preference) (scope.Visibility, error)
	VisibleFactIDs(ctx context.Context, pref scope.Preference) ([]id.FactID, error)
	VisibleProjectIDs(ctx context.Context, pref scope.Preference) ([]id.ProjectID, error)
	DomainTags(ctx context.Context, pref scope.Preference) ([]id.FactID, error)
}

// Handler wires visibility endpoints to the scope resolver.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a scope handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts visibility endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/operators/me/visibility", h.HandleVisibility)
}

type visibilityResponse struct {
	MachineIDs scope.Visibility `json:"machine_ids"`
	FactIDs    []id.FactID      `json:"fact_ids"`
	ProjectIDs []id.ProjectID   `json:"project_ids"`
	DomainTags []id.FactID      `json:"domain_tags"`
}

// parsePreference reads the optional domain/scope query parameters.
func parsePreference(r *http.Request) (scope.Preference, error) {
	var pref scope.Preference
	if raw := r.URL.Query().Get("domain"); raw != "" {
		domainID, err := id.ParseDomainID(raw)
		if err != nil {
			return scope.Preference{}, err
		}
		pref.DomainID = domainID
	}
	if raw := r.URL.Query().Get("scope"); raw != "" {
		scopeID, err := id.ParseScopeID(raw)
		if err != nil {
			return scope.Preference{}, err
		}
		pref.ScopeID = scopeID
	}
	return pref, nil
}

// HandleVisibility handles GET /operators/me/visibility requests. The
// domain and scope query parameters select the operator's preference.
func (h *Handler) HandleVisibility(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	operatorID := requestcontext.OperatorID(ctx)
	if operatorID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	pref, err := parsePreference(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	machineIDs, err := h.service.VisibleMachineIDs(ctx, pref)
	if err != nil {
		h.logger.ErrorContext(ctx, "visibility resolution failed",
			"request_id", requestID,
			"operator_id", operatorID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	factIDs, err := h.service.VisibleFactIDs(ctx, pref)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	projectIDs, err := h.service.VisibleProjectIDs(ctx, pref)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	tags, err := h.service.DomainTags(ctx, pref)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if factIDs == nil {
		factIDs = []id.FactID{}
	}
	if projectIDs == nil {
		projectIDs = []id.ProjectID{}
	}
	if tags == nil {
		tags = []id.FactID{}
	}
	httputil.WriteJSON(w, http.StatusOK, visibilityResponse{
		MachineIDs: machineIDs,
		FactIDs:    factIDs,
		ProjectIDs: projectIDs,
		DomainTags: tags,
	})
}
