package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"muster/internal/factset"
	id "muster/pkg/domain"
	"muster/pkg/platform/httputil"
	"muster/pkg/requestcontext"
)

// Service defines the interface for fact-set lifecycle operations.
type Service interface {
	Create(ctx context.Context, params factset.CreateParams) (*factset.FactSet, error)
	UpdateReferences(ctx context.Context, setID id.FactSetID, included, excluded []id.FactID) error
	SetEnabled(ctx context.Context, setID id.FactSetID, enabled bool) error
	Rename(ctx context.Context, setID id.FactSetID, newName string) error
	Delete(ctx context.Context, setID id.FactSetID) error
}

// Handler wires fact-set endpoints to the resolver.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a fact-set handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts fact-set endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/fact-sets", h.HandleCreate)
	r.Put("/fact-sets/{factSetID}/references", h.HandleUpdateReferences)
	r.Put("/fact-sets/{factSetID}/enabled", h.HandleSetEnabled)
	r.Put("/fact-sets/{factSetID}/name", h.HandleRename)
	r.Delete("/fact-sets/{factSetID}", h.HandleDelete)
}

// CreateRequest describes a new fact-set.
type CreateRequest struct {
	Name            string      `json:"name"`
	Enabled         bool        `json:"enabled"`
	IncludedFactIDs []id.FactID `json:"included_fact_ids"`
	ExcludedFactIDs []id.FactID `json:"excluded_fact_ids"`
}

type factSetResponse struct {
	ID              id.FactSetID `json:"id"`
	Name            string       `json:"name"`
	Enabled         bool         `json:"enabled"`
	IncludedFactIDs []id.FactID  `json:"included_fact_ids"`
	ExcludedFactIDs []id.FactID  `json:"excluded_fact_ids"`
	CompanionFactID id.FactID    `json:"companion_fact_id"`
}

// HandleCreate handles POST /fact-sets requests.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.Decode[CreateRequest](w, r, h.logger)
	if !ok {
		return
	}

	created, err := h.service.Create(ctx, factset.CreateParams{
		Name:            req.Name,
		Enabled:         req.Enabled,
		IncludedFactIDs: req.IncludedFactIDs,
		ExcludedFactIDs: req.ExcludedFactIDs,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "fact-set create failed",
			"request_id", requestID,
			"name", req.Name,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, factSetResponse{
		ID:              created.ID,
		Name:            created.Name,
		Enabled:         created.Enabled,
		IncludedFactIDs: created.IncludedFactIDs,
		ExcludedFactIDs: created.ExcludedFactIDs,
		CompanionFactID: created.CompanionFactID,
	})
}

// ReferencesRequest replaces a fact-set's include/exclude lists.
type ReferencesRequest struct {
	IncludedFactIDs []id.FactID `json:"included_fact_ids"`
	ExcludedFactIDs []id.FactID `json:"excluded_fact_ids"`
}

// HandleUpdateReferences handles PUT /fact-sets/{factSetID}/references.
// A reference change that would close a dependency cycle is rejected whole.
func (h *Handler) HandleUpdateReferences(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	setID, err := id.ParseFactSetID(chi.URLParam(r, "factSetID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.Decode[ReferencesRequest](w, r, h.logger)
	if !ok {
		return
	}

	if err := h.service.UpdateReferences(ctx, setID, req.IncludedFactIDs, req.ExcludedFactIDs); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// EnabledRequest toggles a fact-set.
type EnabledRequest struct {
	Enabled bool `json:"enabled"`
}

// HandleSetEnabled handles PUT /fact-sets/{factSetID}/enabled.
func (h *Handler) HandleSetEnabled(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	setID, err := id.ParseFactSetID(chi.URLParam(r, "factSetID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.Decode[EnabledRequest](w, r, h.logger)
	if !ok {
		return
	}

	if err := h.service.SetEnabled(ctx, setID, req.Enabled); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RenameRequest renames a fact-set and its companion fact.
type RenameRequest struct {
	Name string `json:"name"`
}

// HandleRename handles PUT /fact-sets/{factSetID}/name.
func (h *Handler) HandleRename(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	setID, err := id.ParseFactSetID(chi.URLParam(r, "factSetID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.Decode[RenameRequest](w, r, h.logger)
	if !ok {
		return
	}

	if err := h.service.Rename(ctx, setID, req.Name); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDelete handles DELETE /fact-sets/{factSetID}: the set and its
// companion fact go away together.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	setID, err := id.ParseFactSetID(chi.URLParam(r, "factSetID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.Delete(ctx, setID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
