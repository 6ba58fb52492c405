package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	platmetrics "muster/internal/platform/metrics"
	id "muster/pkg/domain"
	"muster/pkg/platform/httputil"
	"muster/pkg/requestcontext"
)

// Service defines the interface for fact inventory operations.
type Service interface {
	Ingest(ctx context.Context, categoryID id.CategoryID, raw string) ([]id.FactID, error)
	Correct(ctx context.Context, factID id.FactID, value, description string) error
	Delete(ctx context.Context, factID id.FactID) error
}

// Handler wires fact inventory endpoints to the facts service.
type Handler struct {
	service Service
	logger  *slog.Logger
	metrics *platmetrics.Metrics
}

// New constructs a facts handler with its dependencies.
func New(service Service, logger *slog.Logger, metrics *platmetrics.Metrics) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
		metrics: metrics,
	}
}

// Register mounts fact inventory endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/facts/ingest", h.HandleIngest)
	r.Patch("/facts/{factID}", h.HandleCorrect)
	r.Delete("/facts/{factID}", h.HandleDelete)
}

// IngestRequest is one raw client submission: the category that decides the
// encoding, plus the raw text.
type IngestRequest struct {
	CategoryID int64  `json:"category_id"`
	Raw        string `json:"raw"`
}

type ingestResponse struct {
	FactIDs []id.FactID `json:"fact_ids"`
}

// HandleIngest handles POST /facts/ingest requests from machine check-ins.
func (h *Handler) HandleIngest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.Decode[IngestRequest](w, r, h.logger)
	if !ok {
		return
	}

	if h.metrics != nil {
		h.metrics.CheckIns.Inc()
	}

	factIDs, err := h.service.Ingest(ctx, id.CategoryID(req.CategoryID), req.Raw)
	if err != nil {
		h.logger.ErrorContext(ctx, "fact ingest failed",
			"request_id", requestID,
			"category_id", req.CategoryID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	if h.metrics != nil {
		h.metrics.FactsIngested.Add(float64(len(factIDs)))
	}

	if factIDs == nil {
		factIDs = []id.FactID{}
	}
	httputil.WriteJSON(w, http.StatusOK, ingestResponse{FactIDs: factIDs})
}

// CorrectRequest updates a fact's value and description.
type CorrectRequest struct {
	Value       string `json:"value"`
	Description string `json:"description"`
}

// HandleCorrect handles PATCH /facts/{factID} requests.
func (h *Handler) HandleCorrect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	factID, err := id.ParseFactID(chi.URLParam(r, "factID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.Decode[CorrectRequest](w, r, h.logger)
	if !ok {
		return
	}

	if err := h.service.Correct(ctx, factID, req.Value, req.Description); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDelete handles DELETE /facts/{factID} requests.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	factID, err := id.ParseFactID(chi.URLParam(r, "factID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.Delete(ctx, factID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
