package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"muster/internal/rollout"
	id "muster/pkg/domain"
	dErrors "muster/pkg/domain-errors"
	"muster/pkg/platform/httputil"
	"muster/pkg/requestcontext"
)

// Service defines the interface for rollout timeline operations.
type Service interface {
	RolloutTimeline(ctx context.Context, deploymentID id.DeploymentID, asOf time.Time) (*rollout.Timeline, error)
}

// Handler wires rollout endpoints to the rollout service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a rollout handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts rollout endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/deployments/{deploymentID}/timeline", h.HandleTimeline)
}

// timelineResponse wraps the timeline so an unstaged deployment has a
// distinguishable wire shape.
type timelineResponse struct {
	Staged   bool              `json:"staged"`
	Timeline *rollout.Timeline `json:"timeline,omitempty"`
}

// HandleTimeline handles GET /deployments/{deploymentID}/timeline requests.
// The optional asOf query parameter (YYYY-MM-DD) defaults to the request
// date.
func (h *Handler) HandleTimeline(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	deploymentID, err := id.ParseDeploymentID(chi.URLParam(r, "deploymentID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	asOf := requestcontext.Now(ctx)
	if raw := r.URL.Query().Get("asOf"); raw != "" {
		asOf, err = time.Parse(rollout.DateLayout, raw)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "asOf must be YYYY-MM-DD"))
			return
		}
	}

	timeline, err := h.service.RolloutTimeline(ctx, deploymentID, asOf)
	if err != nil {
		h.logger.ErrorContext(ctx, "rollout timeline failed",
			"request_id", requestID,
			"deployment_id", int64(deploymentID),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, timelineResponse{
		Staged:   timeline != nil,
		Timeline: timeline,
	})
}
