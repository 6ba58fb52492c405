package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"muster/internal/policy"
	id "muster/pkg/domain"
	"muster/pkg/platform/httputil"
	"muster/pkg/requestcontext"
)

// Service defines the interface for policy resolution operations.
type Service interface {
	ResolveMachine(ctx context.Context, machineID id.MachineID) (*policy.Resolution, error)
}

// Handler wires policy endpoints to the resolution service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a policy handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts policy endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/machines/{machineID}/resolve", h.HandleResolve)
}

// resolveResponse is the wire shape of a resolution. Remove entries are
// collapsed to one per package since the engine reports every group that
// contributed a removal.
type resolveResponse struct {
	Install []policy.Assignment `json:"install"`
	Remove  []policy.Assignment `json:"remove"`
}

func fromResolution(res *policy.Resolution) resolveResponse {
	out := resolveResponse{
		Install: res.Install,
		Remove:  make([]policy.Assignment, 0, len(res.Remove)),
	}
	if out.Install == nil {
		out.Install = []policy.Assignment{}
	}
	seen := make(map[string]struct{}, len(res.Remove))
	for _, removal := range res.Remove {
		if _, ok := seen[removal.Package]; ok {
			continue
		}
		seen[removal.Package] = struct{}{}
		out.Remove = append(out.Remove, removal)
	}
	return out
}

// HandleResolve handles POST /machines/{machineID}/resolve requests.
func (h *Handler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	machineID, err := id.ParseMachineID(chi.URLParam(r, "machineID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.service.ResolveMachine(ctx, machineID)
	if err != nil {
		h.logger.ErrorContext(ctx, "policy resolution failed",
			"request_id", requestID,
			"machine_id", int64(machineID),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "policy resolved",
		"request_id", requestID,
		"machine_id", int64(machineID),
		"install", len(result.Install),
		"remove", len(result.Remove),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, fromResolution(result))
}
