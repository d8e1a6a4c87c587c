package handler

import (
	"net/http"

	"github.com/nexustrader/nexus/internal/api/middleware"
	"github.com/nexustrader/nexus/internal/api/response"
	"github.com/nexustrader/nexus/internal/pipeline"
	"go.uber.org/zap"
)

// LifecycleHandler serves the operator and execution-backend surfaces
// of the signal state machine.
type LifecycleHandler struct {
	pipeline *pipeline.Pipeline
	logger   *zap.Logger
}

// NewLifecycleHandler creates a lifecycle handler.
func NewLifecycleHandler(p *pipeline.Pipeline, logger *zap.Logger) *LifecycleHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LifecycleHandler{pipeline: p, logger: logger}
}

// Approve handles POST /api/v1/signals/{id}/approve.
func (h *LifecycleHandler) Approve(w http.ResponseWriter, r *http.Request) {
	operator := middleware.ClientIdentity(r)
	sig, err := h.pipeline.Engine().Approve(r.Context(), r.PathValue("id"), operator)
	if err != nil {
		response.Error(w, response.StatusFor(err), err)
		return
	}
	response.JSON(w, http.StatusOK, sig)
}

// Reject handles POST /api/v1/signals/{id}/reject.
func (h *LifecycleHandler) Reject(w http.ResponseWriter, r *http.Request) {
	operator := middleware.ClientIdentity(r)
	sig, err := h.pipeline.Engine().Reject(r.Context(), r.PathValue("id"), operator)
	if err != nil {
		response.Error(w, response.StatusFor(err), err)
		return
	}
	response.JSON(w, http.StatusOK, sig)
}

// RiskGate handles POST /api/v1/signals/{id}/risk-gate. It re-runs the
// risk checks on a pending signal.
func (h *LifecycleHandler) RiskGate(w http.ResponseWriter, r *http.Request) {
	sig, err := h.pipeline.Engine().RunRiskGate(r.Context(), r.PathValue("id"))
	if err != nil {
		response.Error(w, response.StatusFor(err), err)
		return
	}
	response.JSON(w, http.StatusOK, sig)
}

// Execute handles POST /api/v1/signals/{id}/execute, the broker fill
// confirmation callback.
func (h *LifecycleHandler) Execute(w http.ResponseWriter, r *http.Request) {
	sig, err := h.pipeline.Engine().MarkExecuted(r.Context(), r.PathValue("id"))
	if err != nil {
		response.Error(w, response.StatusFor(err), err)
		return
	}
	response.JSON(w, http.StatusOK, sig)
}

// Fail handles POST /api/v1/signals/{id}/fail, the broker execution
// error callback.
func (h *LifecycleHandler) Fail(w http.ResponseWriter, r *http.Request) {
	sig, err := h.pipeline.Engine().MarkFailed(r.Context(), r.PathValue("id"))
	if err != nil {
		response.Error(w, response.StatusFor(err), err)
		return
	}
	response.JSON(w, http.StatusOK, sig)
}
