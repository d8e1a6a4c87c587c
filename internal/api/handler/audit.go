package handler

import (
	"net/http"

	"github.com/nexustrader/nexus/internal/api/response"
	"github.com/nexustrader/nexus/internal/audit"
)

// AuditHandler exposes the in-memory audit trail.
type AuditHandler struct {
	recorder *audit.Recorder
}

// NewAuditHandler creates an audit handler.
func NewAuditHandler(recorder *audit.Recorder) *AuditHandler {
	return &AuditHandler{recorder: recorder}
}

type auditResult struct {
	Entries []audit.Entry `json:"entries"`
	Total   int           `json:"total"`
}

// List handles GET /api/v1/audit.
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	entries := h.recorder.Entries()
	response.JSON(w, http.StatusOK, auditResult{
		Entries: entries,
		Total:   len(entries),
	})
}
