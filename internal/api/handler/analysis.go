package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/nexustrader/nexus/internal/api/middleware"
	"github.com/nexustrader/nexus/internal/api/response"
	"github.com/nexustrader/nexus/internal/pipeline"
	"go.uber.org/zap"
)

// AnalysisHandler relays advisory analysis streams to HTTP clients.
type AnalysisHandler struct {
	pipeline *pipeline.Pipeline
	logger   *zap.Logger
}

// NewAnalysisHandler creates an analysis handler.
func NewAnalysisHandler(p *pipeline.Pipeline, logger *zap.Logger) *AnalysisHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalysisHandler{pipeline: p, logger: logger}
}

// Stream handles POST /api/v1/signals/{id}/analysis. The response body
// is chunked plain text; each flush carries the chunks received so far.
// Disconnecting cancels the upstream provider call.
func (h *AnalysisHandler) Stream(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	identity := middleware.ClientIdentity(r)

	stream, err := h.pipeline.RequestAnalysis(r.Context(), id, identity)
	if err != nil {
		response.Error(w, response.StatusFor(err), err)
		return
	}
	defer stream.Close()

	// Release Recv if the client goes away mid-stream. The request
	// context is also cancelled when the handler returns, so this
	// goroutine never outlives the request.
	go func() {
		<-r.Context().Done()
		stream.Close()
	}()

	flusher, canFlush := w.(http.Flusher)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			// Headers are gone; all we can do is mark the interruption.
			h.logger.Warn("analysis stream interrupted",
				zap.String("signal_id", id),
				zap.Error(err),
			)
			io.WriteString(w, "\n\n[analysis interrupted]")
			return
		}
		if _, err := io.WriteString(w, chunk); err != nil {
			return
		}
		if canFlush {
			flusher.Flush()
		}
	}
}
