// Package handler implements the HTTP handlers of the signal API.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/nexustrader/nexus/internal/api/middleware"
	"github.com/nexustrader/nexus/internal/api/response"
	"github.com/nexustrader/nexus/internal/core"
	"github.com/nexustrader/nexus/internal/pipeline"
	"github.com/nexustrader/nexus/internal/storage/signal"
	"go.uber.org/zap"
)

const maxRequestBody = 64 << 10

// SignalHandler serves parsing, ingestion and retrieval of signals.
type SignalHandler struct {
	pipeline *pipeline.Pipeline
	logger   *zap.Logger
}

// NewSignalHandler creates a signal handler.
func NewSignalHandler(p *pipeline.Pipeline, logger *zap.Logger) *SignalHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SignalHandler{pipeline: p, logger: logger}
}

type parseRequest struct {
	Text string `json:"text"`
}

// Parse handles POST /api/v1/signals/parse. It extracts a scored draft
// from raw text without storing anything.
func (h *SignalHandler) Parse(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := decodeBody(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest,
			core.WrapError(core.ErrValidationFailed, err))
		return
	}
	if req.Text == "" {
		response.Error(w, http.StatusBadRequest,
			core.WrapError(core.ErrValidationFailed, errors.New("text is required")))
		return
	}

	draft := h.pipeline.ParseAndScore(req.Text)
	response.JSON(w, http.StatusOK, draft)
}

type ingestRequest struct {
	Text   string       `json:"text,omitempty"`
	Source core.Source  `json:"source,omitempty"`
	Signal *core.Signal `json:"signal,omitempty"`
}

// Ingest handles POST /api/v1/signals. The body carries either raw
// text to parse and ingest, or a pre-built signal.
func (h *SignalHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := decodeBody(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest,
			core.WrapError(core.ErrValidationFailed, err))
		return
	}

	identity := middleware.ClientIdentity(r)

	var (
		sig *core.Signal
		err error
	)
	switch {
	case req.Text != "":
		source := req.Source
		if source == "" {
			source = core.SourceChannel
		}
		draft := h.pipeline.ParseAndScore(req.Text)
		sig, err = h.pipeline.IngestDraft(r.Context(), draft, source, identity)
	case req.Signal != nil:
		if req.Signal.Source == "" {
			req.Signal.Source = core.SourceManual
		}
		sig, err = h.pipeline.Ingest(r.Context(), *req.Signal, identity)
	default:
		response.Error(w, http.StatusBadRequest,
			core.WrapError(core.ErrValidationFailed,
				errors.New("either text or signal is required")))
		return
	}
	if err != nil {
		response.Error(w, response.StatusFor(err), err)
		return
	}

	response.JSON(w, http.StatusCreated, sig)
}

// Get handles GET /api/v1/signals/{id}.
func (h *SignalHandler) Get(w http.ResponseWriter, r *http.Request) {
	sig, err := h.pipeline.Engine().Get(r.Context(), r.PathValue("id"))
	if err != nil {
		response.Error(w, response.StatusFor(err), err)
		return
	}
	response.JSON(w, http.StatusOK, sig)
}

type listResult struct {
	Signals []core.Signal `json:"signals"`
	Total   int           `json:"total"`
	Limit   int           `json:"limit"`
	Offset  int           `json:"offset"`
}

// List handles GET /api/v1/signals with optional filters.
func (h *SignalHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseListFilter(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest,
			core.WrapError(core.ErrValidationFailed, err))
		return
	}

	signals, err := h.pipeline.Engine().List(r.Context(), filter)
	if err != nil {
		response.Error(w, response.StatusFor(err), err)
		return
	}
	total, err := h.pipeline.Engine().Count(r.Context(), filter)
	if err != nil {
		response.Error(w, response.StatusFor(err), err)
		return
	}

	response.JSON(w, http.StatusOK, listResult{
		Signals: signals,
		Total:   total,
		Limit:   filter.Limit,
		Offset:  filter.Offset,
	})
}

func parseListFilter(r *http.Request) (signal.ListFilter, error) {
	q := r.URL.Query()
	filter := signal.ListFilter{
		Instrument: q.Get("instrument"),
		Source:     core.Source(q.Get("source")),
		Status:     core.Status(q.Get("status")),
		Limit:      100,
	}

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 1000 {
			return filter, errors.New("limit must be between 1 and 1000")
		}
		filter.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return filter, errors.New("offset must be non-negative")
		}
		filter.Offset = n
	}
	if v := q.Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, errors.New("from must be RFC3339")
		}
		filter.From = t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, errors.New("to must be RFC3339")
		}
		filter.To = t
	}

	return filter, nil
}

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
