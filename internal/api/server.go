// Package api provides the HTTP server for the signal pipeline.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/nexustrader/nexus/internal/api/handler"
	"github.com/nexustrader/nexus/internal/api/middleware"
	"github.com/nexustrader/nexus/internal/api/response"
	"github.com/nexustrader/nexus/internal/audit"
	"github.com/nexustrader/nexus/internal/config"
	"github.com/nexustrader/nexus/internal/metrics"
	"github.com/nexustrader/nexus/internal/pipeline"
)

// Dependencies holds the components the server exposes.
type Dependencies struct {
	Pipeline *pipeline.Pipeline
	Audit    *audit.Recorder
	Metrics  *metrics.Registry
}

// Server wraps the HTTP server with route setup.
type Server struct {
	httpServer *http.Server
	handler    http.Handler
	logger     *zap.Logger
}

// NewServer creates an HTTP server with all routes configured.
func NewServer(cfg *config.Config, deps Dependencies, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	mux := http.NewServeMux()

	signals := handler.NewSignalHandler(deps.Pipeline, logger)
	lc := handler.NewLifecycleHandler(deps.Pipeline, logger)
	analysis := handler.NewAnalysisHandler(deps.Pipeline, logger)

	apiMux := http.NewServeMux()
	apiMux.HandleFunc("POST /api/v1/signals/parse", signals.Parse)
	apiMux.HandleFunc("POST /api/v1/signals", signals.Ingest)
	apiMux.HandleFunc("GET /api/v1/signals", signals.List)
	apiMux.HandleFunc("GET /api/v1/signals/{id}", signals.Get)
	apiMux.HandleFunc("POST /api/v1/signals/{id}/risk-gate", lc.RiskGate)
	apiMux.HandleFunc("POST /api/v1/signals/{id}/approve", lc.Approve)
	apiMux.HandleFunc("POST /api/v1/signals/{id}/reject", lc.Reject)
	apiMux.HandleFunc("POST /api/v1/signals/{id}/execute", lc.Execute)
	apiMux.HandleFunc("POST /api/v1/signals/{id}/fail", lc.Fail)
	apiMux.HandleFunc("POST /api/v1/signals/{id}/analysis", analysis.Stream)
	if deps.Audit != nil {
		apiMux.HandleFunc("GET /api/v1/audit", handler.NewAuditHandler(deps.Audit).List)
	}

	var protected http.Handler = apiMux
	if deps.Metrics != nil {
		protected = metrics.HTTPMiddleware(deps.Metrics)(protected)
	}
	protected = middleware.APIKeyAuth(cfg.Server.APIKey)(protected)
	mux.Handle("/api/v1/", protected)

	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if deps.Metrics != nil && cfg.Metrics.Enabled {
		path := cfg.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		mux.Handle("GET "+path, promhttp.HandlerFor(deps.Metrics,
			promhttp.HandlerOpts{Registry: deps.Metrics}))
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
			// No WriteTimeout: analysis responses stream for minutes.
		},
		handler: mux,
		logger:  logger,
	}
}

// Handler returns the root handler, for tests.
func (s *Server) Handler() http.Handler { return s.handler }

// Start begins listening for HTTP requests. It blocks until the server
// is shut down.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
