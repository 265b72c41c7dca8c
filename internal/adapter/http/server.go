package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/rainfall-features/internal/report"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SummaryProvider exposes the summary of the most recent successful run.
type SummaryProvider interface {
	LastSummary() (report.Summary, bool)
}

// Server exposes health, readiness, metrics, and last-run summary endpoints.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics and
// /summary routes. The pipeline serves as both readiness checker and
// summary provider.
func NewServer(addr string, ready sharedobs.ReadinessChecker, summaries SummaryProvider, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /summary", handleSummary(summaries))

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// summaryResponse is the JSON form of a run summary.
type summaryResponse struct {
	RunID          string    `json:"run_id"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
	Input          string    `json:"input"`
	Outputs        []string  `json:"outputs"`
	Rows           int       `json:"rows"`
	Columns        int       `json:"columns"`
	FeatureCount   int       `json:"feature_count"`
	SampleFeatures []string  `json:"sample_features"`
	Degenerate     []string  `json:"degenerate_columns,omitempty"`
}

func handleSummary(summaries SummaryProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		s, ok := summaries.LastSummary()
		if !ok {
			sharedobs.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "no completed run"})
			return
		}
		sharedobs.WriteJSON(w, http.StatusOK, summaryResponse{
			RunID:          s.RunID,
			StartedAt:      s.StartedAt,
			FinishedAt:     s.FinishedAt,
			Input:          s.Input,
			Outputs:        s.Outputs,
			Rows:           s.Rows,
			Columns:        s.ColumnsAfter,
			FeatureCount:   s.FeatureCount,
			SampleFeatures: s.SampleFeatures,
			Degenerate:     s.Degenerate,
		})
	}
}
