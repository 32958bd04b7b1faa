package server

import (
	"encoding/json"
	"net/http"

	"cs2-tracker/internal/metrics"
	"cs2-tracker/internal/service"

	"github.com/rs/zerolog"
)

// StatsServer exposes the read surface over persisted pipeline state:
// readiness, pipeline counters and the two analysis outputs. All three are
// thin pass-throughs.
type StatsServer struct {
	analysis *service.Analysis
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

func NewStatsServer(analysis *service.Analysis, m *metrics.Metrics, logger zerolog.Logger) *StatsServer {
	return &StatsServer{analysis: analysis, metrics: m, logger: logger}
}

func (s *StatsServer) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /readiness", s.handleReadiness)
	mux.HandleFunc("GET /metrics", s.handleMetrics)
	mux.HandleFunc("GET /api/stats", s.handleStats)
}

func (s *StatsServer) handleReadiness(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *StatsServer) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.metrics.Snapshot())
}

func (s *StatsServer) handleStats(w http.ResponseWriter, r *http.Request) {
	report, err := s.analysis.Report(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to compute stats report")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to compute stats"})
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
