package api

import (
	"log"
	"net/http"

	"github.com/alexivanou/ddigeo/internal/stats"
)

// StatsHandler serves cache and runtime statistics
type StatsHandler struct {
	collector *stats.Collector
}

// NewStatsHandler creates a stats handler; a nil collector disables the endpoint
func NewStatsHandler(collector *stats.Collector) *StatsHandler {
	return &StatsHandler{collector: collector}
}

// GetStats handles GET /api/v1/stats
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	if h.collector == nil {
		http.Error(w, "statistics unavailable", http.StatusServiceUnavailable)
		return
	}

	s, err := h.collector.Collect(r.Context())
	if err != nil {
		log.Printf("Error collecting statistics: %v", err)
		http.Error(w, "failed to collect statistics", http.StatusInternalServerError)
		return
	}

	writeJSON(w, s)
}
