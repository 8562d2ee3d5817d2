package api

import (
	"github.com/alexivanou/ddigeo/internal/browse"
	"github.com/alexivanou/ddigeo/internal/service"
	"github.com/alexivanou/ddigeo/internal/stats"
	"github.com/gorilla/mux"
)

// NewRouter creates a new HTTP router
func NewRouter(service service.ServiceInterface, statsCollector *stats.Collector) *mux.Router {
	handler := NewHandler(service)
	statsHandler := NewStatsHandler(statsCollector)

	router := mux.NewRouter()

	// Health check
	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// API v1
	v1 := router.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/geocode", handler.Geocode).Methods("POST")
	v1.HandleFunc("/stats", statsHandler.GetStats).Methods("GET")

	// Browse paths mirror browse.Path
	geo := v1.PathPrefix(browse.RoutePrefix).Subrouter()
	geo.HandleFunc("/", handler.Browse).Methods("GET")
	geo.HandleFunc("/{continent}/", handler.Browse).Methods("GET")
	geo.HandleFunc("/{continent}/{country}/", handler.Browse).Methods("GET")
	geo.HandleFunc("/{continent}/{country}/{state}/", handler.Browse).Methods("GET")
	geo.HandleFunc("/{continent}/{country}/{state}/{geonames_id:[0-9]+}/", handler.Browse).Methods("GET")

	return router
}
