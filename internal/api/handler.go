package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/alexivanou/ddigeo/internal/model"
	"github.com/alexivanou/ddigeo/internal/service"
	"github.com/gorilla/mux"
)

// maxRecordBytes caps the size of a posted codebook record
const maxRecordBytes = 1 << 20

// Handler handles HTTP requests
type Handler struct {
	service service.ServiceInterface
}

// NewHandler creates a new handler instance
func NewHandler(service service.ServiceInterface) *Handler {
	return &Handler{service: service}
}

// Browse handles GET /api/v1/geo/ and the continent, country, state and
// place levels below it
func (h *Handler) Browse(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	req := model.BrowseRequest{
		Continent: vars["continent"],
		Country:   vars["country"],
		State:     vars["state"],
	}

	if idStr, ok := vars["geonames_id"]; ok {
		id, err := strconv.Atoi(idStr)
		if err != nil || id <= 0 {
			http.Error(w, "invalid geonames id", http.StatusBadRequest)
			return
		}
		req.GeonamesID = id
	}

	page, err := h.service.Browse(r.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			http.Error(w, "place not found", http.StatusNotFound)
			return
		}
		log.Printf("Error browsing locations: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, page)
}

// Geocode handles POST /api/v1/geocode
func (h *Handler) Geocode(w http.ResponseWriter, r *http.Request) {
	var record model.Codebook
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRecordBytes))
	if err := decoder.Decode(&record); err != nil {
		http.Error(w, "invalid record body", http.StatusBadRequest)
		return
	}

	response, err := h.service.Geocode(r.Context(), &record)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoCoverage):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, service.ErrGeocoderUnavailable):
			http.Error(w, "geocoder unavailable", http.StatusServiceUnavailable)
		default:
			log.Printf("Error geocoding record %q: %v", record.ID, err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, response)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
