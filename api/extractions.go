package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/hlog"

	"github.com/ocrfields/extract-json-service/internal/db"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// ListExtractions - GET /extractions?limit=N
//
// Returns the newest extraction log rows. Only outcome metadata is
// stored, never the recognized field values.
func (h *Handler) ListExtractions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if h.store == nil {
		h.sendError(w, http.StatusServiceUnavailable, "database not available")
		return
	}

	limit := defaultListLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		if val, err := strconv.Atoi(l); err == nil && val > 0 && val <= maxListLimit {
			limit = val
		}
	}

	extractions, err := h.store.RecentExtractions(r.Context(), limit)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("failed to list extractions")
		h.sendError(w, http.StatusInternalServerError, "failed to list extractions")
		return
	}
	if extractions == nil {
		extractions = []db.Extraction{}
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"extractions": extractions,
		"count":       len(extractions),
		"limit":       limit,
	})
}

// sendError writes a plain {"error": message} body
func (h *Handler) sendError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
