package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"audio-relay/internal/catalog"
	"audio-relay/internal/logging"
)

const maxSearchBodySize = 64 * 1024

// CatalogSearchRequest is the body of a catalog search.
type CatalogSearchRequest struct {
	Query string `json:"query"`
}

// SearchCatalog searches the Spotify catalog and returns normalized tracks.
// POST /spotify/search
func (h *Handlers) SearchCatalog(w http.ResponseWriter, r *http.Request) {
	var req CatalogSearchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSearchBodySize)).Decode(&req); err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	query := strings.TrimSpace(req.Query)
	if query == "" {
		writeJSONError(w, "Missing required field: query", http.StatusBadRequest)
		return
	}

	tracks, err := h.catalog.Search(r.Context(), query)
	switch {
	case err == nil:
	case errors.Is(err, catalog.ErrMissingCredentials):
		logging.Error("Catalog search rejected: %v", err)
		writeJSONError(w, "Spotify credentials are not configured", http.StatusInternalServerError)
		return
	default:
		logging.Warn("Catalog search for %q failed: %v", query, err)
		writeJSONError(w, "Spotify request failed", http.StatusBadGateway)
		return
	}

	if tracks == nil {
		tracks = []catalog.Track{}
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, tracks)
}
