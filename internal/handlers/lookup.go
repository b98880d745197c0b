package handlers

import (
	"errors"
	"net/http"
	"strings"

	"audio-relay/internal/extractor"
	"audio-relay/internal/logging"
)

// LookupResponse is the result of a title lookup.
type LookupResponse struct {
	YoutubeID string `json:"youtubeId"`
}

// LookupTrack resolves a title and optional artist to a YouTube video ID.
// GET /yt/search?title=...&artist=...
func (h *Handlers) LookupTrack(w http.ResponseWriter, r *http.Request) {
	title := strings.TrimSpace(r.URL.Query().Get("title"))
	artist := strings.TrimSpace(r.URL.Query().Get("artist"))

	if title == "" {
		writeJSONError(w, "Missing required parameter: title", http.StatusBadRequest)
		return
	}

	id, err := h.lookup.Lookup(r.Context(), title, artist)
	switch {
	case err == nil:
	case errors.Is(err, extractor.ErrNoResult):
		logging.Debug("No video found for %q: %v", extractor.Query(title, artist), err)
		writeJSONError(w, "No video found for the given title and artist", http.StatusBadRequest)
		return
	default:
		logging.Error("Lookup for %q failed: %v", extractor.Query(title, artist), err)
		writeJSONError(w, "Lookup failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, LookupResponse{YoutubeID: id})
}
