package handlers

import (
	"net/http"
	"runtime"
	"time"

	"audio-relay/internal/startup"
)

const (
	statusHealthy  = "healthy"
	statusDegraded = "degraded"
)

// HealthResponse contains the health check response
type HealthResponse struct {
	Status            string `json:"status"`
	Ready             bool   `json:"ready"`
	Version           string `json:"version"`
	Uptime            string `json:"uptime"`
	ActiveStreams     int    `json:"activeStreams"`
	ProducerAvailable bool   `json:"producerAvailable"`
	CatalogConfigured bool   `json:"catalogConfigured"`

	// System info
	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`
}

// HealthCheck returns the health status of the service. It is degraded,
// but still 200, when yt-dlp or the catalog credentials are missing.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	producer := h.producerAvailable.Load()

	response := HealthResponse{
		Status:            statusHealthy,
		Ready:             producer,
		Version:           startup.Version,
		Uptime:            time.Since(h.startTime).Round(time.Second).String(),
		ActiveStreams:     h.launcher.Active(),
		ProducerAvailable: producer,
		CatalogConfigured: h.catalogConfigured,
		GoVersion:         runtime.Version(),
		NumCPU:            runtime.NumCPU(),
		NumGoroutine:      runtime.NumGoroutine(),
	}

	if !producer || !h.catalogConfigured {
		response.Status = statusDegraded
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if r.Method != http.MethodHead {
		writeJSON(w, response)
	}
}

// LivenessCheck is a simple liveness probe (always returns 200 if server is running)
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	// For HEAD requests, only send headers (no body)
	if r.Method != http.MethodHead {
		writeJSON(w, map[string]string{
			"status": "alive",
		})
	}
}

// ReadinessCheck returns 200 only when yt-dlp is available
func (h *Handlers) ReadinessCheck(w http.ResponseWriter, _ *http.Request) {
	if h.producerAvailable.Load() {
		writeJSONStatus(w, "ready", http.StatusOK)
	} else {
		writeJSONStatus(w, "not_ready", http.StatusServiceUnavailable)
	}
}
