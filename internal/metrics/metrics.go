package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audio_relay_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "audio_relay_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 180, 600},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "audio_relay_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Relay metrics
var (
	RelaysStartedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "audio_relay_relays_started_total",
			Help: "Total number of stream relays started",
		},
	)

	RelaysFinishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audio_relay_relays_finished_total",
			Help: "Total number of stream relays finished, by outcome",
		},
		[]string{"outcome"}, // "completed", "failed", "abandoned"
	)

	RelaysInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "audio_relay_relays_in_progress",
			Help: "Number of stream relays currently pumping producer output",
		},
	)

	RelayBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "audio_relay_relay_bytes_total",
			Help: "Total bytes read from producer stdout and enqueued",
		},
	)

	RelayDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "audio_relay_relay_duration_seconds",
			Help:    "Stream relay duration in seconds, by outcome",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300, 600, 1800},
		},
		[]string{"outcome"},
	)

	RelayQueueFullTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "audio_relay_relay_queue_full_total",
			Help: "Total enqueue attempts that found the relay queue full",
		},
	)
)

// Producer metrics
var (
	ProducerSpawnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audio_relay_producer_spawns_total",
			Help: "Total number of producer process spawn attempts",
		},
		[]string{"status"}, // "success", "error"
	)

	ProducerExitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audio_relay_producer_exits_total",
			Help: "Total number of reaped producer processes, by exit class",
		},
		[]string{"class"}, // "ok", "error", "signaled"
	)

	ProducerTerminationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "audio_relay_producer_terminations_total",
			Help: "Total number of producers terminated after their consumer disappeared",
		},
	)
)

// Lookup and catalog metrics
var (
	LookupRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audio_relay_lookup_requests_total",
			Help: "Total number of title lookups, by status",
		},
		[]string{"status"}, // "found", "not_found", "error", "cached"
	)

	CatalogUpstreamTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audio_relay_catalog_upstream_requests_total",
			Help: "Total number of outbound catalog requests",
		},
		[]string{"operation", "status"},
	)

	CatalogUpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "audio_relay_catalog_upstream_duration_seconds",
			Help:    "Outbound catalog request duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"operation"},
	)

	CatalogTokenCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audio_relay_catalog_token_cache_total",
			Help: "Total number of bearer token cache lookups",
		},
		[]string{"result"}, // "hit", "miss"
	)
)

// Application info metric
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "audio_relay_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version"},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}
