package metrics

// Relay outcome labels.
const (
	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
	OutcomeAbandoned = "abandoned"
)

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	for _, outcome := range []string{OutcomeCompleted, OutcomeFailed, OutcomeAbandoned} {
		RelaysFinishedTotal.WithLabelValues(outcome)
		RelayDuration.WithLabelValues(outcome)
	}

	for _, status := range []string{"success", "error"} {
		ProducerSpawnsTotal.WithLabelValues(status)
	}

	for _, class := range []string{"ok", "error", "signaled"} {
		ProducerExitsTotal.WithLabelValues(class)
	}

	for _, status := range []string{"found", "not_found", "error", "cached"} {
		LookupRequestsTotal.WithLabelValues(status)
	}

	for _, op := range []string{"token", "search"} {
		CatalogUpstreamTotal.WithLabelValues(op, "success")
		CatalogUpstreamTotal.WithLabelValues(op, "error")
		CatalogUpstreamDuration.WithLabelValues(op)
	}

	CatalogTokenCacheTotal.WithLabelValues("hit")
	CatalogTokenCacheTotal.WithLabelValues("miss")
}
