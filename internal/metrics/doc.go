// Package metrics provides Prometheus instrumentation for the audio relay.
//
// All metrics are prefixed with "audio_relay_" and registered on the default
// registry through promauto, so they are served by promhttp.Handler on the
// metrics port.
//
// # Metric Categories
//
// ## HTTP Metrics
//
//   - HTTPRequestsTotal: requests by method, route template and status
//   - HTTPRequestDuration: request duration by method and route template
//   - HTTPRequestsInFlight: requests currently being served
//
// ## Relay Metrics
//
// One relay exists per streaming request. Its outcome label is one of
// "completed", "failed" or "abandoned":
//
//   - RelaysStartedTotal: relays started
//   - RelaysFinishedTotal: relays finished, by outcome
//   - RelaysInProgress: relays currently pumping
//   - RelayBytesTotal: bytes moved from producer stdout into relay queues
//   - RelayDuration: wall time from start to finish, by outcome
//   - RelayQueueFullTotal: enqueue attempts that found the queue full and had to wait
//
// ## Producer Metrics
//
//   - ProducerSpawnsTotal: spawn attempts by status ("success" or "error")
//   - ProducerExitsTotal: reaped producers by exit class ("ok", "error", "signaled")
//   - ProducerTerminationsTotal: producers terminated after their consumer went away
//
// ## Lookup and Catalog Metrics
//
//   - LookupRequestsTotal: lookups by status ("found", "not_found", "error", "cached")
//   - CatalogUpstreamTotal: outbound catalog calls by operation ("token", "search") and status
//   - CatalogUpstreamDuration: outbound catalog call duration by operation
//   - CatalogTokenCacheTotal: token cache lookups by result ("hit", "miss")
//
// ## Application Info
//
//   - AppInfo: constant 1 labeled with version, commit and Go version
//
// Call InitializeMetrics once at startup so that every label combination is
// exported from the first scrape.
package metrics
