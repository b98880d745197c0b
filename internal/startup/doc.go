// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// # Configuration
//
// All configuration is loaded once from environment variables via [LoadConfig]
// into an immutable [Config] that is passed to the components that need it.
// The following environment variables are supported:
//
//   - PORT: HTTP server port (default: 3000)
//   - SPOTIFY_CLIENT_ID, SPOTIFY_CLIENT_SECRET: catalog credentials
//   - YTDLP_PATH: yt-dlp executable (default: yt-dlp from PATH)
//   - TERMINATE_ON_DISCONNECT: stop yt-dlp when the client leaves (default: true)
//   - METRICS_PORT: Prometheus metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable or disable metrics server (default: true)
//   - CORS_ALLOWED_ORIGINS: comma-separated origins (default: *)
//   - LOG_LEVEL: Logging level - debug, info, warn, error (default: info)
//   - LOG_HEALTH_CHECKS: Log health check requests (default: true)
//
// Missing catalog credentials do not stop the server. Catalog searches fail
// with a server error instead, without contacting the catalog.
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo]:
//
//	go build -ldflags "-X audio-relay/internal/startup.Version=1.2.0"
//
// # Lifecycle Logging
//
//   - [LogProducerInit]: yt-dlp availability and version
//   - [LogCatalogInit]: catalog client setup
//   - [LogHTTPRoutes]: Registered HTTP routes (debug level)
//   - [LogServerStarted]: Server endpoints and startup duration
//   - [LogShutdownInitiated]: Graceful shutdown start
//   - [LogShutdownComplete]: Shutdown completion
package startup
