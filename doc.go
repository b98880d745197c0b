// Package main provides the entry point for the Audio Relay server.
//
// Audio Relay streams the audio track of an online video to HTTP clients as
// it is being extracted. Each request spawns its own yt-dlp process whose
// standard output is relayed through a bounded queue into a chunked
// audio/mpeg response. Two search endpoints resolve a free-text title to a
// video ID and search the Spotify catalog.
//
// # Application Lifecycle
//
//  1. Configuration Loading: Reads and validates environment variables
//  2. Metrics Initialization: Registers Prometheus collectors
//  3. Component Initialization:
//     - Producer check: Verifies the yt-dlp binary runs
//     - Launcher: Spawns and tracks producer processes
//     - Searcher: Resolves titles with cached yt-dlp lookups
//     - Catalog client: Exchanges client credentials and searches tracks
//  4. HTTP Server Setup: Configures routes and middleware
//  5. Graceful Shutdown: Handles SIGINT/SIGTERM and stops producers
//
// # HTTP Server
//
// The application runs two HTTP servers:
//
//  1. Main Server (default port 3000):
//     - GET /youtube/{id} and /stream/{id}: audio stream
//     - GET /yt/search?title=&artist=: title lookup
//     - POST /spotify/search: catalog search
//     - Health, readiness and version endpoints
//
//  2. Metrics Server (default port 9090, optional):
//     - Prometheus metrics endpoint (/metrics)
//     - Health check endpoint (/health)
//
// # Environment Variables
//
//   - PORT: Main HTTP server port (default: 3000)
//   - METRICS_PORT: Metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable metrics server (default: true)
//   - LOG_LEVEL: Logging level (debug/info/warn/error)
//   - LOG_HEALTH_CHECKS: Log health check requests (default: true)
//   - YTDLP_PATH: yt-dlp executable (default: yt-dlp)
//   - TERMINATE_ON_DISCONNECT: Stop the producer when the client leaves (default: true)
//   - SPOTIFY_CLIENT_ID, SPOTIFY_CLIENT_SECRET: Catalog credentials
//   - CORS_ALLOWED_ORIGINS: Comma separated origins (default: *)
//
// # Graceful Shutdown
//
//  1. Terminate all live producer processes
//  2. Shutdown main HTTP server (30s timeout)
//  3. Shutdown metrics server (if running)
//  4. Release lookup and catalog caches
//
// # Runtime Requirements
//
// yt-dlp and ffmpeg must be installed. Process group termination relies on
// Unix signals, so the server targets Linux and macOS.
package main
