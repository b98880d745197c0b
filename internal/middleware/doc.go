// Package middleware provides HTTP middleware for the audio relay server.
//
// It includes:
//   - Request logging in W3C Extended Log Format
//   - Prometheus request metrics labeled by route template
//   - Response compression (gzip) for JSON, never for audio streams
//   - CORS handling
//
// Every wrapping ResponseWriter implements Flush and Unwrap so streamed
// responses are flushed per chunk and write deadlines reach the connection.
package middleware
