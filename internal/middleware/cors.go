package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// CORSConfig holds configuration for the CORS middleware
type CORSConfig struct {
	AllowedOrigins []string
	AllowedHeaders []string
	MaxAge         int
}

// DefaultCORSConfig allows any origin to call the API
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowedOrigins: []string{"*"},
		AllowedHeaders: []string{"Content-Type", "Range"},
		MaxAge:         600,
	}
}

// CORS returns a middleware that answers preflight requests and sets
// Access-Control headers for the configured origins.
func CORS(config CORSConfig) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: config.AllowedOrigins,
		AllowedHeaders: config.AllowedHeaders,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodHead,
		},
		MaxAge: config.MaxAge,
	})
	return c.Handler
}
