package middleware

import (
	"io"
	"mime"
	"net/http"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
)

// CompressionConfig holds configuration for the compression middleware
type CompressionConfig struct {
	// MinSize is the smallest JSON or text body worth compressing.
	MinSize int
	// SkipPaths are path prefixes passed through untouched. Audio streams
	// must reach the client chunk by chunk, never held back in a buffer.
	SkipPaths []string
}

// DefaultCompressionConfig compresses JSON bodies of 1 KiB or more and
// leaves the audio and metrics routes alone.
func DefaultCompressionConfig() CompressionConfig {
	return CompressionConfig{
		MinSize:   1024,
		SkipPaths: []string{"/youtube/", "/stream/", "/metrics"},
	}
}

var gzipWriterPool = sync.Pool{
	New: func() interface{} {
		return gzip.NewWriter(io.Discard)
	},
}

// compressible reports whether a Content-Type is one of the API's text bodies.
func compressible(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasPrefix(mediaType, "text/")
}

// gzipResponseWriter holds the body back until MinSize bytes or the end of
// the response, then decides once whether to compress.
type gzipResponseWriter struct {
	http.ResponseWriter
	minSize int
	pending []byte
	status  int
	decided bool
	gz      *gzip.Writer
}

func newGzipResponseWriter(w http.ResponseWriter, minSize int) *gzipResponseWriter {
	return &gzipResponseWriter{ResponseWriter: w, minSize: minSize, status: http.StatusOK}
}

func (g *gzipResponseWriter) WriteHeader(statusCode int) {
	if !g.decided {
		g.status = statusCode
	}
}

func (g *gzipResponseWriter) Write(p []byte) (int, error) {
	if g.decided {
		if g.gz != nil {
			return g.gz.Write(p)
		}
		return g.ResponseWriter.Write(p)
	}

	g.pending = append(g.pending, p...)
	if len(g.pending) > g.minSize {
		if err := g.decide(); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}

// decide commits the status line and the pending bytes.
func (g *gzipResponseWriter) decide() error {
	if g.decided {
		return nil
	}
	g.decided = true

	h := g.Header()
	if len(g.pending) >= g.minSize && compressible(h.Get("Content-Type")) {
		h.Del("Content-Length")
		h.Set("Content-Encoding", "gzip")
		h.Add("Vary", "Accept-Encoding")

		g.gz = gzipWriterPool.Get().(*gzip.Writer)
		g.gz.Reset(g.ResponseWriter)
	}

	g.ResponseWriter.WriteHeader(g.status)

	pending := g.pending
	g.pending = nil
	if len(pending) == 0 {
		return nil
	}
	var err error
	if g.gz != nil {
		_, err = g.gz.Write(pending)
	} else {
		_, err = g.ResponseWriter.Write(pending)
	}
	return err
}

// finish ends the gzip stream after the handler returned normally.
func (g *gzipResponseWriter) finish() error {
	if err := g.decide(); err != nil {
		return err
	}
	if g.gz == nil {
		return nil
	}
	err := g.gz.Close()
	g.release()
	return err
}

// release returns the gzip writer to the pool without writing a trailer.
func (g *gzipResponseWriter) release() {
	if g.gz == nil {
		return
	}
	g.gz.Reset(io.Discard)
	gzipWriterPool.Put(g.gz)
	g.gz = nil
}

func (g *gzipResponseWriter) Flush() {
	_ = g.decide()
	if g.gz != nil {
		_ = g.gz.Flush()
	}
	if f, ok := g.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap returns the underlying writer for http.ResponseController.
func (g *gzipResponseWriter) Unwrap() http.ResponseWriter {
	return g.ResponseWriter
}

// Compression returns a middleware that gzips JSON and text responses.
//
// A handler that aborts with a panic leaves the gzip stream unterminated, so
// the client sees the transfer fail rather than a short but valid body.
func Compression(config CompressionConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodHead || !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
				next.ServeHTTP(w, r)
				return
			}
			for _, prefix := range config.SkipPaths {
				if strings.HasPrefix(r.URL.Path, prefix) {
					next.ServeHTTP(w, r)
					return
				}
			}

			gzw := newGzipResponseWriter(w, config.MinSize)
			returned := false
			defer func() {
				if !returned {
					gzw.release()
					return
				}
				_ = gzw.finish()
			}()

			next.ServeHTTP(gzw, r)
			returned = true
		})
	}
}
