package streaming

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"audio-relay/internal/logging"
)

// Sentinel errors for streaming operations.
var (
	// ErrWriteTimeout indicates that a write operation exceeded the configured timeout.
	// This typically occurs when a client stopped reading.
	ErrWriteTimeout = errors.New("write timeout exceeded")

	// ErrClientGone indicates that the client disconnected before the stream completed.
	// This is detected via the request context or a failed write.
	ErrClientGone = errors.New("client disconnected")

	// ErrStreamCanceled indicates that the writer was closed programmatically.
	ErrStreamCanceled = errors.New("stream canceled")
)

// TimeoutWriterConfig configures the timeout writer behavior
type TimeoutWriterConfig struct {
	// WriteTimeout is the maximum time to wait for a single write operation
	WriteTimeout time.Duration
	// OnProgress is called every MiB with bytes written
	OnProgress func(bytesWritten int64, duration time.Duration)
}

// DefaultTimeoutWriterConfig returns a 30 second write timeout.
func DefaultTimeoutWriterConfig() TimeoutWriterConfig {
	return TimeoutWriterConfig{
		WriteTimeout: 30 * time.Second,
	}
}

// TimeoutWriter wraps an http.ResponseWriter with a per-write deadline and
// flushes after every write.
type TimeoutWriter struct {
	w            http.ResponseWriter
	rc           *http.ResponseController
	ctx          context.Context
	config       TimeoutWriterConfig
	startTime    time.Time
	lastWrite    time.Time
	bytesWritten int64
	mu           sync.Mutex
	closed       bool
	deadlines    bool
}

// NewTimeoutWriter creates a new timeout-protected writer
func NewTimeoutWriter(ctx context.Context, w http.ResponseWriter, config TimeoutWriterConfig) *TimeoutWriter {
	now := time.Now()
	return &TimeoutWriter{
		w:         w,
		rc:        http.NewResponseController(w),
		ctx:       ctx,
		config:    config,
		startTime: now,
		lastWrite: now,
		deadlines: config.WriteTimeout > 0,
	}
}

// Write implements io.Writer. Each call is one bounded write followed by a flush.
func (tw *TimeoutWriter) Write(p []byte) (int, error) {
	tw.mu.Lock()
	if tw.closed {
		tw.mu.Unlock()
		return 0, ErrStreamCanceled
	}
	tw.mu.Unlock()

	if err := tw.ctx.Err(); err != nil {
		return 0, ErrClientGone
	}

	if tw.deadlines {
		if err := tw.rc.SetWriteDeadline(time.Now().Add(tw.config.WriteTimeout)); err != nil {
			// Recorders and some wrappers cannot do deadlines; write unbounded.
			if !errors.Is(err, http.ErrNotSupported) {
				logging.Debug("Failed to set write deadline: %v", err)
			}
			tw.deadlines = false
		}
	}

	n, err := tw.w.Write(p)
	if err == nil {
		err = tw.rc.Flush()
		if errors.Is(err, http.ErrNotSupported) {
			err = nil
		}
	}
	if err != nil {
		return n, tw.writeError(err)
	}

	tw.mu.Lock()
	tw.lastWrite = time.Now()
	tw.bytesWritten += int64(n)
	bytesWritten := tw.bytesWritten
	tw.mu.Unlock()

	if tw.config.OnProgress != nil && bytesWritten%(1024*1024) < int64(n) {
		tw.config.OnProgress(bytesWritten, time.Since(tw.startTime))
	}
	return n, nil
}

// writeError classifies a failed write.
func (tw *TimeoutWriter) writeError(err error) error {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrWriteTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrClientGone, err)
}

// Close marks the writer as closed and clears any pending deadline.
func (tw *TimeoutWriter) Close() error {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	if tw.closed {
		return nil
	}
	tw.closed = true

	if tw.deadlines {
		return tw.rc.SetWriteDeadline(time.Time{})
	}
	return nil
}

// Stats returns streaming statistics
func (tw *TimeoutWriter) Stats() (bytesWritten int64, duration time.Duration) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	return tw.bytesWritten, time.Since(tw.startTime)
}

// Idle returns the time since the last successful write.
func (tw *TimeoutWriter) Idle() time.Duration {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	return time.Since(tw.lastWrite)
}
