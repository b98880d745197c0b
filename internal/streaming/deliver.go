package streaming

import (
	"context"
	"net/http"
	"time"

	"audio-relay/internal/logging"
	"audio-relay/internal/relay"
)

// Source is the consumer side of a relay.
type Source interface {
	Chunks() <-chan relay.Chunk
	Abandon()
}

// Result describes a finished delivery.
type Result struct {
	// Committed is true once the status line and headers were written.
	Committed bool
	// Bytes is the number of body bytes accepted by the client.
	Bytes int64
	// Duration is the time spent delivering.
	Duration time.Duration
}

// AudioHeaders marks the response as an unbounded, uncacheable mp3 stream.
func AudioHeaders(h http.Header) {
	h.Set("Content-Type", "audio/mpeg")
	h.Set("Cache-Control", "no-cache")
	h.Set("Transfer-Encoding", "chunked")
	h.Set("X-Content-Type-Options", "nosniff")
}

// Deliver drains src into w in order.
//
// Headers are committed only when the first message arrives, so a source that
// fails before producing anything leaves w untouched and the error is returned
// with Committed false for the caller to report. After commit a source error
// ends the body early and is returned as is.
//
// When the client goes away, through ctx or a failed write, Deliver abandons
// src and returns an error wrapping ErrClientGone or ErrWriteTimeout.
func Deliver(ctx context.Context, w http.ResponseWriter, src Source, header func(http.Header), config TimeoutWriterConfig) (Result, error) {
	tw := NewTimeoutWriter(ctx, w, config)
	defer func() {
		if err := tw.Close(); err != nil {
			logging.Debug("Failed to close timeout writer: %v", err)
		}
	}()

	var res Result
	finish := func(err error) (Result, error) {
		res.Bytes, res.Duration = tw.Stats()
		return res, err
	}

	commit := func() {
		if header != nil {
			header(w.Header())
		}
		w.WriteHeader(http.StatusOK)
		res.Committed = true
	}

	chunks := src.Chunks()
	for {
		select {
		case <-ctx.Done():
			src.Abandon()
			return finish(ErrClientGone)

		case chunk, ok := <-chunks:
			if !ok {
				if !res.Committed {
					commit()
				}
				return finish(nil)
			}
			if chunk.Err != nil {
				return finish(chunk.Err)
			}
			if !res.Committed {
				commit()
			}
			if _, err := tw.Write(chunk.Data); err != nil {
				src.Abandon()
				return finish(err)
			}
		}
	}
}
