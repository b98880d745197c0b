package handlers

import (
	"errors"
	"net/http"

	"audio-relay/internal/logging"
	"audio-relay/internal/relay"
	"audio-relay/internal/streaming"

	"github.com/gorilla/mux"
)

// VideoIDLength is the length of every YouTube video ID.
const VideoIDLength = 11

// ValidVideoID reports whether id has the shape of a YouTube video ID:
// eleven characters from [A-Za-z0-9_-].
func ValidVideoID(id string) bool {
	if len(id) != VideoIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}

// VideoURL returns the watch URL handed to yt-dlp.
func VideoURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}

// StreamAudio streams the audio of a YouTube video as mp3.
// GET /youtube/{id} and GET /stream/{id}
func (h *Handlers) StreamAudio(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !ValidVideoID(id) {
		writeJSONError(w, "Invalid video ID: expected 11 characters of [A-Za-z0-9_-]", http.StatusBadRequest)
		return
	}

	logging.Info("Requested YouTube video ID: %s", id)

	proc, err := h.launcher.Launch(r.Context(), VideoURL(id))
	if err != nil {
		if r.Context().Err() != nil {
			return
		}
		logging.Error("Failed to start yt-dlp for %s: %v", id, err)
		writeJSONError(w, "Failed to start audio extraction", http.StatusInternalServerError)
		return
	}

	rl := relay.New(h.relayConfig)
	if err := rl.Start(proc); err != nil {
		proc.Terminate()
		_ = proc.Wait()
		logging.Error("Failed to start relay for %s: %v", id, err)
		writeJSONError(w, "Failed to start audio extraction", http.StatusInternalServerError)
		return
	}

	res, err := streaming.Deliver(r.Context(), w, rl, streaming.AudioHeaders, h.writerConfig)
	switch {
	case err == nil:
		logging.Debug("Stream %s complete: %d bytes in %v", id, res.Bytes, res.Duration)

	case errors.Is(err, streaming.ErrClientGone), errors.Is(err, streaming.ErrWriteTimeout):
		logging.Debug("Client left stream %s after %d bytes: %v", id, res.Bytes, err)

	case !res.Committed:
		logging.Warn("yt-dlp failed before any audio for %s: %v", id, err)
		writeJSONError(w, "Audio extraction failed", http.StatusInternalServerError)

	default:
		// The status is already sent. Dropping the connection without the
		// final chunk lets the client tell a failed stream from a short one.
		logging.Warn("Stream %s aborted after %d bytes: %v", id, res.Bytes, err)
		panic(http.ErrAbortHandler)
	}
}
