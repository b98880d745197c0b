package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"audio-relay/internal/catalog"
	"audio-relay/internal/extractor"
	"audio-relay/internal/startup"

	"github.com/gorilla/mux"
)

// fakeLookup records calls and returns a fixed result.
type fakeLookup struct {
	mu     sync.Mutex
	calls  int
	title  string
	artist string
	id     string
	err    error
}

func (f *fakeLookup) Lookup(_ context.Context, title, artist string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.title, f.artist = title, artist
	return f.id, f.err
}

// fakeCatalog records calls and returns a fixed result.
type fakeCatalog struct {
	mu     sync.Mutex
	calls  int
	query  string
	tracks []catalog.Track
	err    error
}

func (f *fakeCatalog) Search(_ context.Context, query string) ([]catalog.Track, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.query = query
	return f.tracks, f.err
}

// shellLauncher runs script with /bin/sh in place of yt-dlp. The target URL
// is available to the script as $1.
func shellLauncher(script string) *extractor.Launcher {
	cfg := extractor.DefaultConfig("/bin/sh")
	cfg.Args = []string{"-c", script, "yt-dlp"}
	cfg.TerminateGrace = 200 * time.Millisecond
	return extractor.New(cfg)
}

func newTestHandlers(script string) *Handlers {
	config := &startup.Config{
		TerminateOnDisconnect: true,
		SpotifyClientID:       "id",
		SpotifyClientSecret:   "secret",
	}
	return New(shellLauncher(script), &fakeLookup{}, &fakeCatalog{}, config)
}

func streamRequest(id string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/youtube/"+id, http.NoBody)
	return mux.SetURLVars(req, map[string]string{"id": id})
}

// waitFor polls cond until it is true or the deadline passes.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}
