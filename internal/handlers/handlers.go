package handlers

import (
	"context"
	"sync/atomic"
	"time"

	"audio-relay/internal/catalog"
	"audio-relay/internal/extractor"
	"audio-relay/internal/relay"
	"audio-relay/internal/startup"
	"audio-relay/internal/streaming"
)

// TrackLookup resolves a title and optional artist to a video ID.
type TrackLookup interface {
	Lookup(ctx context.Context, title, artist string) (string, error)
}

// CatalogSearcher searches the track catalog.
type CatalogSearcher interface {
	Search(ctx context.Context, query string) ([]catalog.Track, error)
}

type Handlers struct {
	launcher     *extractor.Launcher
	lookup       TrackLookup
	catalog      CatalogSearcher
	relayConfig  relay.Config
	writerConfig streaming.TimeoutWriterConfig

	catalogConfigured bool
	producerAvailable atomic.Bool
	startTime         time.Time
}

func New(launcher *extractor.Launcher, lookup TrackLookup, cat CatalogSearcher, config *startup.Config) *Handlers {
	relayConfig := relay.DefaultConfig()
	relayConfig.TerminateOnAbandon = config.TerminateOnDisconnect

	h := &Handlers{
		launcher:          launcher,
		lookup:            lookup,
		catalog:           cat,
		relayConfig:       relayConfig,
		writerConfig:      streaming.DefaultTimeoutWriterConfig(),
		catalogConfigured: config.CatalogConfigured(),
		startTime:         time.Now(),
	}
	h.producerAvailable.Store(true)
	return h
}

// SetProducerAvailable records the result of the startup yt-dlp check.
func (h *Handlers) SetProducerAvailable(ok bool) {
	h.producerAvailable.Store(ok)
}
