package extractor

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"audio-relay/internal/logging"
	"audio-relay/internal/metrics"

	"github.com/Yiling-J/theine-go"
	"golang.org/x/sync/singleflight"
)

// DefaultLookupArgs prints the ID of the first search hit without downloading.
// The "ytsearch1:<query>" argument is appended last.
var DefaultLookupArgs = []string{
	"--print", "id",
	"--no-playlist",
	"--skip-download",
	"--no-warnings",
}

// SearcherConfig controls title lookups.
type SearcherConfig struct {
	Binary   string
	Args     []string
	Timeout  time.Duration
	CacheTTL time.Duration // 0 disables caching
	CacheMax int64
}

// DefaultSearcherConfig returns the lookup configuration for yt-dlp.
func DefaultSearcherConfig(binary string) SearcherConfig {
	if binary == "" {
		binary = "yt-dlp"
	}
	return SearcherConfig{
		Binary:   binary,
		Args:     append([]string(nil), DefaultLookupArgs...),
		Timeout:  30 * time.Second,
		CacheTTL: time.Hour,
		CacheMax: 4096,
	}
}

// Searcher resolves free-text queries to video identifiers.
type Searcher struct {
	config SearcherConfig
	cache  *theine.Cache[string, string]
	group  singleflight.Group
}

// NewSearcher creates a Searcher. Caching is skipped when CacheTTL is zero.
func NewSearcher(config SearcherConfig) (*Searcher, error) {
	s := &Searcher{config: config}
	if config.CacheTTL > 0 {
		max := config.CacheMax
		if max <= 0 {
			max = 1024
		}
		cache, err := theine.NewBuilder[string, string](max).Build()
		if err != nil {
			return nil, fmt.Errorf("failed to build lookup cache: %w", err)
		}
		s.cache = cache
	}
	return s, nil
}

// Close releases the cache.
func (s *Searcher) Close() {
	if s.cache != nil {
		s.cache.Close()
	}
}

// Query joins title and optional artist into the search string.
func Query(title, artist string) string {
	title = strings.TrimSpace(title)
	artist = strings.TrimSpace(artist)
	if artist == "" {
		return title
	}
	return title + " " + artist
}

// Lookup runs a single-result search. Empty output or a non-zero exit is
// reported as ErrNoResult; failing to start the tool is a *SpawnError.
func (s *Searcher) Lookup(ctx context.Context, title, artist string) (string, error) {
	query := Query(title, artist)
	if query == "" {
		return "", ErrNoResult
	}
	key := strings.ToLower(query)

	if s.cache != nil {
		if id, ok := s.cache.Get(key); ok {
			metrics.LookupRequestsTotal.WithLabelValues("cached").Inc()
			return id, nil
		}
	}

	// The shared run outlives any one caller; each caller stops waiting on
	// its own context.
	shared := context.WithoutCancel(ctx)
	ch := s.group.DoChan(key, func() (interface{}, error) {
		return s.run(shared, query)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("lookup %q: %w", query, ctx.Err())
	case res = <-ch:
	}

	v, err := res.Val, res.Err
	if err != nil {
		if errors.Is(err, ErrNoResult) {
			metrics.LookupRequestsTotal.WithLabelValues("not_found").Inc()
		} else {
			metrics.LookupRequestsTotal.WithLabelValues("error").Inc()
		}
		return "", err
	}

	id := v.(string)
	metrics.LookupRequestsTotal.WithLabelValues("found").Inc()
	if s.cache != nil {
		s.cache.SetWithTTL(key, id, 1, s.config.CacheTTL)
	}
	return id, nil
}

func (s *Searcher) run(ctx context.Context, query string) (string, error) {
	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	args := make([]string, 0, len(s.config.Args)+1)
	args = append(args, s.config.Args...)
	args = append(args, "ytsearch1:"+query)

	cmd := exec.CommandContext(ctx, s.config.Binary, args...)
	var stdout bytes.Buffer
	stderr := newTailBuffer(stderrTailSize)
	cmd.Stdout = &stdout
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		return "", &SpawnError{Binary: s.config.Binary, Err: err}
	}

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("lookup %q: %w", query, ctx.Err())
		}
		logging.Debug("Lookup for %q failed: %v (%s)", query, err, lastLine(stderr.String()))
		return "", fmt.Errorf("%w: %s", ErrNoResult, query)
	}

	id := firstLine(stdout.Bytes())
	if id == "" {
		return "", fmt.Errorf("%w: %s", ErrNoResult, query)
	}
	return id, nil
}

func firstLine(b []byte) string {
	scanner := bufio.NewScanner(bytes.NewReader(b))
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			return line
		}
	}
	return ""
}
