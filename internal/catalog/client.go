package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"audio-relay/internal/logging"
	"audio-relay/internal/metrics"

	"github.com/Yiling-J/theine-go"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/singleflight"
)

// Spotify endpoints and limits.
const (
	DefaultTokenURL  = "https://accounts.spotify.com/api/token"
	DefaultSearchURL = "https://api.spotify.com/v1/search"
	DefaultLimit     = 10

	// tokenExpirySkew is subtracted from expires_in before caching a token.
	tokenExpirySkew = 60 * time.Second
	// maxResponseSize caps upstream response bodies.
	maxResponseSize = 4 << 20
)

var (
	// ErrMissingCredentials means the client ID or secret is not configured.
	// No outbound call is made.
	ErrMissingCredentials = errors.New("catalog credentials not configured")

	// ErrUpstream wraps every failed token exchange or search call.
	ErrUpstream = errors.New("catalog upstream error")
)

// Track is a normalized search result.
type Track struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Artists []string `json:"artists"`
	Artwork string   `json:"artwork"`
}

// Config controls a Client.
type Config struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	SearchURL    string
	Limit        int
	Timeout      time.Duration
	HTTPClient   *http.Client
}

// DefaultConfig returns a configuration for the public Spotify API.
func DefaultConfig(clientID, clientSecret string) Config {
	return Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     DefaultTokenURL,
		SearchURL:    DefaultSearchURL,
		Limit:        DefaultLimit,
		Timeout:      15 * time.Second,
	}
}

// Client performs catalog searches.
type Client struct {
	config Config
	http   *http.Client
	tokens *theine.Cache[string, string]
	group  singleflight.Group
}

// New creates a Client. Credentials are not checked here; Search reports
// ErrMissingCredentials so the server can start without them.
func New(config Config) (*Client, error) {
	if config.TokenURL == "" {
		config.TokenURL = DefaultTokenURL
	}
	if config.SearchURL == "" {
		config.SearchURL = DefaultSearchURL
	}
	if config.Limit <= 0 {
		config.Limit = DefaultLimit
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.Timeout}
	}

	tokens, err := theine.NewBuilder[string, string](16).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build token cache: %w", err)
	}

	return &Client{
		config: config,
		http:   httpClient,
		tokens: tokens,
	}, nil
}

// Close releases the token cache.
func (c *Client) Close() {
	c.tokens.Close()
}

// Configured reports whether both credentials are set.
func (c *Client) Configured() bool {
	return c.config.ClientID != "" && c.config.ClientSecret != ""
}

// Search returns up to Limit tracks matching query. Zero matches is an empty
// slice, not an error.
func (c *Client) Search(ctx context.Context, query string) ([]Track, error) {
	if !c.Configured() {
		return nil, ErrMissingCredentials
	}

	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "track")
	params.Set("limit", strconv.Itoa(c.config.Limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.SearchURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	status, body, err := c.do("search", req)
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized {
		// Revoked before expiry; the next search exchanges again.
		c.tokens.Delete(c.config.ClientID)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: search returned %d: %s", ErrUpstream, status, upstreamMessage(body))
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: search returned a body that is not JSON", ErrUpstream)
	}

	return ParseTracks(body), nil
}

// token returns a cached bearer token or exchanges the credentials for one.
func (c *Client) token(ctx context.Context) (string, error) {
	key := c.config.ClientID
	if token, ok := c.tokens.Get(key); ok {
		metrics.CatalogTokenCacheTotal.WithLabelValues("hit").Inc()
		return token, nil
	}
	metrics.CatalogTokenCacheTotal.WithLabelValues("miss").Inc()

	// Concurrent callers share one exchange, which must not fail because
	// the caller that started it went away.
	ch := c.group.DoChan(key, func() (interface{}, error) {
		shared := context.WithoutCancel(ctx)
		if c.config.Timeout > 0 {
			var cancel context.CancelFunc
			shared, cancel = context.WithTimeout(shared, c.config.Timeout)
			defer cancel()
		}

		token, ttl, err := c.exchange(shared)
		if err != nil {
			return "", err
		}
		if ttl > 0 {
			c.tokens.SetWithTTL(key, token, 1, ttl)
		}
		return token, nil
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (c *Client) exchange(ctx context.Context) (string, time.Duration, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", 0, fmt.Errorf("build token request: %w", err)
	}
	req.SetBasicAuth(c.config.ClientID, c.config.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	status, body, err := c.do("token", req)
	if err != nil {
		return "", 0, err
	}
	if status != http.StatusOK {
		return "", 0, fmt.Errorf("%w: token exchange returned %d: %s", ErrUpstream, status, upstreamMessage(body))
	}

	res := gjson.ParseBytes(body)
	token := res.Get("access_token").String()
	if token == "" {
		return "", 0, fmt.Errorf("%w: token response has no access_token", ErrUpstream)
	}

	ttl := time.Duration(res.Get("expires_in").Int())*time.Second - tokenExpirySkew
	logging.Debug("Catalog token acquired, cached for %v", ttl)
	return token, ttl, nil
}

// do sends req and reads the body, recording upstream metrics. Transport
// failures are wrapped in ErrUpstream; HTTP status handling is left to the caller.
func (c *Client) do(op string, req *http.Request) (int, []byte, error) {
	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.CatalogUpstreamDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.CatalogUpstreamTotal.WithLabelValues(op, "error").Inc()
		return 0, nil, fmt.Errorf("%w: %s request: %v", ErrUpstream, op, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logging.Debug("Failed to close %s response body: %v", op, err)
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		metrics.CatalogUpstreamTotal.WithLabelValues(op, "error").Inc()
		return 0, nil, fmt.Errorf("%w: read %s response: %v", ErrUpstream, op, err)
	}

	if resp.StatusCode != http.StatusOK {
		metrics.CatalogUpstreamTotal.WithLabelValues(op, "error").Inc()
	} else {
		metrics.CatalogUpstreamTotal.WithLabelValues(op, "success").Inc()
	}
	return resp.StatusCode, body, nil
}

// upstreamMessage extracts a short error description from an upstream body.
func upstreamMessage(body []byte) string {
	res := gjson.ParseBytes(body)
	for _, path := range []string{"error.message", "error_description", "error"} {
		if v := res.Get(path); v.Exists() && v.Type == gjson.String {
			return v.String()
		}
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
