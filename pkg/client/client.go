// Package client provides the HTTP transport to the upstream catalog API
// with back-pressure tracking, response caching, retries and error
// classification.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/pokedex/pkg/cache"
	"github.com/Sternrassler/pokedex/pkg/ratelimit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for upstream requests.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pokedex_upstream_requests_total",
		Help: "Total upstream requests by resource and status",
	}, []string{"resource", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pokedex_upstream_request_duration_seconds",
		Help:    "Upstream request duration in seconds by resource",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"resource"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pokedex_upstream_errors_total",
		Help: "Total upstream errors by class",
	}, []string{"class"})
)

// DefaultBaseURL is the public upstream API.
const DefaultBaseURL = "https://pokeapi.co/api/v2"

// Client is the upstream HTTP client.
type Client struct {
	httpClient  *http.Client
	baseURL     *url.URL
	store       cache.Store
	rateLimiter *ratelimit.Tracker
	config      Config
	logger      zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL of the upstream API, e.g. "https://pokeapi.co/api/v2"
	BaseURL string

	// UserAgent header sent with every request
	UserAgent string

	// Timeout per HTTP attempt
	Timeout time.Duration

	// Store caches responses; nil disables caching
	Store cache.Store

	// CacheTTL is the freshness used when a response states none
	CacheTTL time.Duration

	// Retry policy for server, rate limit and network failures
	Retry RetryConfig

	// RateLimit configures back-pressure handling
	RateLimit ratelimit.Config
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(store cache.Store, userAgent string) Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		UserAgent: userAgent,
		Timeout:   30 * time.Second,
		Store:     store,
		CacheTTL:  cache.DefaultTTL,
		Retry:     DefaultRetryConfig(),
		RateLimit: ratelimit.DefaultConfig(),
	}
}

// New creates a new upstream client.
func New(cfg Config) (*Client, error) {
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}

	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", cfg.BaseURL)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	logger := log.With().Str("component", "upstream-client").Logger()

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:     base,
		store:       cfg.Store,
		rateLimiter: ratelimit.NewTracker(cfg.RateLimit, logger),
		config:      cfg,
		logger:      logger,
	}, nil
}

// ResolveURL turns an API path ("/pokemon/25/") or an absolute resource URL
// returned by the API into a request URL.
func (c *Client) ResolveURL(ref string) (*url.URL, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return nil, fmt.Errorf("parse url %q: %w", ref, err)
	}
	if u.IsAbs() {
		return u, nil
	}

	resolved := *c.baseURL
	resolved.Path = c.baseURL.Path + "/" + strings.TrimLeft(u.Path, "/")
	resolved.RawQuery = u.RawQuery
	return &resolved, nil
}

// Do performs a GET request with back-pressure gating, caching, retries and
// error classification. 4xx responses other than 429 are returned as-is for
// the caller to handle.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	resource := resourceLabel(req.URL.Path)

	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(resource).Observe(time.Since(startTime).Seconds())
	}()

	// Step 1: Cache
	cacheKey := cache.KeyFromURL(req.URL)
	var cachedEntry *cache.Entry
	if c.store != nil {
		entry, err := c.store.Get(ctx, cacheKey)
		switch {
		case err == nil:
			cachedEntry = entry
		case !errors.Is(err, cache.ErrCacheMiss):
			c.logger.Warn().Err(err).Str("url", req.URL.String()).Msg("Cache get error")
		}
	}

	if cachedEntry != nil && !cachedEntry.IsExpired() {
		c.logger.Debug().Str("url", req.URL.String()).Msg("Serving fresh cache entry")
		requestsTotal.WithLabelValues(resource, "cache").Inc()
		return cache.EntryToResponse(cachedEntry, req), nil
	}

	if cachedEntry != nil && cachedEntry.CanRevalidate() {
		cache.AddConditionalHeaders(req, cachedEntry)
		c.logger.Debug().
			Str("url", req.URL.String()).
			Str("etag", cachedEntry.ETag).
			Msg("Making conditional request")
	}

	// Step 2: Headers
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	// Step 3: Execute with retry
	var resp *http.Response
	var errClass ErrorClass

	retryErr := retryWithBackoff(ctx, c.config.Retry, c.logger, func() error {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			// A long block or a cancelled wait will not clear on retry.
			errClass = ""
			return &APIError{
				StatusCode: http.StatusTooManyRequests,
				ErrorClass: ErrorClassRateLimit,
				Message:    "blocked by upstream back-pressure",
				URL:        req.URL.String(),
				Err:        err,
			}
		}

		var reqErr error
		resp, reqErr = c.httpClient.Do(req)
		if reqErr != nil {
			errClass = ErrorClassNetwork
			errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			requestsTotal.WithLabelValues(resource, "network_error").Inc()
			c.logger.Error().Err(reqErr).Str("url", req.URL.String()).Msg("HTTP request failed")
			return &APIError{
				ErrorClass: ErrorClassNetwork,
				Message:    "request failed",
				URL:        req.URL.String(),
				Err:        reqErr,
			}
		}

		if err := c.rateLimiter.UpdateFromResponse(resp.StatusCode, resp.Header); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to update rate limit state from headers")
		}

		if resp.StatusCode == http.StatusNotModified {
			return nil
		}

		errClass = classifyStatus(resp.StatusCode)
		if errClass == "" {
			requestsTotal.WithLabelValues(resource, strconv.Itoa(resp.StatusCode)).Inc()
			return nil
		}

		errorsTotal.WithLabelValues(string(errClass)).Inc()
		requestsTotal.WithLabelValues(resource, strconv.Itoa(resp.StatusCode)).Inc()
		c.logger.Warn().
			Str("url", req.URL.String()).
			Int("status", resp.StatusCode).
			Str("error_class", string(errClass)).
			Msg("Upstream request error")

		if shouldRetry(errClass) {
			resp.Body.Close()
			return &APIError{
				StatusCode: resp.StatusCode,
				ErrorClass: errClass,
				Message:    resp.Status,
				URL:        req.URL.String(),
			}
		}

		// Client errors go back to the caller with their status.
		return nil
	}, func(error) ErrorClass {
		return errClass
	})

	if retryErr != nil {
		return nil, retryErr
	}

	// Step 4: 304 Not Modified
	if resp.StatusCode == http.StatusNotModified && cachedEntry != nil {
		resp.Body.Close()
		cache.Revalidated.Inc()
		requestsTotal.WithLabelValues(resource, "304").Inc()

		cache.Refresh(cachedEntry, resp.Header, c.config.CacheTTL)
		if err := c.store.Set(ctx, cacheKey, cachedEntry); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to refresh cache entry")
		}

		c.logger.Debug().Str("url", req.URL.String()).Msg("304 Not Modified - using cache")
		return cache.EntryToResponse(cachedEntry, req), nil
	}

	// Step 5: Cache update
	if resp.StatusCode == http.StatusOK && c.store != nil {
		entry, err := cache.ResponseToEntry(resp, c.config.CacheTTL)
		if err != nil {
			c.logger.Warn().Err(err).Msg("Failed to create cache entry")
		} else if err := c.store.Set(ctx, cacheKey, entry); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to cache response")
		} else {
			c.logger.Debug().
				Str("url", req.URL.String()).
				Dur("ttl", entry.TTL()).
				Msg("Cached response")
		}
	}

	return resp, nil
}

// Get performs a GET request for an API path or absolute resource URL.
func (c *Client) Get(ctx context.Context, ref string) (*http.Response, error) {
	u, err := c.ResolveURL(ref)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	return c.Do(req)
}

// GetJSON fetches ref and decodes a 200 response body into v. Any other
// status is returned as an *APIError.
func (c *Client) GetJSON(ctx context.Context, ref string, v any) error {
	resp, err := c.Get(ctx, ref)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			ErrorClass: classifyStatus(resp.StatusCode),
			Message:    resp.Status,
			URL:        resp.Request.URL.String(),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		return &APIError{
			StatusCode: resp.StatusCode,
			ErrorClass: ErrorClassNetwork,
			Message:    "decode response",
			URL:        resp.Request.URL.String(),
			Err:        err,
		}
	}

	return nil
}

// RateLimitState returns the current back-pressure state.
func (c *Client) RateLimitState() ratelimit.State {
	return c.rateLimiter.State()
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// resourceLabel returns the resource name of an API path for metric labels,
// e.g. "/api/v2/pokemon-species/25/" -> "pokemon-species".
func resourceLabel(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i := len(segments) - 1; i >= 0; i-- {
		s := segments[i]
		if s == "" {
			continue
		}
		if _, err := strconv.Atoi(s); err == nil {
			continue
		}
		return s
	}
	return "root"
}
