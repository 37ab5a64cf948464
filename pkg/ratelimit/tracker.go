package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// ErrBlocked is returned by Wait when the upstream block outlasts MaxWait.
var ErrBlocked = errors.New("upstream rate limit block in force")

var (
	remainingGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pokedex_ratelimit_remaining",
		Help: "Remaining upstream quota as last advertised",
	})

	blocksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pokedex_ratelimit_blocks_total",
		Help: "Total number of 429 responses that started a block",
	})

	throttlesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pokedex_ratelimit_throttles_total",
		Help: "Total number of requests delayed due to low remaining quota",
	})
)

// Config holds tracker configuration.
type Config struct {
	// MaxWait is the longest Wait will sleep for a block before giving up.
	MaxWait time.Duration

	// ThrottleDelay is slept before each request while throttling.
	ThrottleDelay time.Duration
}

// DefaultConfig returns the default tracker configuration.
func DefaultConfig() Config {
	return Config{
		MaxWait:       30 * time.Second,
		ThrottleDelay: 250 * time.Millisecond,
	}
}

// Tracker monitors upstream back-pressure and gates requests.
type Tracker struct {
	mu     sync.Mutex
	state  State
	config Config
	logger zerolog.Logger
}

// NewTracker creates a new rate limit tracker.
func NewTracker(config Config, logger zerolog.Logger) *Tracker {
	return &Tracker{
		state:  NewState(),
		config: config,
		logger: logger,
	}
}

// State returns a snapshot of the current state.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// UpdateFromResponse folds the status and headers of a response into the state.
func (t *Tracker) UpdateFromResponse(statusCode int, headers http.Header) error {
	now := time.Now()

	t.mu.Lock()
	defer t.mu.Unlock()

	var parseErr error
	updated := false

	if remainStr := headers.Get("X-RateLimit-Remaining"); remainStr != "" {
		remain, err := strconv.Atoi(strings.TrimSpace(remainStr))
		if err != nil {
			parseErr = fmt.Errorf("parse X-RateLimit-Remaining header: %w", err)
		} else {
			t.state.Remaining = remain
			remainingGauge.Set(float64(remain))
			updated = true
		}
	}

	if limitStr := headers.Get("X-RateLimit-Limit"); limitStr != "" {
		if limit, err := strconv.Atoi(strings.TrimSpace(limitStr)); err == nil {
			t.state.Limit = limit
		}
	}

	if resetStr := headers.Get("X-RateLimit-Reset"); resetStr != "" {
		if secs, err := strconv.Atoi(strings.TrimSpace(resetStr)); err == nil {
			t.state.ResetAt = now.Add(time.Duration(secs) * time.Second)
		}
	}

	if statusCode == http.StatusTooManyRequests {
		wait := parseRetryAfter(headers.Get("Retry-After"), now)
		t.state.BlockedUntil = now.Add(wait)
		blocksTotal.Inc()
		updated = true

		t.logger.Warn().
			Dur("retry_after", wait).
			Time("blocked_until", t.state.BlockedUntil).
			Msg("Upstream returned 429 - blocking requests")
	}

	if updated {
		t.state.LastUpdate = now
		if t.state.NeedsThrottling() {
			t.logger.Warn().
				Int("remaining", t.state.Remaining).
				Msg("Upstream quota low - requests will be throttled")
		}
	}

	return parseErr
}

// Wait blocks until a request may be sent. It sleeps through a 429 block of
// at most MaxWait and applies ThrottleDelay when the quota is low.
func (t *Tracker) Wait(ctx context.Context) error {
	state := t.State()

	if state.NeedsBlock() {
		wait := state.TimeUntilUnblocked()
		if wait > t.config.MaxWait {
			t.logger.Error().
				Dur("wait_duration", wait).
				Msg("Upstream block outlasts max wait - rejecting request")
			return fmt.Errorf("%w for %s", ErrBlocked, wait.Round(time.Second))
		}
		if err := sleep(ctx, wait); err != nil {
			return err
		}
		return nil
	}

	if state.NeedsThrottling() && t.config.ThrottleDelay > 0 {
		throttlesTotal.Inc()
		t.logger.Debug().
			Int("remaining", state.Remaining).
			Dur("delay", t.config.ThrottleDelay).
			Msg("Throttling request")
		return sleep(ctx, t.config.ThrottleDelay)
	}

	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// parseRetryAfter accepts delta-seconds or an HTTP date.
func parseRetryAfter(value string, now time.Time) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return DefaultRetryAfter
	}
	if secs, err := strconv.Atoi(value); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := at.Sub(now); d > 0 {
			return d
		}
		return 0
	}
	return DefaultRetryAfter
}
