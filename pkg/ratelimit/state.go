// Package ratelimit tracks upstream back-pressure and gates requests.
// It honours HTTP 429 responses with Retry-After and the common
// X-RateLimit-Remaining / X-RateLimit-Reset headers, so a burst of listing
// lookups slows down before the public API starts refusing them.
package ratelimit

import (
	"time"
)

// Thresholds for rate limit decisions.
const (
	// ThrottleThreshold applies a short delay to each request when the
	// advertised remaining quota falls below this value.
	ThrottleThreshold = 10

	// DefaultRetryAfter is the block applied to a 429 without a usable
	// Retry-After header.
	DefaultRetryAfter = 5 * time.Second
)

// State is the current view of the upstream quota.
type State struct {
	// Remaining is the advertised remaining quota, -1 when never advertised.
	Remaining int `json:"remaining"`

	// Limit is the advertised quota size, 0 when unknown.
	Limit int `json:"limit"`

	// ResetAt is when the advertised quota window resets.
	ResetAt time.Time `json:"reset_at"`

	// BlockedUntil is set by a 429 response; no request is sent before it.
	BlockedUntil time.Time `json:"blocked_until"`

	// LastUpdate is when any header last changed the state.
	LastUpdate time.Time `json:"last_update"`
}

// NewState returns the state assumed before any response was seen.
func NewState() State {
	return State{Remaining: -1}
}

// IsStale returns true if the state data is older than the given duration.
func (s State) IsStale(maxAge time.Duration) bool {
	return time.Since(s.LastUpdate) > maxAge
}

// NeedsBlock returns true while a 429 block is in force.
func (s State) NeedsBlock() bool {
	return time.Now().Before(s.BlockedUntil)
}

// NeedsThrottling returns true if the remaining quota is low and the window
// has not reset yet.
func (s State) NeedsThrottling() bool {
	if s.Remaining < 0 || s.NeedsBlock() {
		return false
	}
	if !s.ResetAt.IsZero() && time.Now().After(s.ResetAt) {
		return false
	}
	return s.Remaining < ThrottleThreshold
}

// TimeUntilUnblocked returns the remaining block duration, 0 if unblocked.
func (s State) TimeUntilUnblocked() time.Duration {
	d := time.Until(s.BlockedUntil)
	if d < 0 {
		return 0
	}
	return d
}
