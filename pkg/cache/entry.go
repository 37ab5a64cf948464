package cache

import (
	"time"
)

// Entry is a cached upstream response.
type Entry struct {
	// Data is the response body
	Data []byte `json:"data"`

	// ETag for conditional requests (If-None-Match)
	ETag string `json:"etag,omitempty"`

	// Expires is when the entry stops being fresh
	Expires time.Time `json:"expires"`

	// LastModified for conditional requests (If-Modified-Since)
	LastModified time.Time `json:"last_modified,omitempty"`

	// StatusCode of the cached response
	StatusCode int `json:"status_code"`

	// ContentType of the cached response
	ContentType string `json:"content_type,omitempty"`

	// CachedAt is when the response was stored
	CachedAt time.Time `json:"cached_at"`
}

// IsExpired returns true once the entry is no longer fresh.
func (e *Entry) IsExpired() bool {
	return time.Now().After(e.Expires)
}

// TTL returns the remaining freshness lifetime, 0 if already stale.
func (e *Entry) TTL() time.Duration {
	ttl := time.Until(e.Expires)
	if ttl < 0 {
		return 0
	}
	return ttl
}

// Retention is how long a backend keeps the entry: its freshness lifetime
// plus StaleWindow for revalidation.
func (e *Entry) Retention() time.Duration {
	return e.TTL() + StaleWindow
}

// CanRevalidate reports whether a conditional request can be made for it.
func (e *Entry) CanRevalidate() bool {
	return e.ETag != "" || !e.LastModified.IsZero()
}
