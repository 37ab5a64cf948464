package cache

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultTTL is the fallback freshness when the response carries neither
	// Cache-Control max-age nor Expires.
	DefaultTTL = 24 * time.Hour

	// StaleWindow is how long a stale entry is kept for revalidation.
	StaleWindow = 24 * time.Hour
)

// ResponseToEntry converts an HTTP response to an Entry. The body is read and
// restored so the caller can still consume it. fallback is used when the
// response does not state its own freshness; zero means DefaultTTL.
func ResponseToEntry(resp *http.Response, fallback time.Duration) (*Entry, error) {
	if resp == nil {
		return nil, fmt.Errorf("response cannot be nil")
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(body))

	entry := &Entry{
		Data:        body,
		ETag:        resp.Header.Get("ETag"),
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		CachedAt:    time.Now(),
	}

	entry.Expires = parseFreshness(resp.Header, entry.CachedAt, fallback)

	if lastModStr := resp.Header.Get("Last-Modified"); lastModStr != "" {
		if lastMod, err := http.ParseTime(lastModStr); err == nil {
			entry.LastModified = lastMod
		}
	}

	return entry, nil
}

// parseFreshness returns the expiry of a response received at now.
// Cache-Control wins over Expires; no-store and no-cache yield an already
// stale entry.
func parseFreshness(headers http.Header, now time.Time, fallback time.Duration) time.Time {
	if fallback <= 0 {
		fallback = DefaultTTL
	}

	if cc := headers.Get("Cache-Control"); cc != "" {
		for _, directive := range strings.Split(cc, ",") {
			directive = strings.ToLower(strings.TrimSpace(directive))
			switch {
			case directive == "no-store", directive == "no-cache":
				return now
			case strings.HasPrefix(directive, "max-age="):
				secs, err := strconv.Atoi(strings.TrimPrefix(directive, "max-age="))
				if err == nil && secs >= 0 {
					return now.Add(time.Duration(secs) * time.Second)
				}
			}
		}
	}

	if expiresStr := headers.Get("Expires"); expiresStr != "" {
		expires, err := http.ParseTime(expiresStr)
		if err != nil {
			return now.Add(fallback)
		}
		if expires.Before(now) {
			return now
		}
		return expires
	}

	return now.Add(fallback)
}

// EntryToResponse rebuilds an HTTP response from a cached entry.
func EntryToResponse(entry *Entry, req *http.Request) *http.Response {
	header := http.Header{}
	if entry.ContentType != "" {
		header.Set("Content-Type", entry.ContentType)
	}
	if entry.ETag != "" {
		header.Set("ETag", entry.ETag)
	}
	header.Set("X-Cache", "HIT")

	status := entry.StatusCode
	if status == 0 {
		status = http.StatusOK
	}

	return &http.Response{
		Status:        fmt.Sprintf("%d %s", status, http.StatusText(status)),
		StatusCode:    status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(entry.Data)),
		ContentLength: int64(len(entry.Data)),
		Request:       req,
	}
}

// AddConditionalHeaders adds If-None-Match (ETag) or If-Modified-Since
// to the request when the entry supports revalidation.
func AddConditionalHeaders(req *http.Request, entry *Entry) {
	if entry == nil || req == nil {
		return
	}

	// Prefer ETag over Last-Modified (more accurate)
	if entry.ETag != "" {
		req.Header.Set("If-None-Match", entry.ETag)
	} else if !entry.LastModified.IsZero() {
		req.Header.Set("If-Modified-Since", entry.LastModified.Format(http.TimeFormat))
	}
}

// Refresh extends a revalidated entry using the headers of the 304 response.
func Refresh(entry *Entry, headers http.Header, fallback time.Duration) {
	entry.Expires = parseFreshness(headers, time.Now(), fallback)
	if etag := headers.Get("ETag"); etag != "" {
		entry.ETag = etag
	}
}
