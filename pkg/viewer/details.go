package viewer

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/Sternrassler/pokedex/pkg/catalog"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// ErrSuperseded is returned by Overlay.Open when another Open or a Close
// happened while the detail was being fetched.
var ErrSuperseded = errors.New("detail request superseded")

// DetailFetcher loads one detail record.
type DetailFetcher interface {
	FetchDetail(ctx context.Context, id int) (*catalog.Detail, error)
}

// Details is the session's detail cache. Entries are created once per id
// and never replaced; concurrent lookups of the same id share one fetch.
// Returned details are shared and must not be modified.
type Details struct {
	mu      sync.RWMutex
	entries map[int]*catalog.Detail
	group   singleflight.Group
	fetcher DetailFetcher
	logger  zerolog.Logger
}

// NewDetails creates an empty detail cache.
func NewDetails(fetcher DetailFetcher, logger zerolog.Logger) *Details {
	return &Details{
		entries: make(map[int]*catalog.Detail),
		fetcher: fetcher,
		logger:  logger,
	}
}

// Cached returns the cached detail for id.
func (d *Details) Cached(id int) (*catalog.Detail, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	detail, ok := d.entries[id]
	return detail, ok
}

// Len returns the number of cached details.
func (d *Details) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.entries)
}

// Get returns the detail for id from the cache or fetches it. Failures are
// not cached.
func (d *Details) Get(ctx context.Context, id int) (*catalog.Detail, error) {
	if detail, ok := d.Cached(id); ok {
		detailRequestsTotal.WithLabelValues("hit").Inc()
		d.logger.Debug().Int("id", id).Msg("Detail cache hit")
		return detail, nil
	}

	v, err, shared := d.group.Do(strconv.Itoa(id), func() (any, error) {
		if detail, ok := d.Cached(id); ok {
			return detail, nil
		}

		detail, err := d.fetcher.FetchDetail(ctx, id)
		if err != nil {
			return nil, err
		}

		d.mu.Lock()
		if existing, ok := d.entries[id]; ok {
			detail = existing
		} else {
			d.entries[id] = detail
		}
		d.mu.Unlock()
		return detail, nil
	})
	if err != nil {
		detailRequestsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	if shared {
		detailRequestsTotal.WithLabelValues("shared").Inc()
	} else {
		detailRequestsTotal.WithLabelValues("miss").Inc()
	}
	d.logger.Debug().Int("id", id).Bool("shared", shared).Msg("Detail fetched")
	return v.(*catalog.Detail), nil
}
