// Package viewer holds the browsing session: the pagination controller that
// grows the collection, the debounced filter criteria and the derived view,
// and the detail overlay with its per-id cache.
package viewer

import (
	"context"
	"sync"
	"time"

	"github.com/Sternrassler/pokedex/pkg/catalog"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Source is the remote side of a session.
type Source interface {
	PageFetcher
	DetailFetcher
}

// Config holds session configuration.
type Config struct {
	Paging PagingConfig

	// Debounce is the idle gap after the last query change before the view
	// is recomputed.
	Debounce time.Duration
}

// DefaultConfig returns the default session configuration.
func DefaultConfig() Config {
	return Config{
		Paging:   DefaultPagingConfig(),
		Debounce: 200 * time.Millisecond,
	}
}

// Session is one independent browsing session.
type Session struct {
	id         string
	mu         sync.RWMutex
	collection *catalog.Collection
	criteria   catalog.Criteria
	view       []catalog.Summary
	controller *Controller
	details    *Details
	overlay    *Overlay
	debouncer  *Debouncer
	listeners  []func()
	logger     zerolog.Logger
}

// NewSession creates an empty session reading from src.
func NewSession(src Source, cfg Config) *Session {
	id := uuid.NewString()
	logger := log.With().
		Str("component", "viewer").
		Str("session_id", id).
		Logger()

	collection := catalog.NewCollection()
	details := NewDetails(src, logger)

	return &Session{
		id:         id,
		collection: collection,
		criteria:   catalog.NewCriteria(""),
		view:       []catalog.Summary{},
		controller: NewController(src, collection, cfg.Paging, logger),
		details:    details,
		overlay:    NewOverlay(details, logger),
		debouncer:  NewDebouncer(cfg.Debounce),
		logger:     logger,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Collection returns the session's collection.
func (s *Session) Collection() *catalog.Collection { return s.collection }

// Controller returns the pagination controller.
func (s *Session) Controller() *Controller { return s.controller }

// Details returns the detail cache.
func (s *Session) Details() *Details { return s.details }

// Overlay returns the detail overlay.
func (s *Session) Overlay() *Overlay { return s.overlay }

// OnChange registers fn to run after every view recomputation. It may be
// called from the debouncer's goroutine.
func (s *Session) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// LoadMore asks the controller for the next page and recomputes the view
// when the collection grew.
func (s *Session) LoadMore(ctx context.Context, trigger Trigger) Outcome {
	out := s.controller.LoadMore(ctx, trigger)
	if !out.Skipped && out.Err == nil {
		s.refilter()
	}
	return out
}

// Autoload loads pages while vis reports the sentinel within the trigger
// margin, recomputing the view after each page.
func (s *Session) Autoload(ctx context.Context, trigger Trigger, vis Visibility) []Outcome {
	if vis != nil {
		inner := vis
		vis = VisibilityFunc(func() bool {
			s.refilter()
			return inner.SentinelVisible()
		})
	}

	outcomes := s.controller.Autoload(ctx, trigger, vis)
	s.refilter()
	return outcomes
}

// SetQuery records a text query change. The view is recomputed once the
// debounce delay passes without another change.
func (s *Session) SetQuery(query string) {
	s.debouncer.Trigger(func() {
		s.applyQuery(query)
	})
}

// SetQueryNow applies a query immediately, dropping any pending change.
func (s *Session) SetQueryNow(query string) {
	s.debouncer.Stop()
	s.applyQuery(query)
}

// FlushQuery applies a pending query change now. It reports whether one
// was pending.
func (s *Session) FlushQuery() bool {
	return s.debouncer.Flush()
}

func (s *Session) applyQuery(query string) {
	s.mu.Lock()
	s.criteria.Query = query
	s.mu.Unlock()
	s.refilter()
}

// ToggleTag flips tag membership and recomputes the view. It reports
// whether the tag is now selected.
func (s *Session) ToggleTag(tag string) bool {
	s.mu.Lock()
	selected := s.criteria.Toggle(tag)
	s.mu.Unlock()

	s.logger.Debug().Str("tag", tag).Bool("selected", selected).Msg("Tag toggled")
	s.refilter()
	return selected
}

// Criteria returns a copy of the current filter criteria.
func (s *Session) Criteria() catalog.Criteria {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.criteria.Clone()
}

// View returns a copy of the filtered view.
func (s *Session) View() []catalog.Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]catalog.Summary, len(s.view))
	copy(out, s.view)
	return out
}

// refilter recomputes the view in full from the collection and criteria.
func (s *Session) refilter() {
	s.mu.Lock()
	s.view = catalog.Filter(s.collection.Items(), s.criteria)
	listeners := make([]func(), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	filterRunsTotal.Inc()
	for _, fn := range listeners {
		fn()
	}
}

// Snapshot is a point-in-time summary of a session.
type Snapshot struct {
	SessionID     string   `json:"session_id"`
	State         State    `json:"state"`
	Loaded        int      `json:"loaded"`
	Total         *int     `json:"total"`
	Cursor        int      `json:"cursor"`
	Filtered      int      `json:"filtered"`
	Query         string   `json:"query"`
	Tags          []string `json:"tags"`
	DetailsCached int      `json:"details_cached"`
	Error         string   `json:"error,omitempty"`
}

// Snapshot returns the session's current summary.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	snap := Snapshot{
		SessionID: s.id,
		Filtered:  len(s.view),
		Query:     s.criteria.Query,
		Tags:      s.criteria.SelectedTags(),
	}
	s.mu.RUnlock()

	snap.State = s.controller.State()
	snap.Loaded = s.collection.Len()
	snap.Cursor = s.collection.Cursor()
	if total, ok := s.collection.Total(); ok {
		snap.Total = &total
	}
	snap.DetailsCached = s.details.Len()
	if err := s.controller.Err(); err != nil {
		snap.Error = err.Error()
	}
	return snap
}

// Close drops any pending query change.
func (s *Session) Close() {
	s.debouncer.Stop()
}
