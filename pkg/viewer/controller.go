package viewer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Sternrassler/pokedex/pkg/catalog"
	"github.com/rs/zerolog"
)

// Reasons a load request is skipped.
var (
	// ErrBusy means a page request is already in flight.
	ErrBusy = errors.New("page load already in progress")

	// ErrExhausted means the listing has been fully loaded.
	ErrExhausted = errors.New("listing exhausted")

	// ErrAwaitingRetry means the last load failed and only a manual
	// trigger retries it.
	ErrAwaitingRetry = errors.New("last load failed, awaiting manual retry")
)

// State is the pagination controller state.
type State string

const (
	StateIdle      State = "idle"
	StateLoading   State = "loading"
	StateExhausted State = "exhausted"
	StateError     State = "error"
)

// Trigger identifies what asked for the next page.
type Trigger string

const (
	// TriggerBoot is the initial load of a session.
	TriggerBoot Trigger = "boot"

	// TriggerSentinel is the trailing sentinel entering the trigger margin.
	TriggerSentinel Trigger = "sentinel"

	// TriggerManual is the load-more control, which also retries after an error.
	TriggerManual Trigger = "manual"
)

// PageFetcher loads one page of the listing.
type PageFetcher interface {
	FetchPage(ctx context.Context, offset, limit int) (catalog.Page, error)
}

// Visibility reports whether the grid's trailing sentinel is within the
// trigger margin of the viewport.
type Visibility interface {
	SentinelVisible() bool
}

// VisibilityFunc adapts a function to Visibility.
type VisibilityFunc func() bool

// SentinelVisible implements Visibility.
func (f VisibilityFunc) SentinelVisible() bool { return f() }

// PagingConfig holds the page sizing policy.
type PagingConfig struct {
	// FirstPageSize is requested when nothing has been loaded yet.
	FirstPageSize int

	// PageSize is requested for every later page.
	PageSize int
}

// DefaultPagingConfig returns a bigger first screen with smaller increments.
func DefaultPagingConfig() PagingConfig {
	return PagingConfig{
		FirstPageSize: 60,
		PageSize:      30,
	}
}

// Validate checks the page sizing policy.
func (c PagingConfig) Validate() error {
	if c.FirstPageSize <= 0 || c.PageSize <= 0 {
		return fmt.Errorf("page sizes must be positive (first=%d, page=%d)", c.FirstPageSize, c.PageSize)
	}
	if c.FirstPageSize == c.PageSize {
		return fmt.Errorf("first page size must differ from page size (%d)", c.PageSize)
	}
	return nil
}

// Outcome reports what a load request did.
type Outcome struct {
	// Trigger that requested the load.
	Trigger Trigger

	// Offset and Limit of the page request; zero when skipped.
	Offset int
	Limit  int

	// Fetched is the number of summaries returned by the page.
	Fetched int

	// Added is the number of summaries that were new to the collection.
	Added int

	// State after the request.
	State State

	// Skipped is set when no request was made; Reason says why.
	Skipped bool
	Reason  error

	// Err is the fetch failure that moved the controller to StateError.
	Err error
}

// Controller is the pagination state machine. It owns the collection's
// growth: only one page request is in flight at a time, and the collection
// is appended to only by the controller.
type Controller struct {
	mu         sync.Mutex
	state      State
	lastErr    error
	fetcher    PageFetcher
	collection *catalog.Collection
	config     PagingConfig
	logger     zerolog.Logger
}

// NewController creates a controller in StateIdle.
func NewController(fetcher PageFetcher, collection *catalog.Collection, config PagingConfig, logger zerolog.Logger) *Controller {
	if config.Validate() != nil {
		config = DefaultPagingConfig()
	}
	return &Controller{
		state:      StateIdle,
		fetcher:    fetcher,
		collection: collection,
		config:     config,
		logger:     logger,
	}
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err returns the failure behind StateError, nil otherwise.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateError {
		return nil
	}
	return c.lastErr
}

// nextLimit is the page size for the request at the current cursor.
func (c *Controller) nextLimit(cursor int) int {
	if cursor == 0 {
		return c.config.FirstPageSize
	}
	return c.config.PageSize
}

// LoadMore requests the next page. It is a no-op while a request is in
// flight or once the listing is exhausted. After a failure only
// TriggerManual retries.
func (c *Controller) LoadMore(ctx context.Context, trigger Trigger) Outcome {
	// Step 1: Guard
	c.mu.Lock()
	var reason error
	switch {
	case c.state == StateLoading:
		reason = ErrBusy
	case c.state == StateExhausted:
		reason = ErrExhausted
	case c.state == StateError && trigger != TriggerManual:
		reason = ErrAwaitingRetry
	}
	if reason != nil {
		state := c.state
		c.mu.Unlock()
		loadsTotal.WithLabelValues(string(trigger), "skipped").Inc()
		c.logger.Debug().
			Str("trigger", string(trigger)).
			Str("state", string(state)).
			Str("reason", reason.Error()).
			Msg("Load skipped")
		return Outcome{Trigger: trigger, State: state, Skipped: true, Reason: reason}
	}

	offset := c.collection.Cursor()
	limit := c.nextLimit(offset)
	c.state = StateLoading
	c.lastErr = nil
	c.mu.Unlock()

	c.logger.Debug().
		Str("trigger", string(trigger)).
		Int("offset", offset).
		Int("limit", limit).
		Msg("Loading page")

	// Step 2: Fetch
	start := time.Now()
	page, err := c.fetcher.FetchPage(ctx, offset, limit)

	c.mu.Lock()
	defer c.mu.Unlock()

	out := Outcome{Trigger: trigger, Offset: offset, Limit: limit}

	if err != nil {
		c.state = StateError
		c.lastErr = err
		loadsTotal.WithLabelValues(string(trigger), "error").Inc()
		c.logger.Error().
			Err(err).
			Int("offset", offset).
			Int("limit", limit).
			Msg("Page load failed")
		out.State = c.state
		out.Err = err
		return out
	}

	// Step 3: Apply
	out.Fetched = len(page.Items)
	out.Added = c.collection.AppendPage(page.Items, page.Total)
	collectionItems.Set(float64(c.collection.Len()))

	if c.collection.Exhausted() || len(page.Items) < limit {
		c.state = StateExhausted
	} else {
		c.state = StateIdle
	}
	out.State = c.state

	loadsTotal.WithLabelValues(string(trigger), "ok").Inc()
	total, _ := c.collection.Total()
	c.logger.Info().
		Str("trigger", string(trigger)).
		Int("offset", offset).
		Int("fetched", out.Fetched).
		Int("loaded", c.collection.Len()).
		Int("total", total).
		Str("state", string(c.state)).
		Dur("duration", time.Since(start)).
		Msg("Page loaded")

	return out
}

// Autoload requests pages while the sentinel stays within the trigger
// margin after each successful page, so a short first screen keeps filling.
// A nil vis loads a single page. It returns every outcome in order.
func (c *Controller) Autoload(ctx context.Context, trigger Trigger, vis Visibility) []Outcome {
	var outcomes []Outcome
	for {
		out := c.LoadMore(ctx, trigger)
		outcomes = append(outcomes, out)

		if out.Skipped || out.State != StateIdle || vis == nil || ctx.Err() != nil {
			return outcomes
		}
		if !vis.SentinelVisible() {
			return outcomes
		}
		trigger = TriggerSentinel
	}
}

// ManualControlVisible reports whether the load-more control should be
// shown. It stays hidden while a visibility signal drives loading, appears
// after a failure or when no visibility signal exists, and is gone for good
// once the listing is exhausted.
func (c *Controller) ManualControlVisible(hasVisibility bool) bool {
	switch c.State() {
	case StateExhausted:
		return false
	case StateError:
		return true
	default:
		return !hasVisibility
	}
}
