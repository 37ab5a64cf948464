package viewer

import (
	"context"
	"sync"

	"github.com/Sternrassler/pokedex/pkg/catalog"
	"github.com/rs/zerolog"
)

// CloseReason says how the overlay was dismissed.
type CloseReason string

const (
	CloseButton   CloseReason = "button"
	CloseBackdrop CloseReason = "backdrop"
	CloseEscape   CloseReason = "escape"
)

// Overlay is the detail modal state. It opens only with a complete detail:
// a failed fetch leaves it closed.
type Overlay struct {
	mu      sync.Mutex
	details *Details
	current *catalog.Detail
	seq     uint64
	logger  zerolog.Logger
}

// NewOverlay creates a closed overlay backed by details.
func NewOverlay(details *Details, logger zerolog.Logger) *Overlay {
	return &Overlay{details: details, logger: logger}
}

// Open resolves the detail for id and shows it. The error of a failed
// fetch is returned and the overlay stays as it was.
func (o *Overlay) Open(ctx context.Context, id int) (*catalog.Detail, error) {
	return o.Prepare(id)(ctx)
}

// Prepare registers an open of id now and returns the function that
// performs it. A Close or another open registered before the fetch
// completes supersedes it, and the function then returns ErrSuperseded.
func (o *Overlay) Prepare(id int) func(ctx context.Context) (*catalog.Detail, error) {
	o.mu.Lock()
	o.seq++
	seq := o.seq
	o.mu.Unlock()

	return func(ctx context.Context) (*catalog.Detail, error) {
		detail, err := o.details.Get(ctx, id)
		if err != nil {
			o.logger.Error().Err(err).Int("id", id).Msg("Detail overlay failed to open")
			return nil, err
		}

		o.mu.Lock()
		defer o.mu.Unlock()
		if seq != o.seq {
			return nil, ErrSuperseded
		}
		o.current = detail
		o.logger.Debug().Int("id", id).Msg("Detail overlay opened")
		return detail, nil
	}
}

// Close dismisses the overlay. It reports whether it was open.
func (o *Overlay) Close(reason CloseReason) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.seq++
	if o.current == nil {
		return false
	}
	o.logger.Debug().
		Int("id", o.current.ID).
		Str("reason", string(reason)).
		Msg("Detail overlay closed")
	o.current = nil
	return true
}

// Current returns the shown detail.
func (o *Overlay) Current() (*catalog.Detail, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current, o.current != nil
}

// IsOpen reports whether a detail is shown.
func (o *Overlay) IsOpen() bool {
	_, ok := o.Current()
	return ok
}
