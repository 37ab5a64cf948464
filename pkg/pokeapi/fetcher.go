// Package pokeapi is the remote fetch adapter: it resolves pages of the
// species listing into catalog summaries and builds detail records, using
// the upstream client for transport and the pagination pool for fan-out.
package pokeapi

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/pokedex/pkg/catalog"
	"github.com/Sternrassler/pokedex/pkg/client"
	"github.com/Sternrassler/pokedex/pkg/pagination"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// ErrNotFound is returned by FetchDetail for an unknown id.
var ErrNotFound = errors.New("pokemon not found")

var (
	pagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pokedex_pages_fetched_total",
		Help: "Listing pages resolved by outcome",
	}, []string{"outcome"})

	partialItemsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pokedex_partial_items_total",
		Help: "Summaries built from the listing alone after a failed lookup",
	})

	detailsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pokedex_details_fetched_total",
		Help: "Detail fetches by outcome",
	}, []string{"outcome"})

	pageDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pokedex_page_fetch_duration_seconds",
		Help:    "Time to resolve a listing page including all lookups",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	})
)

// Getter fetches and decodes an upstream resource. *client.Client
// implements it.
type Getter interface {
	GetJSON(ctx context.Context, ref string, v any) error
}

// Fetcher resolves listing pages and detail records.
type Fetcher struct {
	api    Getter
	pool   *pagination.Pool
	logger zerolog.Logger
}

// NewFetcher creates a fetcher. A nil pool uses pagination.DefaultConfig.
func NewFetcher(api Getter, pool *pagination.Pool) *Fetcher {
	if pool == nil {
		pool = pagination.NewPool(pagination.DefaultConfig())
	}
	return &Fetcher{
		api:    api,
		pool:   pool,
		logger: log.With().Str("component", "pokeapi").Logger(),
	}
}

// FetchPage loads limit listing entries starting at offset and resolves each
// one to a summary. A failed listing request fails the page. A failed lookup
// for a single entry yields a partial summary built from the listing entry
// (no image, no types); the page fails only when such an entry carries no
// usable id. Items are returned sorted by id.
func (f *Fetcher) FetchPage(ctx context.Context, offset, limit int) (catalog.Page, error) {
	start := time.Now()
	defer func() {
		pageDuration.Observe(time.Since(start).Seconds())
	}()

	// Step 1: Listing
	var list SpeciesList
	ref := "/pokemon-species?" + url.Values{
		"offset": {strconv.Itoa(offset)},
		"limit":  {strconv.Itoa(limit)},
	}.Encode()
	if err := f.api.GetJSON(ctx, ref, &list); err != nil {
		pagesTotal.WithLabelValues("error").Inc()
		return catalog.Page{}, fmt.Errorf("fetch listing offset=%d limit=%d: %w", offset, limit, err)
	}

	// Step 2: Per-entry lookups
	results := pagination.Map(ctx, f.pool, list.Results, func(ctx context.Context, _ int, entry NamedResource) (catalog.Summary, error) {
		return f.resolveSummary(ctx, entry)
	})

	if err := ctx.Err(); err != nil {
		pagesTotal.WithLabelValues("cancelled").Inc()
		return catalog.Page{}, fmt.Errorf("fetch page offset=%d: %w", offset, err)
	}

	// Step 3: Fallbacks
	page := catalog.Page{
		Items: make([]catalog.Summary, 0, len(results)),
		Total: list.Count,
	}
	for i, r := range results {
		if r.Err == nil {
			page.Items = append(page.Items, r.Value)
			continue
		}

		entry := list.Results[i]
		partial, err := partialSummary(entry)
		if err != nil {
			pagesTotal.WithLabelValues("error").Inc()
			return catalog.Page{}, fmt.Errorf("resolve %q: %w (fallback: %v)", entry.Name, r.Err, err)
		}

		f.logger.Warn().
			Err(r.Err).
			Int("id", partial.ID).
			Str("name", entry.Name).
			Msg("Lookup failed - using partial item")
		partialItemsTotal.Inc()
		page.Partial++
		page.Items = append(page.Items, partial)
	}

	sort.SliceStable(page.Items, func(i, j int) bool {
		return page.Items[i].ID < page.Items[j].ID
	})

	pagesTotal.WithLabelValues("ok").Inc()
	f.logger.Info().
		Int("offset", offset).
		Int("limit", limit).
		Int("items", len(page.Items)).
		Int("partial", page.Partial).
		Int("total", page.Total).
		Dur("duration", time.Since(start)).
		Msg("Page fetched")

	return page, nil
}

// resolveSummary follows a listing entry to its species and the species'
// default variety. A species without a default variety is valid and yields
// no image and no types.
func (f *Fetcher) resolveSummary(ctx context.Context, entry NamedResource) (catalog.Summary, error) {
	var species Species
	if err := f.api.GetJSON(ctx, entry.URL, &species); err != nil {
		return catalog.Summary{}, fmt.Errorf("fetch species: %w", err)
	}

	summary := catalog.Summary{
		ID:    species.ID,
		Name:  species.Name,
		Types: []string{},
	}
	if summary.Name == "" {
		summary.Name = entry.Name
	}

	variety, ok := species.DefaultVariety()
	if !ok {
		f.logger.Debug().Int("id", species.ID).Msg("Species has no default variety")
		return summary, nil
	}

	var pokemon Pokemon
	if err := f.api.GetJSON(ctx, variety.URL, &pokemon); err != nil {
		return catalog.Summary{}, fmt.Errorf("fetch default variety: %w", err)
	}

	summary.Image = catalog.StringPtr(pokemon.Sprites.Artwork())
	summary.Types = pokemon.TypeNames()
	return summary, nil
}

// partialSummary builds a summary from the listing entry alone.
func partialSummary(entry NamedResource) (catalog.Summary, error) {
	id, err := IDFromURL(entry.URL)
	if err != nil {
		return catalog.Summary{}, err
	}
	return catalog.Summary{ID: id, Name: entry.Name, Types: []string{}}, nil
}

// IDFromURL extracts the trailing numeric id of a resource URL such as
// "https://pokeapi.co/api/v2/pokemon-species/25/".
func IDFromURL(raw string) (int, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return 0, fmt.Errorf("parse resource url: %w", err)
	}
	id, err := strconv.Atoi(path.Base(strings.TrimRight(u.Path, "/")))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("no id in resource url %q", raw)
	}
	return id, nil
}

// FetchDetail loads the pokemon record and the species record for id and
// builds the detail. Both requests must succeed.
func (f *Fetcher) FetchDetail(ctx context.Context, id int) (*catalog.Detail, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: invalid id %d", ErrNotFound, id)
	}

	var (
		pokemon Pokemon
		species Species
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return f.api.GetJSON(gctx, fmt.Sprintf("/pokemon/%d/", id), &pokemon)
	})
	g.Go(func() error {
		return f.api.GetJSON(gctx, fmt.Sprintf("/pokemon-species/%d/", id), &species)
	})

	if err := g.Wait(); err != nil {
		detailsTotal.WithLabelValues("error").Inc()
		if client.IsNotFound(err) {
			return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
		}
		f.logger.Error().Err(err).Int("id", id).Msg("Detail fetch failed")
		return nil, fmt.Errorf("fetch detail %d: %w", id, err)
	}

	detail := buildDetail(id, pokemon, species)
	detailsTotal.WithLabelValues("ok").Inc()
	f.logger.Debug().Int("id", id).Str("name", detail.Name).Msg("Detail fetched")
	return detail, nil
}

func buildDetail(id int, pokemon Pokemon, species Species) *catalog.Detail {
	abilities := make([]string, 0, len(pokemon.Abilities))
	for _, a := range pokemon.Abilities {
		if a.Ability.Name != "" {
			abilities = append(abilities, catalog.Capitalize(a.Ability.Name))
		}
	}

	stats := make([]catalog.Stat, 0, len(pokemon.Stats))
	for _, s := range pokemon.Stats {
		stats = append(stats, catalog.Stat{Name: s.Stat.Name, Base: s.BaseStat})
	}

	baseExp := 0
	if pokemon.BaseExperience != nil {
		baseExp = *pokemon.BaseExperience
	}

	return &catalog.Detail{
		Summary: catalog.Summary{
			ID:    id,
			Name:  pokemon.Name,
			Image: catalog.StringPtr(pokemon.Sprites.Artwork()),
			Types: pokemon.TypeNames(),
		},
		HeightM:   float64(pokemon.Height) / 10,
		WeightKg:  float64(pokemon.Weight) / 10,
		Abilities: abilities,
		BaseExp:   baseExp,
		Stats:     stats,
		Flavor:    species.Description(DescriptionLanguage),
	}
}
