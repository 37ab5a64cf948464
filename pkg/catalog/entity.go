// Package catalog holds the catalog entities, the session's growing
// collection of fetched summaries, and the filter engine that derives the
// visible view from it.
package catalog

// Summary is the lightweight record shown in the grid.
type Summary struct {
	// ID is the species number (unique, stable, positive).
	ID int `json:"id"`

	// Name is the lower-case species name as returned upstream.
	Name string `json:"name"`

	// Image is the artwork URI of the default variety, nil when absent.
	Image *string `json:"image"`

	// Types is the ordered tag sequence of the default variety.
	Types []string `json:"types"`
}

// HasImage reports whether the summary carries artwork.
func (s Summary) HasImage() bool {
	return s.Image != nil && *s.Image != ""
}

// HasType reports whether tag is one of the summary's types.
func (s Summary) HasType(tag string) bool {
	for _, t := range s.Types {
		if t == tag {
			return true
		}
	}
	return false
}

// Stat is a single named base stat.
type Stat struct {
	Name string `json:"name"`
	Base int    `json:"base"`
}

// Detail is the full record shown in the detail overlay.
type Detail struct {
	Summary

	// HeightM is the height in metres.
	HeightM float64 `json:"height_m"`

	// WeightKg is the weight in kilograms.
	WeightKg float64 `json:"weight_kg"`

	Abilities []string `json:"abilities"`
	BaseExp   int      `json:"base_exp"`
	Stats     []Stat   `json:"stats"`

	// Flavor is the normalised English description; empty when none exists.
	Flavor string `json:"flavor,omitempty"`
}

// MaxStat returns the largest base stat, 0 for an empty stat list.
func (d Detail) MaxStat() int {
	maxBase := 0
	for _, s := range d.Stats {
		if s.Base > maxBase {
			maxBase = s.Base
		}
	}
	return maxBase
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Page is one resolved page of the upstream listing.
type Page struct {
	// Items are the page's summaries sorted by id.
	Items []Summary

	// Total is the listing size reported upstream.
	Total int

	// Partial counts items built from the listing alone because their
	// lookup failed.
	Partial int
}
