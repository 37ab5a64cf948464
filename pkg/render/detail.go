package render

import (
	"strings"

	"github.com/Sternrassler/pokedex/pkg/catalog"
)

// NoAbilities stands in for an empty ability list.
const NoAbilities = "—"

// StatBar is one labeled proportional bar.
type StatBar struct {
	Name    string
	Base    int
	Percent int
}

// DetailLayout is the fixed layout of the detail overlay.
type DetailLayout struct {
	// Header
	ID     int
	Label  string
	Name   string
	Image  *string
	Tags   []Tag
	Flavor string

	// Basics
	Height    string
	Weight    string
	BaseExp   int
	Abilities string

	// Stats, scaled against Scale
	Scale int
	Stats []StatBar
}

// Detail builds the overlay layout for d.
func Detail(d *catalog.Detail) DetailLayout {
	abilities := NoAbilities
	if len(d.Abilities) > 0 {
		abilities = strings.Join(d.Abilities, ", ")
	}

	scale := StatScale(d.Stats)
	bars := make([]StatBar, 0, len(d.Stats))
	for _, s := range d.Stats {
		bars = append(bars, StatBar{
			Name:    strings.ToUpper(s.Name),
			Base:    s.Base,
			Percent: StatPercent(s.Base, scale),
		})
	}

	return DetailLayout{
		ID:        d.ID,
		Label:     FormatID(d.ID),
		Name:      FormatName(d.Name),
		Image:     d.Image,
		Tags:      Tags(d.Types),
		Flavor:    d.Flavor,
		Height:    FormatMeasure(d.HeightM, "m"),
		Weight:    FormatMeasure(d.WeightKg, "kg"),
		BaseExp:   d.BaseExp,
		Abilities: abilities,
		Scale:     scale,
		Stats:     bars,
	}
}
