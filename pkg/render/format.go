package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/Sternrassler/pokedex/pkg/catalog"
)

// FormatID renders an id as "#001".
func FormatID(id int) string {
	return fmt.Sprintf("#%03d", id)
}

// FormatName capitalises a lower-case upstream name.
func FormatName(name string) string {
	return catalog.Capitalize(name)
}

// FormatTag renders a tag badge label.
func FormatTag(tag string) string {
	return strings.ToUpper(tag)
}

// FormatMeasure renders a measurement with one decimal place.
func FormatMeasure(v float64, unit string) string {
	return fmt.Sprintf("%.1f %s", v, unit)
}

// StatFloor is the minimum scale of the stat bars.
const StatFloor = 100

// StatScale is the value a full stat bar stands for: the largest stat, but
// never less than StatFloor.
func StatScale(stats []catalog.Stat) int {
	scale := StatFloor
	for _, s := range stats {
		if s.Base > scale {
			scale = s.Base
		}
	}
	return scale
}

// StatPercent is base as a rounded percentage of scale, clamped to 0..100.
func StatPercent(base, scale int) int {
	if scale <= 0 || base <= 0 {
		return 0
	}
	p := int(math.Round(float64(base) / float64(scale) * 100))
	if p > 100 {
		return 100
	}
	return p
}
