package render

// NeutralColor is used for tags outside the palette.
const NeutralColor = "#DDDDDD"

// AllTags lists the palette tags in display order; the tag filter controls
// offer exactly these.
var AllTags = []string{
	"normal", "fire", "water", "grass", "electric", "ice",
	"fighting", "poison", "ground", "flying", "psychic", "bug",
	"rock", "ghost", "dragon", "dark", "steel", "fairy",
}

var tagColors = map[string]string{
	"normal":   "#A8A878",
	"fire":     "#F08030",
	"water":    "#6890F0",
	"grass":    "#78C850",
	"electric": "#F8D030",
	"ice":      "#98D8D8",
	"fighting": "#C03028",
	"poison":   "#A040A0",
	"ground":   "#E0C068",
	"flying":   "#A890F0",
	"psychic":  "#F85888",
	"bug":      "#A8B820",
	"rock":     "#B8A038",
	"ghost":    "#705898",
	"dragon":   "#7038F8",
	"dark":     "#705848",
	"steel":    "#B8B8D0",
	"fairy":    "#EE99AC",
}

// TagColor returns the hex colour of tag, NeutralColor when unknown.
func TagColor(tag string) string {
	if c, ok := tagColors[tag]; ok {
		return c
	}
	return NeutralColor
}
