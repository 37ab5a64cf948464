package pokeapi

import "strings"

// DescriptionLanguage is the language of the description shown in details.
const DescriptionLanguage = "en"

// normalizeFlavor turns form feeds and line breaks into spaces, collapses
// whitespace runs and trims the ends.
func normalizeFlavor(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Description returns the first flavor text in lang, normalised. Empty when
// the species has none.
func (s Species) Description(lang string) string {
	for _, e := range s.FlavorTextEntries {
		if e.Language.Name == lang {
			return normalizeFlavor(e.FlavorText)
		}
	}
	return ""
}
