package pokeapi

// NamedResource is the upstream reference to another resource.
type NamedResource struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// SpeciesList is one page of /pokemon-species.
type SpeciesList struct {
	Count   int             `json:"count"`
	Next    *string         `json:"next"`
	Results []NamedResource `json:"results"`
}

// Species is a /pokemon-species/{id} record.
type Species struct {
	ID                int          `json:"id"`
	Name              string       `json:"name"`
	Varieties         []Variety    `json:"varieties"`
	FlavorTextEntries []FlavorText `json:"flavor_text_entries"`
}

// Variety links a species to one of its pokemon forms.
type Variety struct {
	IsDefault bool          `json:"is_default"`
	Pokemon   NamedResource `json:"pokemon"`
}

// FlavorText is a localized description.
type FlavorText struct {
	FlavorText string        `json:"flavor_text"`
	Language   NamedResource `json:"language"`
}

// DefaultVariety returns the default variety's resource, false when the
// species has none.
func (s Species) DefaultVariety() (NamedResource, bool) {
	for _, v := range s.Varieties {
		if v.IsDefault && v.Pokemon.URL != "" {
			return v.Pokemon, true
		}
	}
	return NamedResource{}, false
}

// Pokemon is a /pokemon/{id} record.
type Pokemon struct {
	ID             int           `json:"id"`
	Name           string        `json:"name"`
	Height         int           `json:"height"`
	Weight         int           `json:"weight"`
	BaseExperience *int          `json:"base_experience"`
	Sprites        Sprites       `json:"sprites"`
	Types          []TypeSlot    `json:"types"`
	Abilities      []AbilitySlot `json:"abilities"`
	Stats          []StatSlot    `json:"stats"`
}

// Sprites holds the image URIs of a pokemon.
type Sprites struct {
	FrontDefault *string `json:"front_default"`
	Other        struct {
		OfficialArtwork struct {
			FrontDefault *string `json:"front_default"`
		} `json:"official-artwork"`
	} `json:"other"`
}

// Artwork returns the official artwork, falling back to the default sprite.
func (s Sprites) Artwork() string {
	if a := s.Other.OfficialArtwork.FrontDefault; a != nil && *a != "" {
		return *a
	}
	if s.FrontDefault != nil {
		return *s.FrontDefault
	}
	return ""
}

// TypeSlot is one entry of Pokemon.Types.
type TypeSlot struct {
	Slot int           `json:"slot"`
	Type NamedResource `json:"type"`
}

// AbilitySlot is one entry of Pokemon.Abilities.
type AbilitySlot struct {
	Slot     int           `json:"slot"`
	IsHidden bool          `json:"is_hidden"`
	Ability  NamedResource `json:"ability"`
}

// StatSlot is one entry of Pokemon.Stats.
type StatSlot struct {
	BaseStat int           `json:"base_stat"`
	Stat     NamedResource `json:"stat"`
}

// TypeNames returns the type names in upstream order.
func (p Pokemon) TypeNames() []string {
	names := make([]string, 0, len(p.Types))
	for _, t := range p.Types {
		if t.Type.Name != "" {
			names = append(names, t.Type.Name)
		}
	}
	return names
}
