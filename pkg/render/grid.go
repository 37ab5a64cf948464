// Package render projects session state into display structures: the grid
// display list with its placeholders and sentinel, and the detail layout.
// Text rendering with lipgloss is layered on top for the terminal front-end
// and the CLI.
package render

import (
	"github.com/Sternrassler/pokedex/pkg/catalog"
	"github.com/Sternrassler/pokedex/pkg/viewer"
)

// Placeholder and sentinel texts.
const (
	LoadingText = "Loading…"
	EmptyText   = "No Pokémon found"
	ErrorText   = "Failed to load. Try again."
)

// NodeKind is the kind of a display list entry.
type NodeKind string

const (
	NodeLoading  NodeKind = "loading"
	NodeEmpty    NodeKind = "empty"
	NodeCard     NodeKind = "card"
	NodeSentinel NodeKind = "sentinel"
)

// Tag is a rendered tag badge.
type Tag struct {
	Name  string
	Label string
	Color string
}

// Card is a rendered summary.
type Card struct {
	ID    int
	Label string
	Name  string
	Image *string
	Tags  []Tag
}

// Node is one entry of the grid display list.
type Node struct {
	Kind NodeKind

	// Card is set for NodeCard.
	Card *Card

	// Text of placeholders and of the sentinel.
	Text string
}

// Tags renders tag badges in order.
func Tags(tags []string) []Tag {
	out := make([]Tag, 0, len(tags))
	for _, t := range tags {
		out = append(out, Tag{Name: t, Label: FormatTag(t), Color: TagColor(t)})
	}
	return out
}

// NewCard renders a summary.
func NewCard(s catalog.Summary) *Card {
	return &Card{
		ID:    s.ID,
		Label: FormatID(s.ID),
		Name:  FormatName(s.Name),
		Image: s.Image,
		Tags:  Tags(s.Types),
	}
}

// SentinelText is the text shown inside the sentinel. The loading text
// appears only once something is loaded, the empty grid placeholder covers
// the first load.
func SentinelText(state viewer.State, loaded int) string {
	switch state {
	case viewer.StateLoading:
		if loaded > 0 {
			return LoadingText
		}
	case viewer.StateError:
		return ErrorText
	}
	return ""
}

// Grid builds the display list. An empty collection shows the loading
// placeholder, an empty view over a non-empty collection shows the empty
// placeholder, otherwise every view item is a card followed by the
// sentinel. The sentinel is never emitted without cards.
func Grid(loaded int, view []catalog.Summary, sentinel string) []Node {
	if len(view) == 0 {
		if loaded == 0 {
			return []Node{{Kind: NodeLoading, Text: LoadingText}}
		}
		return []Node{{Kind: NodeEmpty, Text: EmptyText}}
	}

	nodes := make([]Node, 0, len(view)+1)
	for _, s := range view {
		nodes = append(nodes, Node{Kind: NodeCard, Card: NewCard(s)})
	}
	return append(nodes, Node{Kind: NodeSentinel, Text: sentinel})
}

// SessionGrid builds the display list of a session.
func SessionGrid(s *viewer.Session) []Node {
	loaded := s.Collection().Len()
	return Grid(loaded, s.View(), SentinelText(s.Controller().State(), loaded))
}
