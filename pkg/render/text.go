package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles holds the lipgloss styles of the text renderings.
type Styles struct {
	ID          lipgloss.Style
	Name        lipgloss.Style
	Selected    lipgloss.Style
	Muted       lipgloss.Style
	Placeholder lipgloss.Style
	Error       lipgloss.Style
	Title       lipgloss.Style
	Panel       lipgloss.Style
	Box         lipgloss.Style
	BarFill     lipgloss.Style
	BarTrack    lipgloss.Style
	BadgeText   lipgloss.Color

	// FillChar and TrackChar draw the stat bars.
	FillChar  string
	TrackChar string
}

// DefaultStyles returns the default palette.
func DefaultStyles() Styles {
	return Styles{
		ID:          lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")),
		Name:        lipgloss.NewStyle().Bold(true),
		Selected:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EF4444")),
		Muted:       lipgloss.NewStyle().Foreground(lipgloss.Color("#4B5563")),
		Placeholder: lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")).Italic(true),
		Error:       lipgloss.NewStyle().Foreground(lipgloss.Color("#DC2626")),
		Title:       lipgloss.NewStyle().Bold(true).Underline(true),
		Panel:       lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1),
		Box:         lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
		BarFill:     lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")),
		BarTrack:    lipgloss.NewStyle().Foreground(lipgloss.Color("#E5E7EB")),
		BadgeText:   lipgloss.Color("#1F2937"),
		FillChar:    "█",
		TrackChar:   "░",
	}
}

// Badge renders a tag on its palette colour.
func (s Styles) Badge(t Tag) string {
	return lipgloss.NewStyle().
		Background(lipgloss.Color(t.Color)).
		Foreground(s.BadgeText).
		Padding(0, 1).
		Render(t.Label)
}

// Badges renders tags separated by a space.
func (s Styles) Badges(tags []Tag) string {
	parts := make([]string, 0, len(tags))
	for _, t := range tags {
		parts = append(parts, s.Badge(t))
	}
	return strings.Join(parts, " ")
}

// CardLine renders a card on one line.
func (s Styles) CardLine(c *Card, selected bool) string {
	marker := "  "
	name := s.Name.Render(c.Name)
	if selected {
		marker = "> "
		name = s.Selected.Render(c.Name)
	}

	thumb := "□"
	if c.Image != nil && *c.Image != "" {
		thumb = "▣"
	}

	return fmt.Sprintf("%s%s %s %s  %s", marker, thumb, s.ID.Render(c.Label), name, s.Badges(c.Tags))
}

// GridLines renders one line per display node. selected is the index of
// the highlighted card node, -1 for none.
func (s Styles) GridLines(nodes []Node, selected int) []string {
	lines := make([]string, 0, len(nodes))
	for i, n := range nodes {
		switch n.Kind {
		case NodeCard:
			lines = append(lines, s.CardLine(n.Card, i == selected))
		case NodeSentinel:
			if n.Text == ErrorText {
				lines = append(lines, s.Error.Render(n.Text))
			} else {
				lines = append(lines, s.Placeholder.Render(n.Text))
			}
		default:
			lines = append(lines, s.Placeholder.Render(n.Text))
		}
	}
	return lines
}

// Grid renders the display list as text.
func (s Styles) Grid(nodes []Node, selected int) string {
	return strings.Join(s.GridLines(nodes, selected), "\n")
}

// Bar draws a bar of width cells with percent of them filled.
func (s Styles) Bar(percent, width int) string {
	if width <= 0 {
		return ""
	}
	filled := int(math.Round(float64(percent) * float64(width) / 100))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return s.BarFill.Render(strings.Repeat(s.FillChar, filled)) +
		s.BarTrack.Render(strings.Repeat(s.TrackChar, width-filled))
}

// Detail renders the overlay layout inside a box of the given outer width.
func (s Styles) Detail(l DetailLayout, width int) string {
	if width < 40 {
		width = 40
	}
	inner := width - 4

	// Header
	header := []string{
		s.Name.Render(l.Name) + " " + s.ID.Render(l.Label),
	}
	if len(l.Tags) > 0 {
		header = append(header, s.Badges(l.Tags))
	}
	if l.Flavor != "" {
		header = append(header, s.Muted.Width(inner).Render(l.Flavor))
	}
	if l.Image != nil && *l.Image != "" {
		header = append(header, s.ID.Render("Artwork: "+*l.Image))
	}

	// Basics
	basics := s.Panel.Width(inner - 2).Render(strings.Join([]string{
		s.Title.Render("Basics"),
		"Height:    " + l.Height,
		"Weight:    " + l.Weight,
		fmt.Sprintf("Base EXP:  %d", l.BaseExp),
		"Abilities: " + l.Abilities,
	}, "\n"))

	// Stats
	barWidth := inner - 2 - 2 - 16 - 1 - 4
	if barWidth < 10 {
		barWidth = 10
	}
	statLines := []string{s.Title.Render("Stats")}
	for _, b := range l.Stats {
		statLines = append(statLines, fmt.Sprintf("%-16s %s %3d", b.Name, s.Bar(b.Percent, barWidth), b.Base))
	}
	stats := s.Panel.Width(inner - 2).Render(strings.Join(statLines, "\n"))

	body := lipgloss.JoinVertical(lipgloss.Left,
		strings.Join(header, "\n"),
		basics,
		stats,
	)
	return s.Box.Width(width - 2).Render(body)
}
