package tui

import (
	"fmt"
	"strings"

	"github.com/Sternrassler/pokedex/pkg/catalog"
	"github.com/Sternrassler/pokedex/pkg/render"
	"github.com/charmbracelet/lipgloss"
)

// View renders the screen.
func (m Model) View() string {
	if m.width == 0 {
		return ""
	}

	var screen string
	if d, ok := m.session.Overlay().Current(); ok {
		screen = m.overlayView(d)
	} else {
		screen = lipgloss.JoinVertical(lipgloss.Left,
			m.headerView(),
			m.grid.View(),
			m.footerView(),
		)
	}
	return m.zones.Scan(screen)
}

func (m Model) headerView() string {
	title := m.styles.Title.Render("Pokédex")
	search := title + "  " + m.search.View()

	criteria := m.session.Criteria()
	tags := make([]string, 0, len(render.AllTags))
	for i, t := range render.AllTags {
		label := render.FormatTag(t)
		var cell string
		if criteria.Selected(t) {
			cell = m.styles.Badge(render.Tag{Name: t, Label: label, Color: render.TagColor(t)})
		} else {
			cell = m.styles.Muted.Render(" " + label + " ")
		}
		if i == m.tagCursor {
			cell = lipgloss.NewStyle().Underline(true).Render(cell)
		}
		tags = append(tags, cell)
	}
	tagBar := lipgloss.NewStyle().MaxWidth(max(m.width, 1)).Render(strings.Join(tags, ""))

	return strings.Join([]string{search, tagBar, m.countsLine()}, "\n")
}

func (m Model) countsLine() string {
	loaded := m.session.Collection().Len()
	shown := m.cardCount()
	line := fmt.Sprintf("%d shown · %d loaded", shown, loaded)
	if total, ok := m.session.Collection().Total(); ok {
		line += fmt.Sprintf(" of %d", total)
	}
	return m.styles.ID.Render(line)
}

func (m Model) footerView() string {
	var parts []string
	if m.busy() {
		parts = append(parts, m.spinner.View())
	}
	if m.manualVisible() {
		parts = append(parts, m.zones.Mark(zoneLoadMore, m.styles.Selected.Render("[ Load more ]")))
	}
	if m.status != "" {
		parts = append(parts, m.styles.Muted.Render(m.status))
	}

	status := strings.Join(parts, " ")
	return status + "\n" + m.help.ShortHelpView(m.keys.gridHelp())
}

func (m Model) overlayView(d *catalog.Detail) string {
	width := min(max(m.width-4, 40), 76)

	closeButton := m.zones.Mark(zoneClose, m.styles.Error.Render("[x]"))
	box := m.zones.Mark(zoneModal, m.styles.Detail(render.Detail(d), width))
	modal := lipgloss.JoinVertical(lipgloss.Right, closeButton, box)

	screen := lipgloss.Place(m.width, max(m.height-1, 1), lipgloss.Center, lipgloss.Center, modal)
	return screen + "\n" + m.help.ShortHelpView(m.keys.overlayHelp())
}
