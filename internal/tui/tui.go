package tui

import (
	"context"
	"errors"

	"github.com/Sternrassler/pokedex/pkg/viewer"
	tea "github.com/charmbracelet/bubbletea"
)

// Run shows the browser for session until the user quits or ctx ends.
func Run(ctx context.Context, session *viewer.Session, opts Options) error {
	m := New(ctx, session, opts)
	defer m.zones.Close()

	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	// Debounced query changes land outside Update; Send must not block it.
	session.OnChange(func() {
		go p.Send(viewChangedMsg{})
	})

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
