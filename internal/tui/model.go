// Package tui is the full-screen terminal browser: a search field, type
// toggles, a scrolling grid that loads more as its trailing sentinel comes
// into view, and a detail modal.
package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/Sternrassler/pokedex/pkg/catalog"
	"github.com/Sternrassler/pokedex/pkg/render"
	"github.com/Sternrassler/pokedex/pkg/viewer"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
)

// Rows around the grid viewport.
const (
	headerRows = 3
	footerRows = 2
)

// Mouse zones.
const (
	zoneModal    = "modal"
	zoneClose    = "close"
	zoneLoadMore = "load-more"
)

// Options configures the browser.
type Options struct {
	// TriggerMargin is how many rows below the visible grid the sentinel
	// may sit and still count as visible.
	TriggerMargin int

	// NoSentinel disables visibility detection. Pages then load through
	// the load-more control only.
	NoSentinel bool
}

type loadedMsg struct {
	outcome viewer.Outcome
}

type detailMsg struct {
	id     int
	detail *catalog.Detail
	err    error
}

// viewChangedMsg is sent when the session recomputed its view outside of
// Update, e.g. after the query debounce fired.
type viewChangedMsg struct{}

// Model is the bubbletea model of the browser.
type Model struct {
	ctx     context.Context
	session *viewer.Session
	opts    Options
	keys    keyMap
	styles  render.Styles
	zones   *zone.Manager

	search  textinput.Model
	grid    viewport.Model
	spinner spinner.Model
	help    help.Model

	nodes     []render.Node
	selected  int
	tagCursor int
	width     int
	height    int

	inflight  bool
	spinning  bool
	pendingID int
	status    string
}

// New creates the browser model for session. Loading starts with Init.
func New(ctx context.Context, session *viewer.Session, opts Options) Model {
	search := textinput.New()
	search.Prompt = "Search: "
	search.Placeholder = "name or number"
	search.CharLimit = 64

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		ctx:     ctx,
		session: session,
		opts:    opts,
		keys:    defaultKeyMap(),
		styles:  render.DefaultStyles(),
		zones:   zone.New(),
		search:  search,
		grid:    viewport.New(80, 20),
		spinner: sp,
		help:    help.New(),

		inflight: true,
		spinning: true,
	}
	m.refresh()
	return m
}

// Init starts the first page load.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.load(viewer.TriggerBoot), m.spinner.Tick)
}

// Update handles a message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.grid.Width = msg.Width
		m.grid.Height = max(1, msg.Height-headerRows-footerRows)
		m.search.Width = max(10, msg.Width/2)
		m.help.Width = msg.Width
		m.refresh()
		return m, m.maybeLoad()

	case loadedMsg:
		m.inflight = false
		out := msg.outcome
		switch {
		case out.Skipped:
		case out.Err != nil:
			m.status = render.ErrorText + " Press m to retry."
		default:
			m.status = ""
		}
		m.refresh()
		return m, m.maybeLoad()

	case viewChangedMsg:
		m.refresh()
		return m, m.maybeLoad()

	case detailMsg:
		if msg.id != m.pendingID {
			return m, nil
		}
		m.pendingID = 0
		switch {
		case errors.Is(msg.err, viewer.ErrSuperseded):
		case msg.err != nil:
			m.status = fmt.Sprintf("Could not load %s: %v", render.FormatID(msg.id), msg.err)
		default:
			m.status = ""
		}
		return m, nil

	case spinner.TickMsg:
		if !m.busy() {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refresh()
		return m, cmd

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.session.Overlay().IsOpen() {
		switch {
		case key.Matches(msg, m.keys.Escape):
			m.closeOverlay(viewer.CloseEscape)
		case key.Matches(msg, m.keys.Close):
			m.closeOverlay(viewer.CloseButton)
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		}
		return m, nil
	}

	if m.search.Focused() {
		switch msg.Type {
		case tea.KeyEsc:
			m.search.Blur()
			return m, nil
		case tea.KeyEnter:
			m.search.Blur()
			m.session.FlushQuery()
			m.refresh()
			return m, m.maybeLoad()
		}

		before := m.search.Value()
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		if value := m.search.Value(); value != before {
			m.session.SetQuery(value)
		}
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Search):
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.Escape):
		if m.pendingID != 0 {
			m.session.Overlay().Close(viewer.CloseEscape)
			m.pendingID = 0
			m.status = ""
		}
	case key.Matches(msg, m.keys.Up):
		m.moveSelection(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveSelection(1)
	case key.Matches(msg, m.keys.PageUp):
		m.moveSelection(-m.grid.Height)
	case key.Matches(msg, m.keys.PageDown):
		m.moveSelection(m.grid.Height)
	case key.Matches(msg, m.keys.NextTag):
		m.tagCursor = (m.tagCursor + 1) % len(render.AllTags)
	case key.Matches(msg, m.keys.PrevTag):
		m.tagCursor = (m.tagCursor - 1 + len(render.AllTags)) % len(render.AllTags)
	case key.Matches(msg, m.keys.Toggle):
		m.session.ToggleTag(render.AllTags[m.tagCursor])
		m.refresh()
	case key.Matches(msg, m.keys.Open):
		return m, m.openDetail()
	case key.Matches(msg, m.keys.LoadMore):
		return m, m.manualLoad()
	}
	return m, m.maybeLoad()
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	click := msg.Action == tea.MouseActionRelease && msg.Button == tea.MouseButtonLeft

	if m.session.Overlay().IsOpen() {
		if !click {
			return m, nil
		}
		switch {
		case m.inZone(zoneClose, msg):
			m.closeOverlay(viewer.CloseButton)
		case !m.inZone(zoneModal, msg):
			m.closeOverlay(viewer.CloseBackdrop)
		}
		return m, nil
	}

	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.grid.SetYOffset(m.grid.YOffset - 3)
	case msg.Button == tea.MouseButtonWheelDown:
		m.grid.SetYOffset(m.grid.YOffset + 3)
	case click && m.inZone(zoneLoadMore, msg):
		return m, m.manualLoad()
	}
	return m, m.maybeLoad()
}

func (m Model) inZone(id string, msg tea.MouseMsg) bool {
	z := m.zones.Get(id)
	return z != nil && z.InBounds(msg)
}

// startLoad issues a page load and keeps the spinner running until it
// settles.
func (m *Model) startLoad(trigger viewer.Trigger) tea.Cmd {
	m.inflight = true
	return tea.Batch(m.load(trigger), m.spin())
}

func (m Model) load(trigger viewer.Trigger) tea.Cmd {
	session, ctx := m.session, m.ctx
	return func() tea.Msg {
		return loadedMsg{outcome: session.LoadMore(ctx, trigger)}
	}
}

// maybeLoad requests the next page when the sentinel is within the
// trigger margin and no load is running.
func (m *Model) maybeLoad() tea.Cmd {
	if m.opts.NoSentinel || m.inflight {
		return nil
	}
	if m.session.Controller().State() != viewer.StateIdle {
		return nil
	}
	if !m.sentinelVisible() {
		return nil
	}
	return m.startLoad(viewer.TriggerSentinel)
}

func (m *Model) manualLoad() tea.Cmd {
	if m.inflight || !m.manualVisible() {
		return nil
	}
	m.status = ""
	return m.startLoad(viewer.TriggerManual)
}

func (m Model) manualVisible() bool {
	return m.session.Controller().ManualControlVisible(!m.opts.NoSentinel)
}

// sentinelVisible reports whether the sentinel line lies within the
// viewport extended by the trigger margin.
func (m Model) sentinelVisible() bool {
	n := len(m.nodes)
	if n == 0 || m.nodes[n-1].Kind != render.NodeSentinel {
		return false
	}
	return n-1 < m.grid.YOffset+m.grid.Height+m.opts.TriggerMargin
}

func (m *Model) openDetail() tea.Cmd {
	if m.cardCount() == 0 {
		return nil
	}
	id := m.nodes[m.selected].Card.ID
	m.pendingID = id
	m.status = "Loading " + render.FormatID(id) + "…"

	open, ctx := m.session.Overlay().Prepare(id), m.ctx
	fetch := func() tea.Msg {
		d, err := open(ctx)
		return detailMsg{id: id, detail: d, err: err}
	}
	return tea.Batch(fetch, m.spin())
}

func (m *Model) closeOverlay(reason viewer.CloseReason) {
	m.session.Overlay().Close(reason)
	m.pendingID = 0
}

func (m *Model) spin() tea.Cmd {
	if m.spinning {
		return nil
	}
	m.spinning = true
	return m.spinner.Tick
}

func (m Model) busy() bool {
	return m.inflight || m.pendingID != 0
}

func (m Model) cardCount() int {
	n := len(m.nodes)
	if n > 0 && m.nodes[n-1].Kind == render.NodeSentinel {
		return n - 1
	}
	return 0
}

func (m *Model) moveSelection(delta int) {
	cards := m.cardCount()
	if cards == 0 {
		return
	}
	m.selected = min(max(m.selected+delta, 0), cards-1)
	m.refresh()

	switch {
	case m.selected < m.grid.YOffset:
		m.grid.SetYOffset(m.selected)
	case m.selected >= m.grid.YOffset+m.grid.Height:
		m.grid.SetYOffset(m.selected - m.grid.Height + 1)
	}
}

// refresh rebuilds the display list from the session and re-renders the
// grid content.
func (m *Model) refresh() {
	m.nodes = render.SessionGrid(m.session)

	highlight := -1
	if cards := m.cardCount(); cards > 0 {
		m.selected = min(max(m.selected, 0), cards-1)
		highlight = m.selected
	} else {
		m.selected = 0
	}

	offset := m.grid.YOffset
	m.grid.SetContent(m.styles.Grid(m.nodes, highlight))
	m.grid.SetYOffset(offset)
}
