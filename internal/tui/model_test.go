package tui

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Sternrassler/pokedex/pkg/catalog"
	"github.com/Sternrassler/pokedex/pkg/render"
	"github.com/Sternrassler/pokedex/pkg/viewer"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// source serves ids 1..total; even ids are fire, odd ids water.
type source struct {
	mu          sync.Mutex
	total       int
	pages       [][2]int
	detailCalls map[int]int
	pageErr     error
}

func newSource(total int) *source {
	return &source{total: total, detailCalls: map[int]int{}}
}

func (s *source) FetchPage(_ context.Context, offset, limit int) (catalog.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages = append(s.pages, [2]int{offset, limit})
	if s.pageErr != nil {
		return catalog.Page{}, s.pageErr
	}

	page := catalog.Page{Total: s.total, Items: []catalog.Summary{}}
	for id := offset + 1; id <= offset+limit && id <= s.total; id++ {
		typ := "water"
		if id%2 == 0 {
			typ = "fire"
		}
		page.Items = append(page.Items, catalog.Summary{ID: id, Name: fmt.Sprintf("mon%d", id), Types: []string{typ}})
	}
	return page, nil
}

func (s *source) FetchDetail(_ context.Context, id int) (*catalog.Detail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detailCalls[id]++
	return &catalog.Detail{
		Summary:   catalog.Summary{ID: id, Name: fmt.Sprintf("mon%d", id), Types: []string{"fire"}},
		HeightM:   1.7,
		WeightKg:  90.5,
		Abilities: []string{"Blaze"},
		Stats:     []catalog.Stat{{Name: "hp", Base: 78}, {Name: "attack", Base: 84}},
	}, nil
}

func (s *source) setPageErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pageErr = err
}

func (s *source) pageCalls() [][2]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][2]int, len(s.pages))
	copy(out, s.pages)
	return out
}

func newModel(t *testing.T, src *source, opts Options, height int) Model {
	t.Helper()
	cfg := viewer.DefaultConfig()
	cfg.Debounce = time.Hour
	session := viewer.NewSession(src, cfg)
	t.Cleanup(session.Close)

	m := New(context.Background(), session, opts)
	t.Cleanup(m.zones.Close)

	m, _ = update(m, tea.WindowSizeMsg{Width: 100, Height: height})
	return drain(t, m, m.Init())
}

func update(m Model, msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

// drain runs cmd and feeds the browser's own messages back into the model
// until nothing is left. Spinner ticks are dropped.
func drain(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		require.Less(t, steps, 1000, "command loop did not settle")
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}

		switch msg := c().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case loadedMsg, detailMsg, viewChangedMsg:
			var next tea.Cmd
			m, next = update(m, msg)
			queue = append(queue, next)
		}
	}
	return m
}

func press(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	m, cmd := update(m, msg)
	return drain(t, m, cmd)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestBoot_FirstPage(t *testing.T) {
	src := newSource(200)
	m := newModel(t, src, Options{TriggerMargin: 5}, 30)

	assert.Equal(t, [][2]int{{0, 60}}, src.pageCalls())
	assert.Equal(t, 60, m.session.Collection().Len())
	assert.Equal(t, viewer.StateIdle, m.session.Controller().State())

	view := m.View()
	assert.Contains(t, view, "#001")
	assert.Contains(t, view, "Mon1")
	assert.Contains(t, view, "60 loaded of 200")
	assert.NotContains(t, view, "Load more")
}

func TestView_EmptyBeforeSize(t *testing.T) {
	session := viewer.NewSession(newSource(10), viewer.DefaultConfig())
	defer session.Close()
	m := New(context.Background(), session, Options{})
	defer m.zones.Close()

	assert.Empty(t, m.View())
	require.Len(t, m.nodes, 1)
	assert.Equal(t, render.NodeLoading, m.nodes[0].Kind)
}

func TestSentinel_KeepsLoadingWhileVisible(t *testing.T) {
	src := newSource(200)
	m := newModel(t, src, Options{}, 300)

	assert.Equal(t, [][2]int{{0, 60}, {60, 30}, {90, 30}, {120, 30}, {150, 30}, {180, 30}}, src.pageCalls())
	assert.Equal(t, 200, m.session.Collection().Len())
	assert.Equal(t, viewer.StateExhausted, m.session.Controller().State())
	assert.False(t, m.sentinelVisible() && m.maybeLoad() != nil)
}

func TestScroll_TriggersNextPage(t *testing.T) {
	src := newSource(200)
	m := newModel(t, src, Options{TriggerMargin: 5}, 30)
	require.Len(t, src.pageCalls(), 1)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyPgDown})
	m = press(t, m, tea.KeyMsg{Type: tea.KeyPgDown})
	assert.Len(t, src.pageCalls(), 1, "sentinel still beyond the margin")

	m = press(t, m, tea.KeyMsg{Type: tea.KeyPgDown})
	assert.Equal(t, [2]int{60, 30}, src.pageCalls()[1])
	assert.Equal(t, 90, m.session.Collection().Len())
	assert.Equal(t, 59, m.selected)
}

func TestMouseWheel_TriggersNextPage(t *testing.T) {
	src := newSource(200)
	m := newModel(t, src, Options{TriggerMargin: 5}, 30)

	wheel := tea.MouseMsg{Button: tea.MouseButtonWheelDown, Action: tea.MouseActionPress}
	for i := 0; i < 10; i++ {
		m = press(t, m, wheel)
	}
	assert.Equal(t, 30, m.grid.YOffset)
	assert.Len(t, src.pageCalls(), 1)

	m = press(t, m, wheel)
	assert.Equal(t, 33, m.grid.YOffset)
	assert.Equal(t, [2]int{60, 30}, src.pageCalls()[1])
	assert.Equal(t, 90, m.session.Collection().Len())
}

func TestError_ShowsManualControl(t *testing.T) {
	src := newSource(200)
	src.setPageErr(errors.New("upstream down"))
	m := newModel(t, src, Options{TriggerMargin: 5}, 30)

	assert.Equal(t, viewer.StateError, m.session.Controller().State())
	assert.Contains(t, m.View(), "Load more")
	assert.Contains(t, m.View(), "Press m to retry")

	src.setPageErr(nil)
	m = press(t, m, runes("m"))
	assert.Equal(t, viewer.StateIdle, m.session.Controller().State())
	assert.Equal(t, 60, m.session.Collection().Len())
	assert.NotContains(t, m.View(), "Load more")
}

func TestNoSentinel_ManualOnly(t *testing.T) {
	src := newSource(200)
	m := newModel(t, src, Options{NoSentinel: true}, 300)

	assert.Len(t, src.pageCalls(), 1)
	assert.Contains(t, m.View(), "Load more")

	m = press(t, m, runes("m"))
	assert.Equal(t, 90, m.session.Collection().Len())
	assert.Len(t, src.pageCalls(), 2)
}

func TestSearch_DebouncedThenRefills(t *testing.T) {
	src := newSource(200)
	m := newModel(t, src, Options{TriggerMargin: 5}, 30)

	m, _ = update(m, runes("/"))
	require.True(t, m.search.Focused())

	m, _ = update(m, runes("mon7"))
	assert.Equal(t, "mon7", m.search.Value())
	assert.Equal(t, 60, m.cardCount(), "view waits for the debounce")

	// Enter applies the pending query; the shrunken grid pulls pages until
	// the sentinel leaves the margin or the listing ends.
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.search.Focused())
	assert.Equal(t, viewer.StateExhausted, m.session.Controller().State())
	assert.Equal(t, 11, m.cardCount(), "mon7 and mon70 to mon79")
}

func TestSearch_EscLeavesInput(t *testing.T) {
	m := newModel(t, newSource(100), Options{}, 30)

	m, _ = update(m, runes("/"))
	m, _ = update(m, runes("q"))
	assert.Equal(t, "q", m.search.Value(), "q is typed, not quit")

	m, _ = update(m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.search.Focused())
}

func TestTagToggle(t *testing.T) {
	src := newSource(200)
	m := newModel(t, src, Options{}, 30)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, "fire", render.AllTags[m.tagCursor])

	m = press(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	assert.True(t, m.session.Criteria().Selected("fire"))
	assert.Equal(t, 30, m.cardCount())

	m = press(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, "normal", render.AllTags[m.tagCursor])
}

func openSelected(t *testing.T, m Model) Model {
	t.Helper()
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, m.session.Overlay().IsOpen())
	return m
}

// zoneOf renders the model and waits for the zone manager to record id.
func zoneOf(t *testing.T, m Model, id string) *zone.ZoneInfo {
	t.Helper()
	m.View()
	var z *zone.ZoneInfo
	require.Eventually(t, func() bool {
		z = m.zones.Get(id)
		return !z.IsZero()
	}, time.Second, 5*time.Millisecond)
	return z
}

func click(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Button: tea.MouseButtonLeft, Action: tea.MouseActionRelease}
}

func TestOverlay_OpenAndClose(t *testing.T) {
	src := newSource(100)
	m := newModel(t, src, Options{}, 40)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m = openSelected(t, m)

	d, _ := m.session.Overlay().Current()
	assert.Equal(t, 3, d.ID)
	view := m.View()
	assert.Contains(t, view, "Mon3")
	assert.Contains(t, view, "[x]")
	assert.Contains(t, view, "Blaze")

	// Grid keys are inert while the overlay is up.
	m = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 2, m.selected)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.session.Overlay().IsOpen())

	m = openSelected(t, m)
	m = press(t, m, runes("x"))
	assert.False(t, m.session.Overlay().IsOpen())

	m = openSelected(t, m)
	m, _ = update(m, click(0, 0))
	assert.False(t, m.session.Overlay().IsOpen(), "click on the backdrop closes")

	m = openSelected(t, m)
	box := zoneOf(t, m, zoneModal)
	m, _ = update(m, click((box.StartX+box.EndX)/2, (box.StartY+box.EndY)/2))
	assert.True(t, m.session.Overlay().IsOpen(), "click inside the modal keeps it open")

	closeButton := zoneOf(t, m, zoneClose)
	m, _ = update(m, click(closeButton.StartX+1, closeButton.StartY))
	assert.False(t, m.session.Overlay().IsOpen(), "click on [x] closes")

	assert.Equal(t, 1, src.detailCalls[3], "detail fetched once")
}

func TestOverlay_EscCancelsPending(t *testing.T) {
	src := newSource(100)
	m := newModel(t, src, Options{}, 40)

	m, fetch := update(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, 1, m.pendingID)
	assert.Contains(t, m.View(), "Loading #001")

	m, _ = update(m, tea.KeyMsg{Type: tea.KeyEsc})
	m = drain(t, m, fetch)

	assert.False(t, m.session.Overlay().IsOpen())
	assert.Zero(t, m.pendingID)
}

func TestQuit(t *testing.T) {
	m := newModel(t, newSource(10), Options{}, 30)

	_, cmd := update(m, runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	_, cmd = update(m, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
