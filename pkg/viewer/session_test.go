package viewer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Sternrassler/pokedex/pkg/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession(src *fakeSource, debounce time.Duration) *Session {
	cfg := DefaultConfig()
	cfg.Debounce = debounce
	return NewSession(src, cfg)
}

func viewIDs(s *Session) []int {
	var ids []int
	for _, it := range s.View() {
		ids = append(ids, it.ID)
	}
	return ids
}

func TestSession_LoadMoreRecomputesView(t *testing.T) {
	src := newFakeSource(1025, 1025)
	s := newSession(src, 0)
	defer s.Close()

	var changes int32
	s.OnChange(func() { atomic.AddInt32(&changes, 1) })

	assert.Empty(t, s.View())
	out := s.LoadMore(context.Background(), TriggerBoot)

	assert.Equal(t, StateIdle, out.State)
	assert.Len(t, s.View(), 60)
	assert.Equal(t, int32(1), atomic.LoadInt32(&changes))

	// Failed and skipped loads leave the view alone.
	src.setPageErr(errors.New("down"))
	s.LoadMore(context.Background(), TriggerSentinel)
	out = s.LoadMore(context.Background(), TriggerSentinel)
	assert.True(t, out.Skipped)
	assert.Equal(t, int32(1), atomic.LoadInt32(&changes))
	assert.Len(t, s.View(), 60)
}

func TestSession_QueryIsDebounced(t *testing.T) {
	src := newFakeSource(1025, 1025)
	s := newSession(src, 40*time.Millisecond)
	defer s.Close()
	s.LoadMore(context.Background(), TriggerBoot)

	var changes int32
	s.OnChange(func() { atomic.AddInt32(&changes, 1) })

	for _, q := range []string{"m", "mo", "mon", "mon2", "mon25"} {
		s.SetQuery(q)
		time.Sleep(2 * time.Millisecond)
	}
	assert.Len(t, s.View(), 60, "view must not change before the idle gap")

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&changes) == 1
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, []int{25}, viewIDs(s))
	assert.Equal(t, "mon25", s.Criteria().Query)
}

func TestSession_FlushAndImmediateQuery(t *testing.T) {
	src := newFakeSource(1025, 1025)
	s := newSession(src, time.Hour)
	defer s.Close()
	s.LoadMore(context.Background(), TriggerBoot)

	s.SetQuery("mon7")
	assert.True(t, s.FlushQuery())
	assert.Equal(t, []int{7}, viewIDs(s))

	s.SetQuery("ignored")
	s.SetQueryNow("")
	assert.Len(t, s.View(), 60)
	assert.False(t, s.FlushQuery())
}

func TestSession_TagConjunction(t *testing.T) {
	src := newFakeSource(1025, 1025)
	src.types[3] = []string{"grass", "poison"}
	src.types[4] = []string{"grass"}
	src.types[5] = []string{"poison"}
	s := newSession(src, 0)
	defer s.Close()
	s.LoadMore(context.Background(), TriggerBoot)

	assert.True(t, s.ToggleTag("grass"))
	assert.Equal(t, []int{3, 4}, viewIDs(s))

	assert.True(t, s.ToggleTag("poison"))
	assert.Equal(t, []int{3}, viewIDs(s))

	assert.False(t, s.ToggleTag("grass"))
	assert.Equal(t, []int{3, 5}, viewIDs(s))
}

func TestSession_ViewFollowsNewPages(t *testing.T) {
	src := newFakeSource(1025, 1025)
	s := newSession(src, 0)
	defer s.Close()

	s.SetQueryNow("mon7")
	s.LoadMore(context.Background(), TriggerBoot)
	before := len(s.View())

	s.LoadMore(context.Background(), TriggerSentinel)
	assert.Greater(t, len(s.View()), before)
	for _, it := range s.View() {
		assert.Contains(t, it.Name, "mon7")
	}
}

func TestSession_AutoloadRefiltersBeforeVisibilityCheck(t *testing.T) {
	src := newFakeSource(1025, 1025)
	s := newSession(src, 0)
	defer s.Close()

	var seen []int
	outcomes := s.Autoload(context.Background(), TriggerBoot, VisibilityFunc(func() bool {
		seen = append(seen, len(s.View()))
		return len(s.View()) < 100
	}))

	assert.Len(t, outcomes, 3)
	assert.Equal(t, []int{60, 90, 120}, seen)
	assert.Len(t, s.View(), 120)
}

func TestSession_Snapshot(t *testing.T) {
	src := newFakeSource(1025, 1025)
	s := newSession(src, 0)
	defer s.Close()

	snap := s.Snapshot()
	assert.NotEmpty(t, snap.SessionID)
	assert.Nil(t, snap.Total)
	assert.Equal(t, StateIdle, snap.State)

	s.LoadMore(context.Background(), TriggerBoot)
	s.SetQueryNow("mon1")
	s.ToggleTag("normal")
	_, err := s.Details().Get(context.Background(), 1)
	require.NoError(t, err)

	snap = s.Snapshot()
	assert.Equal(t, s.ID(), snap.SessionID)
	require.NotNil(t, snap.Total)
	assert.Equal(t, 1025, *snap.Total)
	assert.Equal(t, 60, snap.Loaded)
	assert.Equal(t, 60, snap.Cursor)
	assert.Equal(t, len(s.View()), snap.Filtered)
	assert.Equal(t, "mon1", snap.Query)
	assert.Equal(t, []string{"normal"}, snap.Tags)
	assert.Equal(t, 1, snap.DetailsCached)
	assert.Empty(t, snap.Error)
}

func TestSession_IndependentInstances(t *testing.T) {
	a := newSession(newFakeSource(1025, 1025), 0)
	b := newSession(newFakeSource(1025, 1025), 0)
	defer a.Close()
	defer b.Close()

	a.LoadMore(context.Background(), TriggerBoot)

	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, 60, a.Collection().Len())
	assert.Zero(t, b.Collection().Len())
}

func TestSession_ConcurrentRefilterKeepsLatestCollection(t *testing.T) {
	for round := 0; round < 50; round++ {
		src := newFakeSource(300, 300)
		s := newSession(src, 0)
		s.LoadMore(context.Background(), TriggerBoot)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				s.SetQueryNow("")
			}
		}()
		go func() {
			defer wg.Done()
			for i := 0; i < 4; i++ {
				s.LoadMore(context.Background(), TriggerManual)
			}
		}()
		wg.Wait()

		want := catalog.Filter(s.Collection().Items(), s.Criteria())
		require.Len(t, s.View(), len(want), "round %d", round)
		s.Close()
	}
}
