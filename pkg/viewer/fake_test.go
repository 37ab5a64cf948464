package viewer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Sternrassler/pokedex/pkg/catalog"
)

type pageCall struct {
	offset, limit int
}

// fakeSource serves ids 1..available and reports total as the listing count.
type fakeSource struct {
	mu          sync.Mutex
	total       int
	available   int
	types       map[int][]string
	pageCalls   []pageCall
	detailCalls map[int]int
	pageErr     error
	detailErr   error
	detailDelay time.Duration

	// When gate is set FetchPage signals started and waits for gate.
	gate    chan struct{}
	started chan struct{}
}

func newFakeSource(total, available int) *fakeSource {
	return &fakeSource{
		total:       total,
		available:   available,
		types:       map[int][]string{},
		detailCalls: map[int]int{},
	}
}

func (f *fakeSource) FetchPage(ctx context.Context, offset, limit int) (catalog.Page, error) {
	f.mu.Lock()
	f.pageCalls = append(f.pageCalls, pageCall{offset, limit})
	gate, started, err := f.gate, f.started, f.pageErr
	f.mu.Unlock()

	if gate != nil {
		started <- struct{}{}
		<-gate
	}
	if err != nil {
		return catalog.Page{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	page := catalog.Page{Total: f.total, Items: []catalog.Summary{}}
	for id := offset + 1; id <= offset+limit && id <= f.available; id++ {
		types := f.types[id]
		if types == nil {
			types = []string{"normal"}
		}
		page.Items = append(page.Items, catalog.Summary{ID: id, Name: fmt.Sprintf("mon%d", id), Types: types})
	}
	return page, nil
}

func (f *fakeSource) FetchDetail(ctx context.Context, id int) (*catalog.Detail, error) {
	f.mu.Lock()
	f.detailCalls[id]++
	err, delay := f.detailErr, f.detailDelay
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if err != nil {
		return nil, err
	}
	return &catalog.Detail{
		Summary: catalog.Summary{ID: id, Name: fmt.Sprintf("mon%d", id), Types: []string{"normal"}},
		Stats:   []catalog.Stat{{Name: "hp", Base: 45}},
	}, nil
}

func (f *fakeSource) calls() []pageCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]pageCall, len(f.pageCalls))
	copy(out, f.pageCalls)
	return out
}

func (f *fakeSource) detailCount(id int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.detailCalls[id]
}

func (f *fakeSource) setPageErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pageErr = err
}

func (f *fakeSource) setDetailErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detailErr = err
}
