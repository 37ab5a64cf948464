package catalog

import (
	"sync"
)

// Collection is the session's ordered set of fetched summaries together with
// the pagination cursor and the total-count bound.
//
// Insertion order is fetch order. The cursor only moves forward and, once the
// bound is known, never passes it.
type Collection struct {
	mu     sync.RWMutex
	items  []Summary
	ids    map[int]struct{}
	cursor int
	total  int
	known  bool
}

// NewCollection creates an empty collection with an unknown bound.
func NewCollection() *Collection {
	return &Collection{
		ids: make(map[int]struct{}),
	}
}

// AppendPage records a fetched page. The bound is fixed by the first call and
// ignored afterwards. Summaries whose id is already present are dropped. The
// number of summaries actually added is returned.
func (c *Collection) AppendPage(items []Summary, total int) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.known {
		c.total = total
		c.known = true
	}

	added := 0
	for _, it := range items {
		if _, dup := c.ids[it.ID]; dup {
			continue
		}
		c.ids[it.ID] = struct{}{}
		c.items = append(c.items, it)
		added++
	}

	c.cursor += len(items)
	if c.cursor > c.total {
		c.cursor = c.total
	}

	return added
}

// Items returns a copy of the collected summaries in fetch order.
func (c *Collection) Items() []Summary {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Summary, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of collected summaries.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Cursor returns the next offset into the upstream listing.
func (c *Collection) Cursor() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cursor
}

// Total returns the total-count bound and whether it is known yet.
func (c *Collection) Total() (int, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.total, c.known
}

// Exhausted reports whether the cursor has reached a known bound.
func (c *Collection) Exhausted() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.known && c.cursor >= c.total
}

// Lookup returns the summary with the given id.
func (c *Collection) Lookup(id int) (Summary, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if _, ok := c.ids[id]; !ok {
		return Summary{}, false
	}
	for _, it := range c.items {
		if it.ID == id {
			return it, true
		}
	}
	return Summary{}, false
}
