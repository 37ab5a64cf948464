package catalog

import (
	"sort"
	"strconv"
	"strings"
)

// Criteria is the current text query and the set of selected tags.
type Criteria struct {
	Query string
	Tags  map[string]struct{}
}

// NewCriteria builds criteria from a query and a list of tags.
func NewCriteria(query string, tags ...string) Criteria {
	c := Criteria{Query: query, Tags: make(map[string]struct{}, len(tags))}
	for _, t := range tags {
		c.Tags[normalizeTag(t)] = struct{}{}
	}
	return c
}

func normalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

// Toggle flips membership of tag and reports whether it is now selected.
func (c *Criteria) Toggle(tag string) bool {
	tag = normalizeTag(tag)
	if c.Tags == nil {
		c.Tags = make(map[string]struct{})
	}
	if _, ok := c.Tags[tag]; ok {
		delete(c.Tags, tag)
		return false
	}
	c.Tags[tag] = struct{}{}
	return true
}

// Selected reports whether tag is selected.
func (c Criteria) Selected(tag string) bool {
	_, ok := c.Tags[normalizeTag(tag)]
	return ok
}

// SelectedTags returns the selected tags in sorted order.
func (c Criteria) SelectedTags() []string {
	out := make([]string, 0, len(c.Tags))
	for t := range c.Tags {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Clone returns an independent copy.
func (c Criteria) Clone() Criteria {
	out := Criteria{Query: c.Query, Tags: make(map[string]struct{}, len(c.Tags))}
	for t := range c.Tags {
		out.Tags[t] = struct{}{}
	}
	return out
}

// Match reports whether s passes both the text and the tag axis.
//
// Text: case-insensitive substring of the name, or the query equals the id.
// Tags: every selected tag must be present (conjunction).
func (c Criteria) Match(s Summary) bool {
	return c.matchText(s) && c.matchTags(s)
}

func (c Criteria) matchText(s Summary) bool {
	q := strings.ToLower(strings.TrimSpace(c.Query))
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(s.Name), q) {
		return true
	}
	return strconv.Itoa(s.ID) == q
}

func (c Criteria) matchTags(s Summary) bool {
	for t := range c.Tags {
		if !s.HasType(t) {
			return false
		}
	}
	return true
}

// Filter derives the filtered view. The result is a fresh slice holding the
// matching items in their original order; items is not modified.
func Filter(items []Summary, c Criteria) []Summary {
	out := make([]Summary, 0, len(items))
	for _, it := range items {
		if c.Match(it) {
			out = append(out, it)
		}
	}
	return out
}
