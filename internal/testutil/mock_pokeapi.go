// Package testutil provides testing utilities for the upstream catalog API.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// APIPrefix is the path prefix the mock serves the API under.
const APIPrefix = "/api/v2"

// MockResponse defines the behavior for a mock endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockSpecies is one catalog entry served by the mock. Its default variety
// shares the species id.
type MockSpecies struct {
	ID        int
	Name      string
	Types     []string
	Artwork   string
	Sprite    string
	Flavor    string
	Abilities []string
	Stats     []int
	Height    int
	Weight    int
	BaseExp   int

	// NoDefault serves the species without a default variety.
	NoDefault bool
}

var statNames = []string{"hp", "attack", "defense", "special-attack", "special-defense", "speed"}

// MockPokeAPI is a configurable mock of the upstream API for testing.
type MockPokeAPI struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)
	species  map[int]MockSpecies
	total    int

	// Tracking
	requestCount     int
	conditionalCount int
	pathCounts       map[string]int
	lastHeader       http.Header
}

// NewMockPokeAPI creates a new mock upstream server.
func NewMockPokeAPI() *MockPokeAPI {
	mock := &MockPokeAPI{
		handlers:   make(map[string]func(w http.ResponseWriter, r *http.Request)),
		species:    make(map[int]MockSpecies),
		total:      -1,
		pathCounts: make(map[string]int),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := normalizePath(r.URL.Path)

		mock.mu.Lock()
		mock.requestCount++
		mock.pathCounts[path]++
		mock.lastHeader = r.Header.Clone()

		// Track conditional requests
		if r.Header.Get("If-None-Match") != "" || r.Header.Get("If-Modified-Since") != "" {
			mock.conditionalCount++
		}
		handler, exists := mock.handlers[path]
		mock.mu.Unlock()

		if exists {
			handler(w, r)
			return
		}

		mock.defaultHandler(w, r, path)
	}))

	return mock
}

// URL returns the API base URL of the mock, including APIPrefix.
func (m *MockPokeAPI) URL() string {
	return m.server.URL + APIPrefix
}

// Close shuts down the mock server.
func (m *MockPokeAPI) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockPokeAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount = 0
	m.conditionalCount = 0
	m.pathCounts = make(map[string]int)
	m.lastHeader = nil
}

// AddSpecies registers catalog entries.
func (m *MockPokeAPI) AddSpecies(species ...MockSpecies) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range species {
		m.species[s.ID] = s
	}
}

// SeedSpecies registers n generated entries with ids 1..n.
func (m *MockPokeAPI) SeedSpecies(n int) {
	types := []string{"grass", "fire", "water", "electric", "normal", "flying"}
	for id := 1; id <= n; id++ {
		m.AddSpecies(MockSpecies{
			ID:        id,
			Name:      fmt.Sprintf("mon%d", id),
			Types:     []string{types[id%len(types)]},
			Artwork:   fmt.Sprintf("https://img.example/%d.png", id),
			Flavor:    fmt.Sprintf("Entry\nnumber %d.", id),
			Abilities: []string{"overgrow"},
			Stats:     []int{45, 49, 49, 65, 65, 45},
			Height:    7,
			Weight:    69,
			BaseExp:   64,
		})
	}
}

// SetTotal overrides the count reported by the listing; negative restores
// the number of registered entries.
func (m *MockPokeAPI) SetTotal(total int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.total = total
}

// SetHandler sets a custom handler for a path below APIPrefix, e.g.
// "/pokemon/25". Trailing slashes are ignored.
func (m *MockPokeAPI) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[normalizePath(APIPrefix+path)] = handler
}

// SetResponse configures a simple response for a path below APIPrefix.
func (m *MockPokeAPI) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		// Add delay if specified
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}

		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}

		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// RequestCount returns the number of requests made to the server.
func (m *MockPokeAPI) RequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requestCount
}

// ConditionalCount returns the number of conditional requests.
func (m *MockPokeAPI) ConditionalCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.conditionalCount
}

// PathCount returns the number of requests for a path below APIPrefix.
func (m *MockPokeAPI) PathCount(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pathCounts[normalizePath(APIPrefix+path)]
}

// LastRequestHeader returns the headers of the most recent request.
func (m *MockPokeAPI) LastRequestHeader() http.Header {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastHeader
}

// defaultHandler serves the listing, species and pokemon resources from the
// registered entries.
func (m *MockPokeAPI) defaultHandler(w http.ResponseWriter, r *http.Request, path string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	rest := strings.TrimPrefix(path, APIPrefix+"/")
	parts := strings.Split(rest, "/")

	var body any
	switch {
	case len(parts) == 1 && parts[0] == "pokemon-species":
		body = m.listing(r)
	case len(parts) == 2 && (parts[0] == "pokemon-species" || parts[0] == "pokemon"):
		id, err := strconv.Atoi(parts[1])
		if err != nil {
			http.NotFound(w, r)
			return
		}
		m.mu.RLock()
		s, ok := m.species[id]
		m.mu.RUnlock()
		if !ok || (parts[0] == "pokemon" && s.NoDefault) {
			http.NotFound(w, r)
			return
		}
		if parts[0] == "pokemon-species" {
			body = m.speciesBody(s)
		} else {
			body = pokemonBody(s)
		}
	default:
		http.NotFound(w, r)
		return
	}

	data, err := json.Marshal(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	etag := fmt.Sprintf(`"%x"`, len(data)*31+len(path))
	if r.Header.Get("If-None-Match") == etag {
		w.Header().Set("Cache-Control", "public, max-age=300")
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (m *MockPokeAPI) listing(r *http.Request) map[string]any {
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 20
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]int, 0, len(m.species))
	for id := range m.species {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	count := len(ids)
	if m.total >= 0 {
		count = m.total
	}

	results := []map[string]string{}
	for i := offset; i < offset+limit && i < len(ids); i++ {
		s := m.species[ids[i]]
		results = append(results, map[string]string{
			"name": s.Name,
			"url":  fmt.Sprintf("%s%s/pokemon-species/%d/", m.server.URL, APIPrefix, s.ID),
		})
	}

	return map[string]any{"count": count, "results": results}
}

func (m *MockPokeAPI) speciesBody(s MockSpecies) map[string]any {
	varieties := []map[string]any{}
	if !s.NoDefault {
		varieties = append(varieties, map[string]any{
			"is_default": true,
			"pokemon": map[string]string{
				"name": s.Name,
				"url":  fmt.Sprintf("%s%s/pokemon/%d/", m.server.URL, APIPrefix, s.ID),
			},
		})
	}

	entries := []map[string]any{
		{"flavor_text": "ja text", "language": map[string]string{"name": "ja"}},
	}
	if s.Flavor != "" {
		entries = append(entries, map[string]any{
			"flavor_text": s.Flavor,
			"language":    map[string]string{"name": "en"},
		})
	}

	return map[string]any{
		"id":                  s.ID,
		"name":                s.Name,
		"varieties":           varieties,
		"flavor_text_entries": entries,
	}
}

func pokemonBody(s MockSpecies) map[string]any {
	types := []map[string]any{}
	for i, t := range s.Types {
		types = append(types, map[string]any{"slot": i + 1, "type": map[string]string{"name": t}})
	}

	abilities := []map[string]any{}
	for i, a := range s.Abilities {
		abilities = append(abilities, map[string]any{"slot": i + 1, "ability": map[string]string{"name": a}})
	}

	stats := []map[string]any{}
	for i, base := range s.Stats {
		name := fmt.Sprintf("stat-%d", i)
		if i < len(statNames) {
			name = statNames[i]
		}
		stats = append(stats, map[string]any{"base_stat": base, "stat": map[string]string{"name": name}})
	}

	sprites := map[string]any{"front_default": nil}
	if s.Sprite != "" {
		sprites["front_default"] = s.Sprite
	}
	if s.Artwork != "" {
		sprites["other"] = map[string]any{
			"official-artwork": map[string]any{"front_default": s.Artwork},
		}
	}

	return map[string]any{
		"id":              s.ID,
		"name":            s.Name,
		"height":          s.Height,
		"weight":          s.Weight,
		"base_experience": s.BaseExp,
		"sprites":         sprites,
		"types":           types,
		"abilities":       abilities,
		"stats":           stats,
	}
}

func normalizePath(path string) string {
	if len(path) > 1 {
		return strings.TrimRight(path, "/")
	}
	return path
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"error": "Internal server error"}`,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewRateLimitResponse creates a 429 Too Many Requests response.
func NewRateLimitResponse(retryAfter int) MockResponse {
	return MockResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       `{"error": "Rate limit exceeded"}`,
		Headers: map[string]string{
			"Retry-After":  strconv.Itoa(retryAfter),
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewMalformedResponse creates a 200 response whose body is not JSON.
func NewMalformedResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       `{"id": `,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}
