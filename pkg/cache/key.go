package cache

import (
	"net/url"
	"sort"
	"strings"
)

// Key identifies a cached upstream response.
type Key struct {
	// Endpoint is the request path (e.g. "/api/v2/pokemon-species/25/")
	Endpoint string

	// Query holds the query parameters (e.g. offset, limit)
	Query url.Values
}

// KeyFromURL builds the key for a request URL. Host and scheme are ignored
// so a cache shared between deployments with different base URLs still hits.
func KeyFromURL(u *url.URL) Key {
	return Key{
		Endpoint: u.Path,
		Query:    u.Query(),
	}
}

// String generates a deterministic cache key string.
// Format: pokeapi:path:query1=val1:query2=val2
//
// Example:
//
//	pokeapi:api/v2/pokemon-species:limit=30:offset=60
func (k Key) String() string {
	parts := []string{"pokeapi"}

	endpoint := strings.Trim(k.Endpoint, "/")
	if endpoint != "" {
		parts = append(parts, endpoint)
	}

	if len(k.Query) > 0 {
		names := make([]string, 0, len(k.Query))
		for name := range k.Query {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			values := append([]string(nil), k.Query[name]...)
			sort.Strings(values)
			parts = append(parts, name+"="+strings.Join(values, ","))
		}
	}

	return strings.Join(parts, ":")
}
