package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks cache hits by layer and freshness ("fresh", "stale")
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pokedex_cache_hits_total",
			Help: "Total number of response cache hits",
		},
		[]string{"layer", "freshness"},
	)

	// CacheMisses tracks cache misses by layer
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pokedex_cache_misses_total",
			Help: "Total number of response cache misses",
		},
		[]string{"layer"},
	)

	// CacheEntries tracks stored entries by layer
	CacheEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pokedex_cache_entries",
			Help: "Entries currently held by the response cache",
		},
		[]string{"layer"},
	)

	// Revalidated tracks 304 Not Modified responses
	Revalidated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pokedex_cache_revalidated_total",
			Help: "Total number of stale entries revalidated with 304 Not Modified",
		},
	)

	// CacheErrors tracks cache operation errors
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pokedex_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"layer", "operation"}, // "get", "set", "delete"
	)
)

func recordHit(layer string, entry *Entry) {
	freshness := "fresh"
	if entry.IsExpired() {
		freshness = "stale"
	}
	CacheHits.WithLabelValues(layer, freshness).Inc()
}
