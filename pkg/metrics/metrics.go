// Package metrics provides the Prometheus registry used by the pokedex
// packages. All metrics are defined in their respective packages (client,
// cache, ratelimit, pagination, pokeapi, viewer) via promauto to keep them
// modular and avoid circular dependencies.
//
// This package exposes the registry over HTTP and documents every metric.
package metrics

import (
	"net/http"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every pokedex metric name.
const Namespace = "pokedex"

// Registry is the default Prometheus registry used by the pokedex packages.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Gatherer reads back what Registry holds.
var Gatherer prometheus.Gatherer = prometheus.DefaultGatherer

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{
		Registry: Registry,
	})
}

// Families returns the sorted names of the gathered pokedex metric families.
func Families() ([]string, error) {
	mfs, err := Gatherer.Gather()
	if err != nil {
		return nil, err
	}

	var names []string
	for _, mf := range mfs {
		if strings.HasPrefix(mf.GetName(), Namespace+"_") {
			names = append(names, mf.GetName())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - pokedex_upstream_requests_total{resource, status} (Counter): Upstream requests by resource and HTTP status ("cache" for fresh hits)
//   - pokedex_upstream_request_duration_seconds{resource} (Histogram): Request duration by resource
//   - pokedex_upstream_errors_total{class} (Counter): Errors by class (client, server, rate_limit, network)
//
// Retry Metrics (pkg/client):
//   - pokedex_upstream_retries_total{error_class} (Counter): Retry attempts by error class
//   - pokedex_upstream_retry_backoff_seconds{error_class} (Histogram): Backoff duration by error class
//   - pokedex_upstream_retry_exhausted_total{error_class} (Counter): Requests that exhausted max retries
//
// Rate Limit Metrics (pkg/ratelimit):
//   - pokedex_ratelimit_remaining (Gauge): Remaining upstream quota as last advertised
//   - pokedex_ratelimit_blocks_total (Counter): 429 responses that started a block
//   - pokedex_ratelimit_throttles_total (Counter): Requests delayed due to low remaining quota
//
// Cache Metrics (pkg/cache):
//   - pokedex_cache_hits_total{layer, freshness} (Counter): Cache hits by layer, fresh or stale
//   - pokedex_cache_misses_total{layer} (Counter): Cache misses by layer
//   - pokedex_cache_entries{layer} (Gauge): Entries held by the memory layer
//   - pokedex_cache_revalidated_total (Counter): Stale entries refreshed by a 304
//   - pokedex_cache_errors_total{layer, operation} (Counter): Cache operation errors
//
// Fan-out Metrics (pkg/pagination):
//   - pokedex_pool_tasks_total{outcome} (Counter): Tasks by outcome (ok, error, panic, cancelled)
//   - pokedex_pool_active_workers (Gauge): Workers currently running a task
//
// Fetch Metrics (pkg/pokeapi):
//   - pokedex_pages_fetched_total{outcome} (Counter): Listing pages by outcome
//   - pokedex_page_fetch_duration_seconds (Histogram): Time to resolve a page with its lookups
//   - pokedex_partial_items_total (Counter): Summaries built from the listing alone
//   - pokedex_details_fetched_total{outcome} (Counter): Detail fetches by outcome
//
// Session Metrics (pkg/viewer):
//   - pokedex_loads_total{trigger, outcome} (Counter): Load-more requests (ok, error, skipped)
//   - pokedex_collection_items (Gauge): Summaries held by the last updated session
//   - pokedex_filter_runs_total (Counter): Filtered view recomputations
//   - pokedex_detail_requests_total{result} (Counter): Detail lookups (hit, miss, shared, error)
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(pokedex_cache_hits_total[5m])) /
//   (sum(rate(pokedex_cache_hits_total[5m])) + sum(rate(pokedex_cache_misses_total[5m])))
//
//   # Partial item share
//   rate(pokedex_partial_items_total[5m]) / rate(pokedex_pool_tasks_total[5m])
//
//   # Request Error Rate
//   rate(pokedex_upstream_errors_total[5m])
//
//   # P95 Page Latency
//   histogram_quantile(0.95, rate(pokedex_page_fetch_duration_seconds_bucket[5m]))
