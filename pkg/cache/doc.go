// Package cache provides the HTTP response cache shared by every upstream
// request of the catalog client.
//
// The upstream API serves immutable reference data with long freshness
// lifetimes, so caching whole responses avoids re-fetching species and
// variety records when a session restarts or a detail view repeats a lookup
// the listing already made.
//
// Features:
//
// - Freshness from Cache-Control max-age, then Expires, then a default TTL
// - ETag / Last-Modified revalidation once an entry turns stale
// - Stale entries are retained for StaleWindow so they can be revalidated
// - Two Store backends: in-process memory and Redis
// - Prometheus metrics per backend
//
// # Basic Usage
//
//	store := cache.NewRedisStore(redis.NewClient(&redis.Options{Addr: "localhost:6379"}))
//
//	key := cache.KeyFromURL(req.URL)
//	entry, err := store.Get(ctx, key)
//	switch {
//	case errors.Is(err, cache.ErrCacheMiss):
//		// fetch upstream
//	case entry.IsExpired():
//		cache.AddConditionalHeaders(req, entry)
//	default:
//		return cache.EntryToResponse(entry, req), nil
//	}
//
// # Metrics
//
//   - pokedex_cache_hits_total{layer, freshness} - Cache hits
//   - pokedex_cache_misses_total{layer} - Cache misses
//   - pokedex_cache_errors_total{layer, operation} - Backend errors
//   - pokedex_cache_revalidated_total - 304 Not Modified responses
package cache
