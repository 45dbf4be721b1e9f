// Package cache provides the shared, time-expiring store behind the
// reference resolution engine.
//
// Resolved detail records are cached under {collection}/{id} keys with a
// fixed 24-hour TTL (DetailTTL). A cache hit for a key is semantically
// equivalent to a fresh upstream fetch of that record at or before the
// entry's write time; staleness within the TTL is the designed trade-off.
// Entries are never invalidated by writes elsewhere because the upstream
// catalog is read-only from the gateway's perspective.
//
// # Basic Usage
//
//	redisClient := redis.NewClient(&redis.Options{
//		Addr: "localhost:6379",
//	})
//
//	store := cache.NewRedisStore(redisClient)
//
//	key := cache.Key{Collection: "people", ID: 1}
//	data, err := store.Get(ctx, key)
//	if err == cache.ErrCacheMiss {
//		// fetch from upstream, then:
//		_ = store.Set(ctx, key, body, cache.DetailTTL)
//	}
//
// Set and Delete are best-effort: the resolution path returns the freshly
// fetched value to the caller even when caching it fails.
//
// # Metrics
//
// The package exports Prometheus metrics:
//
//   - swapi_cache_hits_total{layer} - Cache hits by backend
//   - swapi_cache_misses_total - Cache misses
//   - swapi_cache_size_bytes{layer} - Bytes written by backend
//   - swapi_cache_errors_total{operation} - Cache operation errors
package cache
