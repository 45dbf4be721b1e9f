package resolve

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/holonet/swapi-gateway/pkg/cache"
	"github.com/holonet/swapi-gateway/pkg/logging"
	"github.com/holonet/swapi-gateway/pkg/upstream"
)

// Record is a catalog record, as produced by the upstream client.
type Record = upstream.Record

// Fetcher fetches a single record's raw JSON from the upstream catalog.
// *upstream.Client satisfies this.
type Fetcher interface {
	GetRecordRaw(ctx context.Context, collection string, id int) ([]byte, error)
}

// Resolver replaces reference URLs inside records with the fully resolved
// records they point at, consulting the cache store first and populating it
// on miss.
//
// Resolution never fails a record: any failure on a single reference (bad
// id, upstream non-2xx, timeout) degrades that one reference to its
// original string. Cache write failures are ignored; the fetched value is
// still used.
type Resolver struct {
	store   cache.Store
	fetcher Fetcher
	ttl     time.Duration
	sem     *semaphore.Weighted
	logger  zerolog.Logger
}

// NewResolver creates a resolver. concurrency bounds the number of
// in-flight reference fetches across all relations of a request.
func NewResolver(store cache.Store, fetcher Fetcher, concurrency int) *Resolver {
	if concurrency <= 0 {
		concurrency = 5
	}
	return &Resolver{
		store:   store,
		fetcher: fetcher,
		ttl:     cache.DetailTTL,
		sem:     semaphore.NewWeighted(int64(concurrency)),
		logger:  logging.NewLogger("resolver"),
	}
}

// Resolve expands one relation in place for every record in records. Each
// reference under rel.Field is replaced by its resolved record, or kept as
// the original string when resolution fails. Sibling order always matches
// the original reference list order, regardless of fetch completion order.
func (r *Resolver) Resolve(ctx context.Context, rel Relation, records []Record) {
	for _, record := range records {
		if record == nil {
			continue
		}
		if rel.Singular {
			r.resolveSingular(ctx, rel, record)
		} else {
			r.resolveList(ctx, rel, record)
		}
	}
}

// resolveSingular handles fields holding one reference URL (e.g.
// homeworld). An absent or non-string field is left untouched.
func (r *Resolver) resolveSingular(ctx context.Context, rel Relation, record Record) {
	ref, ok := record[rel.Field].(string)
	if !ok || ref == "" {
		return
	}
	record[rel.Field] = r.resolveOne(ctx, rel.Target, ref)
}

// resolveList handles fields holding a list of references. The field is
// normalized to a list: absent or nil becomes empty, a lone string becomes
// a one-element list. Values that are not reference strings (e.g. records
// from an earlier expansion) pass through unchanged. References are fetched
// concurrently, bounded by the resolver's semaphore, with results written
// into an index-addressed slice so output order matches input order.
func (r *Resolver) resolveList(ctx context.Context, rel Relation, record Record) {
	var refs []any
	switch v := record[rel.Field].(type) {
	case nil:
		refs = []any{}
	case string:
		refs = []any{v}
	case []any:
		refs = v
	case []string:
		refs = make([]any, len(v))
		for i, s := range v {
			refs[i] = s
		}
	default:
		return
	}

	resolved := make([]any, len(refs))
	var wg sync.WaitGroup
	for i, ref := range refs {
		s, ok := ref.(string)
		if !ok {
			resolved[i] = ref
			continue
		}
		wg.Add(1)
		go func(i int, ref string) {
			defer wg.Done()
			if err := r.sem.Acquire(ctx, 1); err != nil {
				resolutionsTotal.WithLabelValues("degraded").Inc()
				resolved[i] = ref
				return
			}
			defer r.sem.Release(1)
			resolved[i] = r.resolveOne(ctx, rel.Target, ref)
		}(i, s)
	}
	wg.Wait()

	record[rel.Field] = resolved
}

// resolveOne performs the cache-aside fetch for a single reference. It
// returns the resolved record, or the original reference string when the id
// cannot be parsed, the upstream fetch fails, or the payload cannot be
// decoded.
func (r *Resolver) resolveOne(ctx context.Context, target, ref string) any {
	id, err := refID(ref)
	if err != nil {
		resolutionsTotal.WithLabelValues("degraded").Inc()
		r.logger.Warn().
			Str("collection", target).
			Str("reference", ref).
			Msg("Malformed reference, keeping raw string")
		return ref
	}

	key := cache.Key{Collection: target, ID: id}

	if data, err := r.store.Get(ctx, key); err == nil {
		var record Record
		if err := json.Unmarshal(data, &record); err == nil {
			resolutionsTotal.WithLabelValues("hit").Inc()
			return record
		}
		// Corrupted entry: evict and fall through to a fresh fetch.
		_ = r.store.Delete(ctx, key)
	} else if err != cache.ErrCacheMiss {
		r.logger.Warn().Err(err).
			Str("cache_key", key.String()).
			Msg("Cache get error, falling back to upstream")
	}

	body, err := r.fetcher.GetRecordRaw(ctx, target, id)
	if err != nil {
		resolutionsTotal.WithLabelValues("degraded").Inc()
		r.logger.Warn().Err(err).
			Str("cache_key", key.String()).
			Msg("Reference fetch failed, keeping raw string")
		return ref
	}

	var record Record
	if err := json.Unmarshal(body, &record); err != nil {
		resolutionsTotal.WithLabelValues("degraded").Inc()
		r.logger.Warn().Err(err).
			Str("cache_key", key.String()).
			Msg("Reference payload decode failed, keeping raw string")
		return ref
	}

	if err := r.store.Set(ctx, key, body, r.ttl); err != nil {
		r.logger.Warn().Err(err).
			Str("cache_key", key.String()).
			Msg("Cache set failed, returning uncached value")
	}

	resolutionsTotal.WithLabelValues("fetched").Inc()
	return record
}
