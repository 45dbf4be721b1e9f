// Package resolve implements the detail-expansion and cache-aside
// resolution engine: the logic that takes catalog records containing
// reference URLs into related collections and, per requested relation,
// replaces each reference with the fully resolved related record.
//
// The engine has three stages:
//
//   - Resolver: per-reference cache-aside fetch. Checks the cache store
//     under {collection}/{id}, falls back to the upstream single-record
//     endpoint on miss, and writes the result back with a 24-hour TTL.
//     Failures degrade the single reference to its original string; they
//     never abort sibling references, sibling relations, or the request.
//   - Expander: walks the per-collection relation table in fixed order and
//     resolves each relation whose flag the caller set. The table encodes
//     the field/collection remapping ("people" on a film reads "characters",
//     "pilots" resolves against "people", and so on).
//   - Pagination and ordering: SortAndWindow orders the full fetched result
//     set by a caller-chosen field, then slices the 1-indexed page window.
//
// # Basic Usage
//
//	resolver := resolve.NewResolver(store, upstreamClient, 5)
//	expander := resolve.NewExpander(resolver)
//
//	page, err := upstreamClient.GetCollection(ctx, "films", "")
//	if err != nil {
//		return err // primary fetch failure is the one fatal case
//	}
//	expander.Expand(ctx, "films", map[string]bool{"people": true}, page.Results)
//	results := resolve.SortAndWindow(page.Results, 1, 10, "title", "asc")
//
// Reference fetches within a relation fan out concurrently, bounded by the
// resolver's semaphore; output order always matches the original reference
// list order.
package resolve
