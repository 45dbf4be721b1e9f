package api

import (
	"net/url"
	"strconv"

	"github.com/holonet/swapi-gateway/pkg/resolve"
)

// intParam parses a positive integer query parameter, falling back to def
// when absent or malformed.
func intParam(q url.Values, name string, def int) int {
	raw := q.Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return def
	}
	return v
}

// boolParam parses a boolean query parameter; absent or malformed is false.
func boolParam(q url.Values, name string) bool {
	v, err := strconv.ParseBool(q.Get(name))
	if err != nil {
		return false
	}
	return v
}

// relationFlags collects the per-relation boolean expansion flags for a
// collection from the query string.
func relationFlags(q url.Values, collection string) map[string]bool {
	flags := make(map[string]bool)
	for _, rel := range resolve.Relations(collection) {
		flags[rel.Name] = boolParam(q, rel.Name)
	}
	return flags
}

// orderParams returns (orderBy, direction) with per-collection defaults:
// films order by title, everything else by name; direction defaults to asc.
func orderParams(q url.Values, collection string) (string, string) {
	orderBy := q.Get("order_by")
	if orderBy == "" {
		if collection == "films" {
			orderBy = "title"
		} else {
			orderBy = "name"
		}
	}

	direction := q.Get("order_direction")
	if direction != resolve.DirectionDesc {
		direction = resolve.DirectionAsc
	}
	return orderBy, direction
}
