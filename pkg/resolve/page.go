package resolve

import (
	"fmt"
	"sort"
)

// Sort directions accepted by SortRecords.
const (
	DirectionAsc  = "asc"
	DirectionDesc = "desc"
)

// SortRecords stably sorts records by the string form of field. An absent
// field sorts as the empty string. The sort is stable in both directions:
// records with equal keys keep their relative input order.
func SortRecords(records []Record, field, direction string) {
	if field == "" {
		return
	}
	desc := direction == DirectionDesc
	sort.SliceStable(records, func(i, j int) bool {
		ki, kj := sortKey(records[i], field), sortKey(records[j], field)
		if desc {
			return ki > kj
		}
		return ki < kj
	})
}

// sortKey renders a record field as its sort key string.
func sortKey(record Record, field string) string {
	v, ok := record[field]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Window slices the half-open page window [(page-1)*size, page*size) out of
// records. Pages are 1-indexed. A window beyond the available records
// yields whatever remains, possibly empty, never an error.
func Window(records []Record, page, size int) []Record {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		return []Record{}
	}

	start := (page - 1) * size
	if start >= len(records) {
		return []Record{}
	}
	end := start + size
	if end > len(records) {
		end = len(records)
	}
	return records[start:end]
}

// SortAndWindow orders the full result set by orderField/direction, then
// slices the requested page window. Sorting the whole set before slicing
// means "page 2 ordered by name" is the second window of the globally
// ordered results, not a locally sorted arbitrary slice.
func SortAndWindow(records []Record, page, size int, orderField, direction string) []Record {
	SortRecords(records, orderField, direction)
	return Window(records, page, size)
}
