package upstream

// Record is a self-describing catalog record: field name to value. Values
// are scalars, reference URL strings (or lists of them), or, once a relation
// has been expanded, nested resolved records in the same field.
type Record = map[string]any

// ListPage is the upstream listing response shape.
//
// Count, Next and Previous describe the upstream's own pagination of the
// full result set. The gateway re-slices Results locally, so after local
// pagination these fields still refer to the upstream page, not the local
// window.
type ListPage struct {
	Count    int      `json:"count"`
	Next     *string  `json:"next"`
	Previous *string  `json:"previous"`
	Results  []Record `json:"results"`
}
