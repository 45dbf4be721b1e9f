package resolve

import (
	"context"
)

// Expander walks a collection's relations in their fixed order and invokes
// the resolver for each relation the caller requested. Unrequested
// relations leave their reference fields untouched.
type Expander struct {
	resolver *Resolver
}

// NewExpander creates an expander over the given resolver.
func NewExpander(resolver *Resolver) *Expander {
	return &Expander{resolver: resolver}
}

// Expand resolves every requested relation for the given records. requested
// maps relation names to their boolean flags; names not in the collection's
// relation table are ignored. Relations are expanded strictly in the
// collection's fixed order, so output is deterministic regardless of flag
// order in the request.
func (e *Expander) Expand(ctx context.Context, collection string, requested map[string]bool, records []Record) {
	for _, rel := range Relations(collection) {
		if !requested[rel.Name] {
			continue
		}
		expansionsTotal.WithLabelValues(collection, rel.Name).Inc()
		e.resolver.Resolve(ctx, rel, records)
	}
}

// ExpandRecord expands a single record. A single record is treated as a
// one-element batch.
func (e *Expander) ExpandRecord(ctx context.Context, collection string, requested map[string]bool, record Record) {
	if record == nil {
		return
	}
	e.Expand(ctx, collection, requested, []Record{record})
}
