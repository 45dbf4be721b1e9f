package resolve

// Relation describes one flag-gated expansion: the record field holding the
// reference(s), the collection queried for resolution, and whether the field
// is a single reference rather than a list.
type Relation struct {
	// Name is the flag name exposed on the query surface.
	Name string

	// Field is the record field holding the reference(s).
	Field string

	// Target is the collection fetched to resolve each reference.
	Target string

	// Singular marks a field holding one reference URL instead of a list.
	Singular bool
}

// Collections lists the known catalog collections.
var Collections = []string{"films", "people", "planets", "species", "starships", "vehicles"}

// relationTable holds the fixed remapping per collection, in expansion
// order. Three relation names differ from their field or target: "people"
// on a film reads the "characters" field; "residents" on a planet and
// "pilots" on starships and vehicles resolve against "people"; "homeworld"
// is a singular reference into "planets".
var relationTable = map[string][]Relation{
	"films": {
		{Name: "species", Field: "species", Target: "species"},
		{Name: "people", Field: "characters", Target: "people"},
		{Name: "starships", Field: "starships", Target: "starships"},
		{Name: "vehicles", Field: "vehicles", Target: "vehicles"},
		{Name: "planets", Field: "planets", Target: "planets"},
	},
	"people": {
		{Name: "films", Field: "films", Target: "films"},
		{Name: "species", Field: "species", Target: "species"},
		{Name: "starships", Field: "starships", Target: "starships"},
		{Name: "vehicles", Field: "vehicles", Target: "vehicles"},
		{Name: "homeworld", Field: "homeworld", Target: "planets", Singular: true},
	},
	"planets": {
		{Name: "residents", Field: "residents", Target: "people"},
		{Name: "films", Field: "films", Target: "films"},
	},
	"species": {
		{Name: "homeworld", Field: "homeworld", Target: "planets", Singular: true},
		{Name: "films", Field: "films", Target: "films"},
		{Name: "people", Field: "people", Target: "people"},
	},
	"starships": {
		{Name: "films", Field: "films", Target: "films"},
		{Name: "pilots", Field: "pilots", Target: "people"},
	},
	"vehicles": {
		{Name: "films", Field: "films", Target: "films"},
		{Name: "pilots", Field: "pilots", Target: "people"},
	},
}

// Relations returns the expansion relations for a collection in their fixed
// expansion order. Returns nil for unknown collections.
func Relations(collection string) []Relation {
	return relationTable[collection]
}

// Lookup returns the relation for (collection, relation name).
func Lookup(collection, name string) (Relation, bool) {
	for _, rel := range relationTable[collection] {
		if rel.Name == name {
			return rel, true
		}
	}
	return Relation{}, false
}

// KnownCollection reports whether the collection exists in the table.
func KnownCollection(collection string) bool {
	_, ok := relationTable[collection]
	return ok
}
