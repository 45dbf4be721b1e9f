package resolve

import (
	"fmt"
	"strconv"
	"strings"
)

// refID extracts the numeric record id from a reference URL. The id is
// always the final non-empty path segment, e.g.
// "https://swapi.dev/api/people/1/" -> 1, "people/42" -> 42.
func refID(ref string) (int, error) {
	trimmed := strings.TrimRight(ref, "/")
	idx := strings.LastIndex(trimmed, "/")
	segment := trimmed[idx+1:]

	id, err := strconv.Atoi(segment)
	if err != nil {
		return 0, fmt.Errorf("reference %q has no trailing numeric id", ref)
	}
	return id, nil
}
