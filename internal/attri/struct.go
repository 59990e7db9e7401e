// Package attri manages per-item attribute tables: a mapping from item key
// to a bag of named attribute values, with JSON persistence and selection by
// typed relational conditions.
package attri

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Struct is a bare attribute bag.
type Struct map[string]any

// Set assigns an attribute.
func (s Struct) Set(name string, value any) {
	s[name] = value
}

// Get returns an attribute and whether it is present.
func (s Struct) Get(name string) (any, bool) {
	v, ok := s[name]
	return v, ok
}

// Names returns the attribute names in sorted order.
func (s Struct) Names() []string {
	names := make([]string, 0, len(s))
	for k := range s {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// String renders the bag as compact JSON, falling back to Go syntax for
// values JSON cannot encode.
func (s Struct) String() string {
	raw, err := json.Marshal(map[string]any(s))
	if err != nil {
		return fmt.Sprintf("%v", map[string]any(s))
	}
	return string(raw)
}
