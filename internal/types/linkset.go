package types

import "sort"

// LinkSet is the immutable set of entry names visible under an origin, as scraped.
// Entries are raw names: "pkg" for a composite, "mod.sh" for a plain unit.
// The zero value is an empty set.
type LinkSet struct {
	entries map[string]struct{}
}

// NewLinkSet builds a LinkSet from entry names. Empty names are ignored.
func NewLinkSet(names ...string) LinkSet {
	entries := make(map[string]struct{}, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		entries[name] = struct{}{}
	}
	return LinkSet{entries: entries}
}

// Has reports whether name is listed verbatim.
func (s LinkSet) Has(name string) bool {
	_, ok := s.entries[name]
	return ok
}

// Len returns the number of entries.
func (s LinkSet) Len() int {
	return len(s.entries)
}

// Names returns the entries in sorted order.
func (s LinkSet) Names() []string {
	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
