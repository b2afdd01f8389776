// Package types provides type definitions shared by the resolver, loaders and host import machinery.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "strings"

// Origin identifies a remote resolution root: an opaque base URL.
// The root origin is configured once; nested origins appear as packages resolve.
type Origin string

// NewOrigin normalizes a base URL into an Origin by trimming trailing slashes.
func NewOrigin(base string) Origin {
	return Origin(strings.TrimRight(strings.TrimSpace(base), "/"))
}

// String returns the origin's base URL.
func (o Origin) String() string {
	return string(o)
}

// Join returns the origin of a child entry (origin + "/" + name).
func (o Origin) Join(name string) Origin {
	return Origin(string(o) + "/" + strings.Trim(name, "/"))
}

// URL returns the address of a file directly under the origin.
func (o Origin) URL(file string) string {
	return string(o) + "/" + strings.TrimLeft(file, "/")
}

// Owns reports whether a search-path hint is anchored at this origin:
// the hint is the origin itself or lies below it.
func (o Origin) Owns(hint string) bool {
	if o == "" {
		return false
	}
	hint = strings.TrimRight(hint, "/")
	return hint == string(o) || strings.HasPrefix(hint, string(o)+"/")
}
