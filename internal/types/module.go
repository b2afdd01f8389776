package types

import (
	"context"
	"io"
	"strings"
)

// Request is a single resolution request from the host.
type Request struct {
	// Name is the fully qualified dotted name, e.g. "pkg.sub".
	Name string
	// SearchPath is the optional hint supplied for nested names.
	// Only the first element is consulted; it must be anchored at a known origin.
	SearchPath []string
}

// Hint returns the search-path anchor, or "" when the request has none.
func (r Request) Hint() string {
	if len(r.SearchPath) == 0 {
		return ""
	}
	return r.SearchPath[0]
}

// Leaf returns the last dotted segment of the requested name.
func (r Request) Leaf() string {
	return LeafName(r.Name)
}

// LeafName returns the last dotted segment of a fully qualified name.
func LeafName(fullname string) string {
	if i := strings.LastIndex(fullname, "."); i >= 0 {
		return fullname[i+1:]
	}
	return fullname
}

// ParentName returns everything before the last dotted segment, or "" for top-level names.
func ParentName(fullname string) string {
	if i := strings.LastIndex(fullname, "."); i >= 0 {
		return fullname[:i]
	}
	return ""
}

// Stdio carries the streams a Program runs with. Nil fields are treated as empty.
type Stdio struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// Program is the compiled, runnable form of a fetched unit.
type Program interface {
	// Kind names the execution model, e.g. "sh" or "cue".
	Kind() string
	// Run executes the program.
	Run(ctx context.Context, stdio Stdio, args ...string) error
}

// Module is an executable unit bound to the name it was imported under.
type Module struct {
	Name string
	// File is the URL the source was fetched from.
	File string
	// Package is true for composite units loaded through their index unit.
	Package bool
	// Path is the search path for children of a package; nil for plain units.
	Path []string
	// Program is the compiled unit.
	Program Program
}
