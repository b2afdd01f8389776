// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/urlimport/internal/linkcache"
	"github.com/jonathan/urlimport/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 10
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// writeList writes up to limit items as bullets, then a count of the rest.
func writeList(sb *strings.Builder, items []string, limit int) {
	count := min(len(items), limit)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", items[i]))
	}
	if len(items) > limit {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-limit))
	}
}

// PrintLinkSet outputs the entries an origin lists.
func (p *Printer) PrintLinkSet(origin types.Origin, links types.LinkSet) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Origin:   %s\n", origin))
	sb.WriteString(fmt.Sprintf("Entries:  %d\n", links.Len()))
	if links.Len() > 0 {
		sb.WriteString("\n")
		writeList(&sb, links.Names(), maxItemsToShow)
	}
	p.printBox("ORIGIN LISTING", strings.TrimSuffix(sb.String(), "\n"))
}

// Resolution describes the outcome of resolving one name.
type Resolution struct {
	Name    string
	Found   bool
	Finder  string
	Origin  types.Origin
	Package bool
}

// PrintResolutions outputs which finder and origin serve each name.
func (p *Printer) PrintResolutions(results []Resolution) {
	if len(results) == 0 {
		return
	}

	var sb strings.Builder
	for _, r := range results {
		if !r.Found {
			sb.WriteString(fmt.Sprintf("✗ %s  not found\n", r.Name))
			continue
		}
		kind := "module"
		if r.Package {
			kind = "package"
		}
		sb.WriteString(fmt.Sprintf("✓ %s  %s\n", r.Name, kind))
		sb.WriteString(fmt.Sprintf("    %s @ %s\n", r.Finder, r.Origin))
	}

	p.printBox("RESOLUTION", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintModule outputs a summary of an imported module and what its program defines.
func (p *Printer) PrintModule(mod *types.Module) {
	if mod == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Name:     %s\n", mod.Name))
	sb.WriteString(fmt.Sprintf("File:     %s\n", mod.File))
	if mod.Program != nil {
		sb.WriteString(fmt.Sprintf("Kind:     %s\n", mod.Program.Kind()))
	}
	if mod.Package {
		sb.WriteString(fmt.Sprintf("Path:     %s\n", strings.Join(mod.Path, ", ")))
	}

	if defs := Definitions(mod.Program); len(defs) > 0 {
		sb.WriteString("\nDefines:\n")
		writeList(&sb, defs, maxItemsToShow)
	}

	p.printBox("MODULE", strings.TrimSuffix(sb.String(), "\n"))
}

// Shell programs list their functions, CUE programs their top-level fields.
type functioner interface {
	Functions() []string
}

type fielder interface {
	Fields() []string
}

// Definitions returns the names a program defines, or nil if it cannot tell.
func Definitions(prog types.Program) []string {
	switch p := prog.(type) {
	case functioner:
		return p.Functions()
	case fielder:
		return p.Fields()
	}
	return nil
}

// PrintCacheStats outputs link cache counters and the origins it holds.
func (p *Printer) PrintCacheStats(stats linkcache.Stats, origins []types.Origin) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Hits:           %d\n", stats.Hits))
	sb.WriteString(fmt.Sprintf("Misses:         %d\n", stats.Misses))
	sb.WriteString(fmt.Sprintf("Scrapes:        %d\n", stats.Scrapes))
	sb.WriteString(fmt.Sprintf("Invalidations:  %d\n", stats.Invalidations))

	if len(origins) > 0 {
		names := make([]string, len(origins))
		for i, o := range origins {
			names[i] = o.String()
		}
		sb.WriteString("\nCached origins:\n")
		writeList(&sb, names, maxItemsToShow)
	}

	p.printBox("LINK CACHE", strings.TrimSuffix(sb.String(), "\n"))
}
