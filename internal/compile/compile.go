// Package compile turns fetched source text into runnable programs.
//
// Each Compiler owns one source suffix. The resolver looks for "name" + Suffix()
// in remote listings, and the loaders hand the fetched bytes to Compile.
package compile

import (
	"fmt"
	"sort"

	"github.com/jonathan/urlimport/internal/types"
)

// Compiler produces a Program from source text.
type Compiler interface {
	// Kind names the execution model ("sh", "cue").
	Kind() string
	// Suffix is the file suffix of units in this model, including the dot.
	Suffix() string
	// Compile parses src. file is used in error positions.
	Compile(file string, src []byte) (types.Program, error)
}

// KindAll selects every registered compiler.
const KindAll = "all"

var builtins = map[string]func() Compiler{
	KindShell: func() Compiler { return NewShell() },
	KindCUE:   func() Compiler { return NewCUE() },
}

// Kinds returns the names of the built-in compilers, sorted.
func Kinds() []string {
	kinds := make([]string, 0, len(builtins))
	for kind := range builtins {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

// ForKind returns the compilers selected by kind: one compiler, or all of them for KindAll.
func ForKind(kind string) ([]Compiler, error) {
	if kind == KindAll {
		compilers := make([]Compiler, 0, len(builtins))
		for _, k := range Kinds() {
			compilers = append(compilers, builtins[k]())
		}
		return compilers, nil
	}
	build, ok := builtins[kind]
	if !ok {
		return nil, fmt.Errorf("unknown unit kind %q (want one of %v or %q)", kind, Kinds(), KindAll)
	}
	return []Compiler{build()}, nil
}
