// Package loader fetches unit sources from an origin and compiles them into modules.
//
// A ModuleLoader serves every plain unit under one origin; it is stateless with
// respect to the unit being loaded. A PackageLoader loads a composite unit through
// its index unit and remembers the result.
package loader

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/jonathan/urlimport/internal/compile"
	"github.com/jonathan/urlimport/internal/logging"
	"github.com/jonathan/urlimport/internal/types"
)

// IndexName is the unit that stands for a package: origin/pkg/__init__ + suffix.
const IndexName = "__init__"

// Fetcher retrieves the bytes at a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Option configures a loader.
type Option func(*ModuleLoader)

// WithLogger sets the logger used for debug output.
func WithLogger(logger *log.Logger) Option {
	return func(l *ModuleLoader) {
		l.logger = logger
	}
}

// ModuleLoader materializes plain units found directly under its origin.
type ModuleLoader struct {
	origin   types.Origin
	fetcher  Fetcher
	compiler compile.Compiler
	logger   *log.Logger
}

// NewModuleLoader creates the loader for origin.
func NewModuleLoader(origin types.Origin, fetcher Fetcher, compiler compile.Compiler, opts ...Option) *ModuleLoader {
	l := &ModuleLoader{
		origin:   origin,
		fetcher:  fetcher,
		compiler: compiler,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = logging.OrNop(l.logger)
	return l
}

// Origin returns the origin this loader serves.
func (l *ModuleLoader) Origin() types.Origin {
	return l.origin
}

// Materialize fetches origin/<leaf><suffix> and compiles it into a module named fullname.
func (l *ModuleLoader) Materialize(ctx context.Context, fullname string) (*types.Module, error) {
	file := l.origin.URL(types.LeafName(fullname) + l.compiler.Suffix())
	prog, err := l.load(ctx, fullname, file)
	if err != nil {
		return nil, err
	}
	return &types.Module{
		Name:    fullname,
		File:    file,
		Program: prog,
	}, nil
}

func (l *ModuleLoader) load(ctx context.Context, fullname, file string) (types.Program, error) {
	l.logger.Debug("loading unit", "name", fullname, "url", file)

	src, err := l.fetcher.Fetch(ctx, file)
	if err != nil {
		return nil, &LoadError{Name: fullname, URL: file, Cause: err}
	}

	prog, err := l.compiler.Compile(file, src)
	if err != nil {
		return nil, &CompileError{Name: fullname, URL: file, Cause: err}
	}

	l.logger.Debug("loaded unit", "name", fullname, "kind", prog.Kind(), "bytes", len(src))
	return prog, nil
}
