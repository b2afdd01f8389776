package loader

import (
	"context"
	"sync"

	"github.com/jonathan/urlimport/internal/compile"
	"github.com/jonathan/urlimport/internal/types"
)

// PackageLoader materializes a composite unit from its index unit.
// Its origin is the package's own origin (parent origin joined with the bare name).
type PackageLoader struct {
	base *ModuleLoader

	mu    sync.Mutex
	index map[string]*types.Module
}

// NewPackageLoader creates the loader for the package rooted at origin.
func NewPackageLoader(origin types.Origin, fetcher Fetcher, compiler compile.Compiler, opts ...Option) *PackageLoader {
	return &PackageLoader{
		base:  NewModuleLoader(origin, fetcher, compiler, opts...),
		index: make(map[string]*types.Module),
	}
}

// Origin returns the package's own origin.
func (p *PackageLoader) Origin() types.Origin {
	return p.base.origin
}

// IndexURL returns the address of the package's index unit.
func (p *PackageLoader) IndexURL() string {
	return p.base.origin.URL(IndexName + p.base.compiler.Suffix())
}

// Materialize loads the index unit as a package module named fullname.
// The first successful load is remembered, so later calls do not fetch again.
func (p *PackageLoader) Materialize(ctx context.Context, fullname string) (*types.Module, error) {
	p.mu.Lock()
	mod, ok := p.index[fullname]
	p.mu.Unlock()
	if ok {
		return mod, nil
	}

	file := p.IndexURL()
	prog, err := p.base.load(ctx, fullname, file)
	if err != nil {
		return nil, err
	}

	mod = &types.Module{
		Name:    fullname,
		File:    file,
		Package: true,
		Path:    []string{p.base.origin.String()},
		Program: prog,
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if existing, ok := p.index[fullname]; ok {
		return existing, nil
	}
	p.index[fullname] = mod
	return mod, nil
}
