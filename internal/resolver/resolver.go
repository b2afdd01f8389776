// Package resolver decides whether a dotted name can be served from a remote origin.
//
// A Resolver answers one request at a time:
//
//  1. select the active origin: the root, or the origin named by the search-path hint
//     (the hint must lie under an origin this resolver has registered);
//  2. read the origin's LinkSet from the link cache;
//  3. if the bare leaf name is listed, try it as a package by loading its index unit;
//  4. otherwise, or if the index failed to load, look for leaf + suffix as a plain unit.
//
// Absence is reported as (nil, false), never as an error. Resolution never fetches a
// plain unit's source; that happens when the host calls Materialize on the result.
package resolver

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/jonathan/urlimport/internal/compile"
	"github.com/jonathan/urlimport/internal/crawling"
	"github.com/jonathan/urlimport/internal/fetch"
	"github.com/jonathan/urlimport/internal/linkcache"
	"github.com/jonathan/urlimport/internal/loader"
	"github.com/jonathan/urlimport/internal/logging"
	"github.com/jonathan/urlimport/internal/types"
)

// Loader is the handle returned by a successful resolution.
type Loader interface {
	Materialize(ctx context.Context, name string) (*types.Module, error)
}

// Finder is one provider in the host's ordered list of resolvers.
type Finder interface {
	Name() string
	// Find returns a loader for the request, or false if the name is not served here.
	Find(ctx context.Context, req types.Request) (Loader, bool)
	// Invalidate drops cached remote state.
	Invalidate()
}

// Resolver serves names found under a root origin for one execution model.
type Resolver struct {
	root     types.Origin
	compiler compile.Compiler
	fetcher  loader.Fetcher
	links    *linkcache.Cache
	logger   *log.Logger

	// loaders maps types.Origin to its single *loader.ModuleLoader.
	loaders sync.Map
	// packages maps a package's types.Origin to its *loader.PackageLoader once its index loaded.
	packages sync.Map
	flight   singleflight.Group
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used for debug output.
func WithLogger(logger *log.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// WithFetcher sets the transport used to fetch unit sources.
func WithFetcher(fetcher loader.Fetcher) Option {
	return func(r *Resolver) {
		r.fetcher = fetcher
	}
}

// WithLinkCache shares a link cache between resolvers on the same origins.
// The scraper passed to New is ignored when a cache is supplied.
func WithLinkCache(cache *linkcache.Cache) Option {
	return func(r *Resolver) {
		r.links = cache
	}
}

// New creates a resolver for units of compiler's kind under root.
// A nil scraper reads listings over HTTP with the resolver's fetcher.
func New(root types.Origin, scraper crawling.Scraper, compiler compile.Compiler, opts ...Option) *Resolver {
	r := &Resolver{
		root:     root,
		compiler: compiler,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.OrNop(r.logger)
	if r.fetcher == nil {
		r.fetcher = fetch.NewClient(nil)
	}
	if r.links == nil {
		if scraper == nil {
			client, _ := r.fetcher.(*fetch.Client)
			scraper = crawling.NewHTTPScraper(client, crawling.WithLogger(r.logger))
		}
		r.links = linkcache.New(scraper, linkcache.WithLogger(r.logger))
	}
	r.loaders.Store(root, r.newModuleLoader(root))
	return r
}

// Name identifies the resolver in logs and listings.
func (r *Resolver) Name() string {
	return fmt.Sprintf("%s %s", r.compiler.Kind(), r.root)
}

// Root returns the root origin.
func (r *Resolver) Root() types.Origin {
	return r.root
}

// Compiler returns the compiler units are built with.
func (r *Resolver) Compiler() compile.Compiler {
	return r.compiler
}

// LinkCache returns the cache of remote listings.
func (r *Resolver) LinkCache() *linkcache.Cache {
	return r.links
}

// Find implements Finder.
func (r *Resolver) Find(ctx context.Context, req types.Request) (Loader, bool) {
	r.logger.Debug("find", "name", req.Name, "path", req.SearchPath)

	origin, ok := r.selectOrigin(req.Hint())
	if !ok {
		r.logger.Debug("search path not served here", "name", req.Name, "hint", req.Hint())
		return nil, false
	}

	leaf := req.Leaf()
	links := r.links.LinksFor(ctx, origin)
	r.logger.Debug("find", "origin", origin, "leaf", leaf, "entries", links.Len())

	if links.Has(leaf) {
		r.logger.Debug("trying package", "name", req.Name)
		pkg, err := r.findPackage(ctx, origin, req.Name, leaf)
		if err == nil {
			r.logger.Debug("package loaded", "name", req.Name, "origin", pkg.Origin())
			return pkg, true
		}
		r.logger.Debug("package failed", "name", req.Name, "err", err)
	}

	if links.Has(leaf + r.compiler.Suffix()) {
		r.logger.Debug("module found", "name", req.Name, "origin", origin)
		return r.moduleLoader(origin), true
	}

	r.logger.Debug("module not found", "name", req.Name, "origin", origin)
	return nil, false
}

// Invalidate implements Finder. Only the link cache is reset; registered loaders stay.
func (r *Resolver) Invalidate() {
	r.links.Invalidate()
}

// Origins returns every registered origin, sorted. The root is always present.
func (r *Resolver) Origins() []types.Origin {
	var origins []types.Origin
	r.loaders.Range(func(key, _ any) bool {
		origins = append(origins, key.(types.Origin))
		return true
	})
	sort.Slice(origins, func(i, j int) bool { return origins[i] < origins[j] })
	return origins
}

// LoaderFor returns the registered module loader of origin.
func (r *Resolver) LoaderFor(origin types.Origin) (*loader.ModuleLoader, bool) {
	v, ok := r.loaders.Load(origin)
	if !ok {
		return nil, false
	}
	return v.(*loader.ModuleLoader), true
}

func (r *Resolver) selectOrigin(hint string) (types.Origin, bool) {
	if hint == "" {
		return r.root, true
	}
	owned := false
	r.loaders.Range(func(key, _ any) bool {
		owned = key.(types.Origin).Owns(hint)
		return !owned
	})
	if !owned {
		return "", false
	}
	return types.NewOrigin(hint), true
}

// findPackage loads the index unit of origin/leaf. Only after it loads is the package's
// origin given a LinkSet and a module loader. Concurrent attempts for one package share
// a single load.
func (r *Resolver) findPackage(ctx context.Context, origin types.Origin, fullname, leaf string) (*loader.PackageLoader, error) {
	pkgOrigin := origin.Join(leaf)
	if v, ok := r.packages.Load(pkgOrigin); ok {
		return v.(*loader.PackageLoader), nil
	}

	v, err, _ := r.flight.Do(string(pkgOrigin), func() (any, error) {
		if v, ok := r.packages.Load(pkgOrigin); ok {
			return v, nil
		}

		pkg := loader.NewPackageLoader(pkgOrigin, r.fetcher, r.compiler, loader.WithLogger(r.logger))
		if _, err := pkg.Materialize(ctx, fullname); err != nil {
			return nil, err
		}

		r.links.LinksFor(ctx, pkgOrigin)
		r.moduleLoader(pkgOrigin)
		actual, _ := r.packages.LoadOrStore(pkgOrigin, pkg)
		return actual, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*loader.PackageLoader), nil
}

// moduleLoader returns the single loader of origin, registering it on first use.
func (r *Resolver) moduleLoader(origin types.Origin) *loader.ModuleLoader {
	if v, ok := r.loaders.Load(origin); ok {
		return v.(*loader.ModuleLoader)
	}
	v, _ := r.loaders.LoadOrStore(origin, r.newModuleLoader(origin))
	return v.(*loader.ModuleLoader)
}

func (r *Resolver) newModuleLoader(origin types.Origin) *loader.ModuleLoader {
	return loader.NewModuleLoader(origin, r.fetcher, r.compiler, loader.WithLogger(r.logger))
}
