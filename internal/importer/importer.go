package importer

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/jonathan/urlimport/internal/logging"
	"github.com/jonathan/urlimport/internal/resolver"
	"github.com/jonathan/urlimport/internal/types"
)

// DefaultConcurrency bounds the imports ImportAll runs at once.
const DefaultConcurrency = 8

// Importer imports modules through a finder and remembers them by name.
type Importer struct {
	finder      resolver.Finder
	logger      *log.Logger
	concurrency int

	mu      sync.RWMutex
	modules map[string]*types.Module
	flight  singleflight.Group
}

// Option configures an Importer.
type Option func(*Importer)

// WithLogger sets the logger used for debug output.
func WithLogger(logger *log.Logger) Option {
	return func(i *Importer) {
		i.logger = logger
	}
}

// WithConcurrency sets how many imports ImportAll runs in parallel.
func WithConcurrency(n int) Option {
	return func(i *Importer) {
		i.concurrency = n
	}
}

// New creates an importer that consults finder for every name it has not imported yet.
func New(finder resolver.Finder, opts ...Option) *Importer {
	i := &Importer{
		finder:      finder,
		concurrency: DefaultConcurrency,
		modules:     make(map[string]*types.Module),
	}
	for _, opt := range opts {
		opt(i)
	}
	i.logger = logging.OrNop(i.logger)
	if i.concurrency < 1 {
		i.concurrency = 1
	}
	return i
}

// Import returns the module named name, importing its parents first.
// A name no finder serves yields *NotFoundError; load and compile errors are returned as is.
func (i *Importer) Import(ctx context.Context, name string) (*types.Module, error) {
	if !validName(name) {
		return nil, &InvalidNameError{Name: name}
	}
	if mod, ok := i.Lookup(name); ok {
		return mod, nil
	}

	v, err, _ := i.flight.Do(name, func() (any, error) {
		if mod, ok := i.Lookup(name); ok {
			return mod, nil
		}
		return i.load(ctx, name)
	})
	if err != nil {
		return nil, err
	}
	return v.(*types.Module), nil
}

// Request imports the parents of name and returns the lookup request for name itself.
// A parent that is a plain unit yields *NotFoundError, since only packages have children.
func (i *Importer) Request(ctx context.Context, name string) (types.Request, error) {
	if !validName(name) {
		return types.Request{}, &InvalidNameError{Name: name}
	}
	parentName := types.ParentName(name)
	if parentName == "" {
		return types.Request{Name: name}, nil
	}
	parent, err := i.Import(ctx, parentName)
	if err != nil {
		return types.Request{}, err
	}
	if !parent.Package {
		return types.Request{}, &NotFoundError{Name: name, Message: parentName + " is not a package"}
	}
	return types.Request{Name: name, SearchPath: parent.Path}, nil
}

func (i *Importer) load(ctx context.Context, name string) (*types.Module, error) {
	req, err := i.Request(ctx, name)
	if err != nil {
		return nil, err
	}

	l, ok := i.finder.Find(ctx, req)
	if !ok {
		i.logger.Debug("not found", "name", name, "path", req.SearchPath)
		return nil, &NotFoundError{Name: name}
	}

	mod, err := l.Materialize(ctx, name)
	if err != nil {
		return nil, err
	}
	i.logger.Debug("imported", "name", name, "file", mod.File, "package", mod.Package)

	i.mu.Lock()
	defer i.mu.Unlock()
	if existing, ok := i.modules[name]; ok {
		return existing, nil
	}
	i.modules[name] = mod
	return mod, nil
}

// ImportAll imports names concurrently. Results are in the order of names.
// The first error cancels the remaining imports.
func (i *Importer) ImportAll(ctx context.Context, names ...string) ([]*types.Module, error) {
	mods := make([]*types.Module, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(i.concurrency)
	for idx, name := range names {
		g.Go(func() error {
			mod, err := i.Import(gctx, name)
			if err != nil {
				return err
			}
			mods[idx] = mod
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return mods, nil
}

// Lookup returns an already imported module.
func (i *Importer) Lookup(name string) (*types.Module, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	mod, ok := i.modules[name]
	return mod, ok
}

// Modules returns the names of all imported modules, sorted.
func (i *Importer) Modules() []string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	names := make([]string, 0, len(i.modules))
	for name := range i.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Invalidate drops the finder's cached remote state. Imported modules are kept.
func (i *Importer) Invalidate() {
	i.finder.Invalidate()
}

func validName(name string) bool {
	if name == "" {
		return false
	}
	for _, part := range strings.Split(name, ".") {
		if part == "" {
			return false
		}
	}
	return true
}
