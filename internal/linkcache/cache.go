// Package linkcache keeps the scraped LinkSet of every origin for the resolver's lifetime.
//
// A LinkSet, once stored, is authoritative until Invalidate. Invalidate swaps the
// whole table, so a reader sees either the old set for an origin or the new one,
// never a mix. Concurrent first access to an origin shares one scrape.
package linkcache

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/jonathan/urlimport/internal/crawling"
	"github.com/jonathan/urlimport/internal/logging"
	"github.com/jonathan/urlimport/internal/types"
)

// Stats counts cache activity since construction.
type Stats struct {
	Hits          int64
	Misses        int64
	Scrapes       int64
	Invalidations int64
}

type table struct {
	mu     sync.RWMutex
	sets   map[types.Origin]types.LinkSet
	flight singleflight.Group
}

func newTable() *table {
	return &table{sets: make(map[types.Origin]types.LinkSet)}
}

func (t *table) get(origin types.Origin) (types.LinkSet, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	set, ok := t.sets[origin]
	return set, ok
}

func (t *table) put(origin types.Origin, set types.LinkSet) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sets[origin] = set
}

// Cache is a per-origin LinkSet cache backed by a Scraper.
type Cache struct {
	scraper crawling.Scraper
	current atomic.Pointer[table]
	logger  *log.Logger

	hits          atomic.Int64
	misses        atomic.Int64
	scrapes       atomic.Int64
	invalidations atomic.Int64
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the logger used for debug output.
func WithLogger(logger *log.Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

// New creates an empty cache populated lazily through scraper.
// A nil scraper reads listings over HTTP with a default client.
func New(scraper crawling.Scraper, opts ...Option) *Cache {
	c := &Cache{scraper: scraper}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.OrNop(c.logger)
	if c.scraper == nil {
		c.scraper = crawling.NewHTTPScraper(nil, crawling.WithLogger(c.logger))
	}
	c.current.Store(newTable())
	return c
}

// LinksFor returns the LinkSet of origin, scraping it on first use.
// A failed scrape is stored as the empty set. A caller whose ctx ends before the
// scrape finishes gets the empty set, and nothing is stored on its behalf.
func (c *Cache) LinksFor(ctx context.Context, origin types.Origin) types.LinkSet {
	t := c.current.Load()
	if set, ok := t.get(origin); ok {
		c.hits.Add(1)
		return set
	}
	c.misses.Add(1)

	// The scrape is shared by every waiter, so it must outlive any one of them.
	// The scraper's own fetch and render timeouts bound it.
	scrapeCtx := context.WithoutCancel(ctx)
	ch := t.flight.DoChan(string(origin), func() (any, error) {
		// Another caller may have finished the scrape between get and DoChan.
		if set, ok := t.get(origin); ok {
			return set, nil
		}
		c.scrapes.Add(1)
		set := c.scraper.Links(scrapeCtx, origin)
		if scrapeCtx.Err() != nil {
			return set, nil
		}
		t.put(origin, set)
		c.logger.Debug("cached links", "origin", origin, "entries", set.Len())
		return set, nil
	})

	select {
	case res := <-ch:
		return res.Val.(types.LinkSet)
	case <-ctx.Done():
		c.logger.Debug("gave up waiting for links", "origin", origin, "err", ctx.Err())
		return types.NewLinkSet()
	}
}

// Invalidate drops every stored LinkSet. The next request for any origin scrapes again.
func (c *Cache) Invalidate() {
	c.current.Store(newTable())
	c.invalidations.Add(1)
	c.logger.Debug("invalidating link cache")
}

// Origins returns the origins with a stored LinkSet, sorted.
func (c *Cache) Origins() []types.Origin {
	t := c.current.Load()
	t.mu.RLock()
	defer t.mu.RUnlock()

	origins := make([]types.Origin, 0, len(t.sets))
	for origin := range t.sets {
		origins = append(origins, origin)
	}
	sort.Slice(origins, func(i, j int) bool { return origins[i] < origins[j] })
	return origins
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:          c.hits.Load(),
		Misses:        c.misses.Load(),
		Scrapes:       c.scrapes.Load(),
		Invalidations: c.invalidations.Load(),
	}
}
