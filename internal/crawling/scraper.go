package crawling

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/jonathan/urlimport/internal/fetch"
	"github.com/jonathan/urlimport/internal/logging"
	"github.com/jonathan/urlimport/internal/types"
)

// Scraper resolves an origin to the set of entry names visible at it.
// Implementations never fail: transport and parse errors yield an empty set.
type Scraper interface {
	Links(ctx context.Context, origin types.Origin) types.LinkSet
}

// ScraperFunc adapts a function to the Scraper interface.
type ScraperFunc func(ctx context.Context, origin types.Origin) types.LinkSet

// Links implements Scraper.
func (f ScraperFunc) Links(ctx context.Context, origin types.Origin) types.LinkSet {
	return f(ctx, origin)
}

// Static returns a Scraper serving fixed listings keyed by origin.
func Static(listings map[types.Origin][]string) Scraper {
	return ScraperFunc(func(_ context.Context, origin types.Origin) types.LinkSet {
		return types.NewLinkSet(listings[origin]...)
	})
}

// HTTPScraper reads listings over HTTP and extracts their anchors.
type HTTPScraper struct {
	client *fetch.Client
	render fetch.Renderer
	logger *log.Logger
}

// Option configures an HTTPScraper.
type Option func(*HTTPScraper)

// WithLogger sets the logger used for debug output.
func WithLogger(logger *log.Logger) Option {
	return func(s *HTTPScraper) {
		s.logger = logger
	}
}

// WithRenderer enables a fallback that renders the listing when plain HTTP yields no entries.
func WithRenderer(render fetch.Renderer) Option {
	return func(s *HTTPScraper) {
		s.render = render
	}
}

// NewHTTPScraper creates a scraper using client, or a default client when nil.
func NewHTTPScraper(client *fetch.Client, opts ...Option) *HTTPScraper {
	if client == nil {
		client = fetch.NewClient(nil)
	}
	s := &HTTPScraper{client: client}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.OrNop(s.logger)
	return s
}

// Links implements Scraper.
func (s *HTTPScraper) Links(ctx context.Context, origin types.Origin) types.LinkSet {
	listingURL := origin.String() + "/"
	s.logger.Debug("getting links", "url", listingURL)

	entries, err := s.scrape(ctx, origin, listingURL)
	if err != nil {
		s.logger.Debug("could not get links", "url", listingURL, "err", err)
	}

	if len(entries) == 0 && s.render != nil {
		entries, err = s.scrapeRendered(ctx, origin, listingURL)
		if err != nil {
			s.logger.Debug("could not render links", "url", listingURL, "err", err)
		}
	}

	links := types.NewLinkSet(entries...)
	s.logger.Debug("links", "url", listingURL, "entries", links.Names())
	return links
}

func (s *HTTPScraper) scrape(ctx context.Context, origin types.Origin, listingURL string) ([]string, error) {
	body, err := s.client.Fetch(ctx, listingURL)
	if err != nil {
		return nil, err
	}
	return ExtractEntries(string(body), origin)
}

func (s *HTTPScraper) scrapeRendered(ctx context.Context, origin types.Origin, listingURL string) ([]string, error) {
	html, err := s.render(ctx, listingURL)
	if err != nil {
		return nil, err
	}
	return ExtractEntries(html, origin)
}
