package main

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/jonathan/urlimport/internal/compile"
	"github.com/jonathan/urlimport/internal/config"
	"github.com/jonathan/urlimport/internal/crawling"
	"github.com/jonathan/urlimport/internal/fetch"
	"github.com/jonathan/urlimport/internal/linkcache"
	"github.com/jonathan/urlimport/internal/logging"
	"github.com/jonathan/urlimport/internal/observability"
	"github.com/jonathan/urlimport/internal/resolver"
	"github.com/jonathan/urlimport/internal/types"
)

var (
	configPath string
	originURL  string
	kind       string
	timeout    time.Duration
	useBrowser bool
	verbose    bool
	logLevel   string
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "Path to JSON config file")
	flags.StringVarP(&originURL, "origin", "o", "", "Root origin URL (overrides URLIMPORT_ORIGIN)")
	flags.StringVarP(&kind, "kind", "k", compile.KindShell, "Unit kind to resolve: sh, cue or all")
	flags.DurationVar(&timeout, "timeout", fetch.DefaultTimeout, "Timeout for each fetch")
	flags.BoolVar(&useBrowser, "use-browser", false, "Render listings with a headless browser when the HTML has no links")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Print detailed summaries")
	flags.StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn or error")
}

// app holds what every command needs once flags, config file and environment are merged.
type app struct {
	cfg     *config.Config
	logger  *log.Logger
	out     io.Writer
	printer *observability.Printer
}

// setup builds the effective configuration. Flags set on the command line win over the
// config file and the environment.
func setup(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("origin") {
		cfg.Origin = originURL
	}
	if flags.Changed("kind") {
		cfg.Kind = kind
	}
	if flags.Changed("timeout") {
		cfg.Timeout = config.Duration(timeout)
	}
	if flags.Changed("use-browser") {
		cfg.UseBrowser = useBrowser
	}
	if flags.Changed("verbose") {
		cfg.Verbose = verbose
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := logging.New(cmd.ErrOrStderr(), cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger, out: cmd.OutOrStdout()}
	if cfg.Verbose {
		a.printer = observability.NewPrinter(a.out)
	}
	return a, nil
}

// origin returns the origin named by arg, or the configured root origin.
func (a *app) origin(arg string) (types.Origin, error) {
	raw := arg
	if raw == "" {
		raw = a.cfg.Origin
	}
	if raw == "" {
		return "", fmt.Errorf("origin required: set --origin, %s or \"origin\" in the config file", config.EnvOrigin)
	}
	return types.NewOrigin(raw), nil
}

func (a *app) scraper(client *fetch.Client) crawling.Scraper {
	opts := []crawling.Option{crawling.WithLogger(a.logger)}
	if a.cfg.UseBrowser {
		opts = append(opts, crawling.WithRenderer(fetch.BrowserRenderer(time.Duration(a.cfg.Timeout), a.logger)))
	}
	return crawling.NewHTTPScraper(client, opts...)
}

// finders builds one resolver per configured kind. They share a transport and a link
// cache, so a listing is scraped once however many kinds are resolved.
func (a *app) finders() (*resolver.Chain, *linkcache.Cache, error) {
	root, err := a.origin("")
	if err != nil {
		return nil, nil, err
	}
	compilers, err := compile.ForKind(a.cfg.Kind)
	if err != nil {
		return nil, nil, err
	}

	client := fetch.NewClient(a.cfg.FetchOptions())
	cache := linkcache.New(a.scraper(client), linkcache.WithLogger(a.logger))

	chain := resolver.NewChain()
	for _, c := range compilers {
		chain.Append(resolver.New(root, nil, c,
			resolver.WithFetcher(client),
			resolver.WithLinkCache(cache),
			resolver.WithLogger(a.logger)))
	}
	return chain, cache, nil
}

func (a *app) printCacheStats(cache *linkcache.Cache) {
	if a.printer != nil {
		a.printer.PrintCacheStats(cache.Stats(), cache.Origins())
	}
}

// importError wraps err for display. Fetch deadlines get a hint about --timeout.
func (a *app) importError(what string, err error) error {
	if fetch.IsTimeout(err) {
		return fmt.Errorf("%s: timed out after %s (raise --timeout): %w", what, time.Duration(a.cfg.Timeout), err)
	}
	return fmt.Errorf("%s: %w", what, err)
}
