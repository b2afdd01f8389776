// Package fetch provides the HTTP transport used to read remote listings and unit sources.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent is the user agent string for HTTP requests.
const DefaultUserAgent = "urlimport/1.0 (+https://github.com/jonathan/urlimport)"

// DefaultMaxBytes caps how much of a response body is read.
const DefaultMaxBytes int64 = 8 << 20

// Result holds the body and metadata of a fetched URL.
type Result struct {
	URL         string
	Body        []byte
	ContentType string
	StatusCode  int
}

// Options configures the fetch behavior.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Headers   map[string]string
	MaxBytes  int64
}

// DefaultOptions returns sensible defaults for fetching.
func DefaultOptions() *Options {
	return &Options{
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
		MaxBytes:  DefaultMaxBytes,
	}
}

// Client performs GET requests with the configured options.
// It is safe for concurrent use.
type Client struct {
	http    *http.Client
	options *Options
}

// NewClient creates a client. Zero-valued options fall back to defaults.
func NewClient(opts *Options) *Client {
	defaults := DefaultOptions()
	if opts == nil {
		opts = defaults
	}
	merged := *opts
	if merged.Timeout <= 0 {
		merged.Timeout = defaults.Timeout
	}
	if merged.UserAgent == "" {
		merged.UserAgent = defaults.UserAgent
	}
	if merged.MaxBytes <= 0 {
		merged.MaxBytes = defaults.MaxBytes
	}
	return &Client{
		http:    &http.Client{Timeout: merged.Timeout},
		options: &merged,
	}
}

// Options returns a copy of the client's effective options.
func (c *Client) Options() Options {
	return *c.options
}

// Get retrieves a URL. A non-200 status returns both the result and an *Error.
func (c *Client) Get(ctx context.Context, urlStr string) (*Result, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, &Error{
			URL:     urlStr,
			Message: "invalid URL",
			Cause:   err,
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.options.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, &Error{
			URL:     urlStr,
			Message: "failed to create request",
			Cause:   err,
		}
	}

	req.Header.Set("User-Agent", c.options.UserAgent)
	for key, value := range c.options.Headers {
		req.Header.Set(key, value)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{
			URL:     urlStr,
			Message: "HTTP request failed",
			Cause:   err,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	// Read one byte past the cap so oversized bodies can be detected.
	body, err := io.ReadAll(io.LimitReader(resp.Body, c.options.MaxBytes+1))
	if err != nil {
		return nil, &Error{
			URL:        urlStr,
			Message:    "failed to read response body",
			StatusCode: resp.StatusCode,
			Cause:      err,
		}
	}
	if int64(len(body)) > c.options.MaxBytes {
		return nil, &Error{
			URL:        urlStr,
			Message:    fmt.Sprintf("response body exceeds %d bytes", c.options.MaxBytes),
			StatusCode: resp.StatusCode,
		}
	}

	result := &Result{
		URL:         urlStr,
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
	}

	if resp.StatusCode != http.StatusOK {
		return result, &Error{
			URL:        urlStr,
			Message:    fmt.Sprintf("HTTP status %d", resp.StatusCode),
			StatusCode: resp.StatusCode,
		}
	}

	return result, nil
}

// Fetch returns the body of a successful GET.
func (c *Client) Fetch(ctx context.Context, urlStr string) ([]byte, error) {
	result, err := c.Get(ctx, urlStr)
	if err != nil {
		return nil, err
	}
	return result.Body, nil
}

// URL retrieves a URL with one-off options.
func URL(ctx context.Context, urlStr string, opts *Options) (*Result, error) {
	return NewClient(opts).Get(ctx, urlStr)
}
