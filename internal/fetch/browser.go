// Package fetch - browser.go renders JavaScript-driven listings in a headless browser.
package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/chromedp/chromedp"
)

// WithBrowser renders a page in a headless browser and returns the rendered HTML.
// Requires Chrome/Chromium to be installed on the system.
func WithBrowser(ctx context.Context, url string, timeout time.Duration, logger *log.Logger) (string, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger != nil {
		logger.Debug("starting headless browser", "url", url)
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, timeout)
	defer cancel()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", &Error{URL: url, Message: "browser rendering failed", Cause: err}
	}

	if logger != nil {
		logger.Debug("rendered listing", "url", url, "bytes", len(html))
	}
	return html, nil
}

// Renderer adapts WithBrowser to a function value so callers can substitute it in tests.
type Renderer func(ctx context.Context, url string) (string, error)

// BrowserRenderer returns a Renderer backed by WithBrowser.
func BrowserRenderer(timeout time.Duration, logger *log.Logger) Renderer {
	return func(ctx context.Context, url string) (string, error) {
		html, err := WithBrowser(ctx, url, timeout, logger)
		if err != nil {
			return "", fmt.Errorf("render %s: %w", url, err)
		}
		return html, nil
	}
}
