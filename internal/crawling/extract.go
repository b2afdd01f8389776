package crawling

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/urlimport/internal/types"
)

// ExtractEntries returns the entry names a listing page links to, in document order.
// Relative hrefs are kept as written with the trailing slash stripped ("pkg/" -> "pkg").
// Absolute hrefs are kept only when they point under origin and are made relative to it.
// Sort links ("?C=N;O=D"), fragments and parent links are skipped.
func ExtractEntries(htmlContent string, origin types.Origin) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, &LinkExtractionError{
			Message: "failed to parse HTML",
			Cause:   err,
		}
	}

	base, _ := url.Parse(origin.String() + "/")

	seen := make(map[string]bool)
	entries := make([]string, 0)

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		name, ok := entryName(strings.TrimSpace(href), base)
		if !ok || seen[name] {
			return
		}
		seen[name] = true
		entries = append(entries, name)
	})

	return entries, nil
}

func entryName(href string, base *url.URL) (string, bool) {
	if href == "" || strings.HasPrefix(href, "?") || strings.HasPrefix(href, "#") {
		return "", false
	}

	linkURL, err := url.Parse(href)
	if err != nil {
		return "", false
	}

	var rel string
	switch {
	case linkURL.IsAbs() || strings.HasPrefix(href, "/"):
		if base == nil {
			return "", false
		}
		abs := base.ResolveReference(linkURL)
		if abs.Scheme != base.Scheme || abs.Host != base.Host || !strings.HasPrefix(abs.Path, base.Path) {
			return "", false
		}
		rel = strings.TrimPrefix(abs.Path, base.Path)
	default:
		rel = linkURL.Path
		if unescaped, err := url.PathUnescape(rel); err == nil {
			rel = unescaped
		}
	}

	rel = strings.TrimSuffix(rel, "/")
	if rel == "" || rel == "." || rel == ".." || strings.HasPrefix(rel, "../") {
		return "", false
	}
	return rel, true
}
