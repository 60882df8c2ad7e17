package extract

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const (
	userAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	acceptLanguage = "en-US,en;q=0.9"
)

// Fetcher fetches Gutenberg pages and book text over plain HTTP. Every
// request carries a browser-like User-Agent and an English language
// preference; timeouts are left at library defaults.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a Fetcher with a default HTTP client.
func NewFetcher() *Fetcher {
	return &Fetcher{client: &http.Client{}}
}

// get fetches the URL and parses it into a goquery document.
func (f *Fetcher) get(ctx context.Context, rawURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "extract: create request")
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", acceptLanguage)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "extract: fetch")
	}
	defer func() { _ = resp.Body.Close() }()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "extract: parse html")
	}
	return doc, nil
}

// ExtractText fetches a URL and returns its flattened plain text. It fails
// soft: any fetch or parse error yields a descriptive error string as the
// payload, never an error value, so callers treat the result as content
// either way.
func (f *Fetcher) ExtractText(ctx context.Context, rawURL string) string {
	doc, err := f.get(ctx, rawURL)
	if err != nil {
		zap.L().Warn("text extraction failed",
			zap.String("url", rawURL),
			zap.Error(err),
		)
		return fmt.Sprintf("Error extracting content from URL: %v", err)
	}

	doc.Find("script, style").Remove()
	return flattenText(doc.Text())
}

// flattenText collapses raw document text: each line is stripped, runs of
// double spaces split lines into sub-phrases, empty results are dropped,
// and the remainder is rejoined with newlines.
func flattenText(text string) string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		for _, phrase := range strings.Split(strings.TrimSpace(line), "  ") {
			if p := strings.TrimSpace(phrase); p != "" {
				out = append(out, p)
			}
		}
	}
	return strings.Join(out, "\n")
}
