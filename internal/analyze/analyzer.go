package analyze

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/readwell-labs/bookscout/internal/model"
	"github.com/readwell-labs/bookscout/pkg/gemini"
)

const (
	// maxContentLen caps the text handed to the model in one analysis.
	maxContentLen = 16000
	// genreExcerptLen caps the excerpt used for genre classification.
	genreExcerptLen = 8000
	// degradedContentLen caps stored content when the model calls fail.
	degradedContentLen = 4000
)

// ErrNotGutenberg rejects URLs outside gutenberg.org before any network
// call is made.
var ErrNotGutenberg = eris.New("This URL does not appear to be from Project Gutenberg. Please provide a valid Project Gutenberg URL.")

// PageFetcher is the slice of the extract package the analyzer needs.
type PageFetcher interface {
	ExtractText(ctx context.Context, url string) string
	Metadata(ctx context.Context, url string) model.BookMetadata
	LocateContentURL(ctx context.Context, url string) (string, bool)
}

// Analyzer turns a Gutenberg book URL into an AnalysisRecord: scraped
// metadata plus a model-generated summary and genre over sampled content.
type Analyzer struct {
	pages PageFetcher
	llm   gemini.Client
}

// New creates an Analyzer.
func New(pages PageFetcher, llm gemini.Client) *Analyzer {
	return &Analyzer{pages: pages, llm: llm}
}

// Analyze fetches metadata and content for the book at rawURL and runs the
// summary and genre prompts against it. The only error it returns is the
// non-Gutenberg rejection; every downstream failure degrades the record
// instead of propagating.
func (a *Analyzer) Analyze(ctx context.Context, rawURL string) (*model.AnalysisRecord, error) {
	if !isGutenbergURL(rawURL) {
		return nil, ErrNotGutenberg
	}

	md := a.pages.Metadata(ctx, rawURL)

	contentURL := rawURL
	if located, ok := a.pages.LocateContentURL(ctx, rawURL); ok {
		contentURL = located
	}
	text := a.pages.ExtractText(ctx, contentURL)

	sample := buildSample(text)

	rec := &model.AnalysisRecord{
		BookMetadata: md,
		URL:          rawURL,
		Content:      sample,
		AnalyzedAt:   time.Now().UTC(),
	}

	summary, err := a.llm.GenerateText(ctx, summaryPrompt(md.Title, md.Author, sample), gemini.DefaultParams())
	if err == nil {
		rec.Summary = summary
		rec.Genre, err = a.llm.GenerateText(ctx, genrePrompt(md.Title, md.Author, truncate(sample, genreExcerptLen)), gemini.DefaultParams())
	}
	if err != nil {
		zap.L().Warn("content analysis degraded",
			zap.String("url", rawURL),
			zap.Error(err),
		)
		rec.Summary = fmt.Sprintf("Error generating summary: %v", err)
		rec.Genre = "Unknown"
		rec.Content = truncate(sample, degradedContentLen)
		rec.Degraded = true
	}

	return rec, nil
}

// isGutenbergURL reports whether the URL's host is gutenberg.org or one of
// its subdomains.
func isGutenbergURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := u.Hostname()
	return host == "gutenberg.org" || strings.HasSuffix(host, ".gutenberg.org")
}

// buildSample returns the text unchanged when it fits the content cap.
// Longer texts are reduced to three equal segments (opening, a middle
// segment centered at the midpoint, and the ending) so the sample keeps
// lexical range from the whole work.
func buildSample(text string) string {
	if len(text) <= maxContentLen {
		return text
	}

	seg := maxContentLen / 3
	beginning := text[:seg]
	midStart := len(text)/2 - maxContentLen/6
	middle := text[midStart : midStart+seg]
	end := text[len(text)-seg:]

	return beginning +
		"\n\n[...middle section omitted...]\n\n" + middle +
		"\n\n[...later section omitted...]\n\n" + end
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
