package extract

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/readwell-labs/bookscout/internal/model"
)

var yearRe = regexp.MustCompile(`\d{4}`)

// Metadata scrapes title, author, language, and release year from a
// Gutenberg book page. Individual fields missing from the page come back
// empty (language falls back to "English"); a page that cannot be fetched
// at all yields the Unknown sentinels instead.
func (f *Fetcher) Metadata(ctx context.Context, bookPageURL string) model.BookMetadata {
	doc, err := f.get(ctx, bookPageURL)
	if err != nil {
		zap.L().Warn("metadata extraction failed",
			zap.String("url", bookPageURL),
			zap.Error(err),
		)
		return model.UnknownMetadata()
	}

	md := model.BookMetadata{Language: "English"}

	md.Title = strings.TrimSpace(doc.Find(`h1[itemprop="name"]`).First().Text())
	md.Author = strings.TrimSpace(doc.Find(`a[itemprop="creator"]`).First().Text())

	doc.Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		label := strings.TrimSpace(row.Find("th").First().Text())
		if strings.Contains(label, "Language") {
			if lang := strings.TrimSpace(row.Find("td").First().Text()); lang != "" {
				md.Language = lang
			}
			return false
		}
		return true
	})

	doc.Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		label := strings.TrimSpace(row.Find("th").First().Text())
		if strings.Contains(label, "Release Date") {
			md.Year = yearRe.FindString(row.Find("td").First().Text())
			return false
		}
		return true
	})

	return md
}

// LocateContentURL scans the book page for a link to its plain-text
// rendition: an anchor labelled "Plain Text UTF-8" first, then any href
// containing ".txt". Relative hrefs are resolved against the page URL.
// A fetch failure or a page without either link returns ok=false.
func (f *Fetcher) LocateContentURL(ctx context.Context, bookPageURL string) (string, bool) {
	doc, err := f.get(ctx, bookPageURL)
	if err != nil {
		zap.L().Warn("content link lookup failed",
			zap.String("url", bookPageURL),
			zap.Error(err),
		)
		return "", false
	}

	var href string
	doc.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if strings.Contains(a.Text(), "Plain Text UTF-8") {
			href, _ = a.Attr("href")
			return false
		}
		return true
	})

	if href == "" {
		doc.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
			if h, ok := a.Attr("href"); ok && strings.Contains(h, ".txt") {
				href = h
				return false
			}
			return true
		})
	}

	if href == "" {
		return "", false
	}
	return resolveHref(bookPageURL, href), true
}

// resolveHref makes relative content links absolute against the book page.
func resolveHref(pageURL, href string) string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
