package extract

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bookPage = `<html><body>
<h1 itemprop="name">Alice's Adventures in Wonderland</h1>
<a itemprop="creator" href="/ebooks/author/7">Carroll, Lewis</a>
<table class="bibrec">
<tr><th>Language</th><td>English</td></tr>
<tr><th>Release Date</th><td>Jun 27, 2008</td></tr>
</table>
<a href="/ebooks/11.html.images">Read online</a>
<a href="/ebooks/11.txt.utf-8">Plain Text UTF-8</a>
</body></html>`

func servePage(t *testing.T, html string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(html))
	}))
}

func TestMetadata_FullPage(t *testing.T) {
	srv := servePage(t, bookPage)
	defer srv.Close()

	f := NewFetcher()
	md := f.Metadata(context.Background(), srv.URL)

	assert.Equal(t, "Alice's Adventures in Wonderland", md.Title)
	assert.Equal(t, "Carroll, Lewis", md.Author)
	assert.Equal(t, "English", md.Language)
	assert.Equal(t, "2008", md.Year)
}

func TestMetadata_MissingFields(t *testing.T) {
	srv := servePage(t, `<html><body><p>nothing useful</p></body></html>`)
	defer srv.Close()

	f := NewFetcher()
	md := f.Metadata(context.Background(), srv.URL)

	// Inner misses are empty strings, not the Unknown sentinels.
	assert.Equal(t, "", md.Title)
	assert.Equal(t, "", md.Author)
	assert.Equal(t, "", md.Year)
	// Language keeps its default.
	assert.Equal(t, "English", md.Language)
}

func TestMetadata_NoReleaseDateRow(t *testing.T) {
	srv := servePage(t, `<html><body>
<h1 itemprop="name">Some Book</h1>
<table><tr><th>Language</th><td>French</td></tr></table>
</body></html>`)
	defer srv.Close()

	f := NewFetcher()
	md := f.Metadata(context.Background(), srv.URL)

	assert.Equal(t, "Some Book", md.Title)
	assert.Equal(t, "French", md.Language)
	assert.Equal(t, "", md.Year)
}

func TestMetadata_FetchFailure(t *testing.T) {
	srv := servePage(t, "")
	srv.Close()

	f := NewFetcher()
	md := f.Metadata(context.Background(), srv.URL)

	// Only the outer failure path uses the sentinels.
	assert.Equal(t, "Unknown Title", md.Title)
	assert.Equal(t, "Unknown Author", md.Author)
	assert.Equal(t, "Unknown", md.Language)
	assert.Equal(t, "Unknown", md.Year)
}

func TestLocateContentURL_PlainTextPreferred(t *testing.T) {
	srv := servePage(t, bookPage)
	defer srv.Close()

	f := NewFetcher()
	got, ok := f.LocateContentURL(context.Background(), srv.URL)
	require.True(t, ok)
	// Relative href resolved against the page URL.
	assert.Equal(t, srv.URL+"/ebooks/11.txt.utf-8", got)
}

func TestLocateContentURL_TxtFallback(t *testing.T) {
	srv := servePage(t, `<html><body>
<a href="/files/11/11-0.txt">Download</a>
<a href="/ebooks/11.epub">EPUB</a>
</body></html>`)
	defer srv.Close()

	f := NewFetcher()
	got, ok := f.LocateContentURL(context.Background(), srv.URL)
	require.True(t, ok)
	assert.Equal(t, srv.URL+"/files/11/11-0.txt", got)
}

func TestLocateContentURL_NoneFound(t *testing.T) {
	srv := servePage(t, `<html><body><a href="/ebooks/11.epub">EPUB</a></body></html>`)
	defer srv.Close()

	f := NewFetcher()
	_, ok := f.LocateContentURL(context.Background(), srv.URL)
	assert.False(t, ok)
}

func TestLocateContentURL_FetchFailure(t *testing.T) {
	srv := servePage(t, "")
	srv.Close()

	f := NewFetcher()
	_, ok := f.LocateContentURL(context.Background(), srv.URL)
	assert.False(t, ok)
}
