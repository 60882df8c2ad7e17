package query

import (
	"context"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readwell-labs/bookscout/internal/model"
	"github.com/readwell-labs/bookscout/internal/session"
	"github.com/readwell-labs/bookscout/pkg/gemini"
)

const aliceURL = "https://www.gutenberg.org/ebooks/11"

// stubAnalyzer counts Analyze calls and returns canned records per URL.
type stubAnalyzer struct {
	records map[string]*model.AnalysisRecord
	err     error
	calls   int
}

func (s *stubAnalyzer) Analyze(_ context.Context, url string) (*model.AnalysisRecord, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if rec, ok := s.records[url]; ok {
		return rec, nil
	}
	return &model.AnalysisRecord{URL: url, Content: "content of " + url}, nil
}

// stubLLM returns a fixed answer, or errors for the first failFirst calls.
type stubLLM struct {
	answer    string
	failFirst int
	calls     int
	prompts   []string
}

func (s *stubLLM) GenerateText(_ context.Context, prompt string, _ gemini.Params) (string, error) {
	s.calls++
	s.prompts = append(s.prompts, prompt)
	if s.calls <= s.failFirst {
		return "", eris.New("model overloaded")
	}
	return s.answer, nil
}

// stubRecorder captures history writes.
type stubRecorder struct {
	recorded []*model.AnalysisRecord
	err      error
}

func (s *stubRecorder) Record(_ context.Context, rec *model.AnalysisRecord) error {
	s.recorded = append(s.recorded, rec)
	return s.err
}

func aliceRecord() *model.AnalysisRecord {
	return &model.AnalysisRecord{
		BookMetadata: model.BookMetadata{Title: "Alice's Adventures in Wonderland", Author: "Carroll, Lewis"},
		URL:          aliceURL,
		Content:      "Down the rabbit hole.",
		Summary:      "A girl falls into a dream world.",
		Genre:        "Primary Genre: [Fantasy], Subgenres: [Children's Literature]",
	}
}

func TestRoute_NoURL(t *testing.T) {
	r := New(&stubAnalyzer{}, &stubLLM{answer: "x"}, nil)

	for _, q := range []string{"summarize", "what genre", "who is alice", ""} {
		res := r.Route(context.Background(), session.New(), q, "")
		assert.Equal(t, model.ResultError, res.Type, "query=%q", q)
		assert.Equal(t, "Please provide a Project Gutenberg URL first.", res.Content)
	}
}

func TestRoute_GenericReferenceBeatsExplicitURL(t *testing.T) {
	az := &stubAnalyzer{records: map[string]*model.AnalysisRecord{aliceURL: aliceRecord()}}
	r := New(az, &stubLLM{answer: "x"}, nil)

	sess := session.New()
	sess.Set(aliceURL, aliceRecord())

	res := r.Route(context.Background(), sess, "summarize this book", "https://www.gutenberg.org/ebooks/84")
	assert.Equal(t, model.ResultSummary, res.Type)
	assert.Equal(t, "A girl falls into a dream world.", res.Content)
	// Cache hit on the session URL: no fresh analysis.
	assert.Equal(t, 0, az.calls)
}

func TestRoute_SessionURLFallbackWithoutExplicit(t *testing.T) {
	az := &stubAnalyzer{}
	r := New(az, &stubLLM{answer: "x"}, nil)

	sess := session.New()
	sess.Set(aliceURL, aliceRecord())

	res := r.Route(context.Background(), sess, "summarize", "")
	assert.Equal(t, model.ResultSummary, res.Type)
	assert.Equal(t, 0, az.calls)
}

func TestRoute_SummaryCacheHitSkipsAnalysis(t *testing.T) {
	az := &stubAnalyzer{}
	r := New(az, &stubLLM{answer: "x"}, nil)

	sess := session.New()
	sess.Set(aliceURL, aliceRecord())

	res := r.Route(context.Background(), sess, "summarize this book", "")
	assert.Equal(t, "A girl falls into a dream world.", res.Content)
	assert.Equal(t, "Alice's Adventures in Wonderland", res.Title)
	assert.Equal(t, 0, az.calls)
}

func TestRoute_SummaryCacheMissAnalyzesAndCaches(t *testing.T) {
	fresh := aliceRecord()
	az := &stubAnalyzer{records: map[string]*model.AnalysisRecord{aliceURL: fresh}}
	hist := &stubRecorder{}
	r := New(az, &stubLLM{answer: "x"}, hist)

	sess := session.New()
	res := r.Route(context.Background(), sess, "summarize", aliceURL)

	assert.Equal(t, model.ResultSummary, res.Type)
	assert.Equal(t, "A girl falls into a dream world.", res.Content)
	assert.Equal(t, 1, az.calls)

	// Fresh result cached and recorded.
	cached, ok := sess.Analysis(aliceURL)
	require.True(t, ok)
	assert.Same(t, fresh, cached)
	require.Len(t, hist.recorded, 1)

	// Second identical query hits the cache.
	_ = r.Route(context.Background(), sess, "summarize", aliceURL)
	assert.Equal(t, 1, az.calls)
}

func TestRoute_TitleSnapshotPrecedesFreshAnalysis(t *testing.T) {
	otherURL := "https://www.gutenberg.org/ebooks/84"
	az := &stubAnalyzer{records: map[string]*model.AnalysisRecord{
		otherURL: {
			BookMetadata: model.BookMetadata{Title: "Frankenstein"},
			URL:          otherURL,
			Summary:      "A creature is made.",
			Content:      "It was a dreary night.",
		},
	}}
	r := New(az, &stubLLM{answer: "x"}, nil)

	sess := session.New()
	sess.Set(aliceURL, aliceRecord())

	// Explicit different URL, no generic reference: fresh analysis runs,
	// but the displayed title is still the session's book at call time.
	res := r.Route(context.Background(), sess, "summarize", otherURL)
	assert.Equal(t, "A creature is made.", res.Content)
	assert.Equal(t, "Alice's Adventures in Wonderland", res.Title)
	assert.Equal(t, 1, az.calls)
}

func TestRoute_TitleUnknownWithEmptySession(t *testing.T) {
	az := &stubAnalyzer{records: map[string]*model.AnalysisRecord{aliceURL: aliceRecord()}}
	r := New(az, &stubLLM{answer: "x"}, nil)

	res := r.Route(context.Background(), session.New(), "summarize", aliceURL)
	assert.Equal(t, "Unknown Title", res.Title)
}

func TestRoute_GenreIntent(t *testing.T) {
	az := &stubAnalyzer{}
	r := New(az, &stubLLM{answer: "x"}, nil)

	sess := session.New()
	sess.Set(aliceURL, aliceRecord())

	res := r.Route(context.Background(), sess, "What is the genre of this book?", "")
	assert.Equal(t, model.ResultGenre, res.Type)
	assert.Contains(t, res.Content, "Primary Genre:")
}

func TestRoute_AnalyzerRejectionInSummaryPath(t *testing.T) {
	az := &stubAnalyzer{err: eris.New("This URL does not appear to be from Project Gutenberg. Please provide a valid Project Gutenberg URL.")}
	r := New(az, &stubLLM{answer: "x"}, nil)

	res := r.Route(context.Background(), session.New(), "summarize", "https://example.com/book")
	assert.Equal(t, model.ResultSummary, res.Type)
	assert.Equal(t, "Unable to generate summary", res.Content)

	res = r.Route(context.Background(), session.New(), "genre", "https://example.com/book")
	assert.Equal(t, model.ResultGenre, res.Type)
	assert.Equal(t, "Unable to classify genre", res.Content)
}

func TestRoute_Chat(t *testing.T) {
	az := &stubAnalyzer{}
	llm := &stubLLM{answer: "She follows the White Rabbit."}
	r := New(az, llm, nil)

	sess := session.New()
	sess.Set(aliceURL, aliceRecord())

	res := r.Route(context.Background(), sess, "Who does Alice follow?", "")
	assert.Equal(t, model.ResultChat, res.Type)
	assert.Equal(t, "Who does Alice follow?", res.Query)
	assert.Equal(t, "She follows the White Rabbit.", res.Content)
	assert.Equal(t, "Alice's Adventures in Wonderland", res.Title)

	// Prompt embeds title, author, question, and content.
	require.Len(t, llm.prompts, 1)
	assert.Contains(t, llm.prompts[0], "Alice's Adventures in Wonderland")
	assert.Contains(t, llm.prompts[0], "Carroll, Lewis")
	assert.Contains(t, llm.prompts[0], "Who does Alice follow?")
	assert.Contains(t, llm.prompts[0], "Down the rabbit hole.")
}

func TestRoute_ChatRejectedURL(t *testing.T) {
	az := &stubAnalyzer{err: eris.New("This URL does not appear to be from Project Gutenberg. Please provide a valid Project Gutenberg URL.")}
	r := New(az, &stubLLM{answer: "x"}, nil)

	res := r.Route(context.Background(), session.New(), "who is the hero", "https://example.com")
	assert.Equal(t, model.ResultChat, res.Type)
	assert.Contains(t, res.Content, "Error: This URL does not appear to be from Project Gutenberg")
}

func TestRoute_ChatFailureShortContentNoRetry(t *testing.T) {
	rec := aliceRecord() // content well under the excerpt threshold
	az := &stubAnalyzer{}
	llm := &stubLLM{answer: "unused", failFirst: 1}
	r := New(az, llm, nil)

	sess := session.New()
	sess.Set(aliceURL, rec)

	res := r.Route(context.Background(), sess, "who is alice", "")
	assert.Equal(t, model.ResultChat, res.Type)
	assert.True(t, res.Degraded)
	assert.Contains(t, res.Content, "Error processing your query about 'Alice's Adventures in Wonderland':")
	// No retry for short content.
	assert.Equal(t, 1, llm.calls)
}

func TestRoute_ChatFailureLongContentRetriesWithExcerpt(t *testing.T) {
	rec := aliceRecord()
	rec.Content = strings.Repeat("#", 12000)
	az := &stubAnalyzer{}
	llm := &stubLLM{answer: "recovered answer", failFirst: 1}
	r := New(az, llm, nil)

	sess := session.New()
	sess.Set(aliceURL, rec)

	res := r.Route(context.Background(), sess, "who is alice", "")
	assert.Equal(t, "recovered answer", res.Content)
	assert.False(t, res.Degraded)
	assert.Equal(t, 2, llm.calls)

	// Retry prompt carries only an 8000-char excerpt.
	fillRun := strings.Count(llm.prompts[1], "#")
	assert.Equal(t, chatExcerptLen, fillRun)
	assert.Contains(t, llm.prompts[1], "Based on this excerpt from")
}

func TestRoute_ChatDoubleFailureApologizes(t *testing.T) {
	rec := aliceRecord()
	rec.Content = strings.Repeat("w", 12000)
	az := &stubAnalyzer{}
	llm := &stubLLM{answer: "unused", failFirst: 2}
	r := New(az, llm, nil)

	sess := session.New()
	sess.Set(aliceURL, rec)

	res := r.Route(context.Background(), sess, "who is alice", "")
	assert.True(t, res.Degraded)
	assert.Contains(t, res.Content, "I'm sorry, but I couldn't process your query")
	assert.Contains(t, res.Content, "content length limitations")
	assert.Equal(t, 2, llm.calls)
}

func TestRoute_ChatEmptyContent(t *testing.T) {
	rec := aliceRecord()
	rec.Content = ""
	az := &stubAnalyzer{}
	llm := &stubLLM{answer: "unused"}
	r := New(az, llm, nil)

	sess := session.New()
	sess.Set(aliceURL, rec)

	res := r.Route(context.Background(), sess, "who is alice", "")
	assert.Contains(t, res.Content, "No content available for URL:")
	assert.Equal(t, 0, llm.calls)
}

func TestRoute_HistoryFailureDoesNotBlock(t *testing.T) {
	az := &stubAnalyzer{records: map[string]*model.AnalysisRecord{aliceURL: aliceRecord()}}
	hist := &stubRecorder{err: eris.New("disk full")}
	r := New(az, &stubLLM{answer: "x"}, hist)

	res := r.Route(context.Background(), session.New(), "summarize", aliceURL)
	assert.Equal(t, model.ResultSummary, res.Type)
	assert.Equal(t, "A girl falls into a dream world.", res.Content)
}
