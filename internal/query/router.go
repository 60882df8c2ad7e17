// Package query routes free-text questions about the current book to the
// analyzer or straight to the model.
package query

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/readwell-labs/bookscout/internal/model"
	"github.com/readwell-labs/bookscout/internal/session"
	"github.com/readwell-labs/bookscout/pkg/gemini"
)

// chatExcerptLen caps content on the chat retry after a failed call.
const chatExcerptLen = 8000

// noURLMessage is the one structured-error response the router produces.
const noURLMessage = "Please provide a Project Gutenberg URL first."

// BookAnalyzer is the slice of the analyze package the router needs.
type BookAnalyzer interface {
	Analyze(ctx context.Context, url string) (*model.AnalysisRecord, error)
}

// Recorder persists completed analyses. Best effort: failures are logged
// and never block a response.
type Recorder interface {
	Record(ctx context.Context, rec *model.AnalysisRecord) error
}

// Router resolves a query's target URL, classifies its intent, and
// dispatches it. The session is owned by the caller and passed in; the
// router is the session's single writer for the duration of a call.
type Router struct {
	analyzer BookAnalyzer
	llm      gemini.Client
	history  Recorder
}

// New creates a Router. history may be nil to disable persistence.
func New(analyzer BookAnalyzer, llm gemini.Client, history Recorder) *Router {
	return &Router{analyzer: analyzer, llm: llm, history: history}
}

// Route answers one query against the session. explicitURL is the caller's
// URL hint and may be empty. Route never returns an error: every outcome is
// a typed QueryResult.
func (r *Router) Route(ctx context.Context, sess *session.Session, query, explicitURL string) model.QueryResult {
	target := resolveURL(sess, query, explicitURL)
	if target == "" {
		return model.QueryResult{Type: model.ResultError, Content: noURLMessage}
	}

	// Snapshot before any fresh analysis replaces the slot: the displayed
	// title is the session's current book, even when the query targets
	// another URL.
	title := sess.Title()

	switch model.ClassifyIntent(query) {
	case model.IntentSummary:
		rec, errMsg := r.analysisFor(ctx, sess, target)
		if rec == nil {
			zap.L().Warn("summary unavailable", zap.String("url", target), zap.String("reason", errMsg))
			return model.QueryResult{Type: model.ResultSummary, Title: title, Content: "Unable to generate summary"}
		}
		return model.QueryResult{Type: model.ResultSummary, Title: title, Content: rec.Summary, Degraded: rec.Degraded}

	case model.IntentGenre:
		rec, errMsg := r.analysisFor(ctx, sess, target)
		if rec == nil {
			zap.L().Warn("genre unavailable", zap.String("url", target), zap.String("reason", errMsg))
			return model.QueryResult{Type: model.ResultGenre, Title: title, Content: "Unable to classify genre"}
		}
		return model.QueryResult{Type: model.ResultGenre, Title: title, Content: rec.Genre, Degraded: rec.Degraded}

	default:
		return r.chat(ctx, sess, title, target, query)
	}
}

// resolveURL picks the URL a query is about. Generic book references beat
// everything when a session URL exists; otherwise an absent explicit URL
// falls back to the session URL.
func resolveURL(sess *session.Session, query, explicitURL string) string {
	if model.HasGenericBookReference(query) && sess.URL() != "" {
		return sess.URL()
	}
	if explicitURL == "" && sess.URL() != "" {
		return sess.URL()
	}
	return explicitURL
}

// analysisFor returns the cached record for url or runs a fresh analysis
// and stores it. A nil record means the analyzer rejected the URL; the
// rejection text is returned alongside.
func (r *Router) analysisFor(ctx context.Context, sess *session.Session, url string) (*model.AnalysisRecord, string) {
	if rec, ok := sess.Analysis(url); ok {
		return rec, ""
	}

	rec, err := r.analyzer.Analyze(ctx, url)
	if err != nil {
		return nil, err.Error()
	}

	sess.Set(url, rec)
	r.record(ctx, rec)
	return rec, ""
}

// record appends the analysis to history when one is configured.
func (r *Router) record(ctx context.Context, rec *model.AnalysisRecord) {
	if r.history == nil {
		return
	}
	if err := r.history.Record(ctx, rec); err != nil {
		zap.L().Warn("history write failed", zap.String("url", rec.URL), zap.Error(err))
	}
}

// chat answers a free-form question over the book content, bypassing the
// analyzer's own prompts. One size-gated retry: a failed call over content
// longer than chatExcerptLen is retried once with an excerpt and a shorter
// prompt; anything else surfaces the failure as text.
func (r *Router) chat(ctx context.Context, sess *session.Session, title, target, query string) model.QueryResult {
	result := model.QueryResult{Type: model.ResultChat, Title: title, Query: query}

	rec, errMsg := r.analysisFor(ctx, sess, target)
	if rec == nil {
		result.Content = "Error: " + errMsg
		return result
	}

	if rec.Content == "" {
		result.Content = fmt.Sprintf("No content available for URL: %s", target)
		return result
	}

	promptTitle := rec.Title
	if promptTitle == "" {
		promptTitle = "Unknown Title"
	}
	promptAuthor := rec.Author
	if promptAuthor == "" {
		promptAuthor = "Unknown"
	}

	answer, err := r.llm.GenerateText(ctx, chatPrompt(promptTitle, promptAuthor, query, rec.Content), gemini.DefaultParams())
	if err == nil {
		result.Content = answer
		return result
	}

	zap.L().Warn("chat call failed",
		zap.String("url", target),
		zap.Int("content_len", len(rec.Content)),
		zap.Error(err),
	)

	if len(rec.Content) <= chatExcerptLen {
		result.Content = fmt.Sprintf("Error processing your query about '%s': %v", promptTitle, err)
		result.Degraded = true
		return result
	}

	excerpt := rec.Content[:chatExcerptLen] + "..."
	answer, err = r.llm.GenerateText(ctx, chatFallbackPrompt(promptTitle, promptAuthor, query, excerpt), gemini.DefaultParams())
	if err != nil {
		result.Content = fmt.Sprintf("I'm sorry, but I couldn't process your query about '%s' due to content length limitations. Please try asking a more specific question.", promptTitle)
		result.Degraded = true
		return result
	}

	result.Content = answer
	return result
}
