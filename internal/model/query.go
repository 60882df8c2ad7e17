package model

import "strings"

// ResultType classifies a routed query response.
type ResultType string

const (
	ResultSummary ResultType = "summary"
	ResultGenre   ResultType = "genre"
	ResultChat    ResultType = "chat"
	ResultError   ResultType = "error"
)

// Intent is the classified purpose of a free-text query.
type Intent string

const (
	IntentSummary Intent = "summary"
	IntentGenre   Intent = "genre"
	IntentChat    Intent = "chat"
)

// ClassifyIntent maps a raw query to an intent by case-insensitive substring
// tests. Order matters: summary keywords win over genre keywords, everything
// else is chat.
func ClassifyIntent(query string) Intent {
	q := strings.ToLower(query)
	switch {
	case strings.Contains(q, "summarize") || strings.Contains(q, "summary"):
		return IntentSummary
	case strings.Contains(q, "genre") || strings.Contains(q, "classify"):
		return IntentGenre
	default:
		return IntentChat
	}
}

// GenericBookReferences are phrases that implicitly mean the session's
// current book.
var GenericBookReferences = []string{"the book", "this book", "current book"}

// HasGenericBookReference reports whether the query refers to "the book"
// rather than naming a URL.
func HasGenericBookReference(query string) bool {
	q := strings.ToLower(query)
	for _, ref := range GenericBookReferences {
		if strings.Contains(q, ref) {
			return true
		}
	}
	return false
}

// QueryResult is the typed response for one routed query. Created fresh per
// query, never persisted.
type QueryResult struct {
	Type     ResultType `json:"type"`
	Title    string     `json:"title,omitempty"`
	Content  string     `json:"content"`
	Query    string     `json:"query,omitempty"` // chat only
	Degraded bool       `json:"degraded,omitempty"`
}
