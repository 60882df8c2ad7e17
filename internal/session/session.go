// Package session holds the single-slot cache pairing the current book URL
// with its analysis. A Session belongs to exactly one caller: there is no
// locking, and sharing one instance across goroutines is the caller's bug.
// Serve mode keeps one Session (and one mutex) per connection.
package session

import "github.com/readwell-labs/bookscout/internal/model"

// Session is the mutable per-user state: the most recently analyzed URL and
// its record. Both fields are always written together, so a present
// analysis always corresponds to the current URL.
type Session struct {
	url      string
	analysis *model.AnalysisRecord
}

// New returns an empty session.
func New() *Session {
	return &Session{}
}

// Set replaces the cached slot with a fresh analysis. The previous record,
// if any, is evicted.
func (s *Session) Set(url string, rec *model.AnalysisRecord) {
	s.url = url
	s.analysis = rec
}

// URL returns the current book URL, or "" when nothing has been analyzed.
func (s *Session) URL() string {
	return s.url
}

// Analysis returns the cached record when url matches the current slot.
func (s *Session) Analysis(url string) (*model.AnalysisRecord, bool) {
	if s.analysis == nil || url != s.url {
		return nil, false
	}
	return s.analysis, true
}

// Current returns the cached record regardless of URL, when present.
func (s *Session) Current() (*model.AnalysisRecord, bool) {
	if s.analysis == nil {
		return nil, false
	}
	return s.analysis, true
}

// Title returns the cached analysis title, or the Unknown sentinel when the
// slot is empty or the cached title is blank.
func (s *Session) Title() string {
	if s.analysis == nil || s.analysis.Title == "" {
		return "Unknown Title"
	}
	return s.analysis.Title
}
