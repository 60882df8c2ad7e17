package model

import "time"

// BookMetadata holds the fields scraped from a Gutenberg book page.
// Missing fields are empty strings; Language defaults to "English" when the
// page carries no language row. Only a failed page fetch produces the
// "Unknown" sentinels (see UnknownMetadata).
type BookMetadata struct {
	Title    string `json:"title"`
	Author   string `json:"author"`
	Language string `json:"language"`
	Year     string `json:"year"`
}

// UnknownMetadata is returned when the book page itself cannot be fetched
// or parsed at all.
func UnknownMetadata() BookMetadata {
	return BookMetadata{
		Title:    "Unknown Title",
		Author:   "Unknown Author",
		Language: "Unknown",
		Year:     "Unknown",
	}
}

// AnalysisRecord is the cached result of analyzing one book URL: scraped
// metadata, the (possibly sampled) content, and the model-generated summary
// and genre. Records are immutable once built; a new analysis replaces the
// previous record wholesale.
type AnalysisRecord struct {
	BookMetadata
	URL     string `json:"url"`
	Content string `json:"content"`
	Summary string `json:"summary"`
	Genre   string `json:"genre"`

	// Degraded marks records whose summary/genre hold an error message
	// instead of a real model answer.
	Degraded   bool      `json:"degraded,omitempty"`
	AnalyzedAt time.Time `json:"analyzed_at"`
}
