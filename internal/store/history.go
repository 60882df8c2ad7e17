// Package store persists a history of completed book analyses so past
// results can be listed and reused across runs.
package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/readwell-labs/bookscout/internal/model"
)

// History stores analysis records in SQLite.
type History struct {
	db *sql.DB
}

// Open opens (or creates) the history database at path and configures WAL
// mode.
func Open(path string) (*History, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "store: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "store: exec %s", pragma)
		}
	}
	return &History{db: db}, nil
}

const migration = `
CREATE TABLE IF NOT EXISTS analyses (
	id          TEXT PRIMARY KEY,
	url         TEXT NOT NULL,
	title       TEXT NOT NULL,
	author      TEXT NOT NULL,
	language    TEXT NOT NULL,
	year        TEXT NOT NULL,
	summary     TEXT NOT NULL,
	genre       TEXT NOT NULL,
	degraded    INTEGER NOT NULL DEFAULT 0,
	analyzed_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_analyses_url ON analyses(url);
CREATE INDEX IF NOT EXISTS idx_analyses_analyzed_at ON analyses(analyzed_at);
`

// Migrate creates the schema.
func (h *History) Migrate(ctx context.Context) error {
	_, err := h.db.ExecContext(ctx, migration)
	return eris.Wrap(err, "store: migrate")
}

// Close closes the database.
func (h *History) Close() error {
	return h.db.Close()
}

// Record appends one analysis. Content is deliberately not stored: book
// text is refetched on demand, only the derived fields are kept.
func (h *History) Record(ctx context.Context, rec *model.AnalysisRecord) error {
	analyzedAt := rec.AnalyzedAt
	if analyzedAt.IsZero() {
		analyzedAt = time.Now().UTC()
	}

	_, err := h.db.ExecContext(ctx,
		`INSERT INTO analyses (id, url, title, author, language, year, summary, genre, degraded, analyzed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), rec.URL, rec.Title, rec.Author, rec.Language, rec.Year,
		rec.Summary, rec.Genre, boolToInt(rec.Degraded), analyzedAt,
	)
	return eris.Wrapf(err, "store: insert analysis %s", rec.URL)
}

// List returns the most recent analyses, newest first.
func (h *History) List(ctx context.Context, limit int) ([]model.AnalysisRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := h.db.QueryContext(ctx,
		`SELECT url, title, author, language, year, summary, genre, degraded, analyzed_at
		 FROM analyses ORDER BY analyzed_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "store: list analyses")
	}
	defer rows.Close()

	var out []model.AnalysisRecord
	for rows.Next() {
		var rec model.AnalysisRecord
		var degraded int
		if err := rows.Scan(&rec.URL, &rec.Title, &rec.Author, &rec.Language, &rec.Year,
			&rec.Summary, &rec.Genre, &degraded, &rec.AnalyzedAt); err != nil {
			return nil, eris.Wrap(err, "store: scan analysis")
		}
		rec.Degraded = degraded != 0
		out = append(out, rec)
	}
	return out, eris.Wrap(rows.Err(), "store: list analyses iterate")
}

// Latest returns the most recent analysis, if any.
func (h *History) Latest(ctx context.Context) (*model.AnalysisRecord, bool, error) {
	recs, err := h.List(ctx, 1)
	if err != nil {
		return nil, false, err
	}
	if len(recs) == 0 {
		return nil, false, nil
	}
	return &recs[0], true, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
