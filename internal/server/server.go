// Package server exposes analysis and query routing over HTTP. Each client
// gets its own session slot, keyed by the X-Session-ID header, and access to
// a session is serialized so the single-writer assumption holds.
package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/readwell-labs/bookscout/internal/model"
	"github.com/readwell-labs/bookscout/internal/query"
	"github.com/readwell-labs/bookscout/internal/session"
)

// sessionHeader carries the client's session ID. The server issues one when
// the client has none and echoes it on every response.
const sessionHeader = "X-Session-ID"

// Server holds the shared collaborators and the per-client sessions.
type Server struct {
	analyzer query.BookAnalyzer
	router   *query.Router
	history  query.Recorder

	mu       sync.Mutex
	sessions map[string]*clientSession
}

// clientSession serializes all access to one session slot.
type clientSession struct {
	mu   sync.Mutex
	sess *session.Session
}

// New creates a Server. history may be nil.
func New(analyzer query.BookAnalyzer, router *query.Router, history query.Recorder) *Server {
	return &Server{
		analyzer: analyzer,
		router:   router,
		history:  history,
		sessions: make(map[string]*clientSession),
	}
}

// Handler builds the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Accept", "Content-Type", sessionHeader},
		ExposedHeaders: []string{sessionHeader},
	}))
	r.Use(requestLogger)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/analyze", s.handleAnalyze)
	r.Post("/query", s.handleQuery)

	return r
}

// clientFor returns the session for the request's session ID, creating one
// (with a fresh ID) when the client has none. The ID used is returned so
// handlers can echo it.
func (s *Server) clientFor(r *http.Request) (string, *clientSession) {
	id := r.Header.Get(sessionHeader)

	s.mu.Lock()
	defer s.mu.Unlock()

	if id == "" {
		id = uuid.New().String()
	}
	cs, ok := s.sessions[id]
	if !ok {
		cs = &clientSession{sess: session.New()}
		s.sessions[id] = cs
	}
	return id, cs
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.URL == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "url is required"})
		return
	}

	id, cs := s.clientFor(r)
	w.Header().Set(sessionHeader, id)

	cs.mu.Lock()
	defer cs.mu.Unlock()

	rec, err := s.analyzer.Analyze(r.Context(), req.URL)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	cs.sess.Set(req.URL, rec)
	if s.history != nil {
		if herr := s.history.Record(r.Context(), rec); herr != nil {
			zap.L().Warn("history write failed", zap.String("url", req.URL), zap.Error(herr))
		}
	}

	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
		URL   string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Query == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query is required"})
		return
	}

	id, cs := s.clientFor(r)
	w.Header().Set(sessionHeader, id)

	cs.mu.Lock()
	defer cs.mu.Unlock()

	result := s.router.Route(r.Context(), cs.sess, req.Query, req.URL)

	status := http.StatusOK
	if result.Type == model.ResultError {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, result)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// requestLogger logs each request with its duration.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		zap.L().Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
