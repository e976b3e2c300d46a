package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"weather-lookup/models"
	"weather-lookup/prefs"
	"weather-lookup/search"
)

// Searcher is the part of search.Orchestrator the server drives
type Searcher interface {
	State() search.State
	SetQuery(q string)
	Search(ctx context.Context) error
	Locate(ctx context.Context) error
	Replay(ctx context.Context, entry models.HistoryEntry) error
	Reset()
	History() []models.HistoryEntry
	ClearHistory(ctx context.Context) error
}

var _ Searcher = (*search.Orchestrator)(nil)

// Server represents the API server
type Server struct {
	searcher Searcher
	themes   *prefs.Themes
	logger   *slog.Logger
	server   *http.Server
}

// NewServer creates a new API server
func NewServer(searcher Searcher, themes *prefs.Themes, port int, allowedOrigins []string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		searcher: searcher,
		themes:   themes,
		logger:   logger.With(slog.String("component", "api")),
	}
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.routes(allowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler exposes the routed handler, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) routes(allowedOrigins []string) http.Handler {
	mux := http.NewServeMux()

	// Search state
	mux.HandleFunc("GET /api/state", s.handleGetState)
	mux.HandleFunc("PUT /api/query", s.handleSetQuery)
	mux.HandleFunc("POST /api/search", s.handleSearch)
	mux.HandleFunc("POST /api/locate", s.handleLocate)
	mux.HandleFunc("POST /api/reset", s.handleReset)

	// History
	mux.HandleFunc("GET /api/history", s.handleGetHistory)
	mux.HandleFunc("POST /api/history/replay", s.handleReplay)
	mux.HandleFunc("DELETE /api/history", s.handleClearHistory)

	// Theme
	mux.HandleFunc("GET /api/theme", s.handleGetTheme)
	mux.HandleFunc("PUT /api/theme", s.handleSetTheme)
	mux.HandleFunc("POST /api/theme/toggle", s.handleToggleTheme)

	mux.HandleFunc("GET /api/health", s.handleHealthCheck)
	mux.Handle("GET /metrics", promhttp.Handler())

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	})
	return corsHandler.Handler(mux)
}

// Start begins the API server
func (s *Server) Start() error {
	s.logger.Info("starting API server", slog.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newStateView(s.searcher.State()))
}

func (s *Server) handleSetQuery(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.searcher.SetQuery(body.Query)
	writeJSON(w, http.StatusOK, newStateView(s.searcher.State()))
}

// attempts outlive the request: the result is shared state, not a response
func attemptContext(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	err := s.searcher.Search(attemptContext(r))
	switch {
	case errors.Is(err, search.ErrQueryTooShort):
		writeError(w, http.StatusBadRequest, fmt.Sprintf("query must have at least %d characters", search.MinQueryLength))
		return
	case errors.Is(err, search.ErrBusy):
		writeError(w, http.StatusConflict, "a search is already in progress")
		return
	}
	// attempt failures are part of the state
	writeJSON(w, http.StatusOK, newStateView(s.searcher.State()))
}

func (s *Server) handleLocate(w http.ResponseWriter, r *http.Request) {
	if err := s.searcher.Locate(attemptContext(r)); errors.Is(err, search.ErrBusy) {
		writeError(w, http.StatusConflict, "a search is already in progress")
		return
	}
	writeJSON(w, http.StatusOK, newStateView(s.searcher.State()))
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.searcher.Reset()
	writeJSON(w, http.StatusOK, newStateView(s.searcher.State()))
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	entries := s.searcher.History()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
		"count":   len(entries),
	})
}

func (s *Server) handleReplay(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Index *int `json:"index"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Index == nil {
		writeError(w, http.StatusBadRequest, "index is required")
		return
	}

	entries := s.searcher.History()
	if *body.Index < 0 || *body.Index >= len(entries) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no history entry at index %d", *body.Index))
		return
	}

	if err := s.searcher.Replay(attemptContext(r), entries[*body.Index]); errors.Is(err, search.ErrBusy) {
		writeError(w, http.StatusConflict, "a search is already in progress")
		return
	}
	writeJSON(w, http.StatusOK, newStateView(s.searcher.State()))
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.searcher.ClearHistory(r.Context()); err != nil {
		s.logger.ErrorContext(r.Context(), "failed to clear history", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to clear history")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetTheme(w http.ResponseWriter, r *http.Request) {
	theme, err := s.themes.Load(r.Context())
	if err != nil {
		s.logger.WarnContext(r.Context(), "failed to load theme", slog.Any("error", err))
	}
	writeJSON(w, http.StatusOK, map[string]string{"theme": string(theme)})
}

func (s *Server) handleSetTheme(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Theme string `json:"theme"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	theme, err := prefs.ParseTheme(body.Theme)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.themes.Set(r.Context(), theme); err != nil {
		s.logger.ErrorContext(r.Context(), "failed to save theme", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to save theme")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"theme": string(theme)})
}

func (s *Server) handleToggleTheme(w http.ResponseWriter, r *http.Request) {
	theme, err := s.themes.Toggle(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "failed to toggle theme", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to save theme")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"theme": string(theme)})
}

// handleHealthCheck provides a simple health check endpoint
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
