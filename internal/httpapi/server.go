// Package httpapi is the thin HTTP facade in front of a
// cordsearch.Engine: request dispatch, JSON encoding, and CORS —
// none of which are part of the engine's invariant surface, matching
// the module boundary that treats the wire protocol as an external
// collaborator.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/wizenheimer/cordsearch"
)

// Server wires a cordsearch.Engine to net/http handlers, mirroring the
// original engine's flat handler-per-route layout.
type Server struct {
	engine   *cordsearch.Engine
	admin    *cordsearch.AdminAuth
	feedback *cordsearch.FeedbackLog
	stats    *cordsearch.Stats
	log      *slog.Logger
	mux      *http.ServeMux
}

// NewServer builds a Server ready to be used as an http.Handler.
func NewServer(engine *cordsearch.Engine, admin *cordsearch.AdminAuth, feedback *cordsearch.FeedbackLog, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		engine:   engine,
		admin:    admin,
		feedback: feedback,
		stats:    &cordsearch.Stats{},
		log:      log,
		mux:      http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		writeCORS(w)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeCORS(w)
	s.mux.ServeHTTP(w, r)
}

func writeCORS(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
}

func (s *Server) routes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.HandleFunc("/api/search", s.handleSearch)
	s.mux.HandleFunc("/api/suggest", s.handleSuggest)
	s.mux.HandleFunc("/api/add_document", s.handleAddDocument)
	s.mux.HandleFunc("/api/reload", s.handleReload)
	s.mux.HandleFunc("/api/stats", s.handleStats)
	s.mux.HandleFunc("/api/feedback", s.handleFeedback)
	s.mux.HandleFunc("/api/ai_overview", s.handleAIOverview)
	s.mux.HandleFunc("/api/ai_summary", s.handleAISummary)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func statusForErr(err error) int {
	switch {
	case errors.Is(err, cordsearch.ErrBadInput):
		return http.StatusBadRequest
	case errors.Is(err, cordsearch.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, cordsearch.ErrExternal):
		return http.StatusBadGateway
	case errors.Is(err, cordsearch.ErrCorruption), errors.Is(err, cordsearch.ErrIOError):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "segments": s.engine.NumSegments()})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeError(w, http.StatusBadRequest, "missing q param")
		return
	}
	k := 10
	if ks := r.URL.Query().Get("k"); ks != "" {
		if v, err := strconv.Atoi(ks); err == nil {
			k = v
		}
	}

	start := time.Now()
	s.stats.IncSearch()
	result, metas, err := s.engine.Search(q, k)
	if err != nil {
		writeError(w, statusForErr(err), err.Error())
		return
	}
	if result.FromCache {
		s.stats.IncCacheHit()
	} else {
		s.stats.IncCacheMiss()
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"query":         q,
		"k":             k,
		"total_found":   result.TotalFound,
		"hits":          result.Hits,
		"metadata":      metas,
		"from_cache":    result.FromCache,
		"search_ms":     time.Since(start).Milliseconds(),
		"total_time_ms": time.Since(start).Milliseconds(),
	})
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	limit := 10
	if ls := r.URL.Query().Get("limit"); ls != "" {
		if v, err := strconv.Atoi(ls); err == nil {
			limit = v
		}
	}
	s.stats.IncSuggest()
	writeJSON(w, http.StatusOK, map[string]any{"suggestions": s.engine.Suggest(q, limit)})
}

type addDocumentRequest struct {
	CordUID string   `json:"cord_uid"`
	Title   string   `json:"title"`
	Tokens  []string `json:"tokens"`
}

func (s *Server) handleAddDocument(w http.ResponseWriter, r *http.Request) {
	if err := s.admin.CheckErr(r.Header.Get("Authorization")); err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	var req addDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	s.stats.IncAppend()
	name, err := s.engine.AppendDocument(r.Context(), cordsearch.TokenDoc{
		CordUID: req.CordUID, Title: req.Title, Tokens: req.Tokens,
	})
	if err != nil {
		writeError(w, statusForErr(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"segment": name})
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if err := s.admin.CheckErr(r.Header.Get("Authorization")); err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()
	if err := s.engine.Reload(ctx); err != nil {
		writeError(w, statusForErr(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "segments": s.engine.NumSegments()})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.stats.Snapshot())
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var entry cordsearch.FeedbackEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := s.feedback.Append(entry); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleAIOverview(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeError(w, http.StatusBadRequest, "missing q param")
		return
	}
	s.stats.IncAIOverview()
	text, fromCache, err := s.engine.AIOverview(r.Context(), q)
	if err != nil {
		writeError(w, statusForErr(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"overview": text, "from_cache": fromCache})
}

func (s *Server) handleAISummary(w http.ResponseWriter, r *http.Request) {
	uid := r.URL.Query().Get("cord_uid")
	if uid == "" {
		writeError(w, http.StatusBadRequest, "missing cord_uid param")
		return
	}
	s.stats.IncAISummary()
	text, fromCache, err := s.engine.AISummary(r.Context(), uid)
	if err != nil {
		writeError(w, statusForErr(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"summary": text, "from_cache": fromCache})
}
