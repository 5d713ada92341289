package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
)

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// handleStatus reports the current dictation state.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, map[string]string{"state": s.currentState()})
}

// handleStats returns today's, recent, and overall usage summaries.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.db == nil {
		http.Error(w, "history disabled", http.StatusNotFound)
		return
	}

	days := 7
	if d, err := strconv.Atoi(r.URL.Query().Get("days")); err == nil && d > 0 {
		days = d
	}

	today, err := s.db.TodayStats()
	if err != nil {
		slog.Error("querying today stats", "error", err)
		http.Error(w, "querying statistics failed", http.StatusInternalServerError)
		return
	}
	recent, err := s.db.RecentStats(days)
	if err != nil {
		slog.Error("querying recent stats", "error", err)
		http.Error(w, "querying statistics failed", http.StatusInternalServerError)
		return
	}
	overall, err := s.db.OverallStats()
	if err != nil {
		slog.Error("querying overall stats", "error", err)
		http.Error(w, "querying statistics failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{
		"today":   today,
		"recent":  recent,
		"overall": overall,
		"days":    days,
	})
}

// handleHistory serves paginated session history and per-session
// deletion.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		http.Error(w, "history disabled", http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.handleGetHistory(w, r)
	case http.MethodDelete:
		s.handleDeleteHistory(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	limit := 50
	offset := 0
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		limit = l
	}
	if o, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && o >= 0 {
		offset = o
	}

	sessions, err := s.db.RecentSessions(limit, offset)
	if err != nil {
		slog.Error("querying sessions", "error", err)
		http.Error(w, "querying history failed", http.StatusInternalServerError)
		return
	}
	total, err := s.db.SessionCount()
	if err != nil {
		slog.Error("counting sessions", "error", err)
		http.Error(w, "querying history failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{
		"sessions": sessions,
		"total":    total,
		"limit":    limit,
		"offset":   offset,
	})
}

func (s *Server) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/api/history/")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		http.Error(w, "invalid session id", http.StatusBadRequest)
		return
	}

	if err := s.db.DeleteSession(id); err != nil {
		slog.Error("deleting session", "error", err, "id", id)
		http.Error(w, "deleting session failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}
