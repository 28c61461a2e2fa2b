package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/listabob/internal/core"
	"github.com/JonMunkholm/listabob/internal/logging"
)

// healthTimeout bounds the database ping of the health check.
const healthTimeout = 2 * time.Second

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	status, code := "ok", http.StatusOK
	if err := s.db.Ping(ctx); err != nil {
		logging.FromContext(r.Context()).Error("health check failed", "error", err)
		status, code = "unavailable", http.StatusServiceUnavailable
	}

	writeJSON(w, code, map[string]any{
		"status":  status,
		"imports": s.service.Limiter().Status(),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.service.Stats(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// ---------------------------------------------------------------------------
// Lists
// ---------------------------------------------------------------------------

func (s *Server) handleListLists(w http.ResponseWriter, r *http.Request) {
	favorites, err := parseBoolParam(r.URL.Query().Get("favorites"), "favorites", false)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	lists, err := s.service.ListLists(r.Context(), favorites)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lists)
}

func (s *Server) handleCreateList(w http.ResponseWriter, r *http.Request) {
	var req core.CreateListRequest
	if err := decodeJSON(w, r, maxJSONBody, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	list, err := s.service.CreateList(r.Context(), &req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, list)
}

func (s *Server) handleGetList(w http.ResponseWriter, r *http.Request) {
	list, err := s.service.GetList(r.Context(), chi.URLParam(r, "listID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleUpdateList(w http.ResponseWriter, r *http.Request) {
	var req core.UpdateListRequest
	if err := decodeJSON(w, r, maxJSONBody, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	list, err := s.service.UpdateList(r.Context(), chi.URLParam(r, "listID"), &req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleDeleteList(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteList(r.Context(), chi.URLParam(r, "listID")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
