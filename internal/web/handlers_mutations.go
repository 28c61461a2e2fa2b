package web

// Column and view handlers.

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/listabob/internal/core"
)

type columnTypeInfo struct {
	Name    core.ColumnType `json:"name"`
	Storage string          `json:"storage"`
}

// handleColumnTypes lists the registered column types with their storage
// category.
func (s *Server) handleColumnTypes(w http.ResponseWriter, r *http.Request) {
	types := core.AllColumnTypes()
	out := make([]columnTypeInfo, len(types))
	for i, t := range types {
		out[i] = columnTypeInfo{Name: t, Storage: t.Category().String()}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleListColumns(w http.ResponseWriter, r *http.Request) {
	cols, err := s.service.ListColumns(r.Context(), chi.URLParam(r, "listID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cols)
}

func (s *Server) handleCreateColumn(w http.ResponseWriter, r *http.Request) {
	var in core.ColumnInput
	if err := decodeJSON(w, r, maxJSONBody, &in); err != nil {
		s.fail(w, r, err)
		return
	}

	col, err := s.service.CreateColumn(r.Context(), chi.URLParam(r, "listID"), &in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, col)
}

func (s *Server) handleUpdateColumn(w http.ResponseWriter, r *http.Request) {
	var req core.UpdateColumnRequest
	if err := decodeJSON(w, r, maxJSONBody, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	col, err := s.service.UpdateColumn(r.Context(), chi.URLParam(r, "listID"), chi.URLParam(r, "columnID"), &req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, col)
}

func (s *Server) handleReorderColumns(w http.ResponseWriter, r *http.Request) {
	var req core.ReorderColumnsRequest
	if err := decodeJSON(w, r, maxJSONBody, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	cols, err := s.service.ReorderColumns(r.Context(), chi.URLParam(r, "listID"), &req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cols)
}

func (s *Server) handleDeleteColumn(w http.ResponseWriter, r *http.Request) {
	err := s.service.DeleteColumn(r.Context(), chi.URLParam(r, "listID"), chi.URLParam(r, "columnID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListViews(w http.ResponseWriter, r *http.Request) {
	views, err := s.service.ListViews(r.Context(), chi.URLParam(r, "listID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleCreateView(w http.ResponseWriter, r *http.Request) {
	var req core.CreateViewRequest
	if err := decodeJSON(w, r, maxJSONBody, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	view, err := s.service.CreateView(r.Context(), chi.URLParam(r, "listID"), &req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (s *Server) handleUpdateView(w http.ResponseWriter, r *http.Request) {
	var req core.UpdateViewRequest
	if err := decodeJSON(w, r, maxJSONBody, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	view, err := s.service.UpdateView(r.Context(), chi.URLParam(r, "listID"), chi.URLParam(r, "viewID"), &req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleDeleteView(w http.ResponseWriter, r *http.Request) {
	err := s.service.DeleteView(r.Context(), chi.URLParam(r, "listID"), chi.URLParam(r, "viewID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
