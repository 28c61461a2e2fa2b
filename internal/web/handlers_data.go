package web

// Item handlers. Values are keyed by column ID in both directions.

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/listabob/internal/core"
)

// defaultItemLimit applies when the client sends no limit.
const defaultItemLimit = 100

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	skip, err := parseIntParam(r, "skip", 0)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	limit, err := parseIntParam(r, "limit", defaultItemLimit)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	items, err := s.service.ListItems(r.Context(), chi.URLParam(r, "listID"), core.ItemQuery{Offset: skip, Limit: limit})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleRecycleBin(w http.ResponseWriter, r *http.Request) {
	items, err := s.service.RecycleBin(r.Context(), chi.URLParam(r, "listID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var req core.ItemValuesRequest
	if err := decodeJSON(w, r, maxJSONBody, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	item, err := s.service.CreateItem(r.Context(), chi.URLParam(r, "listID"), &req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	item, err := s.service.GetItem(r.Context(), chi.URLParam(r, "listID"), chi.URLParam(r, "itemID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	var req core.ItemValuesRequest
	if err := decodeJSON(w, r, maxJSONBody, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	item, err := s.service.UpdateItem(r.Context(), chi.URLParam(r, "listID"), chi.URLParam(r, "itemID"), &req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// handleDeleteItem moves an item to the recycle bin.
func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteItem(r.Context(), chi.URLParam(r, "listID"), chi.URLParam(r, "itemID")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRestoreItem(w http.ResponseWriter, r *http.Request) {
	item, err := s.service.RestoreItem(r.Context(), chi.URLParam(r, "listID"), chi.URLParam(r, "itemID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handlePurgeItem(w http.ResponseWriter, r *http.Request) {
	if err := s.service.PurgeItem(r.Context(), chi.URLParam(r, "listID"), chi.URLParam(r, "itemID")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
