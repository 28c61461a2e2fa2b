package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleListTemplates returns the built-in templates, optionally filtered
// by ?category=.
func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Templates(r.URL.Query().Get("category")))
}

func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	t, err := s.service.Template(chi.URLParam(r, "templateID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// handleCreateFromTemplate creates a list from a template. ?name= overrides
// the template's name.
func (s *Server) handleCreateFromTemplate(w http.ResponseWriter, r *http.Request) {
	list, err := s.service.CreateListFromTemplate(r.Context(), chi.URLParam(r, "templateID"), r.URL.Query().Get("name"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, list)
}
