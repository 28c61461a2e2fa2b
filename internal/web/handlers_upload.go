package web

// CSV import and export handlers.

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/listabob/internal/core"
	"github.com/JonMunkholm/listabob/internal/logging"
)

// multipartOverhead is allowed on top of the file size for form fields and
// part headers.
const multipartOverhead = 64 << 10

// handlePreviewCSV infers column types for an uploaded CSV file.
// Form fields: file (required, *.csv), has_header_row (default true).
func (s *Server) handlePreviewCSV(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.fail(w, r, fmt.Errorf("%w: limit is %d bytes", core.ErrFileTooLarge, maxSize))
			return
		}
		s.fail(w, r, core.NewValidationError("no file provided: %v", err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.fail(w, r, core.NewValidationError("no file provided"))
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".csv") {
		s.fail(w, r, &core.ValidationError{Field: "file", Value: header.Filename, Message: "only csv files are accepted"})
		return
	}

	hasHeader, err := parseBoolParam(r.FormValue("has_header_row"), "has_header_row", true)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	data, err := core.ReadUpload(file, maxSize)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	preview, err := s.service.PreviewCSV(r.Context(), data, hasHeader)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

// handleMaterializeCSV creates a list from previewed columns and rows.
func (s *Server) handleMaterializeCSV(w http.ResponseWriter, r *http.Request) {
	var req core.MaterializeRequest
	// JSON rows are larger than the CSV they came from.
	if err := decodeJSON(w, r, 4*s.cfg.Import.MaxFileSize, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	result, err := s.service.MaterializeCSV(r.Context(), &req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// handleExportCSV streams a list as a CSV attachment.
// Query: include_header (default true).
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	includeHeader, err := parseBoolParam(r.URL.Query().Get("include_header"), "include_header", true)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	export, err := s.service.ExportCSV(r.Context(), chi.URLParam(r, "listID"), includeHeader)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": export.Filename}))
	if _, err := export.WriteTo(w); err != nil {
		logging.FromContext(r.Context()).Error("csv export write failed", "error", err)
	}
}
