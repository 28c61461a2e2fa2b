package core

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/listabob/internal/logging"
)

// PreviewCSV parses an upload and reports a guessed type per column.
func (s *Service) PreviewCSV(ctx context.Context, data []byte, hasHeader bool) (*CSVPreview, error) {
	log := logging.WithFields(ctx, clientLogAttrs(ctx)...)

	preview, err := PreviewCSV(data, hasHeader, s.opts.Preview)
	if err != nil {
		log.Info("csv preview rejected", "bytes", len(data), "error", err)
		return nil, err
	}

	for _, c := range preview.Columns {
		inferredColumnsTotal.WithLabelValues(string(c.GuessedType)).Inc()
	}
	log.Info("csv previewed",
		"bytes", len(data),
		"columns", len(preview.Columns),
		"rows", preview.TotalRows,
	)
	return preview, nil
}

// MaterializeCSV creates a list from CSV data in one transaction. It waits
// for an import slot first and returns ErrTooManyImports if none frees up.
func (s *Service) MaterializeCSV(ctx context.Context, req *MaterializeRequest) (*MaterializeResult, error) {
	if err := Validate(req); err != nil {
		importsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	if err := s.opts.Limiter.Acquire(ctx); err != nil {
		importsTotal.WithLabelValues("busy").Inc()
		return nil, err
	}
	defer s.opts.Limiter.Release()

	ctx, cancel := context.WithTimeout(ctx, s.opts.ImportTimeout)
	defer cancel()

	start := time.Now()
	b, fallbacks, err := BuildImportBundle(req, s.now(), s.opts.Preview.Infer.CurrencySymbols)
	if err != nil {
		importsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	log := logging.WithFields(ctx, append([]any{"list_id", b.List.ID}, clientLogAttrs(ctx)...)...)
	log.Info("import started", "columns", len(b.Columns), "rows", len(b.Items))

	if err := s.store.CreateList(ctx, b); err != nil {
		importsTotal.WithLabelValues("failed").Inc()
		log.Error("import failed", "error", err)
		return nil, fmt.Errorf("materialize list: %w", err)
	}

	importsTotal.WithLabelValues("ok").Inc()
	importRows.Observe(float64(len(b.Items)))
	importFallbacksTotal.Add(float64(fallbacks))
	importDuration.Observe(time.Since(start).Seconds())

	log.Info("import completed",
		"rows", len(b.Items),
		"cells", len(b.Cells),
		"fallbacks", fallbacks,
		"duration", time.Since(start),
	)

	return &MaterializeResult{
		ListID:         b.List.ID,
		Name:           b.List.Name,
		ColumnsCreated: len(b.Columns),
		RowsCreated:    len(b.Items),
		Fallbacks:      fallbacks,
	}, nil
}

// ExportCSV loads a list for CSV export. Write the result with WriteTo.
func (s *Service) ExportCSV(ctx context.Context, listID string, includeHeader bool) (*Export, error) {
	l, err := s.store.GetList(ctx, listID)
	if err != nil {
		exportsTotal.WithLabelValues("not_found").Inc()
		return nil, err
	}
	cols, err := s.store.ListColumns(ctx, listID)
	if err != nil {
		exportsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("list columns: %w", err)
	}
	items, err := s.store.ListItems(ctx, listID, ItemQuery{})
	if err != nil {
		exportsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("list items: %w", err)
	}
	cells, err := s.store.ListCells(ctx, listID)
	if err != nil {
		exportsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("list cells: %w", err)
	}

	exportsTotal.WithLabelValues("ok").Inc()
	logging.WithFields(ctx, append([]any{"list_id", listID}, clientLogAttrs(ctx)...)...).
		Info("csv export", "columns", len(cols), "rows", len(items))

	return NewExport(l, cols, items, cells, includeHeader), nil
}

// Templates returns built-in templates, optionally filtered by category.
func (s *Service) Templates(category string) []Template {
	return s.opts.Templates.List(category)
}

// Template returns one built-in template.
func (s *Service) Template(id string) (Template, error) {
	return s.opts.Templates.Get(id)
}

// CreateListFromTemplate creates a list with the template's columns and an
// "All Items" view. An empty name uses the template's name.
func (s *Service) CreateListFromTemplate(ctx context.Context, templateID, name string) (*ListDetail, error) {
	t, err := s.opts.Templates.Get(templateID)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = t.Name
	}

	now := s.now()
	b := &ListBundle{
		List: List{
			ID:          uuid.NewString(),
			Name:        name,
			Description: t.Description,
			Icon:        t.Icon,
			TemplateID:  t.ID,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}
	for i, tc := range t.Columns {
		cfg, err := templateConfig(tc.Config)
		if err != nil {
			return nil, fmt.Errorf("template %s column %q: %w", t.ID, tc.Name, err)
		}
		colName := tc.Name
		if colName == "" {
			colName = fmt.Sprintf("Column %d", i+1)
		}
		col, err := newColumn(b.List.ID, ColumnInput{Name: colName, Type: tc.Type, IsRequired: tc.Required, Config: cfg}, i, now)
		if err != nil {
			return nil, err
		}
		b.Columns = append(b.Columns, col)
	}
	b.Views = []View{newDefaultView(b.List.ID, defaultViewName, now)}

	if err := s.store.CreateList(ctx, b); err != nil {
		return nil, fmt.Errorf("create list from template: %w", err)
	}
	logging.WithFields(ctx, "list_id", b.List.ID, "template_id", t.ID).Info("list created from template")
	return &ListDetail{List: b.List, Columns: b.Columns, Views: b.Views}, nil
}

// templateConfig converts a YAML config mapping to a ColumnConfig.
func templateConfig(m map[string]any) (ColumnConfig, error) {
	var cfg ColumnConfig
	if len(m) == 0 {
		return cfg, nil
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return cfg, err
	}
	err = json.Unmarshal(raw, &cfg)
	return cfg, err
}
