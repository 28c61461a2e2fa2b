package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DefaultImportTimeout bounds a single materialization.
const DefaultImportTimeout = 5 * time.Minute

// Options configures a Service. Zero fields take defaults.
type Options struct {
	Preview       PreviewOptions
	ImportTimeout time.Duration
	Limiter       *ImportLimiter
	Templates     *TemplateCatalog

	// Now supplies the clock for timestamps and default resolution.
	Now func() time.Time
}

// Service implements list, column, view and item operations plus the CSV
// import and export pipelines on top of a Store.
type Service struct {
	store Store
	opts  Options
}

// NewService creates a Service over store.
func NewService(store Store, opts Options) *Service {
	if opts.Preview.SampleRows <= 0 {
		opts.Preview.SampleRows = 10
	}
	if opts.Preview.SampleValues <= 0 {
		opts.Preview.SampleValues = 5
	}
	if opts.Preview.Infer.CurrencySymbols == "" {
		opts.Preview.Infer.CurrencySymbols = DefaultCurrencySymbols
	}
	if opts.ImportTimeout <= 0 {
		opts.ImportTimeout = DefaultImportTimeout
	}
	if opts.Limiter == nil {
		opts.Limiter = NewImportLimiter(DefaultMaxConcurrentImports, DefaultImportWait)
	}
	if opts.Templates == nil {
		opts.Templates = BuiltinTemplates()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{store: store, opts: opts}
}

// Limiter returns the import limiter, for draining on shutdown.
func (s *Service) Limiter() *ImportLimiter { return s.opts.Limiter }

func (s *Service) now() time.Time { return s.opts.Now().UTC() }

// ListDetail is a list with its columns and views.
type ListDetail struct {
	List
	Columns []Column `json:"columns"`
	Views   []View   `json:"views"`
}

// ItemRecord is an item with decoded values keyed by column ID.
type ItemRecord struct {
	Item
	Values map[string]any `json:"values"`
}

// ---------------------------------------------------------------------------
// Lists
// ---------------------------------------------------------------------------

// CreateList creates a list with optional columns and an "All Items" view.
func (s *Service) CreateList(ctx context.Context, req *CreateListRequest) (*ListDetail, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}

	now := s.now()
	b := &ListBundle{
		List: List{
			ID:          uuid.NewString(),
			Name:        req.Name,
			Description: req.Description,
			Icon:        req.Icon,
			Color:       req.Color,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}
	for i, in := range req.Columns {
		col, err := newColumn(b.List.ID, in, i, now)
		if err != nil {
			return nil, err
		}
		b.Columns = append(b.Columns, col)
	}
	b.Views = []View{newDefaultView(b.List.ID, defaultViewName, now)}

	if err := s.store.CreateList(ctx, b); err != nil {
		return nil, fmt.Errorf("create list: %w", err)
	}
	return &ListDetail{List: b.List, Columns: b.Columns, Views: b.Views}, nil
}

// GetList returns a list with its columns and views.
func (s *Service) GetList(ctx context.Context, listID string) (*ListDetail, error) {
	l, err := s.store.GetList(ctx, listID)
	if err != nil {
		return nil, err
	}
	cols, err := s.store.ListColumns(ctx, listID)
	if err != nil {
		return nil, fmt.Errorf("list columns: %w", err)
	}
	views, err := s.store.ListViews(ctx, listID)
	if err != nil {
		return nil, fmt.Errorf("list views: %w", err)
	}
	return &ListDetail{List: l, Columns: cols, Views: views}, nil
}

// ListLists returns lists, newest first.
func (s *Service) ListLists(ctx context.Context, favoritesOnly bool) ([]List, error) {
	return s.store.ListLists(ctx, favoritesOnly)
}

// UpdateList applies the non-nil fields of req.
func (s *Service) UpdateList(ctx context.Context, listID string, req *UpdateListRequest) (*List, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	l, err := s.store.GetList(ctx, listID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		l.Name = *req.Name
	}
	if req.Description != nil {
		l.Description = *req.Description
	}
	if req.Icon != nil {
		l.Icon = *req.Icon
	}
	if req.Color != nil {
		l.Color = *req.Color
	}
	if req.IsFavorite != nil {
		l.IsFavorite = *req.IsFavorite
	}
	l.UpdatedAt = s.now()

	if err := s.store.UpdateList(ctx, l); err != nil {
		return nil, fmt.Errorf("update list: %w", err)
	}
	return &l, nil
}

// DeleteList removes a list and everything in it.
func (s *Service) DeleteList(ctx context.Context, listID string) error {
	return s.store.DeleteList(ctx, listID)
}

// Stats returns store-wide counts.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	return s.store.Stats(ctx)
}

// ---------------------------------------------------------------------------
// Columns
// ---------------------------------------------------------------------------

// ListColumns returns a list's columns by position.
func (s *Service) ListColumns(ctx context.Context, listID string) ([]Column, error) {
	if _, err := s.store.GetList(ctx, listID); err != nil {
		return nil, err
	}
	return s.store.ListColumns(ctx, listID)
}

// CreateColumn appends a column to a list.
func (s *Service) CreateColumn(ctx context.Context, listID string, in *ColumnInput) (*Column, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}
	cols, err := s.ListColumns(ctx, listID)
	if err != nil {
		return nil, err
	}

	pos := 0
	for _, c := range cols {
		if c.Position >= pos {
			pos = c.Position + 1
		}
	}

	col, err := newColumn(listID, *in, pos, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateColumn(ctx, col); err != nil {
		return nil, fmt.Errorf("create column: %w", err)
	}
	return &col, nil
}

// UpdateColumn applies the non-nil fields of req. Changing the type leaves
// stored cells as they are; decode falls back where slots differ.
func (s *Service) UpdateColumn(ctx context.Context, listID, columnID string, req *UpdateColumnRequest) (*Column, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	col, err := s.findColumn(ctx, listID, columnID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		col.Name = *req.Name
	}
	if req.Type != nil {
		col.Type = *req.Type
	}
	if req.IsRequired != nil {
		col.IsRequired = *req.IsRequired
	}
	if req.Config != nil {
		col.Config = *req.Config
	}

	if err := s.store.UpdateColumn(ctx, col); err != nil {
		return nil, fmt.Errorf("update column: %w", err)
	}
	return &col, nil
}

// ReorderColumns assigns positions in the given order.
func (s *Service) ReorderColumns(ctx context.Context, listID string, req *ReorderColumnsRequest) ([]Column, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	cols, err := s.ListColumns(ctx, listID)
	if err != nil {
		return nil, err
	}
	if err := checkPermutation(cols, req.ColumnIDs); err != nil {
		return nil, err
	}
	if err := s.store.ReorderColumns(ctx, listID, req.ColumnIDs); err != nil {
		return nil, fmt.Errorf("reorder columns: %w", err)
	}
	return s.store.ListColumns(ctx, listID)
}

// checkPermutation requires ids to name every column of the list exactly once,
// so positions stay unique.
func checkPermutation(cols []Column, ids []string) error {
	if len(ids) != len(cols) {
		return &ValidationError{
			Field:   "column_ids",
			Message: fmt.Sprintf("must list all %d columns, got %d", len(cols), len(ids)),
		}
	}
	known := make(map[string]bool, len(cols))
	for _, c := range cols {
		known[c.ID] = true
	}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if !known[id] {
			return &ValidationError{Field: "column_ids", Value: id, Message: "unknown column"}
		}
		if seen[id] {
			return &ValidationError{Field: "column_ids", Value: id, Message: "duplicate column"}
		}
		seen[id] = true
	}
	return nil
}

// DeleteColumn removes a column and its cells.
func (s *Service) DeleteColumn(ctx context.Context, listID, columnID string) error {
	return s.store.DeleteColumn(ctx, listID, columnID)
}

func (s *Service) findColumn(ctx context.Context, listID, columnID string) (Column, error) {
	cols, err := s.ListColumns(ctx, listID)
	if err != nil {
		return Column{}, err
	}
	for _, c := range cols {
		if c.ID == columnID {
			return c, nil
		}
	}
	return Column{}, NotFoundError("column", columnID)
}

// ---------------------------------------------------------------------------
// Views
// ---------------------------------------------------------------------------

// ListViews returns a list's views by position.
func (s *Service) ListViews(ctx context.Context, listID string) ([]View, error) {
	if _, err := s.store.GetList(ctx, listID); err != nil {
		return nil, err
	}
	return s.store.ListViews(ctx, listID)
}

// CreateView appends a view.
func (s *Service) CreateView(ctx context.Context, listID string, req *CreateViewRequest) (*View, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	views, err := s.ListViews(ctx, listID)
	if err != nil {
		return nil, err
	}

	v := View{
		ID:        uuid.NewString(),
		ListID:    listID,
		Name:      req.Name,
		ViewType:  req.ViewType,
		Config:    req.Config,
		IsDefault: len(views) == 0,
		Position:  len(views),
		CreatedAt: s.now(),
	}
	if err := s.store.CreateView(ctx, v); err != nil {
		return nil, fmt.Errorf("create view: %w", err)
	}
	return &v, nil
}

// UpdateView applies the non-nil fields of req. Marking a view as default
// clears the flag on the list's other views; the default view cannot be
// unmarked directly.
func (s *Service) UpdateView(ctx context.Context, listID, viewID string, req *UpdateViewRequest) (*View, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	views, err := s.ListViews(ctx, listID)
	if err != nil {
		return nil, err
	}

	for _, v := range views {
		if v.ID != viewID {
			continue
		}
		if req.Name != nil {
			v.Name = *req.Name
		}
		if req.Config != nil {
			v.Config = req.Config
		}
		if req.IsDefault != nil {
			if v.IsDefault && !*req.IsDefault {
				return nil, &ValidationError{
					Field:   "is_default",
					Value:   viewID,
					Message: "mark another view as default instead",
				}
			}
			v.IsDefault = *req.IsDefault
		}
		if err := s.store.UpdateView(ctx, v); err != nil {
			return nil, fmt.Errorf("update view: %w", err)
		}
		return &v, nil
	}
	return nil, NotFoundError("view", viewID)
}

// DeleteView removes a view. The only remaining default view cannot be
// deleted.
func (s *Service) DeleteView(ctx context.Context, listID, viewID string) error {
	views, err := s.ListViews(ctx, listID)
	if err != nil {
		return err
	}
	for _, v := range views {
		if v.ID != viewID {
			continue
		}
		if v.IsDefault && len(views) <= 1 {
			return &ValidationError{Field: "view", Value: viewID, Message: "cannot delete the only view"}
		}
		return s.store.DeleteView(ctx, listID, viewID)
	}
	return NotFoundError("view", viewID)
}
