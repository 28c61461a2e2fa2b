package core

import (
	"context"
	"time"
)

// List is a user-defined collection of typed columns and rows.
type List struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	Color       string    `json:"color"`
	IsFavorite  bool      `json:"is_favorite"`
	TemplateID  string    `json:"template_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Column is a typed field definition within a list.
type Column struct {
	ID         string       `json:"id"`
	ListID     string       `json:"list_id"`
	Name       string       `json:"name"`
	Type       ColumnType   `json:"column_type"`
	Position   int          `json:"position"`
	IsRequired bool         `json:"is_required"`
	Config     ColumnConfig `json:"config"`
	CreatedAt  time.Time    `json:"created_at"`
}

// ViewType is the presentation of a view.
type ViewType string

const (
	ViewGrid     ViewType = "grid"
	ViewGallery  ViewType = "gallery"
	ViewCalendar ViewType = "calendar"
	ViewBoard    ViewType = "board"
)

// View is a saved presentation of a list. Config is free-form settings
// owned by the client (sorts, filters, hidden columns).
type View struct {
	ID        string         `json:"id"`
	ListID    string         `json:"list_id"`
	Name      string         `json:"name"`
	ViewType  ViewType       `json:"view_type"`
	Config    map[string]any `json:"config"`
	IsDefault bool           `json:"is_default"`
	Position  int            `json:"position"`
	CreatedAt time.Time      `json:"created_at"`
}

// Item is one row of a list. DeletedAt is set while the item sits in the
// recycle bin; its cells are kept until purge.
type Item struct {
	ID        string     `json:"id"`
	ListID    string     `json:"list_id"`
	Position  int        `json:"position"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// Cell is the stored value of one item in one column.
type Cell struct {
	ItemID   string
	ColumnID string
	Value    StoredValue
}

// ListBundle is everything needed to create a list in one transaction.
type ListBundle struct {
	List    List
	Columns []Column
	Views   []View
	Items   []Item
	Cells   []Cell
}

// ItemQuery selects items of a list. Limit 0 means no limit.
type ItemQuery struct {
	Deleted bool
	Offset  int
	Limit   int
}

// Stats holds row counts across the whole store and the database size in
// MiB, rounded to two decimals.
type Stats struct {
	TotalLists     int64   `json:"total_lists"`
	TotalItems     int64   `json:"total_items"`
	TotalColumns   int64   `json:"total_columns"`
	TotalViews     int64   `json:"total_views"`
	TotalValues    int64   `json:"total_values"`
	DatabaseSizeMB float64 `json:"database_size_mb"`
}

// Store is the persistence boundary. Implementations return errors wrapping
// ErrNotFound for missing rows. Columns, views and items come back ordered
// by position.
type Store interface {
	CreateList(ctx context.Context, b *ListBundle) error
	GetList(ctx context.Context, listID string) (List, error)
	ListLists(ctx context.Context, favoritesOnly bool) ([]List, error)
	UpdateList(ctx context.Context, l List) error
	DeleteList(ctx context.Context, listID string) error

	ListColumns(ctx context.Context, listID string) ([]Column, error)
	CreateColumn(ctx context.Context, c Column) error
	UpdateColumn(ctx context.Context, c Column) error
	ReorderColumns(ctx context.Context, listID string, columnIDs []string) error
	DeleteColumn(ctx context.Context, listID, columnID string) error

	ListViews(ctx context.Context, listID string) ([]View, error)
	CreateView(ctx context.Context, v View) error
	UpdateView(ctx context.Context, v View) error
	DeleteView(ctx context.Context, listID, viewID string) error

	ListItems(ctx context.Context, listID string, q ItemQuery) ([]Item, error)
	GetItem(ctx context.Context, listID, itemID string) (Item, error)
	NextItemPosition(ctx context.Context, listID string) (int, error)
	CreateItem(ctx context.Context, item Item, cells []Cell) error
	UpsertCells(ctx context.Context, itemID string, cells []Cell) error
	ItemCells(ctx context.Context, itemID string) ([]Cell, error)
	ListCells(ctx context.Context, listID string) ([]Cell, error)
	SoftDeleteItem(ctx context.Context, listID, itemID string, at time.Time) error
	RestoreItem(ctx context.Context, listID, itemID string) error
	PurgeItem(ctx context.Context, listID, itemID string) error
	PurgeDeletedBefore(ctx context.Context, cutoff time.Time) (int64, error)

	Stats(ctx context.Context) (Stats, error)
	Close() error
}
