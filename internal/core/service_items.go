package core

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// ListItems returns items with decoded values. q.Deleted selects the
// recycle bin instead of live items.
func (s *Service) ListItems(ctx context.Context, listID string, q ItemQuery) ([]ItemRecord, error) {
	cols, err := s.ListColumns(ctx, listID)
	if err != nil {
		return nil, err
	}
	items, err := s.store.ListItems(ctx, listID, q)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	cells, err := s.store.ListCells(ctx, listID)
	if err != nil {
		return nil, fmt.Errorf("list cells: %w", err)
	}

	byItem := make(map[string][]Cell, len(items))
	for _, c := range cells {
		byItem[c.ItemID] = append(byItem[c.ItemID], c)
	}

	types := typesByColumnID(cols)
	out := make([]ItemRecord, len(items))
	for i, it := range items {
		out[i] = decodeItem(it, byItem[it.ID], types)
	}
	return out, nil
}

// GetItem returns one item with decoded values.
func (s *Service) GetItem(ctx context.Context, listID, itemID string) (*ItemRecord, error) {
	cols, err := s.ListColumns(ctx, listID)
	if err != nil {
		return nil, err
	}
	return s.loadItem(ctx, listID, itemID, typesByColumnID(cols))
}

// CreateItem adds an item. Values are keyed by column ID; unknown keys are
// ignored. Columns without a supplied value get their resolved default.
// A value that does not fit a numeric column is a *ConversionError.
func (s *Service) CreateItem(ctx context.Context, listID string, req *ItemValuesRequest) (*ItemRecord, error) {
	cols, err := s.ListColumns(ctx, listID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	item := Item{
		ID:        uuid.NewString(),
		ListID:    listID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if item.Position, err = s.store.NextItemPosition(ctx, listID); err != nil {
		return nil, fmt.Errorf("next item position: %w", err)
	}

	var cells []Cell
	for _, col := range cols {
		value, supplied := req.Values[col.ID]
		if !supplied && col.Config.DefaultValue != nil {
			value = ResolveDefault(col.Config.DefaultValue, col.Type, now)
			supplied = true
		}
		if col.IsRequired && (!supplied || isBlank(value)) {
			return nil, &ValidationError{Field: col.Name, Message: "required field is empty"}
		}
		if !supplied {
			continue
		}

		v, err := Encode(value, col.Type)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", col.Name, err)
		}
		cells = append(cells, Cell{ItemID: item.ID, ColumnID: col.ID, Value: v})
	}

	if err := s.store.CreateItem(ctx, item, cells); err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}
	return s.loadItem(ctx, listID, item.ID, typesByColumnID(cols))
}

// UpdateItem writes the supplied values. A null value clears the cell.
func (s *Service) UpdateItem(ctx context.Context, listID, itemID string, req *ItemValuesRequest) (*ItemRecord, error) {
	cols, err := s.ListColumns(ctx, listID)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.GetItem(ctx, listID, itemID); err != nil {
		return nil, err
	}

	var cells []Cell
	for _, col := range cols {
		value, ok := req.Values[col.ID]
		if !ok {
			continue
		}
		v, err := Encode(value, col.Type)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", col.Name, err)
		}
		cells = append(cells, Cell{ItemID: itemID, ColumnID: col.ID, Value: v})
	}

	if err := s.store.UpsertCells(ctx, itemID, cells); err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	return s.loadItem(ctx, listID, itemID, typesByColumnID(cols))
}

// DeleteItem moves an item to the recycle bin. Its cells are kept.
func (s *Service) DeleteItem(ctx context.Context, listID, itemID string) error {
	return s.store.SoftDeleteItem(ctx, listID, itemID, s.now())
}

// RestoreItem takes an item out of the recycle bin.
func (s *Service) RestoreItem(ctx context.Context, listID, itemID string) (*ItemRecord, error) {
	if err := s.store.RestoreItem(ctx, listID, itemID); err != nil {
		return nil, err
	}
	return s.GetItem(ctx, listID, itemID)
}

// PurgeItem removes an item and its cells for good.
func (s *Service) PurgeItem(ctx context.Context, listID, itemID string) error {
	return s.store.PurgeItem(ctx, listID, itemID)
}

// RecycleBin returns soft-deleted items.
func (s *Service) RecycleBin(ctx context.Context, listID string) ([]ItemRecord, error) {
	return s.ListItems(ctx, listID, ItemQuery{Deleted: true})
}

func (s *Service) loadItem(ctx context.Context, listID, itemID string, types map[string]ColumnType) (*ItemRecord, error) {
	it, err := s.store.GetItem(ctx, listID, itemID)
	if err != nil {
		return nil, err
	}
	cells, err := s.store.ItemCells(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("item cells: %w", err)
	}
	rec := decodeItem(it, cells, types)
	return &rec, nil
}

func typesByColumnID(cols []Column) map[string]ColumnType {
	m := make(map[string]ColumnType, len(cols))
	for _, c := range cols {
		m[c.ID] = c.Type
	}
	return m
}

// decodeItem decodes cells; cells of unknown columns read as text.
func decodeItem(it Item, cells []Cell, types map[string]ColumnType) ItemRecord {
	rec := ItemRecord{Item: it, Values: make(map[string]any, len(cells))}
	for _, c := range cells {
		t, ok := types[c.ColumnID]
		if !ok {
			t = TypeText
		}
		rec.Values[c.ColumnID] = Decode(c.Value, t)
	}
	return rec
}

func isBlank(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	}
	return false
}
