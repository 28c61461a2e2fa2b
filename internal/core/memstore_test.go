package core

import (
	"context"
	"sort"
	"sync"
	"time"
)

// memStore is an in-memory Store for service tests.
type memStore struct {
	mu      sync.Mutex
	lists   map[string]List
	columns map[string]Column
	views   map[string]View
	items   map[string]Item
	cells   map[string]map[string]StoredValue // item ID -> column ID -> value

	failCreate error
}

var _ Store = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{
		lists:   map[string]List{},
		columns: map[string]Column{},
		views:   map[string]View{},
		items:   map[string]Item{},
		cells:   map[string]map[string]StoredValue{},
	}
}

func (m *memStore) CreateList(_ context.Context, b *ListBundle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreate != nil {
		return m.failCreate
	}
	m.lists[b.List.ID] = b.List
	for _, c := range b.Columns {
		m.columns[c.ID] = c
	}
	for _, v := range b.Views {
		m.views[v.ID] = v
	}
	for _, it := range b.Items {
		m.items[it.ID] = it
	}
	for _, c := range b.Cells {
		m.setCell(c)
	}
	return nil
}

func (m *memStore) setCell(c Cell) {
	row, ok := m.cells[c.ItemID]
	if !ok {
		row = map[string]StoredValue{}
		m.cells[c.ItemID] = row
	}
	if c.Value.IsEmpty() {
		delete(row, c.ColumnID)
		return
	}
	row[c.ColumnID] = c.Value
}

func (m *memStore) GetList(_ context.Context, id string) (List, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.lists[id]
	if !ok {
		return List{}, NotFoundError("list", id)
	}
	return l, nil
}

func (m *memStore) ListLists(_ context.Context, favoritesOnly bool) ([]List, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []List
	for _, l := range m.lists {
		if !favoritesOnly || l.IsFavorite {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) UpdateList(_ context.Context, l List) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.lists[l.ID]; !ok {
		return NotFoundError("list", l.ID)
	}
	m.lists[l.ID] = l
	return nil
}

func (m *memStore) DeleteList(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.lists[id]; !ok {
		return NotFoundError("list", id)
	}
	delete(m.lists, id)
	for k, it := range m.items {
		if it.ListID == id {
			delete(m.items, k)
			delete(m.cells, k)
		}
	}
	return nil
}

func (m *memStore) ListColumns(_ context.Context, listID string) ([]Column, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Column
	for _, c := range m.columns {
		if c.ListID == listID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (m *memStore) CreateColumn(_ context.Context, c Column) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.columns[c.ID] = c
	return nil
}

func (m *memStore) UpdateColumn(_ context.Context, c Column) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.columns[c.ID] = c
	return nil
}

func (m *memStore) ReorderColumns(_ context.Context, listID string, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, id := range ids {
		c, ok := m.columns[id]
		if !ok || c.ListID != listID {
			return NotFoundError("column", id)
		}
		c.Position = i
		m.columns[id] = c
	}
	return nil
}

func (m *memStore) DeleteColumn(_ context.Context, listID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.columns[id]
	if !ok || c.ListID != listID {
		return NotFoundError("column", id)
	}
	delete(m.columns, id)
	for _, row := range m.cells {
		delete(row, id)
	}
	return nil
}

func (m *memStore) ListViews(_ context.Context, listID string) ([]View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []View
	for _, v := range m.views {
		if v.ListID == listID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (m *memStore) CreateView(_ context.Context, v View) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.views[v.ID] = v
	return nil
}

func (m *memStore) UpdateView(_ context.Context, v View) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	old, ok := m.views[v.ID]
	if !ok || old.ListID != v.ListID {
		return NotFoundError("view", v.ID)
	}
	if v.IsDefault {
		for id, other := range m.views {
			if other.ListID == v.ListID && id != v.ID {
				other.IsDefault = false
				m.views[id] = other
			}
		}
	}
	m.views[v.ID] = v
	return nil
}

func (m *memStore) DeleteView(_ context.Context, listID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.views[id]
	if !ok || v.ListID != listID {
		return NotFoundError("view", id)
	}
	delete(m.views, id)
	return nil
}

func (m *memStore) ListItems(_ context.Context, listID string, q ItemQuery) ([]Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Item
	for _, it := range m.items {
		if it.ListID == listID && (it.DeletedAt != nil) == q.Deleted {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	if q.Offset > 0 {
		if q.Offset >= len(out) {
			return nil, nil
		}
		out = out[q.Offset:]
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (m *memStore) GetItem(_ context.Context, listID, id string) (Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok || it.ListID != listID {
		return Item{}, NotFoundError("item", id)
	}
	return it, nil
}

func (m *memStore) NextItemPosition(_ context.Context, listID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := 0
	for _, it := range m.items {
		if it.ListID == listID && it.Position >= next {
			next = it.Position + 1
		}
	}
	return next, nil
}

func (m *memStore) CreateItem(_ context.Context, it Item, cells []Cell) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[it.ID] = it
	for _, c := range cells {
		m.setCell(c)
	}
	return nil
}

func (m *memStore) UpsertCells(_ context.Context, itemID string, cells []Cell) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range cells {
		c.ItemID = itemID
		m.setCell(c)
	}
	return nil
}

func (m *memStore) ItemCells(_ context.Context, itemID string) ([]Cell, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Cell
	for col, v := range m.cells[itemID] {
		out = append(out, Cell{ItemID: itemID, ColumnID: col, Value: v})
	}
	return out, nil
}

func (m *memStore) ListCells(_ context.Context, listID string) ([]Cell, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Cell
	for itemID, row := range m.cells {
		if m.items[itemID].ListID != listID {
			continue
		}
		for col, v := range row {
			out = append(out, Cell{ItemID: itemID, ColumnID: col, Value: v})
		}
	}
	return out, nil
}

func (m *memStore) SoftDeleteItem(_ context.Context, listID, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok || it.ListID != listID || it.DeletedAt != nil {
		return NotFoundError("item", id)
	}
	it.DeletedAt = &at
	m.items[id] = it
	return nil
}

func (m *memStore) RestoreItem(_ context.Context, listID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok || it.ListID != listID || it.DeletedAt == nil {
		return NotFoundError("item", id)
	}
	it.DeletedAt = nil
	m.items[id] = it
	return nil
}

func (m *memStore) PurgeItem(_ context.Context, listID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok || it.ListID != listID {
		return NotFoundError("item", id)
	}
	delete(m.items, id)
	delete(m.cells, id)
	return nil
}

func (m *memStore) PurgeDeletedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, it := range m.items {
		if it.DeletedAt != nil && it.DeletedAt.Before(cutoff) {
			delete(m.items, id)
			delete(m.cells, id)
			n++
		}
	}
	return n, nil
}

func (m *memStore) Stats(_ context.Context) (Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var values int64
	for _, row := range m.cells {
		values += int64(len(row))
	}
	return Stats{
		TotalLists:   int64(len(m.lists)),
		TotalItems:   int64(len(m.items)),
		TotalColumns: int64(len(m.columns)),
		TotalViews:   int64(len(m.views)),
		TotalValues:  values,
	}, nil
}

func (m *memStore) Close() error { return nil }
