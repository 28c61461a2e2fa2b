package store

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/listabob/internal/config"
	"github.com/JonMunkholm/listabob/internal/core"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "nested", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// seedBundle builds a list with two columns, one view and two items.
func seedBundle(now time.Time) *core.ListBundle {
	b := &core.ListBundle{
		List: core.List{ID: "l1", Name: "Groceries", Icon: "cart", CreatedAt: now, UpdatedAt: now},
		Columns: []core.Column{
			{ID: "c-name", ListID: "l1", Name: "Name", Type: core.TypeText, Position: 0, IsRequired: true, CreatedAt: now},
			{ID: "c-qty", ListID: "l1", Name: "Qty", Type: core.TypeNumber, Position: 1, CreatedAt: now},
			{
				ID: "c-aisle", ListID: "l1", Name: "Aisle", Type: core.TypeChoice, Position: 2, CreatedAt: now,
				Config: core.ColumnConfig{Choices: []string{"Dairy", "Produce"}},
			},
		},
		Views: []core.View{
			{ID: "v1", ListID: "l1", Name: "All Items", ViewType: core.ViewGrid, IsDefault: true, CreatedAt: now},
		},
		Items: []core.Item{
			{ID: "i1", ListID: "l1", Position: 0, CreatedAt: now, UpdatedAt: now},
			{ID: "i2", ListID: "l1", Position: 1, CreatedAt: now, UpdatedAt: now},
		},
	}
	b.Cells = []core.Cell{
		{ItemID: "i1", ColumnID: "c-name", Value: core.TextValue("Milk")},
		{ItemID: "i1", ColumnID: "c-qty", Value: core.NumberValue(2)},
		{ItemID: "i1", ColumnID: "c-aisle", Value: core.JSONValue(json.RawMessage(`{"value":"Dairy"}`))},
		{ItemID: "i2", ColumnID: "c-name", Value: core.TextValue("Apples")},
	}
	return b
}

func TestCreateList_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	now := time.Now().UTC()

	require.NoError(t, s.CreateList(ctx, seedBundle(now)))
	assert.Equal(t, "sqlite", s.Driver())
	require.NoError(t, s.Ping(ctx))

	l, err := s.GetList(ctx, "l1")
	require.NoError(t, err)
	assert.Equal(t, "Groceries", l.Name)
	assert.Equal(t, "cart", l.Icon)
	assert.WithinDuration(t, now, l.CreatedAt, time.Millisecond)

	cols, err := s.ListColumns(ctx, "l1")
	require.NoError(t, err)
	require.Len(t, cols, 3)
	assert.Equal(t, "Name", cols[0].Name)
	assert.True(t, cols[0].IsRequired)
	assert.Equal(t, core.TypeNumber, cols[1].Type)
	assert.True(t, cols[1].Config.IsZero())
	assert.Equal(t, []string{"Dairy", "Produce"}, cols[2].Config.Choices)

	views, err := s.ListViews(ctx, "l1")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, core.ViewGrid, views[0].ViewType)
	assert.True(t, views[0].IsDefault)

	items, err := s.ListItems(ctx, "l1", core.ItemQuery{})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "i1", items[0].ID)
	assert.Nil(t, items[0].DeletedAt)

	cells, err := s.ItemCells(ctx, "i1")
	require.NoError(t, err)
	byCol := map[string]core.StoredValue{}
	for _, c := range cells {
		byCol[c.ColumnID] = c.Value
	}
	assert.True(t, byCol["c-name"].Equal(core.TextValue("Milk")))
	assert.True(t, byCol["c-qty"].Equal(core.NumberValue(2)))
	raw, ok := byCol["c-aisle"].JSON()
	require.True(t, ok)
	assert.JSONEq(t, `{"value":"Dairy"}`, string(raw))

	all, err := s.ListCells(ctx, "l1")
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestCreateList_RollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	now := time.Now().UTC()

	b := seedBundle(now)
	b.Cells = append(b.Cells, core.Cell{ItemID: "i1", ColumnID: "c-name", Value: core.TextValue("dup")})

	require.Error(t, s.CreateList(ctx, b))

	_, err := s.GetList(ctx, "l1")
	assert.ErrorIs(t, err, core.ErrNotFound)
	st, err := s.Stats(ctx)
	require.NoError(t, err)
	st.DatabaseSizeMB = 0
	assert.Equal(t, core.Stats{}, st)
}

func TestNotFound(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, err := s.GetList(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
	_, err = s.GetItem(ctx, "l1", "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)

	assert.ErrorIs(t, s.UpdateList(ctx, core.List{ID: "missing"}), core.ErrNotFound)
	assert.ErrorIs(t, s.DeleteList(ctx, "missing"), core.ErrNotFound)
	assert.ErrorIs(t, s.DeleteColumn(ctx, "l1", "missing"), core.ErrNotFound)
	assert.ErrorIs(t, s.DeleteView(ctx, "l1", "missing"), core.ErrNotFound)
	assert.ErrorIs(t, s.SoftDeleteItem(ctx, "l1", "missing", time.Now()), core.ErrNotFound)
	assert.ErrorIs(t, s.RestoreItem(ctx, "l1", "missing"), core.ErrNotFound)
	assert.ErrorIs(t, s.PurgeItem(ctx, "l1", "missing"), core.ErrNotFound)
}

func TestListLists_Favorites(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	now := time.Now().UTC()

	require.NoError(t, s.CreateList(ctx, seedBundle(now)))
	require.NoError(t, s.CreateList(ctx, &core.ListBundle{
		List: core.List{ID: "l2", Name: "Books", IsFavorite: true, CreatedAt: now.Add(time.Second), UpdatedAt: now},
	}))

	all, err := s.ListLists(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "l2", all[0].ID, "newest first")

	favs, err := s.ListLists(ctx, true)
	require.NoError(t, err)
	require.Len(t, favs, 1)
	assert.Equal(t, "Books", favs[0].Name)

	l := all[1]
	l.Name = "Weekly shop"
	l.IsFavorite = true
	require.NoError(t, s.UpdateList(ctx, l))
	favs, err = s.ListLists(ctx, true)
	require.NoError(t, err)
	assert.Len(t, favs, 2)
}

func TestDeleteList_Cascades(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.CreateList(ctx, seedBundle(time.Now().UTC())))
	require.NoError(t, s.DeleteList(ctx, "l1"))

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	st.DatabaseSizeMB = 0
	assert.Equal(t, core.Stats{}, st)
}

func TestColumns_UpdateReorderDelete(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	now := time.Now().UTC()
	require.NoError(t, s.CreateList(ctx, seedBundle(now)))

	require.NoError(t, s.CreateColumn(ctx, core.Column{
		ID: "c-done", ListID: "l1", Name: "Done", Type: core.TypeBoolean, Position: 3, CreatedAt: now,
	}))

	cols, err := s.ListColumns(ctx, "l1")
	require.NoError(t, err)
	qty := cols[1]
	qty.Name = "Quantity"
	qty.Config = core.ColumnConfig{DefaultValue: float64(1)}
	require.NoError(t, s.UpdateColumn(ctx, qty))

	require.NoError(t, s.ReorderColumns(ctx, "l1", []string{"c-done", "c-aisle", "c-qty", "c-name"}))
	cols, err = s.ListColumns(ctx, "l1")
	require.NoError(t, err)
	var order []string
	for _, c := range cols {
		order = append(order, c.ID)
	}
	assert.Equal(t, []string{"c-done", "c-aisle", "c-qty", "c-name"}, order)
	assert.Equal(t, "Quantity", cols[2].Name)
	assert.Equal(t, float64(1), cols[2].Config.DefaultValue)

	err = s.ReorderColumns(ctx, "l1", []string{"c-name", "nope"})
	assert.ErrorIs(t, err, core.ErrNotFound)

	require.NoError(t, s.DeleteColumn(ctx, "l1", "c-qty"))
	cells, err := s.ItemCells(ctx, "i1")
	require.NoError(t, err)
	assert.Len(t, cells, 2, "cells of a deleted column go with it")
}

func TestViews_CreateDelete(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	now := time.Now().UTC()
	require.NoError(t, s.CreateList(ctx, seedBundle(now)))

	require.NoError(t, s.CreateView(ctx, core.View{
		ID: "v2", ListID: "l1", Name: "Board", ViewType: core.ViewBoard, Position: 1, CreatedAt: now,
	}))
	views, err := s.ListViews(ctx, "l1")
	require.NoError(t, err)
	assert.Len(t, views, 2)

	require.NoError(t, s.DeleteView(ctx, "l1", "v2"))
	views, err = s.ListViews(ctx, "l1")
	require.NoError(t, err)
	assert.Len(t, views, 1)
}

func TestViews_Update(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	now := time.Now().UTC()
	require.NoError(t, s.CreateList(ctx, seedBundle(now)))

	require.NoError(t, s.CreateView(ctx, core.View{
		ID: "v2", ListID: "l1", Name: "Board", ViewType: core.ViewBoard, Position: 1, CreatedAt: now,
		Config: map[string]any{"group_by": "c-aisle"},
	}))

	views, err := s.ListViews(ctx, "l1")
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Nil(t, views[0].Config)
	assert.Equal(t, map[string]any{"group_by": "c-aisle"}, views[1].Config)

	board := views[1]
	board.Name = "Aisles"
	board.Config = map[string]any{"group_by": "c-aisle", "hidden": []any{"c-qty"}}
	board.IsDefault = true
	require.NoError(t, s.UpdateView(ctx, board))

	views, err = s.ListViews(ctx, "l1")
	require.NoError(t, err)
	assert.False(t, views[0].IsDefault, "previous default cleared")
	assert.True(t, views[1].IsDefault)
	assert.Equal(t, "Aisles", views[1].Name)
	assert.Equal(t, []any{"c-qty"}, views[1].Config["hidden"])

	missing := core.View{ID: "nope", ListID: "l1", Name: "x"}
	assert.ErrorIs(t, s.UpdateView(ctx, missing), core.ErrNotFound)
}

func TestStats_DatabaseSize(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	require.NoError(t, s.CreateList(ctx, seedBundle(time.Now().UTC())))

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), st.TotalLists)
	assert.Equal(t, int64(1), st.TotalViews)
	assert.Greater(t, st.DatabaseSizeMB, 0.0)
}

func TestItems_CreateAndUpsertCells(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	now := time.Now().UTC()
	require.NoError(t, s.CreateList(ctx, seedBundle(now)))

	pos, err := s.NextItemPosition(ctx, "l1")
	require.NoError(t, err)
	assert.Equal(t, 2, pos)

	item := core.Item{ID: "i3", ListID: "l1", Position: pos, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, s.CreateItem(ctx, item, []core.Cell{
		{ItemID: "i3", ColumnID: "c-name", Value: core.TextValue("Bread")},
		{ItemID: "i3", ColumnID: "c-qty", Value: core.NumberValue(1)},
	}))

	got, err := s.GetItem(ctx, "l1", "i3")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Position)

	require.NoError(t, s.UpsertCells(ctx, "i3", []core.Cell{
		{ColumnID: "c-name", Value: core.TextValue("Rye bread")},
		{ColumnID: "c-qty", Value: core.EmptyValue()},
	}))

	cells, err := s.ItemCells(ctx, "i3")
	require.NoError(t, err)
	require.Len(t, cells, 1)
	assert.Equal(t, "c-name", cells[0].ColumnID)
	assert.True(t, cells[0].Value.Equal(core.TextValue("Rye bread")))

	_, err = s.GetItem(ctx, "other-list", "i3")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestItems_Paging(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	require.NoError(t, s.CreateList(ctx, seedBundle(time.Now().UTC())))

	page, err := s.ListItems(ctx, "l1", core.ItemQuery{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "i2", page[0].ID)

	tail, err := s.ListItems(ctx, "l1", core.ItemQuery{Offset: 1})
	require.NoError(t, err)
	require.Len(t, tail, 1)
	assert.Equal(t, "i2", tail[0].ID)

	none, err := s.ListItems(ctx, "l1", core.ItemQuery{Offset: 5})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestItems_RecycleBin(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	now := time.Now().UTC()
	require.NoError(t, s.CreateList(ctx, seedBundle(now)))

	require.NoError(t, s.SoftDeleteItem(ctx, "l1", "i1", now))
	assert.ErrorIs(t, s.SoftDeleteItem(ctx, "l1", "i1", now), core.ErrNotFound, "already deleted")

	live, err := s.ListItems(ctx, "l1", core.ItemQuery{})
	require.NoError(t, err)
	require.Len(t, live, 1)
	assert.Equal(t, "i2", live[0].ID)

	bin, err := s.ListItems(ctx, "l1", core.ItemQuery{Deleted: true})
	require.NoError(t, err)
	require.Len(t, bin, 1)
	require.NotNil(t, bin[0].DeletedAt)
	assert.WithinDuration(t, now, *bin[0].DeletedAt, time.Millisecond)

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), st.TotalItems)
	assert.Equal(t, int64(4), st.TotalValues, "cells survive soft delete")

	require.NoError(t, s.RestoreItem(ctx, "l1", "i1"))
	assert.ErrorIs(t, s.RestoreItem(ctx, "l1", "i1"), core.ErrNotFound, "not in the bin")

	require.NoError(t, s.SoftDeleteItem(ctx, "l1", "i1", now))
	require.NoError(t, s.PurgeItem(ctx, "l1", "i1"))
	cells, err := s.ItemCells(ctx, "i1")
	require.NoError(t, err)
	assert.Empty(t, cells)
}

func TestPurgeDeletedBefore(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	now := time.Now().UTC()
	require.NoError(t, s.CreateList(ctx, seedBundle(now)))

	require.NoError(t, s.SoftDeleteItem(ctx, "l1", "i1", now.Add(-48*time.Hour)))
	require.NoError(t, s.SoftDeleteItem(ctx, "l1", "i2", now.Add(-time.Hour)))

	n, err := s.PurgeDeletedBefore(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	bin, err := s.ListItems(ctx, "l1", core.ItemQuery{Deleted: true})
	require.NoError(t, err)
	require.Len(t, bin, 1)
	assert.Equal(t, "i2", bin[0].ID)

	n, err = s.PurgeDeletedBefore(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), configWithDriver("mysql"))
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestRebindSQLite(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`SELECT 1`, `SELECT 1`},
		{`WHERE id = $1 AND list_id = $2`, `WHERE id = ?1 AND list_id = ?2`},
		{`SET deleted_at = $3, updated_at = $3`, `SET deleted_at = ?3, updated_at = ?3`},
		{`VALUES ($10, $11)`, `VALUES (?10, ?11)`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, rebindSQLite(tt.in))
	}
}

func TestSplitStatements(t *testing.T) {
	got := splitStatements("CREATE TABLE a (x INT);\n\n  ;CREATE INDEX i ON a(x);\n")
	assert.Equal(t, []string{"CREATE TABLE a (x INT)", "CREATE INDEX i ON a(x)"}, got)
}

func configWithDriver(driver string) config.DatabaseConfig {
	return config.DatabaseConfig{Driver: driver}
}
