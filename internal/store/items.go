package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/JonMunkholm/listabob/internal/core"
)

const itemColumns = `id, list_id, position, created_at, updated_at, deleted_at`

// cellColumns is the item_values column order used by inserts and COPY.
var cellColumns = []string{"item_id", "column_id", "value_text", "value_number", "value_boolean", "value_json"}

func scanItem(r row) (core.Item, error) {
	var (
		it      core.Item
		deleted sql.NullTime
	)
	if err := r.Scan(&it.ID, &it.ListID, &it.Position, &it.CreatedAt, &it.UpdatedAt, &deleted); err != nil {
		return core.Item{}, err
	}
	it.DeletedAt = nullTime(deleted)
	return it, nil
}

func insertItem(ctx context.Context, q querier, it core.Item) error {
	_, err := q.Exec(ctx, `INSERT INTO items (`+itemColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		it.ID, it.ListID, it.Position, it.CreatedAt, it.UpdatedAt, it.DeletedAt)
	if err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

// ListItems returns live items, or recycle bin items when q.Deleted is set,
// ordered by position.
func (s *Store) ListItems(ctx context.Context, listID string, q core.ItemQuery) ([]core.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE list_id = $1`
	if q.Deleted {
		query += ` AND deleted_at IS NOT NULL`
	} else {
		query += ` AND deleted_at IS NULL`
	}
	query += ` ORDER BY position, created_at`

	args := []any{listID}
	if q.Limit > 0 {
		query += ` LIMIT $2 OFFSET $3`
		args = append(args, q.Limit, q.Offset)
	}

	r, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer r.Close()

	out := []core.Item{}
	for r.Next() {
		it, err := scanItem(r)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		out = append(out, it)
	}
	if err := r.Err(); err != nil {
		return nil, err
	}

	if q.Limit <= 0 && q.Offset > 0 {
		if q.Offset >= len(out) {
			return []core.Item{}, nil
		}
		out = out[q.Offset:]
	}
	return out, nil
}

func (s *Store) GetItem(ctx context.Context, listID, itemID string) (core.Item, error) {
	it, err := scanItem(s.db.QueryRow(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = $1 AND list_id = $2`, itemID, listID))
	if isNoRows(err) {
		return core.Item{}, core.NotFoundError("item", itemID)
	}
	if err != nil {
		return core.Item{}, fmt.Errorf("get item: %w", err)
	}
	return it, nil
}

// NextItemPosition returns one past the highest position in the list,
// counting recycle bin items.
func (s *Store) NextItemPosition(ctx context.Context, listID string) (int, error) {
	var next int
	err := s.db.QueryRow(ctx,
		`SELECT COALESCE(MAX(position), -1) + 1 FROM items WHERE list_id = $1`, listID).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("next item position: %w", err)
	}
	return next, nil
}

func (s *Store) CreateItem(ctx context.Context, item core.Item, cells []core.Cell) error {
	return s.db.inTx(ctx, func(tx txQuerier) error {
		if err := insertItem(ctx, tx, item); err != nil {
			return err
		}
		return tx.insertCells(ctx, cells)
	})
}

// UpsertCells writes cells for one item. An empty value deletes the cell.
func (s *Store) UpsertCells(ctx context.Context, itemID string, cells []core.Cell) error {
	return s.db.inTx(ctx, func(tx txQuerier) error {
		for _, c := range cells {
			c.ItemID = itemID
			if c.Value.IsEmpty() {
				if _, err := tx.Exec(ctx, `DELETE FROM item_values WHERE item_id = $1 AND column_id = $2`,
					c.ItemID, c.ColumnID); err != nil {
					return fmt.Errorf("clear cell: %w", err)
				}
				continue
			}
			if err := upsertCell(ctx, tx, c); err != nil {
				return err
			}
		}
		_, err := tx.Exec(ctx, `UPDATE items SET updated_at = $2 WHERE id = $1`, itemID, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("touch item: %w", err)
		}
		return nil
	})
}

func insertCell(ctx context.Context, q querier, c core.Cell) error {
	text, num, b, raw := c.Value.Slots()
	_, err := q.Exec(ctx, `INSERT INTO item_values
		(item_id, column_id, value_text, value_number, value_boolean, value_json)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ItemID, c.ColumnID, text, num, b, raw)
	if err != nil {
		return fmt.Errorf("insert cell: %w", err)
	}
	return nil
}

// upsertCell replaces every slot so a value moving between slots leaves
// nothing behind.
func upsertCell(ctx context.Context, q querier, c core.Cell) error {
	text, num, b, raw := c.Value.Slots()
	_, err := q.Exec(ctx, `INSERT INTO item_values
		(item_id, column_id, value_text, value_number, value_boolean, value_json)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (item_id, column_id) DO UPDATE SET
			value_text = excluded.value_text,
			value_number = excluded.value_number,
			value_boolean = excluded.value_boolean,
			value_json = excluded.value_json`,
		c.ItemID, c.ColumnID, text, num, b, raw)
	if err != nil {
		return fmt.Errorf("upsert cell: %w", err)
	}
	return nil
}

const cellSelect = `SELECT v.item_id, v.column_id, v.value_text, v.value_number, v.value_boolean,
	CAST(v.value_json AS TEXT) FROM item_values v`

func scanCells(r rows) ([]core.Cell, error) {
	defer r.Close()

	out := []core.Cell{}
	for r.Next() {
		var (
			c    core.Cell
			text sql.NullString
			num  sql.NullFloat64
			b    sql.NullBool
			raw  sql.NullString
		)
		if err := r.Scan(&c.ItemID, &c.ColumnID, &text, &num, &b, &raw); err != nil {
			return nil, fmt.Errorf("scan cell: %w", err)
		}
		c.Value = core.FromSlots(nullString(text), nullFloat(num), nullBool(b), nullString(raw))
		out = append(out, c)
	}
	return out, r.Err()
}

func (s *Store) ItemCells(ctx context.Context, itemID string) ([]core.Cell, error) {
	r, err := s.db.Query(ctx, cellSelect+` WHERE v.item_id = $1`, itemID)
	if err != nil {
		return nil, fmt.Errorf("item cells: %w", err)
	}
	return scanCells(r)
}

// ListCells returns every cell of the list, including recycle bin items.
func (s *Store) ListCells(ctx context.Context, listID string) ([]core.Cell, error) {
	r, err := s.db.Query(ctx, cellSelect+` JOIN items i ON i.id = v.item_id WHERE i.list_id = $1`, listID)
	if err != nil {
		return nil, fmt.Errorf("list cells: %w", err)
	}
	return scanCells(r)
}

func (s *Store) SoftDeleteItem(ctx context.Context, listID, itemID string, at time.Time) error {
	n, err := s.db.Exec(ctx, `UPDATE items SET deleted_at = $3, updated_at = $3
		WHERE id = $1 AND list_id = $2 AND deleted_at IS NULL`, itemID, listID, at)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if n == 0 {
		return core.NotFoundError("item", itemID)
	}
	return nil
}

func (s *Store) RestoreItem(ctx context.Context, listID, itemID string) error {
	n, err := s.db.Exec(ctx, `UPDATE items SET deleted_at = NULL
		WHERE id = $1 AND list_id = $2 AND deleted_at IS NOT NULL`, itemID, listID)
	if err != nil {
		return fmt.Errorf("restore item: %w", err)
	}
	if n == 0 {
		return core.NotFoundError("deleted item", itemID)
	}
	return nil
}

func (s *Store) PurgeItem(ctx context.Context, listID, itemID string) error {
	return s.db.inTx(ctx, func(tx txQuerier) error {
		return purgeItem(ctx, tx, listID, itemID)
	})
}

func purgeItem(ctx context.Context, q querier, listID, itemID string) error {
	if _, err := q.Exec(ctx, `DELETE FROM item_values WHERE item_id = $1`, itemID); err != nil {
		return fmt.Errorf("purge cells: %w", err)
	}
	n, err := q.Exec(ctx, `DELETE FROM items WHERE id = $1 AND list_id = $2`, itemID, listID)
	if err != nil {
		return fmt.Errorf("purge item: %w", err)
	}
	if n == 0 {
		return core.NotFoundError("item", itemID)
	}
	return nil
}

// PurgeDeletedBefore removes items soft-deleted before cutoff and returns
// how many were removed. The cutoff comparison runs in Go so both backends
// agree on timestamp ordering.
func (s *Store) PurgeDeletedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	type victim struct{ id, listID string }

	r, err := s.db.Query(ctx, `SELECT id, list_id, deleted_at FROM items WHERE deleted_at IS NOT NULL`)
	if err != nil {
		return 0, fmt.Errorf("find deleted items: %w", err)
	}
	var victims []victim
	for r.Next() {
		var (
			v  victim
			at time.Time
		)
		if err := r.Scan(&v.id, &v.listID, &at); err != nil {
			r.Close()
			return 0, fmt.Errorf("scan deleted item: %w", err)
		}
		if at.Before(cutoff) {
			victims = append(victims, v)
		}
	}
	r.Close()
	if err := r.Err(); err != nil {
		return 0, err
	}
	if len(victims) == 0 {
		return 0, nil
	}

	err = s.db.inTx(ctx, func(tx txQuerier) error {
		for _, v := range victims {
			if err := purgeItem(ctx, tx, v.listID, v.id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return int64(len(victims)), nil
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}

func nullBool(v sql.NullBool) *bool {
	if !v.Valid {
		return nil
	}
	return &v.Bool
}
