// Package store persists lists, columns, views, items and cell values in
// SQLite (modernc.org/sqlite) or PostgreSQL (pgx). Both backends share the
// SQL in this package; cells are flattened to four nullable slot columns.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/JonMunkholm/listabob/internal/config"
	"github.com/JonMunkholm/listabob/internal/core"
)

// Store implements core.Store.
type Store struct {
	db backend
}

var _ core.Store = (*Store)(nil)

// Open opens the backend selected by cfg.Driver.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Store, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return OpenPostgres(ctx, cfg)
	case config.DriverSQLite, "":
		return OpenSQLite(ctx, cfg.SQLitePath)
	}
	return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
}

// Driver names the open backend.
func (s *Store) Driver() string { return s.db.name() }

// Close releases the connection or pool.
func (s *Store) Close() error { return s.db.close() }

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	var one int
	return s.db.QueryRow(ctx, `SELECT 1`).Scan(&one)
}

func migrate(ctx context.Context, q querier, schema string) error {
	for _, stmt := range splitStatements(schema) {
		if _, err := q.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Lists
// ---------------------------------------------------------------------------

const listColumns = `id, name, description, icon, color, is_favorite, template_id, created_at, updated_at`

func scanList(r row) (core.List, error) {
	var l core.List
	err := r.Scan(&l.ID, &l.Name, &l.Description, &l.Icon, &l.Color,
		&l.IsFavorite, &l.TemplateID, &l.CreatedAt, &l.UpdatedAt)
	return l, err
}

// CreateList writes a list with its columns, views, items and cells in one
// transaction.
func (s *Store) CreateList(ctx context.Context, b *core.ListBundle) error {
	return s.db.inTx(ctx, func(tx txQuerier) error {
		l := b.List
		_, err := tx.Exec(ctx, `INSERT INTO lists (`+listColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			l.ID, l.Name, l.Description, l.Icon, l.Color, l.IsFavorite, l.TemplateID, l.CreatedAt, l.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert list: %w", err)
		}

		for _, c := range b.Columns {
			if err := insertColumn(ctx, tx, c); err != nil {
				return err
			}
		}
		for _, v := range b.Views {
			if err := insertView(ctx, tx, v); err != nil {
				return err
			}
		}
		for _, it := range b.Items {
			if err := insertItem(ctx, tx, it); err != nil {
				return err
			}
		}
		if err := tx.insertCells(ctx, b.Cells); err != nil {
			return fmt.Errorf("insert cells: %w", err)
		}
		return nil
	})
}

func (s *Store) GetList(ctx context.Context, listID string) (core.List, error) {
	l, err := scanList(s.db.QueryRow(ctx, `SELECT `+listColumns+` FROM lists WHERE id = $1`, listID))
	if isNoRows(err) {
		return core.List{}, core.NotFoundError("list", listID)
	}
	if err != nil {
		return core.List{}, fmt.Errorf("get list: %w", err)
	}
	return l, nil
}

func (s *Store) ListLists(ctx context.Context, favoritesOnly bool) ([]core.List, error) {
	query := `SELECT ` + listColumns + ` FROM lists`
	var args []any
	if favoritesOnly {
		query += ` WHERE is_favorite = $1`
		args = append(args, true)
	}
	query += ` ORDER BY created_at DESC, id`

	r, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list lists: %w", err)
	}
	defer r.Close()

	out := []core.List{}
	for r.Next() {
		l, err := scanList(r)
		if err != nil {
			return nil, fmt.Errorf("scan list: %w", err)
		}
		out = append(out, l)
	}
	return out, r.Err()
}

func (s *Store) UpdateList(ctx context.Context, l core.List) error {
	n, err := s.db.Exec(ctx, `UPDATE lists
		SET name = $2, description = $3, icon = $4, color = $5, is_favorite = $6, updated_at = $7
		WHERE id = $1`,
		l.ID, l.Name, l.Description, l.Icon, l.Color, l.IsFavorite, l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update list: %w", err)
	}
	if n == 0 {
		return core.NotFoundError("list", l.ID)
	}
	return nil
}

func (s *Store) DeleteList(ctx context.Context, listID string) error {
	n, err := s.db.Exec(ctx, `DELETE FROM lists WHERE id = $1`, listID)
	if err != nil {
		return fmt.Errorf("delete list: %w", err)
	}
	if n == 0 {
		return core.NotFoundError("list", listID)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Columns
// ---------------------------------------------------------------------------

func insertColumn(ctx context.Context, q querier, c core.Column) error {
	cfg, err := configArg(c.Config)
	if err != nil {
		return fmt.Errorf("column %q config: %w", c.Name, err)
	}
	_, err = q.Exec(ctx, `INSERT INTO list_columns
		(id, list_id, name, column_type, position, is_required, config, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID, c.ListID, c.Name, string(c.Type), c.Position, c.IsRequired, cfg, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert column %q: %w", c.Name, err)
	}
	return nil
}

// configArg returns the JSON text of cfg, or nil for an empty config.
func configArg(cfg core.ColumnConfig) (*string, error) {
	if cfg.IsZero() {
		return nil, nil
	}
	raw, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	s := string(raw)
	return &s, nil
}

func (s *Store) ListColumns(ctx context.Context, listID string) ([]core.Column, error) {
	r, err := s.db.Query(ctx, `SELECT id, list_id, name, column_type, position, is_required,
		CAST(config AS TEXT), created_at
		FROM list_columns WHERE list_id = $1 ORDER BY position, created_at`, listID)
	if err != nil {
		return nil, fmt.Errorf("list columns: %w", err)
	}
	defer r.Close()

	out := []core.Column{}
	for r.Next() {
		var (
			c   core.Column
			typ string
			cfg sql.NullString
		)
		if err := r.Scan(&c.ID, &c.ListID, &c.Name, &typ, &c.Position, &c.IsRequired, &cfg, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		c.Type = core.ColumnType(typ)
		if cfg.Valid {
			if err := json.Unmarshal([]byte(cfg.String), &c.Config); err != nil {
				return nil, fmt.Errorf("column %s config: %w", c.ID, err)
			}
		}
		out = append(out, c)
	}
	return out, r.Err()
}

func (s *Store) CreateColumn(ctx context.Context, c core.Column) error {
	return insertColumn(ctx, s.db, c)
}

func (s *Store) UpdateColumn(ctx context.Context, c core.Column) error {
	cfg, err := configArg(c.Config)
	if err != nil {
		return fmt.Errorf("column %q config: %w", c.Name, err)
	}
	n, err := s.db.Exec(ctx, `UPDATE list_columns
		SET name = $3, column_type = $4, is_required = $5, config = $6
		WHERE id = $1 AND list_id = $2`,
		c.ID, c.ListID, c.Name, string(c.Type), c.IsRequired, cfg)
	if err != nil {
		return fmt.Errorf("update column: %w", err)
	}
	if n == 0 {
		return core.NotFoundError("column", c.ID)
	}
	return nil
}

// ReorderColumns sets positions to the order of columnIDs. Every ID must
// belong to the list.
func (s *Store) ReorderColumns(ctx context.Context, listID string, columnIDs []string) error {
	return s.db.inTx(ctx, func(tx txQuerier) error {
		for pos, id := range columnIDs {
			n, err := tx.Exec(ctx, `UPDATE list_columns SET position = $3 WHERE id = $1 AND list_id = $2`,
				id, listID, pos)
			if err != nil {
				return fmt.Errorf("reorder column %s: %w", id, err)
			}
			if n == 0 {
				return core.NotFoundError("column", id)
			}
		}
		return nil
	})
}

func (s *Store) DeleteColumn(ctx context.Context, listID, columnID string) error {
	n, err := s.db.Exec(ctx, `DELETE FROM list_columns WHERE id = $1 AND list_id = $2`, columnID, listID)
	if err != nil {
		return fmt.Errorf("delete column: %w", err)
	}
	if n == 0 {
		return core.NotFoundError("column", columnID)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Views
// ---------------------------------------------------------------------------

// viewConfigArg returns the JSON text of a view config, or nil when unset.
func viewConfigArg(cfg map[string]any) (*string, error) {
	if cfg == nil {
		return nil, nil
	}
	raw, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	s := string(raw)
	return &s, nil
}

func insertView(ctx context.Context, q querier, v core.View) error {
	cfg, err := viewConfigArg(v.Config)
	if err != nil {
		return fmt.Errorf("view %q config: %w", v.Name, err)
	}
	_, err = q.Exec(ctx, `INSERT INTO list_views
		(id, list_id, name, view_type, config, is_default, position, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		v.ID, v.ListID, v.Name, string(v.ViewType), cfg, v.IsDefault, v.Position, v.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert view %q: %w", v.Name, err)
	}
	return nil
}

func (s *Store) ListViews(ctx context.Context, listID string) ([]core.View, error) {
	r, err := s.db.Query(ctx, `SELECT id, list_id, name, view_type, CAST(config AS TEXT),
		is_default, position, created_at
		FROM list_views WHERE list_id = $1 ORDER BY position, created_at`, listID)
	if err != nil {
		return nil, fmt.Errorf("list views: %w", err)
	}
	defer r.Close()

	out := []core.View{}
	for r.Next() {
		var (
			v   core.View
			typ string
			cfg sql.NullString
		)
		if err := r.Scan(&v.ID, &v.ListID, &v.Name, &typ, &cfg, &v.IsDefault, &v.Position, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan view: %w", err)
		}
		v.ViewType = core.ViewType(typ)
		if cfg.Valid {
			if err := json.Unmarshal([]byte(cfg.String), &v.Config); err != nil {
				return nil, fmt.Errorf("view %s config: %w", v.ID, err)
			}
		}
		out = append(out, v)
	}
	return out, r.Err()
}

func (s *Store) CreateView(ctx context.Context, v core.View) error {
	return insertView(ctx, s.db, v)
}

// UpdateView writes the view's name, config and default flag. A default
// view takes the flag from every other view of the list.
func (s *Store) UpdateView(ctx context.Context, v core.View) error {
	cfg, err := viewConfigArg(v.Config)
	if err != nil {
		return fmt.Errorf("view %q config: %w", v.Name, err)
	}
	return s.db.inTx(ctx, func(tx txQuerier) error {
		n, err := tx.Exec(ctx, `UPDATE list_views
			SET name = $3, config = $4, is_default = $5
			WHERE id = $1 AND list_id = $2`,
			v.ID, v.ListID, v.Name, cfg, v.IsDefault)
		if err != nil {
			return fmt.Errorf("update view: %w", err)
		}
		if n == 0 {
			return core.NotFoundError("view", v.ID)
		}
		if !v.IsDefault {
			return nil
		}
		if _, err := tx.Exec(ctx, `UPDATE list_views SET is_default = $3
			WHERE list_id = $1 AND id <> $2`, v.ListID, v.ID, false); err != nil {
			return fmt.Errorf("clear default view: %w", err)
		}
		return nil
	})
}

func (s *Store) DeleteView(ctx context.Context, listID, viewID string) error {
	n, err := s.db.Exec(ctx, `DELETE FROM list_views WHERE id = $1 AND list_id = $2`, viewID, listID)
	if err != nil {
		return fmt.Errorf("delete view: %w", err)
	}
	if n == 0 {
		return core.NotFoundError("view", viewID)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Stats
// ---------------------------------------------------------------------------

func (s *Store) Stats(ctx context.Context) (core.Stats, error) {
	var st core.Stats
	err := s.db.QueryRow(ctx, `SELECT
		(SELECT COUNT(*) FROM lists),
		(SELECT COUNT(*) FROM items WHERE deleted_at IS NULL),
		(SELECT COUNT(*) FROM list_columns),
		(SELECT COUNT(*) FROM list_views),
		(SELECT COUNT(*) FROM item_values)`).
		Scan(&st.TotalLists, &st.TotalItems, &st.TotalColumns, &st.TotalViews, &st.TotalValues)
	if err != nil {
		return core.Stats{}, fmt.Errorf("stats: %w", err)
	}

	size, err := s.db.sizeBytes(ctx)
	if err != nil {
		return core.Stats{}, fmt.Errorf("database size: %w", err)
	}
	st.DatabaseSizeMB = math.Round(float64(size)/(1<<20)*100) / 100
	return st, nil
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
