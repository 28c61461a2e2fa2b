package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/JonMunkholm/listabob/internal/core"
)

//go:embed schema_sqlite.sql
var sqliteSchema string

// OpenSQLite opens (creating if needed) the database file at path and
// applies the schema. A single connection serializes writers.
func OpenSQLite(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "busy_timeout(5000)")
	q.Add("_pragma", "journal_mode(WAL)")
	dsn := "file:" + path + "?" + q.Encode()

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	b := &sqliteBackend{sqliteQuerier: sqliteQuerier{conn: db}, db: db}
	if err := migrate(ctx, b, sqliteSchema); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: b}, nil
}

// sqlConn is implemented by *sql.DB and *sql.Tx.
type sqlConn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type sqliteQuerier struct {
	conn sqlConn
}

func (q sqliteQuerier) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := q.conn.ExecContext(ctx, rebindSQLite(query), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q sqliteQuerier) Query(ctx context.Context, query string, args ...any) (rows, error) {
	r, err := q.conn.QueryContext(ctx, rebindSQLite(query), args...)
	if err != nil {
		return nil, err
	}
	return sqlRows{r}, nil
}

func (q sqliteQuerier) QueryRow(ctx context.Context, query string, args ...any) row {
	return q.conn.QueryRowContext(ctx, rebindSQLite(query), args...)
}

// insertCells inserts cells one statement at a time inside the caller's
// transaction.
func (q sqliteQuerier) insertCells(ctx context.Context, cells []core.Cell) error {
	for _, c := range cells {
		if err := insertCell(ctx, q, c); err != nil {
			return err
		}
	}
	return nil
}

type sqlRows struct{ *sql.Rows }

func (r sqlRows) Close() { _ = r.Rows.Close() }

type sqliteBackend struct {
	sqliteQuerier
	db *sql.DB
}

func (b *sqliteBackend) inTx(ctx context.Context, fn func(tx txQuerier) error) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() // No-op after commit

	if err := fn(sqliteQuerier{conn: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (b *sqliteBackend) sizeBytes(ctx context.Context) (int64, error) {
	var n int64
	err := b.db.QueryRowContext(ctx,
		`SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()`).Scan(&n)
	return n, err
}

func (b *sqliteBackend) close() error { return b.db.Close() }

func (b *sqliteBackend) name() string { return "sqlite" }
