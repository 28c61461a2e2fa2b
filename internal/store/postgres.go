package store

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/listabob/internal/config"
	"github.com/JonMunkholm/listabob/internal/core"
)

//go:embed schema_postgres.sql
var postgresSchema string

// OpenPostgres connects a pgx pool using the pool settings in cfg and
// applies the schema.
func OpenPostgres(ctx context.Context, cfg config.DatabaseConfig) (*Store, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	b := &pgBackend{pgQuerier: pgQuerier{conn: pool}, pool: pool}
	if err := migrate(ctx, b, postgresSchema); err != nil {
		pool.Close()
		return nil, err
	}
	return &Store{db: b}, nil
}

// pgConn is implemented by *pgxpool.Pool and pgx.Tx.
type pgConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type pgQuerier struct {
	conn pgConn
}

func (q pgQuerier) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	tag, err := q.conn.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (q pgQuerier) Query(ctx context.Context, query string, args ...any) (rows, error) {
	return q.conn.Query(ctx, query, args...)
}

func (q pgQuerier) QueryRow(ctx context.Context, query string, args ...any) row {
	return q.conn.QueryRow(ctx, query, args...)
}

type pgTx struct {
	pgQuerier
	tx pgx.Tx
}

// insertCells streams cells with the COPY protocol.
func (t pgTx) insertCells(ctx context.Context, cells []core.Cell) error {
	if len(cells) == 0 {
		return nil
	}
	src := pgx.CopyFromSlice(len(cells), func(i int) ([]any, error) {
		c := cells[i]
		text, num, b, raw := c.Value.Slots()
		return []any{c.ItemID, c.ColumnID, text, num, b, raw}, nil
	})
	_, err := t.tx.CopyFrom(ctx, pgx.Identifier{"item_values"}, cellColumns, src)
	if err != nil {
		return fmt.Errorf("copy cells: %w", err)
	}
	return nil
}

type pgBackend struct {
	pgQuerier
	pool *pgxpool.Pool
}

func (b *pgBackend) inTx(ctx context.Context, fn func(tx txQuerier) error) error {
	tx, err := b.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // No-op if already committed

	if err := fn(pgTx{pgQuerier: pgQuerier{conn: tx}, tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (b *pgBackend) sizeBytes(ctx context.Context) (int64, error) {
	var n int64
	err := b.pool.QueryRow(ctx, `SELECT pg_database_size(current_database())`).Scan(&n)
	return n, err
}

func (b *pgBackend) close() error {
	b.pool.Close()
	return nil
}

func (b *pgBackend) name() string { return "postgres" }
