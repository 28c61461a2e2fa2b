package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/JonMunkholm/listabob/internal/core"
)

// querier is the subset of a connection, pool or transaction the
// repository needs. Queries use $N placeholders for every backend.
type querier interface {
	Exec(ctx context.Context, query string, args ...any) (int64, error)
	Query(ctx context.Context, query string, args ...any) (rows, error)
	QueryRow(ctx context.Context, query string, args ...any) row
}

type rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

type row interface {
	Scan(dest ...any) error
}

// txQuerier is a querier bound to a transaction, with a bulk cell insert.
type txQuerier interface {
	querier
	insertCells(ctx context.Context, cells []core.Cell) error
}

// backend is an open database.
type backend interface {
	querier
	inTx(ctx context.Context, fn func(tx txQuerier) error) error
	close() error
	name() string

	// sizeBytes reports the on-disk size of the database.
	sizeBytes(ctx context.Context) (int64, error)
}

// isNoRows reports whether err means a single-row query found nothing.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows)
}

// splitStatements splits a schema file on semicolons.
func splitStatements(schema string) []string {
	var out []string
	for _, stmt := range strings.Split(schema, ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}

var dollarParam = regexp.MustCompile(`\$(\d+)`)

// rebindSQLite turns $N placeholders into SQLite's ?N form.
func rebindSQLite(query string) string {
	return dollarParam.ReplaceAllString(query, "?$1")
}
