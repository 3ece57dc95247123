package query

import (
	"context"
	"database/sql"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Row is a single result row keyed by column name.
type Row map[string]any

// Dialect controls placeholder syntax.
type Dialect int

const (
	// Postgres uses numbered placeholders: $1, $2, ...
	Postgres Dialect = iota
	// SQLite uses positional placeholders: ?
	SQLite
)

// Placeholder returns the bind marker for the n-th (1-based) parameter.
func (d Dialect) Placeholder(n int) string {
	if d == Postgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

func (d Dialect) String() string {
	switch d {
	case Postgres:
		return "postgres"
	case SQLite:
		return "sqlite"
	default:
		return "unknown"
	}
}

// Executor runs parameterized statements. Each call uses its own
// statement, so an Executor is safe to share between builders.
type Executor interface {
	Query(ctx context.Context, query string, args ...any) ([]Row, error)
	Exec(ctx context.Context, query string, args ...any) (int64, error)
	Dialect() Dialect
}

// PgxQuerier is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type PgxQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type pgxExecutor struct {
	q PgxQuerier
}

// Pgx adapts a pgx pool, connection or transaction.
func Pgx(q PgxQuerier) Executor {
	return pgxExecutor{q: q}
}

func (e pgxExecutor) Query(ctx context.Context, query string, args ...any) ([]Row, error) {
	rows, err := e.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, err
	}

	out := make([]Row, len(maps))
	for i, m := range maps {
		out[i] = Row(m)
	}
	return out, nil
}

func (e pgxExecutor) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	tag, err := e.q.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (pgxExecutor) Dialect() Dialect { return Postgres }

// SQLQuerier is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type SQLQuerier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type sqlExecutor struct {
	q       SQLQuerier
	dialect Dialect
}

// SQL adapts a database/sql handle using the given placeholder dialect.
func SQL(q SQLQuerier, d Dialect) Executor {
	return sqlExecutor{q: q, dialect: d}
}

func (e sqlExecutor) Query(ctx context.Context, query string, args ...any) ([]Row, error) {
	rows, err := e.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	out := make([]Row, 0)
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		row := make(Row, len(cols))
		for i, c := range cols {
			// Drivers may reuse byte buffers between rows.
			if b, ok := vals[i].([]byte); ok {
				vals[i] = append([]byte(nil), b...)
			}
			row[c] = vals[i]
		}
		out = append(out, row)
	}

	return out, rows.Err()
}

func (e sqlExecutor) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := e.q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (e sqlExecutor) Dialect() Dialect { return e.dialect }
