package query

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Get executes the SELECT and returns all rows. An empty result is an
// empty slice, not an error.
func (b *Builder) Get(ctx context.Context) ([]Row, error) {
	stmt, args, err := b.ToSQL()
	if err != nil {
		return nil, err
	}

	ctx, cancel := b.context(ctx)
	defer cancel()

	started := time.Now()
	rows, err := b.exec.Query(ctx, stmt, args...)
	b.log(ctx, stmt, args, started, err)
	if err != nil {
		return nil, fmt.Errorf("query: select %s: %w", b.table, err)
	}
	if rows == nil {
		rows = []Row{}
	}

	return rows, nil
}

// First returns the first matching row. Returns ErrNoRows when nothing matches.
func (b *Builder) First(ctx context.Context) (Row, error) {
	rows, err := b.Clone().Limit(1).Get(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoRows
	}
	return rows[0], nil
}

// Insert writes one row and returns the store-assigned id
// (INSERT ... RETURNING id). Columns are written in sorted order.
func (b *Builder) Insert(ctx context.Context, data map[string]any) (int64, error) {
	if err := b.check(); err != nil {
		return 0, err
	}
	if len(data) == 0 {
		return 0, ErrNoData
	}

	cols := sortedKeys(data)
	d := b.exec.Dialect()
	args := make([]any, 0, len(cols))
	marks := make([]string, 0, len(cols))

	for _, c := range cols {
		if !identRe.MatchString(c) {
			return 0, fmt.Errorf("%w: column %q", ErrInvalidIdentifier, c)
		}
		v, err := bindValue(data[c])
		if err != nil {
			return 0, fmt.Errorf("column %s: %w", c, err)
		}
		args = append(args, v)
		marks = append(marks, d.Placeholder(len(args)))
	}

	stmt := "INSERT INTO " + b.table + " (" + strings.Join(cols, ", ") + ") VALUES (" +
		strings.Join(marks, ", ") + ") RETURNING id"

	ctx, cancel := b.context(ctx)
	defer cancel()

	started := time.Now()
	rows, err := b.exec.Query(ctx, stmt, args...)
	b.log(ctx, stmt, args, started, err)
	if err != nil {
		return 0, fmt.Errorf("query: insert %s: %w", b.table, err)
	}
	if len(rows) == 0 {
		return 0, ErrMissingID
	}

	id, ok := ToInt64(rows[0]["id"])
	if !ok {
		return 0, ErrMissingID
	}
	return id, nil
}

// Update sets data on every row matching the predicates and returns the
// affected row count. SET values are bound before WHERE values.
func (b *Builder) Update(ctx context.Context, data map[string]any) (int64, error) {
	if err := b.check(); err != nil {
		return 0, err
	}
	if len(data) == 0 {
		return 0, ErrNoData
	}

	d := b.exec.Dialect()
	cols := sortedKeys(data)
	args := make([]any, 0, len(cols)+len(b.where))
	sets := make([]string, 0, len(cols))

	for _, c := range cols {
		if !identRe.MatchString(c) {
			return 0, fmt.Errorf("%w: column %q", ErrInvalidIdentifier, c)
		}
		v, err := bindValue(data[c])
		if err != nil {
			return 0, fmt.Errorf("column %s: %w", c, err)
		}
		args = append(args, v)
		sets = append(sets, c+" = "+d.Placeholder(len(args)))
	}

	var sb strings.Builder
	sb.WriteString("UPDATE " + b.table + " SET " + strings.Join(sets, ", "))

	args, err := b.writeWhere(&sb, args)
	if err != nil {
		return 0, err
	}

	return b.execStatement(ctx, "update", sb.String(), args)
}

// Delete removes every row matching the predicates and returns the
// affected row count.
//
// Without predicates Delete empties the whole table.
func (b *Builder) Delete(ctx context.Context) (int64, error) {
	if err := b.check(); err != nil {
		return 0, err
	}

	var sb strings.Builder
	sb.WriteString("DELETE FROM " + b.table)

	args, err := b.writeWhere(&sb, nil)
	if err != nil {
		return 0, err
	}

	return b.execStatement(ctx, "delete", sb.String(), args)
}

func (b *Builder) execStatement(ctx context.Context, verb, stmt string, args []any) (int64, error) {
	ctx, cancel := b.context(ctx)
	defer cancel()

	started := time.Now()
	n, err := b.exec.Exec(ctx, stmt, args...)
	b.log(ctx, stmt, args, started, err)
	if err != nil {
		return 0, fmt.Errorf("query: %s %s: %w", verb, b.table, err)
	}
	return n, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
