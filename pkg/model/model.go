package model

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/dmitrymomot/swallow/pkg/query"
)

// UnknownColumnPolicy decides what happens to result columns with no declared field.
type UnknownColumnPolicy int

const (
	// IgnoreUnknown drops undeclared columns.
	IgnoreUnknown UnknownColumnPolicy = iota
	// FailOnUnknown rejects rows carrying undeclared columns.
	FailOnUnknown
)

// Model binds a record type to one table and maps result rows onto it
// through explicitly declared fields.
//
// A Model holds no query state: every call builds its own query, so a
// Model is safe for concurrent use.
type Model[T any] struct {
	exec   query.Executor
	fields Fields[T]
	table  string
	qopts  []query.Option
	policy UnknownColumnPolicy
}

// Option configures a Model.
type Option func(*options)

type options struct {
	qopts  []query.Option
	policy UnknownColumnPolicy
}

// WithUnknownColumns sets the policy for undeclared columns. Default: IgnoreUnknown.
func WithUnknownColumns(p UnknownColumnPolicy) Option {
	return func(o *options) {
		o.policy = p
	}
}

// WithQueryOptions applies query options (timeouts, logging) to every builder.
func WithQueryOptions(opts ...query.Option) Option {
	return func(o *options) {
		o.qopts = append(o.qopts, opts...)
	}
}

// New creates a Model of T over table.
func New[T any](exec query.Executor, table string, fields Fields[T], opts ...Option) *Model[T] {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return &Model[T]{
		exec:   exec,
		fields: fields,
		table:  table,
		qopts:  o.qopts,
		policy: o.policy,
	}
}

// Table returns the table name.
func (m *Model[T]) Table() string {
	return m.table
}

// Query returns a new builder scoped to the model table.
func (m *Model[T]) Query() *query.Builder {
	return query.New(m.exec, m.qopts...).Table(m.table)
}

// Map converts a result row to a record. Columns missing from the row keep
// their zero value.
func (m *Model[T]) Map(row query.Row) (T, error) {
	var rec T
	for col, v := range row {
		set, ok := m.fields[col]
		if !ok {
			if m.policy == FailOnUnknown {
				return rec, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, m.table, col)
			}
			continue
		}
		if err := set(&rec, v); err != nil {
			return rec, fmt.Errorf("model: %s.%s: %w", m.table, col, err)
		}
	}
	return rec, nil
}

// MapAll converts rows to records.
func (m *Model[T]) MapAll(rows []query.Row) ([]T, error) {
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		rec, err := m.Map(r)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// scope returns b, or a fresh table-scoped builder when b is nil.
func (m *Model[T]) scope(b *query.Builder) *query.Builder {
	if b == nil {
		return m.Query()
	}
	return b
}

// Get runs b (nil means the whole table) and maps every row.
func (m *Model[T]) Get(ctx context.Context, b *query.Builder) ([]T, error) {
	rows, err := m.scope(b).Get(ctx)
	if err != nil {
		return nil, err
	}
	return m.MapAll(rows)
}

// First returns the first record matched by b, or ErrNotFound.
func (m *Model[T]) First(ctx context.Context, b *query.Builder) (T, error) {
	row, err := m.scope(b).First(ctx)
	if err != nil {
		var zero T
		if errors.Is(err, query.ErrNoRows) {
			return zero, ErrNotFound
		}
		return zero, err
	}
	return m.Map(row)
}

// Find returns the record with the given id, or ErrNotFound.
func (m *Model[T]) Find(ctx context.Context, id int64) (T, error) {
	return m.First(ctx, m.Query().Where("id", "=", id))
}

// Paginate returns one offset page of records.
func (m *Model[T]) Paginate(ctx context.Context, b *query.Builder, perPage, page int) ([]T, error) {
	rows, err := m.scope(b).Paginate(ctx, perPage, page)
	if err != nil {
		return nil, err
	}
	return m.MapAll(rows)
}

// CursorPaginate returns one cursor page of records; see query.Builder.CursorPaginate.
func (m *Model[T]) CursorPaginate(ctx context.Context, b *query.Builder, perPage int, current *url.URL) (query.Page[T], error) {
	page, err := m.scope(b).CursorPaginate(ctx, perPage, current)
	if err != nil {
		return query.Page[T]{}, err
	}
	return query.MapPage(page, m.Map)
}

// Insert writes a row and returns its id.
func (m *Model[T]) Insert(ctx context.Context, data map[string]any) (int64, error) {
	return m.Query().Insert(ctx, data)
}

// Update applies data to the rows matched by b.
// A nil b updates every row in the table.
func (m *Model[T]) Update(ctx context.Context, b *query.Builder, data map[string]any) (int64, error) {
	return m.scope(b).Update(ctx, data)
}

// Delete removes the rows matched by b.
// A nil b deletes every row in the table.
func (m *Model[T]) Delete(ctx context.Context, b *query.Builder) (int64, error) {
	return m.scope(b).Delete(ctx)
}
