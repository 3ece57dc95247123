package query

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strings"
	"time"
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

var operators = []string{
	"=", "!=", "<>", "<", "<=", ">", ">=",
	"LIKE", "NOT LIKE", "IN", "NOT IN", "IS", "IS NOT",
}

type predicate struct {
	value    any
	column   string
	operator string
}

type order struct {
	column    string
	direction string
}

// Builder accumulates a single query: table, columns, an AND-chain of
// predicates, ordering, limit and offset. Setters mutate and return the
// builder; terminals (Get, First, Insert, Update, Delete, Paginate,
// CursorPaginate) render parameterized SQL and execute it once.
//
// Invalid input recorded by a setter is reported by the terminal.
// A Builder must not be shared between goroutines; create one per query.
type Builder struct {
	exec    Executor
	logger  *slog.Logger
	err     error
	limit   *int
	offset  *int
	table   string
	columns []string
	where   []predicate
	orderBy []order
	timeout time.Duration
}

// Option configures a Builder.
type Option func(*Builder)

// WithTimeout bounds every terminal with a deadline derived from its context.
func WithTimeout(d time.Duration) Option {
	return func(b *Builder) {
		b.timeout = d
	}
}

// WithLogger logs every executed statement at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) {
		b.logger = l
	}
}

// New creates a builder that runs on exec.
func New(exec Executor, opts ...Option) *Builder {
	b := &Builder{exec: exec}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Table sets the table the query operates on.
func (b *Builder) Table(name string) *Builder {
	if !identRe.MatchString(name) {
		b.fail(fmt.Errorf("%w: table %q", ErrInvalidIdentifier, name))
	}
	b.table = name
	return b
}

// Select sets the result columns. No columns (or "*") selects all.
func (b *Builder) Select(columns ...string) *Builder {
	b.columns = b.columns[:0]
	for _, c := range columns {
		if c == "*" {
			b.columns = nil
			return b
		}
		if !identRe.MatchString(c) {
			b.fail(fmt.Errorf("%w: column %q", ErrInvalidIdentifier, c))
		}
		b.columns = append(b.columns, c)
	}
	return b
}

// Where appends "column operator value" to the AND-chain.
// The value is always sent as a bound parameter. IN and NOT IN take a
// non-empty slice; IS and IS NOT take nil.
func (b *Builder) Where(column, operator string, value any) *Builder {
	op := strings.ToUpper(strings.Join(strings.Fields(operator), " "))
	switch {
	case !identRe.MatchString(column):
		b.fail(fmt.Errorf("%w: column %q", ErrInvalidIdentifier, column))
	case !slices.Contains(operators, op):
		b.fail(fmt.Errorf("%w: %q", ErrInvalidOperator, operator))
	case (op == "IS" || op == "IS NOT") && value != nil:
		b.fail(fmt.Errorf("%w: %s only compares with NULL", ErrUnsupportedValue, op))
	}
	b.where = append(b.where, predicate{column: column, operator: op, value: value})
	return b
}

// OrderBy appends an ORDER BY term. Direction is ASC or DESC (case-insensitive);
// empty means ASC.
func (b *Builder) OrderBy(column, direction string) *Builder {
	dir := strings.ToUpper(strings.TrimSpace(direction))
	if dir == "" {
		dir = "ASC"
	}
	switch {
	case !identRe.MatchString(column):
		b.fail(fmt.Errorf("%w: column %q", ErrInvalidIdentifier, column))
	case dir != "ASC" && dir != "DESC":
		b.fail(fmt.Errorf("%w: %q", ErrInvalidDirection, direction))
	}
	b.orderBy = append(b.orderBy, order{column: column, direction: dir})
	return b
}

// Limit caps the number of returned rows.
func (b *Builder) Limit(n int) *Builder {
	if n < 0 {
		b.fail(fmt.Errorf("%w: limit %d", ErrInvalidLimit, n))
	}
	b.limit = &n
	return b
}

// Offset skips n rows. It requires Limit: terminals fail with
// ErrOffsetWithoutLimit otherwise.
func (b *Builder) Offset(n int) *Builder {
	if n < 0 {
		b.fail(fmt.Errorf("%w: offset %d", ErrInvalidLimit, n))
	}
	b.offset = &n
	return b
}

// Clone returns an independent copy of the builder state.
func (b *Builder) Clone() *Builder {
	c := *b
	c.columns = slices.Clone(b.columns)
	c.where = slices.Clone(b.where)
	c.orderBy = slices.Clone(b.orderBy)
	if b.limit != nil {
		n := *b.limit
		c.limit = &n
	}
	if b.offset != nil {
		n := *b.offset
		c.offset = &n
	}
	return &c
}

// ToSQL renders the SELECT statement and its arguments without executing it.
func (b *Builder) ToSQL() (string, []any, error) {
	if err := b.check(); err != nil {
		return "", nil, err
	}

	var (
		sb   strings.Builder
		args []any
	)

	sb.WriteString("SELECT ")
	if len(b.columns) == 0 {
		sb.WriteString("*")
	} else {
		sb.WriteString(strings.Join(b.columns, ", "))
	}
	sb.WriteString(" FROM ")
	sb.WriteString(b.table)

	args, err := b.writeWhere(&sb, args)
	if err != nil {
		return "", nil, err
	}

	if len(b.orderBy) > 0 {
		terms := make([]string, len(b.orderBy))
		for i, o := range b.orderBy {
			terms[i] = o.column + " " + o.direction
		}
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(terms, ", "))
	}

	if b.limit != nil {
		fmt.Fprintf(&sb, " LIMIT %d", *b.limit)
		if b.offset != nil {
			fmt.Fprintf(&sb, " OFFSET %d", *b.offset)
		}
	}

	return sb.String(), args, nil
}

// writeWhere renders the predicate chain, numbering placeholders after
// the len(args) already bound.
func (b *Builder) writeWhere(sb *strings.Builder, args []any) ([]any, error) {
	if len(b.where) == 0 {
		return args, nil
	}

	d := b.exec.Dialect()
	sb.WriteString(" WHERE ")

	for i, p := range b.where {
		if i > 0 {
			sb.WriteString(" AND ")
		}

		switch p.operator {
		case "IS", "IS NOT":
			sb.WriteString(p.column + " " + p.operator + " NULL")

		case "IN", "NOT IN":
			vals, err := listValues(p.value)
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", p.column, err)
			}
			marks := make([]string, len(vals))
			for j, v := range vals {
				args = append(args, v)
				marks[j] = d.Placeholder(len(args))
			}
			sb.WriteString(p.column + " " + p.operator + " (" + strings.Join(marks, ", ") + ")")

		default:
			v, err := bindValue(p.value)
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", p.column, err)
			}
			args = append(args, v)
			sb.WriteString(p.column + " " + p.operator + " " + d.Placeholder(len(args)))
		}
	}

	return args, nil
}

func (b *Builder) check() error {
	if b.err != nil {
		return b.err
	}
	if b.exec == nil {
		return ErrNoExecutor
	}
	if b.table == "" {
		return ErrNoTable
	}
	if b.offset != nil && b.limit == nil {
		return fmt.Errorf("%w: offset %d", ErrOffsetWithoutLimit, *b.offset)
	}
	return nil
}

// fail records the first setter error.
func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

func (b *Builder) context(ctx context.Context) (context.Context, context.CancelFunc) {
	if b.timeout > 0 {
		return context.WithTimeout(ctx, b.timeout)
	}
	return ctx, func() {}
}

func (b *Builder) log(ctx context.Context, stmt string, args []any, started time.Time, err error) {
	if b.logger == nil {
		return
	}
	attrs := []slog.Attr{
		slog.String("sql", stmt),
		slog.Int("args", len(args)),
		slog.Duration("duration", time.Since(started)),
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	b.logger.LogAttrs(ctx, slog.LevelDebug, "query executed", attrs...)
}
