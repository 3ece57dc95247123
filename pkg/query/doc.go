// Package query is a fluent, parameterized SQL builder.
//
// A [Builder] collects a table, columns, an AND-chain of predicates,
// ordering, limit and offset, then renders and executes exactly one
// statement through an [Executor]:
//
//	rows, err := query.New(query.Pgx(pool)).
//	    Table("jobs").
//	    Where("status", "=", "open").
//	    OrderBy("created_at", "DESC").
//	    Limit(20).
//	    Get(ctx)
//
// Every value is sent as a bound parameter; identifiers are validated and
// operators come from a fixed set, so no caller input is spliced into SQL.
//
// # Executors
//
//   - [Pgx] wraps *pgxpool.Pool, *pgx.Conn or pgx.Tx (numbered $n placeholders)
//   - [SQL] wraps *sql.DB or *sql.Tx with an explicit [Dialect]
//
// Builders never open transactions. Run a builder on a pgx.Tx (see
// db.WithTx) when several statements must commit together.
//
// # Pagination
//
// [Builder.Paginate] is offset based; [PageFromRequest] reads the "page"
// query parameter. [Builder.CursorPaginate] is keyed on an integer "id"
// column and builds next/previous links from the request URL:
//
//	page, err := query.New(exec).Table("jobs").
//	    CursorPaginate(ctx, 20, query.RequestURL(r))
//
// # Sharp edges
//
// [Builder.Delete] without predicates deletes every row in the table.
// The previous-page cursor is an estimate (first id minus perPage+1) that
// drifts when rows are inserted or deleted between requests.
package query
