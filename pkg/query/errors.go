package query

import "errors"

// Sentinel errors for query building and execution.
var (
	// ErrNoExecutor is returned when a terminal runs on a builder without a database.
	ErrNoExecutor = errors.New("query: no database configured")

	// ErrNoTable is returned when a terminal runs without Table.
	ErrNoTable = errors.New("query: table not set")

	// ErrInvalidIdentifier is returned for a table or column name that is
	// not a plain (optionally qualified) SQL identifier.
	ErrInvalidIdentifier = errors.New("query: invalid identifier")

	// ErrInvalidOperator is returned for a comparison operator outside the allowed set.
	ErrInvalidOperator = errors.New("query: invalid operator")

	// ErrInvalidDirection is returned for an ORDER BY direction other than ASC or DESC.
	ErrInvalidDirection = errors.New("query: invalid order direction")

	// ErrUnsupportedValue is returned when a value cannot be bound as a parameter.
	ErrUnsupportedValue = errors.New("query: unsupported value type")

	// ErrInvalidLimit is returned for a negative limit or offset.
	ErrInvalidLimit = errors.New("query: limit and offset must be non-negative")

	// ErrOffsetWithoutLimit is returned by terminals of a builder with Offset but no Limit.
	ErrOffsetWithoutLimit = errors.New("query: offset requires a limit")

	// ErrInvalidPage is returned by Paginate for page < 1, perPage < 1, or a
	// page whose offset does not fit in an int.
	ErrInvalidPage = errors.New("query: page and per-page must be positive")

	// ErrInvalidCursor is returned by CursorPaginate when the cursor is not an integer.
	ErrInvalidCursor = errors.New("query: invalid cursor")

	// ErrNoRows is returned by First when the query matches nothing.
	ErrNoRows = errors.New("query: no rows in result set")

	// ErrNoData is returned by Insert and Update with an empty data map.
	ErrNoData = errors.New("query: no data to write")

	// ErrMissingID is returned when a row lacks a usable integer id column.
	ErrMissingID = errors.New("query: row has no integer id")
)

// IsValidation reports whether err is a caller input fault rather than a
// storage failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidPage) ||
		errors.Is(err, ErrInvalidCursor) ||
		errors.Is(err, ErrInvalidLimit) ||
		errors.Is(err, ErrOffsetWithoutLimit) ||
		errors.Is(err, ErrInvalidOperator) ||
		errors.Is(err, ErrInvalidDirection) ||
		errors.Is(err, ErrInvalidIdentifier) ||
		errors.Is(err, ErrUnsupportedValue)
}
