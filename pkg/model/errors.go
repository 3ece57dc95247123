package model

import "errors"

var (
	// ErrUnknownColumn is returned under FailOnUnknown when a row carries a
	// column with no declared field.
	ErrUnknownColumn = errors.New("model: unknown column")

	// ErrTypeMismatch is returned when a column value cannot be converted to its field type.
	ErrTypeMismatch = errors.New("model: column type mismatch")

	// ErrNotFound is returned by First and Find when no row matches.
	ErrNotFound = errors.New("model: record not found")
)
