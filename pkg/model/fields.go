package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrymomot/swallow/pkg/query"
)

// Setter copies one column value onto a record.
type Setter[T any] func(dst *T, v any) error

// Fields declares the columns a record type maps, keyed by column name.
type Fields[T any] map[string]Setter[T]

// Int64 maps an integer column. NULL leaves the field untouched.
func Int64[T any](field func(*T) *int64) Setter[T] {
	return func(dst *T, v any) error {
		if v == nil {
			return nil
		}
		n, ok := query.ToInt64(v)
		if !ok {
			return mismatch("int64", v)
		}
		*field(dst) = n
		return nil
	}
}

// Int maps an integer column onto an int field.
func Int[T any](field func(*T) *int) Setter[T] {
	return func(dst *T, v any) error {
		if v == nil {
			return nil
		}
		n, ok := query.ToInt64(v)
		if !ok {
			return mismatch("int", v)
		}
		*field(dst) = int(n)
		return nil
	}
}

// String maps a text column. Byte slices are converted.
func String[T any](field func(*T) *string) Setter[T] {
	return func(dst *T, v any) error {
		if v == nil {
			return nil
		}
		s, ok := toString(v)
		if !ok {
			return mismatch("string", v)
		}
		*field(dst) = s
		return nil
	}
}

// StringPtr maps a nullable text column; NULL becomes nil.
func StringPtr[T any](field func(*T) **string) Setter[T] {
	return func(dst *T, v any) error {
		if v == nil {
			*field(dst) = nil
			return nil
		}
		s, ok := toString(v)
		if !ok {
			return mismatch("string", v)
		}
		*field(dst) = &s
		return nil
	}
}

// Float64 maps a numeric column.
func Float64[T any](field func(*T) *float64) Setter[T] {
	return func(dst *T, v any) error {
		if v == nil {
			return nil
		}
		var f float64
		switch x := v.(type) {
		case float64:
			f = x
		case float32:
			f = float64(x)
		case string:
			p, err := strconv.ParseFloat(x, 64)
			if err != nil {
				return mismatch("float64", v)
			}
			f = p
		case []byte:
			p, err := strconv.ParseFloat(string(x), 64)
			if err != nil {
				return mismatch("float64", v)
			}
			f = p
		default:
			n, ok := query.ToInt64(v)
			if !ok {
				return mismatch("float64", v)
			}
			f = float64(n)
		}
		*field(dst) = f
		return nil
	}
}

// Bool maps a boolean column. Integer 0/1 and "true"/"false" strings are accepted.
func Bool[T any](field func(*T) *bool) Setter[T] {
	return func(dst *T, v any) error {
		if v == nil {
			return nil
		}
		switch x := v.(type) {
		case bool:
			*field(dst) = x
			return nil
		case string:
			b, err := strconv.ParseBool(x)
			if err != nil {
				return mismatch("bool", v)
			}
			*field(dst) = b
			return nil
		}
		n, ok := query.ToInt64(v)
		if !ok {
			return mismatch("bool", v)
		}
		*field(dst) = n != 0
		return nil
	}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Time maps a timestamp column. Text timestamps and unix seconds are accepted.
func Time[T any](field func(*T) *time.Time) Setter[T] {
	return func(dst *T, v any) error {
		if v == nil {
			return nil
		}
		switch x := v.(type) {
		case time.Time:
			*field(dst) = x
			return nil
		case string, []byte:
			s, _ := toString(x)
			for _, layout := range timeLayouts {
				if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
					*field(dst) = t
					return nil
				}
			}
			return mismatch("time", v)
		}
		n, ok := query.ToInt64(v)
		if !ok {
			return mismatch("time", v)
		}
		*field(dst) = time.Unix(n, 0).UTC()
		return nil
	}
}

// Bytes maps a binary column.
func Bytes[T any](field func(*T) *[]byte) Setter[T] {
	return func(dst *T, v any) error {
		switch x := v.(type) {
		case nil:
			*field(dst) = nil
		case []byte:
			*field(dst) = x
		case string:
			*field(dst) = []byte(x)
		default:
			return mismatch("[]byte", v)
		}
		return nil
	}
}

// Any stores the raw driver value.
func Any[T any](field func(*T) *any) Setter[T] {
	return func(dst *T, v any) error {
		*field(dst) = v
		return nil
	}
}

func toString(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case []byte:
		return string(x), true
	case fmt.Stringer:
		return x.String(), true
	}
	return "", false
}

func mismatch(want string, v any) error {
	return fmt.Errorf("%w: want %s, got %T", ErrTypeMismatch, want, v)
}
