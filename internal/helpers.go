package internal

import (
	"reflect"
	"strconv"
)

// Scalar is the set of types the typed request accessors convert to.
type Scalar interface {
	~string | ~int | ~int64 | ~float64 | ~bool
}

// ContextValue returns the context value stored under key as T,
// or the zero value.
func ContextValue[T any](c Context, key any) T {
	v, _ := c.Get(key).(T)
	return v
}

// Param returns the path parameter name as T. Unparsable values yield the
// zero value.
func Param[T Scalar](c Context, name string) T {
	v, _ := parseScalar[T](c.Param(name))
	return v
}

// Query returns the query parameter name as T. Unparsable values yield the
// zero value.
func Query[T Scalar](c Context, name string) T {
	v, _ := parseScalar[T](c.Query(name))
	return v
}

// QueryDefault returns the query parameter name as T, or def when it is
// empty or unparsable.
func QueryDefault[T Scalar](c Context, name string, def T) T {
	return orDefault(c.Query(name), def)
}

// InputValue returns the data bag entry name as T, or def when it is
// absent or unparsable.
func InputValue[T Scalar](c Context, name string, def T) T {
	raw, _ := c.Input().Get(name)
	return orDefault(raw, def)
}

func orDefault[T Scalar](raw string, def T) T {
	if raw == "" {
		return def
	}
	if v, ok := parseScalar[T](raw); ok {
		return v
	}
	return def
}

// parseScalar converts raw by the kind of T, so named types such as
// `type JobID int64` parse like their underlying type.
func parseScalar[T Scalar](raw string) (T, bool) {
	var v T
	rv := reflect.ValueOf(&v).Elem()

	switch rv.Kind() {
	case reflect.String:
		rv.SetString(raw)
	case reflect.Int, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, rv.Type().Bits())
		if err != nil {
			return v, false
		}
		rv.SetInt(n)
	case reflect.Float64:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return v, false
		}
		rv.SetFloat(f)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return v, false
		}
		rv.SetBool(b)
	default:
		return v, false
	}
	return v, true
}
