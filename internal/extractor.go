package internal

import (
	"fmt"
	"strings"
)

// ExtractorSource yields a request value, reporting false when it is absent
// or empty.
type ExtractorSource = func(Context) (string, bool)

// Extractor tries its sources in order. The rate limiter uses one to key
// clients.
type Extractor []ExtractorSource

// NewExtractor creates an Extractor over sources.
func NewExtractor(sources ...ExtractorSource) Extractor {
	return Extractor(sources)
}

// Extract returns the first value a source yields.
func (e Extractor) Extract(c Context) (string, bool) {
	for _, src := range e {
		if v, ok := src(c); ok {
			return v, true
		}
	}
	return "", false
}

func present(v string) (string, bool) {
	return v, v != ""
}

// FromHeader reads a request header.
func FromHeader(name string) ExtractorSource {
	return func(c Context) (string, bool) { return present(c.Header(name)) }
}

// FromQuery reads a query parameter.
func FromQuery(name string) ExtractorSource {
	return func(c Context) (string, bool) { return present(c.Query(name)) }
}

// FromParam reads a path parameter of the matched route.
func FromParam(name string) ExtractorSource {
	return func(c Context) (string, bool) { return present(c.Param(name)) }
}

// FromForm reads a form field.
func FromForm(name string) ExtractorSource {
	return func(c Context) (string, bool) { return present(c.Form(name)) }
}

// FromInput reads the request data bag, including values set by middleware.
func FromInput(name string) ExtractorSource {
	return func(c Context) (string, bool) {
		v, _ := c.Input().Get(name)
		return present(v)
	}
}

// FromClientIP yields the client address.
func FromClientIP() ExtractorSource {
	return func(c Context) (string, bool) { return present(c.ClientIP()) }
}

// FromCookie reads a cookie value.
func FromCookie(name string) ExtractorSource {
	return func(c Context) (string, bool) {
		ck, err := c.Request().Cookie(name)
		if err != nil {
			return "", false
		}
		return present(ck.Value)
	}
}

// FromSession reads a session value, formatted with fmt.Sprint.
func FromSession(key string) ExtractorSource {
	return func(c Context) (string, bool) {
		val, err := c.SessionValue(key)
		if err != nil || val == nil {
			return "", false
		}
		return present(fmt.Sprint(val))
	}
}

// FromBearerToken reads the token of an "Authorization: Bearer" header.
// The scheme is matched case-insensitively.
func FromBearerToken() ExtractorSource {
	return func(c Context) (string, bool) {
		scheme, token, ok := strings.Cut(c.Header("Authorization"), " ")
		if !ok || !strings.EqualFold(scheme, "bearer") {
			return "", false
		}
		return present(strings.TrimSpace(token))
	}
}
