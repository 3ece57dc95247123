package internal

import (
	"net/http"
	"strings"
)

// Params maps path parameter names to the raw (still escaped) path segments
// they matched.
type Params map[string]string

// segment is one "/"-separated piece of a route pattern.
// A non-empty param means the segment is a placeholder.
type segment struct {
	literal string
	param   string
}

// Route binds an HTTP method and a path pattern to a handler.
//
// Patterns are split on "/". A segment of the form {name} matches one or more
// non-slash bytes and binds them to name; every other segment must match
// byte-for-byte. A route is immutable after registration except for its
// middleware list, which can only grow.
type Route struct {
	handler     HandlerFunc
	method      string
	pattern     string
	name        string
	segments    []segment
	middlewares []Middleware
}

// NewRoute creates a route. The method is upper-cased.
func NewRoute(method, pattern string, h HandlerFunc, mw ...Middleware) *Route {
	r := &Route{
		handler:     h,
		method:      strings.ToUpper(method),
		pattern:     pattern,
		middlewares: append([]Middleware(nil), mw...),
	}

	parts := strings.Split(pattern, "/")
	r.segments = make([]segment, len(parts))
	for i, p := range parts {
		if len(p) > 2 && p[0] == '{' && p[len(p)-1] == '}' {
			r.segments[i] = segment{param: p[1 : len(p)-1]}
			continue
		}
		r.segments[i] = segment{literal: p}
	}

	return r
}

// Method returns the HTTP method the route answers.
func (r *Route) Method() string { return r.method }

// Pattern returns the path pattern as registered.
func (r *Route) Pattern() string { return r.pattern }

// Name returns the name given with Named, usually the action name.
func (r *Route) Name() string { return r.name }

// Named sets a display name for the route.
func (r *Route) Named(name string) *Route {
	r.name = name
	return r
}

// Use appends middleware that runs only for this route, after the
// middleware given at registration.
func (r *Route) Use(mw ...Middleware) *Route {
	r.middlewares = append(r.middlewares, mw...)
	return r
}

// Match reports whether method and path address this route and returns
// the bound parameters. Request methods are case-sensitive: "get" does not
// match a GET route.
func (r *Route) Match(method, path string) (Params, bool) {
	if !r.allows(method) {
		return nil, false
	}
	return r.matchPath(path)
}

func (r *Route) allows(method string) bool {
	return method == r.method
}

func (r *Route) matchPath(path string) (Params, bool) {
	parts := strings.Split(path, "/")
	if len(parts) != len(r.segments) {
		return nil, false
	}

	var params Params
	for i, s := range r.segments {
		if s.param == "" {
			if parts[i] != s.literal {
				return nil, false
			}
			continue
		}
		if parts[i] == "" {
			return nil, false
		}
		if params == nil {
			params = make(Params, len(r.segments))
		}
		params[s.param] = parts[i]
	}

	if params == nil {
		params = Params{}
	}
	return params, true
}

// Execute runs the route middleware in registration order and then the
// handler. A middleware rejects the request by returning an error instead
// of calling next.
func (r *Route) Execute(c Context) error {
	if r.handler == nil {
		return NewHTTPError(http.StatusInternalServerError,
			"route "+r.method+" "+r.pattern+" has no handler",
			WithError(ErrNoHandler))
	}
	return chain(r.handler, r.middlewares)(c)
}

// chain wraps h so that mw[0] runs first.
func chain(h HandlerFunc, mw []Middleware) HandlerFunc {
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	return h
}
