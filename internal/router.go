package internal

import (
	"net/http"
	"strings"
)

// Router is the interface handlers use to declare routes.
// Routes are matched in registration order.
type Router interface {
	// GET registers a handler for GET requests.
	GET(pattern string, h HandlerFunc, mw ...Middleware) *Route

	// POST registers a handler for POST requests.
	POST(pattern string, h HandlerFunc, mw ...Middleware) *Route

	// PUT registers a handler for PUT requests.
	PUT(pattern string, h HandlerFunc, mw ...Middleware) *Route

	// PATCH registers a handler for PATCH requests.
	PATCH(pattern string, h HandlerFunc, mw ...Middleware) *Route

	// DELETE registers a handler for DELETE requests.
	DELETE(pattern string, h HandlerFunc, mw ...Middleware) *Route

	// Handle registers a handler for an arbitrary method.
	Handle(method, pattern string, h HandlerFunc, mw ...Middleware) *Route

	// Group registers the routes declared in fn under a common pattern
	// prefix, each preceded by mw.
	Group(prefix string, fn func(r Router), mw ...Middleware)

	// Use adds middleware to every route registered on this router afterwards.
	Use(mw ...Middleware)
}

// RouteTable is the ordered list of routes and the dispatcher over it.
// Registration is not safe for concurrent use; dispatch is, once
// registration has finished.
type RouteTable struct {
	root   *routeGroup
	routes []*Route
}

// NewRouteTable creates an empty route table.
func NewRouteTable() *RouteTable {
	t := &RouteTable{}
	t.root = &routeGroup{table: t}
	return t
}

func (t *RouteTable) GET(pattern string, h HandlerFunc, mw ...Middleware) *Route {
	return t.root.GET(pattern, h, mw...)
}

func (t *RouteTable) POST(pattern string, h HandlerFunc, mw ...Middleware) *Route {
	return t.root.POST(pattern, h, mw...)
}

func (t *RouteTable) PUT(pattern string, h HandlerFunc, mw ...Middleware) *Route {
	return t.root.PUT(pattern, h, mw...)
}

func (t *RouteTable) PATCH(pattern string, h HandlerFunc, mw ...Middleware) *Route {
	return t.root.PATCH(pattern, h, mw...)
}

func (t *RouteTable) DELETE(pattern string, h HandlerFunc, mw ...Middleware) *Route {
	return t.root.DELETE(pattern, h, mw...)
}

func (t *RouteTable) Handle(method, pattern string, h HandlerFunc, mw ...Middleware) *Route {
	return t.root.Handle(method, pattern, h, mw...)
}

func (t *RouteTable) Group(prefix string, fn func(r Router), mw ...Middleware) {
	t.root.Group(prefix, fn, mw...)
}

func (t *RouteTable) Use(mw ...Middleware) {
	t.root.Use(mw...)
}

// Routes returns the registered routes in match order.
func (t *RouteTable) Routes() []*Route {
	out := make([]*Route, len(t.routes))
	copy(out, t.routes)
	return out
}

// Dispatch finds the route for the request and executes it.
//
// The escaped request path is compared against every route in order and the
// first pattern match wins whatever its method. When the methods differ the
// request fails with MethodNotAllowed rather than trying later routes.
// Path parameters are added to the request input only for keys the query
// string and form did not already supply.
func (t *RouteTable) Dispatch(c Context) error {
	req := c.Request()
	path := req.URL.EscapedPath()

	for _, rt := range t.routes {
		params, ok := rt.matchPath(path)
		if !ok {
			continue
		}
		if !rt.allows(req.Method) {
			c.SetHeader("Allow", rt.method)
			return MethodNotAllowed(path, rt.method)
		}

		c.Input().fill(params)
		if b, ok := c.(routeBinder); ok {
			b.bindRoute(rt, params)
		}
		return rt.Execute(c)
	}

	return RouteNotFound(path)
}

// routeBinder is implemented by contexts that expose the matched route.
type routeBinder interface {
	bindRoute(rt *Route, params Params)
}

// routeGroup registers routes into a table under a prefix.
type routeGroup struct {
	table       *RouteTable
	prefix      string
	middlewares []Middleware
}

func (g *routeGroup) GET(pattern string, h HandlerFunc, mw ...Middleware) *Route {
	return g.Handle(http.MethodGet, pattern, h, mw...)
}

func (g *routeGroup) POST(pattern string, h HandlerFunc, mw ...Middleware) *Route {
	return g.Handle(http.MethodPost, pattern, h, mw...)
}

func (g *routeGroup) PUT(pattern string, h HandlerFunc, mw ...Middleware) *Route {
	return g.Handle(http.MethodPut, pattern, h, mw...)
}

func (g *routeGroup) PATCH(pattern string, h HandlerFunc, mw ...Middleware) *Route {
	return g.Handle(http.MethodPatch, pattern, h, mw...)
}

func (g *routeGroup) DELETE(pattern string, h HandlerFunc, mw ...Middleware) *Route {
	return g.Handle(http.MethodDelete, pattern, h, mw...)
}

func (g *routeGroup) Handle(method, pattern string, h HandlerFunc, mw ...Middleware) *Route {
	all := make([]Middleware, 0, len(g.middlewares)+len(mw))
	all = append(all, g.middlewares...)
	all = append(all, mw...)

	rt := NewRoute(method, joinPattern(g.prefix, pattern), h, all...)
	g.table.routes = append(g.table.routes, rt)
	return rt
}

func (g *routeGroup) Group(prefix string, fn func(r Router), mw ...Middleware) {
	child := &routeGroup{
		table:       g.table,
		prefix:      joinPattern(g.prefix, prefix),
		middlewares: append(append([]Middleware(nil), g.middlewares...), mw...),
	}
	fn(child)
}

func (g *routeGroup) Use(mw ...Middleware) {
	g.middlewares = append(g.middlewares, mw...)
}

// joinPattern concatenates a group prefix and a pattern with exactly one
// slash between them. An empty pattern addresses the prefix itself.
func joinPattern(prefix, pattern string) string {
	prefix = strings.TrimSuffix(prefix, "/")
	if pattern == "" || pattern == "/" {
		if prefix == "" {
			return "/"
		}
		return prefix
	}
	if !strings.HasPrefix(pattern, "/") {
		pattern = "/" + pattern
	}
	return prefix + pattern
}
