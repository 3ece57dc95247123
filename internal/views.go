package internal

import (
	"context"
	"io"
	"sort"
)

// Component is the interface for renderable templates.
// This is compatible with templ.Component.
type Component interface {
	Render(ctx context.Context, w io.Writer) error
}

// ViewFunc builds the component for a named view from handler data.
type ViewFunc func(c Context, data any) (Component, error)

// ErrorViewName is the view the exception handler renders for HTML clients.
const ErrorViewName = "error"

// ErrorPage is the data passed to the error view.
type ErrorPage struct {
	Message    string
	Trace      []string
	StatusCode int
}

// Views maps view names to their builders.
// The registry is filled during setup and read-only afterwards.
type Views struct {
	views map[string]ViewFunc
}

// NewViews creates an empty registry.
func NewViews() *Views {
	return &Views{views: make(map[string]ViewFunc)}
}

// Register adds or replaces the view called name.
func (v *Views) Register(name string, fn ViewFunc) *Views {
	v.views[name] = fn
	return v
}

// Lookup returns the view called name.
func (v *Views) Lookup(name string) (ViewFunc, bool) {
	if v == nil {
		return nil, false
	}
	fn, ok := v.views[name]
	return fn, ok && fn != nil
}

// Names returns the registered view names in sorted order.
func (v *Views) Names() []string {
	if v == nil {
		return nil
	}
	names := make([]string, 0, len(v.views))
	for n := range v.views {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
