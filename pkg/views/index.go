package views

import (
	"strings"

	"github.com/a-h/templ"
)

// Feature is one card on the landing page.
type Feature struct {
	Title       string
	Description string
}

// DefaultFeatures lists the framework's building blocks.
var DefaultFeatures = []Feature{
	{Title: "Routing", Description: "Declare endpoints with {placeholders}; the first matching pattern wins and wrong methods answer 405."},
	{Title: "Middleware", Description: "Wrap routes and the whole application with ordered middleware: rate limiting, auth, sessions, timeouts."},
	{Title: "Database", Description: "A fluent query builder with bound parameters, offset and cursor pagination, and typed entity mapping."},
	{Title: "Views", Description: "Render components by name with a data bag; errors fall back to JSON or plain text by Accept header."},
}

// Index renders the landing page.
func Index(features []Feature) templ.Component {
	var sb strings.Builder
	sb.WriteString(header("Welcome to Swallow Framework", "A fast and lightweight Go framework for building web applications."))
	sb.WriteString(`<main><h2>Features</h2>`)
	for _, f := range features {
		sb.WriteString(`<div class="card"><h3>` + templ.EscapeString(f.Title) + `</h3><p>` +
			templ.EscapeString(f.Description) + `</p></div>`)
	}
	sb.WriteString(`</main>`)
	return page("Welcome to Swallow Framework", write(sb.String()))
}
