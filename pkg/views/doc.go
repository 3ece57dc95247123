// Package views holds the built-in HTML pages: the error page, the
// landing page and the markdown docs page.
//
// Components satisfy templ.Component and render without code generation.
// Docs converts markdown with goldmark and sanitizes the result with
// bluemonday before caching it.
package views
