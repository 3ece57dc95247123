package views

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"
)

// Error renders the error page: "<status> <message>" followed by the
// stack trace when one is given (debug mode).
func Error(status int, message string, trace []string) templ.Component {
	body := templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var sb strings.Builder
		sb.WriteString(`<main><div class="card"><h3>`)
		sb.WriteString(strconv.Itoa(status) + " " + templ.EscapeString(message))
		sb.WriteString(`</h3></div>`)
		if len(trace) > 0 {
			sb.WriteString(`<div class="card trace">`)
			for _, frame := range trace {
				sb.WriteString(templ.EscapeString(frame))
				sb.WriteString("\n")
			}
			sb.WriteString(`</div>`)
		}
		sb.WriteString(`</main>`)
		_, err := io.WriteString(w, sb.String())
		return err
	})
	return page("Error Page", body)
}
