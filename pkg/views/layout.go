package views

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

const styles = `body{margin:0;background:#f8f8f8;font-family:Arial,Helvetica,sans-serif;color:#1f2937}
header{background:#fff;box-shadow:0 1px 2px #bfbfbf;padding:24px 32px}
header h1{margin:0;color:#0369a1}
main{max-width:1100px;margin:24px auto;padding:0 24px}
.card{background:#fff;border-radius:2px;box-shadow:1px 1px 2px #bfbfbf;padding:24px;margin-bottom:16px}
.card h3{color:#0369a1;margin-top:0}
.trace{font-family:monospace;font-size:90%;color:#4a576b;white-space:pre-wrap}
pre{background:#111827;color:#e5e7eb;padding:16px;overflow:auto}
footer{text-align:center;color:#6b7280;padding:24px}`

// page wraps body in the shared HTML document.
func page(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<!DOCTYPE html><html lang="en"><head><meta charset="UTF-8">`+
			`<meta name="viewport" content="width=device-width, initial-scale=1.0"><title>`+
			templ.EscapeString(title)+`</title><style>`+styles+`</style></head><body>`); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</body></html>`)
		return err
	})
}

func header(title, subtitle string) string {
	return `<header><h1>` + templ.EscapeString(title) + `</h1><p>` + templ.EscapeString(subtitle) + `</p></header>`
}

// write renders fixed markup.
func write(s string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, s)
		return err
	})
}
