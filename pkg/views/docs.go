package views

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"time"

	"github.com/a-h/templ"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/dmitrymomot/swallow/pkg/cache"
)

//go:embed docs.md
var defaultDocs []byte

// ErrRender is returned when markdown cannot be converted.
var ErrRender = errors.New("views: failed to render markdown")

// Docs renders markdown documentation into sanitized HTML.
// Rendered pages are cached by name, and concurrent first renders of the
// same page share one conversion.
type Docs struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
	loader *cache.Loader[string]
	pages  map[string][]byte
}

// NewDocs creates a docs renderer over rendered store c.
// The built-in page is registered as "index".
func NewDocs(c cache.Cache[string]) *Docs {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("code")

	return &Docs{
		md:     goldmark.New(goldmark.WithExtensions(extension.GFM)),
		policy: policy,
		loader: cache.NewLoader(c),
		pages:  map[string][]byte{"index": defaultDocs},
	}
}

// Add registers a markdown page under name, replacing any existing one.
// Pages must be added before the first HTML call.
func (d *Docs) Add(name string, markdown []byte) {
	d.pages[name] = markdown
}

// HTML returns the sanitized HTML of page name.
func (d *Docs) HTML(ctx context.Context, name string) (string, error) {
	src, ok := d.pages[name]
	if !ok {
		return "", cache.ErrNotFound
	}
	return d.loader.GetOrSet(ctx, "docs:"+name, func(context.Context) (string, time.Time, error) {
		var buf bytes.Buffer
		if err := d.md.Convert(src, &buf); err != nil {
			return "", time.Time{}, errors.Join(ErrRender, err)
		}
		return d.policy.Sanitize(buf.String()), time.Time{}, nil
	})
}

// Page renders docs page name inside the site layout.
func (d *Docs) Page(ctx context.Context, name string) (templ.Component, error) {
	html, err := d.HTML(ctx, name)
	if err != nil {
		return nil, err
	}
	body := header("Swallow Framework Docs", "Routing, middleware, database and views.") +
		`<main><div class="card">` + html + `</div></main>` +
		`<footer>&copy; Swallow Framework.</footer>`
	return page("Swallow Framework Docs", write(body)), nil
}
