package query

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Query parameters consumed by pagination.
const (
	PageParam   = "page"
	CursorParam = "cursor"
)

// cursorColumn is the integer, monotonically increasing column cursor
// pagination is keyed on.
const cursorColumn = "id"

// Page is one window of a cursor-paginated result.
type Page[T any] struct {
	NextPageURL *string `json:"nextPageUrl"`
	PrevPageURL *string `json:"prevPageUrl"`
	NextCursor  *int64  `json:"-"`
	PrevCursor  *int64  `json:"-"`
	Data        []T     `json:"data"`
	HasNextPage bool    `json:"hasNextPage"`
	HasPrevPage bool    `json:"hasPrevPage"`
}

// MapPage converts the rows of p with fn, keeping its navigation fields.
func MapPage[T any](p Page[Row], fn func(Row) (T, error)) (Page[T], error) {
	out := Page[T]{
		NextPageURL: p.NextPageURL,
		PrevPageURL: p.PrevPageURL,
		NextCursor:  p.NextCursor,
		PrevCursor:  p.PrevCursor,
		HasNextPage: p.HasNextPage,
		HasPrevPage: p.HasPrevPage,
		Data:        make([]T, 0, len(p.Data)),
	}
	for _, r := range p.Data {
		v, err := fn(r)
		if err != nil {
			return Page[T]{}, err
		}
		out.Data = append(out.Data, v)
	}
	return out, nil
}

// Paginate returns page number page (1-based) of perPage rows using
// LIMIT perPage OFFSET (page-1)*perPage.
// A page or perPage below 1, or a page too large for its offset to fit in
// an int, fails with ErrInvalidPage.
func (b *Builder) Paginate(ctx context.Context, perPage, page int) ([]Row, error) {
	if perPage < 1 || page < 1 || page-1 > math.MaxInt/perPage {
		return nil, fmt.Errorf("%w: page=%d per_page=%d", ErrInvalidPage, page, perPage)
	}
	return b.Clone().Limit(perPage).Offset((page - 1) * perPage).Get(ctx)
}

// PageFromRequest returns the "page" query parameter of r, or def when it
// is absent. A present but non-numeric value yields 0, which Paginate rejects.
func PageFromRequest(r *http.Request, def int) int {
	q := r.URL.Query()
	if !q.Has(PageParam) {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(q.Get(PageParam)))
	if err != nil {
		return 0
	}
	return n
}

// RequestURL returns the absolute URL of r. The scheme is https when the
// connection is TLS or a proxy reports X-Forwarded-Proto: https.
func RequestURL(r *http.Request) *url.URL {
	u := *r.URL
	u.Scheme = "http"
	if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		u.Scheme = "https"
	}
	u.Host = r.Host
	return &u
}

// CursorPaginate returns up to perPage rows after the cursor found in the
// "cursor" query parameter of current, ordered by id ascending.
//
// One extra row is fetched to detect a next page. The previous cursor is
// estimated as firstID-(perPage+1), which is only exact while no rows are
// inserted or deleted between requests.
func (b *Builder) CursorPaginate(ctx context.Context, perPage int, current *url.URL) (Page[Row], error) {
	if perPage < 1 {
		return Page[Row]{}, fmt.Errorf("%w: per_page=%d", ErrInvalidPage, perPage)
	}
	if current == nil {
		current = &url.URL{}
	}

	q := current.Query()

	var cursor *int64
	if raw := strings.TrimSpace(q.Get(CursorParam)); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Page[Row]{}, fmt.Errorf("%w: %q", ErrInvalidCursor, raw)
		}
		cursor = &n
	}

	qb := b.Clone()
	if cursor != nil {
		qb.Where(cursorColumn, ">", *cursor)
	}
	qb.orderBy = append([]order{{column: cursorColumn, direction: "ASC"}}, qb.orderBy...)
	qb.Limit(perPage + 1)

	rows, err := qb.Get(ctx)
	if err != nil {
		return Page[Row]{}, err
	}

	page := Page[Row]{Data: rows}
	links := newLinkBuilder(current)

	if len(rows) > perPage {
		page.HasNextPage = true
		page.Data = rows[:perPage]

		next, ok := ToInt64(page.Data[perPage-1][cursorColumn])
		if !ok {
			return Page[Row]{}, ErrMissingID
		}
		page.NextCursor = &next
		page.NextPageURL = links.with(next)
	}

	if cursor != nil && len(page.Data) > 0 {
		first, ok := ToInt64(page.Data[0][cursorColumn])
		if !ok {
			return Page[Row]{}, ErrMissingID
		}
		prev := first - int64(perPage+1)
		page.HasPrevPage = true
		page.PrevCursor = &prev
		page.PrevPageURL = links.with(prev)
	}

	return page, nil
}

// linkBuilder renders page links from the current URL with the cursor and
// page parameters stripped.
type linkBuilder struct {
	base  string
	query string
}

func newLinkBuilder(u *url.URL) linkBuilder {
	q := u.Query()
	q.Del(CursorParam)
	q.Del(PageParam)

	base := u.EscapedPath()
	if u.Host != "" {
		scheme := u.Scheme
		if scheme == "" {
			scheme = "http"
		}
		base = scheme + "://" + u.Host + base
	}

	return linkBuilder{base: base, query: q.Encode()}
}

func (l linkBuilder) with(cursor int64) *string {
	s := l.base + "?"
	if l.query != "" {
		s += l.query + "&"
	}
	s += CursorParam + "=" + strconv.FormatInt(cursor, 10)
	return &s
}
