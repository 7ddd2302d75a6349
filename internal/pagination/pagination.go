// Package pagination implements page-number pagination for list endpoints.
//
// Clients select a page with ?page=N (or ?page=last) and may override the
// default page size of 10 with ?limit=N. There is no upper bound on limit.
package pagination

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"gorm.io/gorm"
)

const (
	DefaultPageSize    = 10
	PageQueryParam     = "page"
	PageSizeQueryParam = "limit"

	lastPage = "last"
)

// ErrInvalidPage is returned for malformed or out-of-range page numbers.
var ErrInvalidPage = errors.New("invalid page")

// Params is the requested page.
type Params struct {
	Page  int
	Limit int
	Last  bool
}

// ParseParams reads page and limit from the query string. A missing,
// malformed or non-positive limit falls back to DefaultPageSize; a malformed
// page is an error.
func ParseParams(q url.Values) (Params, error) {
	p := Params{Page: 1, Limit: DefaultPageSize}

	if raw := q.Get(PageSizeQueryParam); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			p.Limit = n
		}
	}

	if raw := q.Get(PageQueryParam); raw != "" {
		if raw == lastPage {
			p.Page, p.Last = 0, true
			return p, nil
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return p, ErrInvalidPage
		}
		p.Page = n
	}
	return p, nil
}

// NumPages returns the number of pages for count rows. An empty result set
// still has one (empty) page.
func NumPages(count int64, limit int) int {
	if count <= 0 || limit <= 0 {
		return 1
	}
	size := int64(limit)
	pages := count / size
	if count%size != 0 {
		pages++
	}
	return int(pages)
}

// Resolve pins "last" to a concrete page and rejects pages past the end.
func (p Params) Resolve(count int64) (Params, error) {
	pages := NumPages(count, p.Limit)
	if p.Last {
		p.Page, p.Last = pages, false
	}
	if p.Page < 1 || p.Page > pages {
		return p, ErrInvalidPage
	}
	return p, nil
}

// Offset is the number of rows before the page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Query counts the rows selected by tx, resolves the page and loads it.
// Scopes are applied to the fetch only, so ordering and preloads never reach
// the COUNT query.
func Query[T any](tx *gorm.DB, p Params, scopes ...func(*gorm.DB) *gorm.DB) ([]T, int64, Params, error) {
	var count int64
	if err := tx.Session(&gorm.Session{}).Count(&count).Error; err != nil {
		return nil, 0, p, err
	}

	p, err := p.Resolve(count)
	if err != nil {
		return nil, count, p, err
	}

	items := make([]T, 0)
	if err := tx.Session(&gorm.Session{}).
		Scopes(scopes...).
		Offset(p.Offset()).
		Limit(p.Limit).
		Find(&items).Error; err != nil {
		return nil, count, p, err
	}
	return items, count, p, nil
}

// Page is the response envelope of a paginated list.
type Page[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// NewPage builds the envelope with next/previous links derived from base.
func NewPage[T any](results []T, count int64, p Params, base *url.URL) Page[T] {
	page := Page[T]{Count: count, Results: results}
	if page.Results == nil {
		page.Results = []T{}
	}
	if base == nil {
		return page
	}

	if p.Page < NumPages(count, p.Limit) {
		next := withPage(base, p.Page+1)
		page.Next = &next
	}
	if p.Page > 1 {
		previous := withPage(base, p.Page-1)
		page.Previous = &previous
	}
	return page
}

// Map converts the results of a page, keeping the envelope.
func Map[T, U any](page Page[T], fn func(T) U) Page[U] {
	out := Page[U]{Count: page.Count, Next: page.Next, Previous: page.Previous, Results: make([]U, 0, len(page.Results))}
	for _, item := range page.Results {
		out.Results = append(out.Results, fn(item))
	}
	return out
}

// AbsoluteURL reconstructs the absolute URL of an incoming request.
func AbsoluteURL(r *http.Request) *url.URL {
	u := *r.URL
	u.Host = r.Host
	u.Scheme = "http"
	if r.TLS != nil {
		u.Scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		u.Scheme = proto
	}
	return &u
}

func withPage(base *url.URL, page int) string {
	u := *base
	q := u.Query()
	if page <= 1 {
		q.Del(PageQueryParam)
	} else {
		q.Set(PageQueryParam, strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()
	return u.String()
}
