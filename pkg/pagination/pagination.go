package pagination

import (
	"net/http"
	"strconv"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Params holds pagination parameters extracted from query strings.
// Pages are 1-based.
type Params struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
	Offset   int `json:"-"`
}

// DefaultParams returns the first page with the default size.
func DefaultParams() Params {
	return Params{
		Page:     1,
		PageSize: DefaultPageSize,
		Offset:   0,
	}
}

// FromRequest extracts page and pageSize from an HTTP request. Invalid or
// out-of-range values fall back to the defaults.
func FromRequest(r *http.Request) Params {
	p := DefaultParams()

	if page := r.URL.Query().Get("page"); page != "" {
		if v, err := strconv.Atoi(page); err == nil && v > 0 {
			p.Page = v
		}
	}

	if size := r.URL.Query().Get("pageSize"); size != "" {
		if v, err := strconv.Atoi(size); err == nil && v > 0 && v <= MaxPageSize {
			p.PageSize = v
		}
	}

	p.Offset = (p.Page - 1) * p.PageSize
	return p
}

// HasMore reports whether items remain after the given page. It is the only
// exhaustion rule used by listing controllers.
func HasMore(page, pageSize, total int) bool {
	return page*pageSize < total
}

// Window returns the [start, end) bounds of a page within a list of length n.
func Window(page, pageSize, n int) (int, int) {
	if page < 1 || pageSize < 1 {
		return 0, 0
	}
	start := (page - 1) * pageSize
	if start > n {
		start = n
	}
	end := start + pageSize
	if end > n {
		end = n
	}
	return start, end
}

// Result wraps a paginated response.
type Result[T any] struct {
	Items      []T  `json:"items"`
	Total      int  `json:"total"`
	Page       int  `json:"page"`
	PageSize   int  `json:"pageSize"`
	TotalPages int  `json:"totalPages"`
	HasMore    bool `json:"hasMore"`
}

// NewResult creates a paginated result.
func NewResult[T any](items []T, total int, params Params) Result[T] {
	totalPages := total / params.PageSize
	if total%params.PageSize > 0 {
		totalPages++
	}

	if items == nil {
		items = []T{}
	}

	return Result[T]{
		Items:      items,
		Total:      total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: totalPages,
		HasMore:    HasMore(params.Page, params.PageSize, total),
	}
}
