package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.PageSize)
	assert.Equal(t, 0, p.Offset)
}

func TestFromRequest_CustomValues(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/products?page=3&pageSize=50", nil)
	p := FromRequest(req)

	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 50, p.PageSize)
	assert.Equal(t, 100, p.Offset)
}

func TestFromRequest_InvalidValuesFallBack(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"negative page", "page=-1"},
		{"zero page", "page=0"},
		{"non numeric", "page=abc"},
		{"size over cap", "pageSize=200"},
		{"zero size", "pageSize=0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := FromRequest(httptest.NewRequest(http.MethodGet, "/products?"+tt.query, nil))
			assert.Equal(t, 1, p.Page)
			assert.Equal(t, DefaultPageSize, p.PageSize)
		})
	}
}

func TestHasMore(t *testing.T) {
	tests := []struct {
		page, size, total int
		want              bool
	}{
		{1, 20, 50, true},
		{2, 20, 50, true},
		{3, 20, 50, false},
		{1, 20, 20, false},
		{1, 20, 0, false},
		{1, 20, 21, true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, HasMore(tt.page, tt.size, tt.total),
			"page=%d size=%d total=%d", tt.page, tt.size, tt.total)
	}
}

func TestWindow(t *testing.T) {
	start, end := Window(3, 20, 50)
	assert.Equal(t, 40, start)
	assert.Equal(t, 50, end)

	start, end = Window(4, 20, 50)
	assert.Equal(t, 50, start)
	assert.Equal(t, 50, end)

	start, end = Window(0, 20, 50)
	assert.Equal(t, 0, start)
	assert.Equal(t, 0, end)
}

func TestNewResult(t *testing.T) {
	r := NewResult([]string{"a", "b"}, 50, Params{Page: 2, PageSize: 20})

	assert.Equal(t, 3, r.TotalPages)
	assert.True(t, r.HasMore)
	assert.Len(t, r.Items, 2)
}

func TestNewResult_NilItemsEncodeAsEmpty(t *testing.T) {
	r := NewResult[string](nil, 0, DefaultParams())
	assert.NotNil(t, r.Items)
	assert.False(t, r.HasMore)
	assert.Equal(t, 0, r.TotalPages)
}
