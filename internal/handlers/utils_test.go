package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		defaultPer int
		wantPage   int
		wantPer    int
		wantOffset int
		wantErr    bool
	}{
		{name: "defaults", query: "", defaultPer: 10, wantPage: 1, wantPer: 10, wantOffset: 0},
		{name: "explicit page and size", query: "page=3&per_page=20", defaultPer: 10, wantPage: 3, wantPer: 20, wantOffset: 40},
		{name: "limit accepted as alias", query: "limit=25", defaultPer: 10, wantPage: 1, wantPer: 25, wantOffset: 0},
		{name: "per_page wins over limit", query: "per_page=5&limit=25", defaultPer: 10, wantPage: 1, wantPer: 5, wantOffset: 0},
		{name: "per_page clamped to max", query: "per_page=500", defaultPer: 10, wantPage: 1, wantPer: 100, wantOffset: 0},
		{name: "zero page rejected", query: "page=0", defaultPer: 10, wantErr: true},
		{name: "negative per_page rejected", query: "per_page=-1", defaultPer: 10, wantErr: true},
		{name: "garbage page rejected", query: "page=abc", defaultPer: 10, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)

			page, perPage, offset, err := parsePagination(r, tt.defaultPer)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantPer, perPage)
			assert.Equal(t, tt.wantOffset, offset)
		})
	}
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, totalPages(0, 10))
	assert.Equal(t, 1, totalPages(1, 10))
	assert.Equal(t, 1, totalPages(10, 10))
	assert.Equal(t, 2, totalPages(11, 10))
	assert.Equal(t, 3, totalPages(101, 50))
}

func TestParseLimit(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	limit, err := parseLimit(r, 10)
	require.NoError(t, err)
	assert.Equal(t, 10, limit)

	r = httptest.NewRequest(http.MethodGet, "/?limit=5", nil)
	limit, err = parseLimit(r, 10)
	require.NoError(t, err)
	assert.Equal(t, 5, limit)

	r = httptest.NewRequest(http.MethodGet, "/?limit=0", nil)
	_, err = parseLimit(r, 10)
	assert.Error(t, err)

	r = httptest.NewRequest(http.MethodGet, "/?limit=many", nil)
	_, err = parseLimit(r, 10)
	assert.Error(t, err)
}
