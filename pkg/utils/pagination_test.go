package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPaginationParams(t *testing.T) {
	p := NewPaginationParams(0, 0)
	assert.Equal(t, PaginationParams{Page: 1, PageSize: DefaultPageSize, Offset: 0}, p)

	p = NewPaginationParams(3, 20)
	assert.Equal(t, 40, p.Offset)

	p = NewPaginationParams(1, 1000)
	assert.Equal(t, MaxPageSize, p.PageSize)
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 10))
	assert.Equal(t, 1, TotalPages(10, 10))
	assert.Equal(t, 2, TotalPages(11, 10))
	assert.Equal(t, 0, TotalPages(5, 0))
}

func TestParseSortBy(t *testing.T) {
	fields, err := ParseSortBy("name:desc, createdAt:asc,role")
	require.NoError(t, err)
	assert.Equal(t, []SortField{
		{Field: "name", Desc: true},
		{Field: "createdAt"},
		{Field: "role"},
	}, fields)

	fields, err = ParseSortBy("")
	assert.NoError(t, err)
	assert.Empty(t, fields)

	_, err = ParseSortBy("name:sideways")
	assert.Error(t, err)

	_, err = ParseSortBy(":desc")
	assert.Error(t, err)
}
