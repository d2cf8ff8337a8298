package services

import (
	"math"
	"strconv"
	"testing"

	"shirtcatalog/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPageRequest(t *testing.T) {
	tests := []struct {
		offset, limit string
		expected      PageRequest
	}{
		{"0", "2", PageRequest{Offset: 0, Limit: 2}},
		{"4", "2", PageRequest{Offset: 4, Limit: 2}},
		{" 3 ", "10", PageRequest{Offset: 3, Limit: 10}},
		{"", "", PageRequest{}},
		{"0", "", PageRequest{}},
		{"", "5", PageRequest{}},
		{"-1", "5", PageRequest{}},
		{"0", "0", PageRequest{}},
		{"0", "-2", PageRequest{}},
		{"abc", "2", PageRequest{}},
		{"0", "2.5", PageRequest{}},
	}

	for _, tt := range tests {
		got := NewPageRequest(tt.offset, tt.limit)
		assert.Equal(t, tt.expected, got, "offset=%q limit=%q", tt.offset, tt.limit)
	}
}

func TestPageRequestFromPage(t *testing.T) {
	assert.Equal(t, PageRequest{Offset: 0, Limit: 10}, PageRequestFromPage("1", "10"))
	assert.Equal(t, PageRequest{Offset: 20, Limit: 10}, PageRequestFromPage("3", "10"))
	assert.False(t, PageRequestFromPage("0", "10").Paginated())
	assert.False(t, PageRequestFromPage("2", "").Paginated())
	assert.False(t, PageRequestFromPage("x", "10").Paginated())

	// Offsets that would overflow int are not a window.
	huge := strconv.Itoa(math.MaxInt)
	assert.False(t, PageRequestFromPage(huge, "2").Paginated())
	assert.False(t, PageRequestFromPage("3", huge).Paginated())
	assert.Equal(t, PageRequest{Offset: math.MaxInt - 1, Limit: 1}, PageRequestFromPage(huge, "1"))
}

func TestNewPageResult(t *testing.T) {
	shirts := []models.Shirt{{ID: "a"}, {ID: "b"}}

	result := newPageResult(PageRequest{Offset: 2, Limit: 2}, shirts, 5)
	assert.True(t, result.Paginated)
	assert.Equal(t, int64(5), result.Total)
	require.NotNil(t, result.Page)
	assert.Equal(t, 2, *result.Page)
	assert.Equal(t, 2, *result.PerPage)
	assert.Equal(t, 3, *result.TotalPages)

	// Past the end: empty window, totals still reported.
	result = newPageResult(PageRequest{Offset: 10, Limit: 2}, nil, 5)
	assert.NotNil(t, result.Data)
	assert.Empty(t, result.Data)
	assert.Equal(t, int64(5), result.Total)
	assert.Equal(t, 6, *result.Page)

	result = newPageResult(PageRequest{}, shirts, 99)
	assert.False(t, result.Paginated)
	assert.Equal(t, int64(2), result.Total)
	assert.Nil(t, result.Page)
	assert.Nil(t, result.PerPage)
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{"size": "is required", "brand": "is required"}}
	assert.Equal(t, "validation failed: brand: is required; size: is required", err.Error())
	assert.ErrorIs(t, err, ErrValidation)
}
