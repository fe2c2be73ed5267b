package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageRequest_Normalize(t *testing.T) {
	tests := []struct {
		name     string
		in       PageRequest
		expected PageRequest
	}{
		{
			name:     "negative page clamps to zero",
			in:       PageRequest{Page: -3, Size: 10},
			expected: PageRequest{Page: 0, Size: 10},
		},
		{
			name:     "zero size gets default",
			in:       PageRequest{Page: 2},
			expected: PageRequest{Page: 2, Size: defaultPageSize},
		},
		{
			name:     "oversized page is capped",
			in:       PageRequest{Size: 10000},
			expected: PageRequest{Size: maxPageSize},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.in.Normalize())
		})
	}
}

func TestPageRequest_Offset(t *testing.T) {
	assert.Equal(t, 0, PageRequest{Page: 0, Size: 25}.Offset())
	assert.Equal(t, 75, PageRequest{Page: 3, Size: 25}.Offset())
}

func TestPageRequest_OrderClause(t *testing.T) {
	tests := []struct {
		name     string
		in       PageRequest
		expected string
	}{
		{
			name:     "default sort is created_at descending",
			in:       PageRequest{},
			expected: "created_at DESC",
		},
		{
			name:     "allowlisted field maps to column",
			in:       PageRequest{SortBy: "purchaseDate", SortDir: "ASC"},
			expected: "purchase_date ASC",
		},
		{
			name:     "direction is case-insensitive",
			in:       PageRequest{SortBy: "totalAmount", SortDir: "asc"},
			expected: "total_amount ASC",
		},
		{
			name:     "unknown field falls back to created_at",
			in:       PageRequest{SortBy: "password_hash; DROP TABLE receipts"},
			expected: "created_at DESC",
		},
		{
			name:     "unknown direction falls back to descending",
			in:       PageRequest{SortBy: "storeName", SortDir: "sideways"},
			expected: "store_name DESC",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.in.OrderClause())
		})
	}
}

func TestNewPage(t *testing.T) {
	req := PageRequest{Page: 1, Size: 10}

	page := NewPage([]int{1, 2, 3}, req, 23)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 10, page.Size)
	assert.Equal(t, int64(23), page.TotalElements)
	assert.Equal(t, 3, page.TotalPages)

	exact := NewPage([]int{}, req, 20)
	assert.Equal(t, 2, exact.TotalPages)

	empty := NewPage[int](nil, req, 0)
	assert.Equal(t, 0, empty.TotalPages)
	assert.NotNil(t, empty.Content)
	assert.Empty(t, empty.Content)
}
