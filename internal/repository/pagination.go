package repository

import "strings"

const (
	defaultPageSize = 100
	maxPageSize     = 500
)

// receiptSortColumns maps API sort field names to receipt table columns.
// Unknown fields fall back to created_at.
var receiptSortColumns = map[string]string{
	"createdAt":     "created_at",
	"updatedAt":     "updated_at",
	"purchaseDate":  "purchase_date",
	"storeName":     "store_name",
	"totalAmount":   "total_amount",
	"category":      "category",
	"paymentMethod": "payment_method",
}

// PageRequest carries zero-based pagination and sorting parameters.
type PageRequest struct {
	Page    int
	Size    int
	SortBy  string
	SortDir string
}

// Normalize clamps page and size into valid ranges.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 0 {
		p.Page = 0
	}
	if p.Size <= 0 {
		p.Size = defaultPageSize
	}
	if p.Size > maxPageSize {
		p.Size = maxPageSize
	}
	return p
}

// Offset returns the row offset for the requested page.
func (p PageRequest) Offset() int {
	return p.Page * p.Size
}

// OrderClause builds a safe ORDER BY clause from the allowlisted sort field.
// Default is created_at descending.
func (p PageRequest) OrderClause() string {
	column, ok := receiptSortColumns[p.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if strings.EqualFold(p.SortDir, "asc") {
		direction = "ASC"
	}
	return column + " " + direction
}

// Page is a bounded slice of an ordered result set plus total counts.
type Page[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
}

// NewPage assembles a page result with computed page count.
func NewPage[T any](content []T, req PageRequest, total int64) Page[T] {
	if content == nil {
		content = []T{}
	}
	totalPages := 0
	if req.Size > 0 {
		totalPages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}
	return Page[T]{
		Content:       content,
		Page:          req.Page,
		Size:          req.Size,
		TotalElements: total,
		TotalPages:    totalPages,
	}
}
