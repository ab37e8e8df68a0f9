package utils

import "strconv"

const (
	DefaultPageSize = 20  // Default page size
	MaxPageSize     = 100 // Upper bound for page_size
)

// Page is a normalized page request
type Page struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// Offset returns the row offset for the page
func (p Page) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// TotalPages returns the number of pages for total rows
func (p Page) TotalPages(total int64) int {
	return (int(total) + p.PageSize - 1) / p.PageSize
}

// ParsePage reads page and page_size, falling back to defaults on bad input
func ParsePage(page, pageSize string) Page {
	p := Page{Page: 1, PageSize: DefaultPageSize}
	if v, err := strconv.Atoi(page); err == nil && v > 0 {
		p.Page = v // Set page if valid
	}
	if v, err := strconv.Atoi(pageSize); err == nil && v > 0 && v <= MaxPageSize {
		p.PageSize = v // Set page size if valid
	}
	return p
}

// Paged is the list envelope returned by every paginated endpoint
type Paged[T any] struct {
	Items      []T   `json:"items"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// NewPaged builds the envelope for one page of items
func NewPaged[T any](items []T, p Page, total int64) Paged[T] {
	if items == nil {
		items = []T{}
	}
	return Paged[T]{Items: items, Page: p.Page, PageSize: p.PageSize, Total: total, TotalPages: p.TotalPages(total)}
}
