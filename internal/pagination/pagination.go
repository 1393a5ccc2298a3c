// Package pagination provides in-memory pagination for list responses.
// Entries are already fetched whole (and capped) by the query engine, so
// pages are sliced from the in-memory result rather than pushed into SQL.
package pagination

import "math"

// PageRequest holds pagination parameters parsed from query strings.
type PageRequest struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=500"`
}

// Defaults fills in default values when page or page_size are not provided.
func (p *PageRequest) Defaults() {
	if p.Page == 0 {
		p.Page = 1
	}
	if p.PageSize == 0 {
		p.PageSize = 50
	}
}

// Offset returns the start index for the current page.
func (p *PageRequest) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// PageResponse wraps a paginated list of items with metadata.
type PageResponse[T any] struct {
	Data       []T   `json:"data"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// Slice applies the page request to an in-memory result set.
func Slice[T any](items []T, req PageRequest) PageResponse[T] {
	req.Defaults()

	start := req.Offset()
	if start > len(items) {
		start = len(items)
	}
	end := start + req.PageSize
	if end > len(items) {
		end = len(items)
	}

	page := items[start:end]
	if page == nil {
		page = []T{}
	}
	return PageResponse[T]{
		Data:       page,
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalItems: int64(len(items)),
		TotalPages: int(math.Ceil(float64(len(items)) / float64(req.PageSize))),
	}
}
