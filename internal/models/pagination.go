package models

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
	TotalPages int `json:"total_pages"`
}

// NewPagination computes page metadata, deriving the page count from the totals.
func NewPagination(page, size, total int) *Pagination {
	p := &Pagination{Page: page, PageSize: size, TotalCount: total}
	if size > 0 {
		p.TotalPages = (total + size - 1) / size
	}
	return p
}
