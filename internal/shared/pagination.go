package shared

import "math"

// Pagination contains metadata for paginated listings.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// MaxPerPage caps the page size a caller may request.
const MaxPerPage = 100

// NewPagination computes pagination metadata.
func NewPagination(page, perPage, total int) Pagination {
	if perPage <= 0 {
		perPage = 20
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	if page <= 0 {
		page = 1
	}
	totalPages := int(math.Ceil(float64(total) / float64(perPage)))
	return Pagination{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

// Bounds returns the half-open index range of the current page, clamped to
// Total. Pages past the end yield an empty range without multiplying, so an
// arbitrarily large page cannot overflow.
func (p Pagination) Bounds() (start, end int) {
	if p.PerPage <= 0 || p.Total <= 0 {
		return 0, 0
	}
	switch skipped := p.Page - 1; {
	case skipped <= 0:
		start = 0
	case skipped > p.Total/p.PerPage:
		start = p.Total
	default:
		start = min(skipped*p.PerPage, p.Total)
	}
	end = start + p.PerPage
	if end > p.Total {
		end = p.Total
	}
	return start, end
}
