package store

// Page-based pagination for catalog listings. The window is inclusive:
// page 1 with per_page 20 covers offsets [0, 19].

// MaxPerPage caps the page size; larger requests are clamped, not rejected.
const (
	DefaultPerPage = 20
	MaxPerPage     = 50
)

// PageParams contains pagination request parameters.
type PageParams struct {
	Page    int // 1-based page number
	PerPage int // Items per page, clamped to [1, MaxPerPage]
}

// DefaultPageParams returns sensible defaults.
func DefaultPageParams() PageParams {
	return PageParams{
		Page:    1,
		PerPage: DefaultPerPage,
	}
}

// Clamp corrects out-of-range pagination parameters in place.
// Non-positive pages become 1; per_page is clamped to [1, MaxPerPage].
func (p *PageParams) Clamp() {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PerPage <= 0 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
}

// Offset returns the zero-based offset of the first item on the page.
func (p PageParams) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Window returns the inclusive [from, to] offset range for the page.
func (p PageParams) Window() (from, to int) {
	from = p.Offset()
	return from, from + p.PerPage - 1
}

// PagedResult contains one page of items and paging metadata.
type PagedResult[T any] struct {
	Items   []T `json:"items"`
	Total   int `json:"total"` // Total matches independent of pagination
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

// NewPagedResult assembles a result, echoing the clamped parameters.
func NewPagedResult[T any](items []T, total int, p PageParams) PagedResult[T] {
	if items == nil {
		items = []T{}
	}
	return PagedResult[T]{
		Items:   items,
		Total:   total,
		Page:    p.Page,
		PerPage: p.PerPage,
	}
}
