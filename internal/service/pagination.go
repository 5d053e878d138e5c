package service

// Pagination limits applied to every listing endpoint.
const (
	// DefaultPageSize is used when the caller does not specify one.
	DefaultPageSize = 10

	// MaxPageSize caps how many objects a single page may return.
	MaxPageSize = 100
)

// PageRequest selects one page of a listing. Construct it with
// NewPageRequest so the bounds are always applied.
type PageRequest struct {
	Page     int
	PageSize int
}

// NewPageRequest clamps the raw page and page size values into valid
// bounds: pages start at 1, and the page size falls back to
// DefaultPageSize and never exceeds MaxPageSize.
func NewPageRequest(page, pageSize int) PageRequest {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return PageRequest{Page: page, PageSize: pageSize}
}

// Offset returns the number of objects to skip for this page.
func (r PageRequest) Offset() int {
	return (r.Page - 1) * r.PageSize
}

// TotalPages returns how many pages a listing of totalObjects spans.
// An empty listing still has one page.
func (r PageRequest) TotalPages(totalObjects int) int {
	if totalObjects <= 0 {
		return 1
	}
	pages := totalObjects / r.PageSize
	if totalObjects%r.PageSize != 0 {
		pages++
	}
	return pages
}
