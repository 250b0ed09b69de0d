package models

// Pagination contains pagination metadata returned in list responses. The
// total count is produced by a separate query from the page itself, so it may
// trail concurrent writes; acceptable for admin list views.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

// PageRequest captures limit/offset paging input shared by list endpoints.
type PageRequest struct {
	Page     int
	PageSize int
}

// Normalize clamps paging values to sane bounds and returns limit and offset.
func (p PageRequest) Normalize() (limit, offset int) {
	page := p.Page
	if page < 1 {
		page = 1
	}
	size := p.PageSize
	if size <= 0 || size > 100 {
		size = 10
	}
	return size, (page - 1) * size
}
