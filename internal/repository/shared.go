package repository

// Pagination holds pagination parameters for listing entities. A zero
// PageSize means no limit.
type Pagination struct {
	PageNo   int32
	PageSize int32
}

func (p *Pagination) Offset() int32 {
	if p.PageNo <= 1 || p.PageSize <= 0 {
		return 0
	}
	return (p.PageNo - 1) * p.PageSize
}

// Paged reports whether a page limit applies.
func (p *Pagination) Paged() bool { return p.PageSize > 0 }

// FilterOrder carries the raw CEL filter and order_by of a list request.
type FilterOrder struct {
	Filter  string
	OrderBy string
}

func (fo *FilterOrder) GetFilter() string { return fo.Filter }

func (fo *FilterOrder) GetOrderBy() string { return fo.OrderBy }
