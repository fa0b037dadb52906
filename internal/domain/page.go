package domain

// PaginationParams carries limit/offset values from the HTTP layer to the repo layer.
// Limit is capped at 100 by NewPaginationParams.
type PaginationParams struct {
	// Limit is the maximum number of items to return.
	Limit int
	// Offset is the number of items to skip from the start of the collection.
	Offset int
}

// NewPaginationParams builds a PaginationParams from optional HTTP query params.
// Nil pointers fall back to sane defaults (limit=50, offset=0).
// The limit is capped at 100 to keep responses small.
func NewPaginationParams(limit, offset *int) PaginationParams {
	p := PaginationParams{Limit: 50}
	if limit != nil && *limit >= 1 {
		p.Limit = *limit
		if p.Limit > 100 {
			p.Limit = 100
		}
	}
	if offset != nil && *offset >= 0 {
		p.Offset = *offset
	}
	return p
}

// AllItems is a PaginationParams that never truncates.
var AllItems = PaginationParams{}

// Window returns the [start, end) bounds of the page within a list of n items.
// A zero Limit means no limit.
func (p PaginationParams) Window(n int) (int, int) {
	start := p.Offset
	if start > n {
		start = n
	}
	end := n
	if p.Limit > 0 && start+p.Limit < n {
		end = start + p.Limit
	}
	return start, end
}
