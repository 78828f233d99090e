package pagination

const (
	DefaultLimit = 50
	MaxLimit     = 100
)

// Query binds the limit query parameter
type Query struct {
	Limit int `form:"limit" json:"limit" binding:"omitempty,min=1,max=100"`
}

// Meta holds pagination metadata for response
type Meta struct {
	Limit   int  `json:"limit"`
	Count   int  `json:"count"`
	HasMore bool `json:"has_more"`
}

// returns the requested limit with the default applied
func (q Query) EffectiveLimit() int {
	if q.Limit <= 0 {
		return DefaultLimit
	}

	return min(q.Limit, MaxLimit)
}

// the number of rows to fetch so HasMore can be answered without a count query
func FetchLimit(limit int) int {
	return limit + 1
}

// Trim cuts items fetched with FetchLimit down to limit and reports whether more exist
func Trim[T any](items []T, limit int) ([]T, Meta) {
	hasMore := len(items) > limit
	if hasMore {
		items = items[:limit]
	}

	return items, Meta{
		Limit:   limit,
		Count:   len(items),
		HasMore: hasMore,
	}
}
