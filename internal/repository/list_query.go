package repository

// ListQuery represents common query parameters
type ListQuery struct {
	Page    int
	PerPage int
	Offset  int
	Search  string
	SortBy  string
	SortDir string
	Filters map[string]string
}

// NewListQuery creates a ListQuery with defaults
func NewListQuery() *ListQuery {
	return &ListQuery{
		Page:    1,
		PerPage: 20,
		Filters: make(map[string]string),
	}
}

// SkipCount returns the number of rows to skip. An explicit Offset wins over Page.
func (q *ListQuery) SkipCount() int {
	if q.Offset > 0 {
		return q.Offset
	}
	if q.Page < 1 {
		return 0
	}
	return (q.Page - 1) * q.PerPage
}
