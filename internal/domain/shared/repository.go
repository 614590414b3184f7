package shared

// Filter represents query filter options
type Filter struct {
	OrderBy  string
	OrderDir string
	Search   string
	Limit    int
}

// DefaultFilter returns a filter with default values
func DefaultFilter() Filter {
	return Filter{
		OrderBy:  "created_at",
		OrderDir: "asc",
		Limit:    50,
	}
}
