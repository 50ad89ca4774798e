package completion

// Filter is a tag the user can toggle to narrow the list, e.g. "keywords".
// Filters are compared by pointer.
type Filter struct {
	Name      string
	AccessKey string
	Icon      string
}

// NewFilter creates a filter.
func NewFilter(name, accessKey, icon string) *Filter {
	return &Filter{Name: name, AccessKey: accessKey, Icon: icon}
}

// FilterState is a filter together with the user's choice and whether any
// currently matched item carries it.
type FilterState struct {
	Filter    *Filter
	Selected  bool
	Available bool
}

// DistinctFilters returns the filters carried by items, in first-seen order,
// none selected and all available.
func DistinctFilters(items []*Item) []FilterState {
	seen := make(map[*Filter]bool)
	var out []FilterState
	for _, item := range items {
		for _, f := range item.Filters() {
			if seen[f] {
				continue
			}
			seen[f] = true
			out = append(out, FilterState{Filter: f, Available: true})
		}
	}
	return out
}

// AnySelected reports whether the user picked at least one filter.
func AnySelected(filters []FilterState) bool {
	for _, f := range filters {
		if f.Selected {
			return true
		}
	}
	return false
}
