package completion

import "github.com/billie-coop/locomplete/internal/text"

// SourceContext is what one Source contributes to a session.
type SourceContext struct {
	Items []*Item
	// UseSoftSelection asks for the first selection to be soft.
	UseSoftSelection bool
	// UseSuggestionMode asks for the suggestion item to be shown.
	UseSuggestionMode bool
	// SuggestionDescription labels the suggestion item.
	SuggestionDescription string
	// InitiallyUnavailable marks items gathered for later use while completion
	// is not appropriate at the trigger location.
	InitiallyUnavailable bool
}

// EmptyContext is returned by sources with nothing to offer.
var EmptyContext = &SourceContext{}

// SelectionHint is the ItemManager's opinion on how to select.
type SelectionHint int

const (
	HintUnknown SelectionHint = iota
	HintRegular
	HintSoftSelected
)

// InitialData is passed to ItemManager.SortInitial.
type InitialData struct {
	Items    []*Item
	Trigger  Trigger
	Snapshot *text.Snapshot
	Span     *text.TrackingSpan
}

// UpdateData is passed to ItemManager.Refilter.
type UpdateData struct {
	InitialTrigger TriggerReason
	FilterReason   FilterReason
	Snapshot       *text.Snapshot
	Span           *text.TrackingSpan
	Filters        []FilterState
}

// FilteredResult is returned by ItemManager.Refilter.
type FilteredResult struct {
	Items         []ItemWithHighlight
	SelectedIndex int
	// UniqueItem overrides the single-presented-item rule for commit-if-unique.
	UniqueItem    *Item
	Filters       []FilterState
	SelectionHint SelectionHint
}
