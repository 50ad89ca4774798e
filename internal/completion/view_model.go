package completion

import "github.com/billie-coop/locomplete/internal/text"

// NoSelection is the selected index while no regular item is selected.
const NoSelection = -1

// ViewModel is everything a Presenter needs to draw the list.
type ViewModel struct {
	Items                 []ItemWithHighlight
	Filters               []FilterState
	Snapshot              *text.Snapshot
	Span                  text.Span
	UseSoftSelection      bool
	DisplaySuggestionItem bool
	SelectSuggestionItem  bool
	SelectedIndex         int
	SuggestionItem        *Item
	SuggestionDescription string
}

// ComputedItems is a side-effect-free read of a session's current results.
type ComputedItems struct {
	Items                  []*Item
	SuggestionItem         *Item
	SelectedItem           *Item
	SuggestionItemSelected bool
	UsesSoftSelection      bool
}

// EmptyComputedItems is returned before the first computation finishes.
var EmptyComputedItems = ComputedItems{}
