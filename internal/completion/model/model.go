// Package model holds the immutable state of a completion session.
//
// A *Model is never modified once returned. Every transition copies the
// receiver through update and changes only the fields it names, so fields
// added later travel through every transition untouched.
package model

import (
	"github.com/billie-coop/locomplete/internal/completion"
	"github.com/billie-coop/locomplete/internal/text"
)

// Model is one snapshot of a completion session.
type Model struct {
	initialItems   []*completion.Item
	sortedItems    []*completion.Item
	snapshot       *text.Snapshot
	span           *text.TrackingSpan
	initialTrigger completion.TriggerReason

	filters        []completion.FilterState
	presentedItems []completion.ItemWithHighlight
	selectedIndex  int

	useSoftSelection      bool
	displaySuggestionItem bool
	selectSuggestionItem  bool
	suggestionItem        *completion.Item
	suggestionDescription string
	uniqueItem            *completion.Item

	applicableSpanWasEmpty bool
	initiallyUnavailable   bool
}

// Params seeds a new Model.
type Params struct {
	Items                 []*completion.Item
	Snapshot              *text.Snapshot
	Span                  *text.TrackingSpan
	InitialTrigger        completion.TriggerReason
	Filters               []completion.FilterState
	UseSoftSelection      bool
	DisplaySuggestionItem bool
	SelectSuggestionItem  bool
	SuggestionDescription string
	InitiallyUnavailable  bool
}

// New creates the first model of a session. Sorted items start out in
// gathering order until WithSortedItems replaces them.
func New(p Params) *Model {
	return &Model{
		initialItems:          p.Items,
		sortedItems:           p.Items,
		snapshot:              p.Snapshot,
		span:                  p.Span,
		initialTrigger:        p.InitialTrigger,
		filters:               p.Filters,
		selectedIndex:         completion.NoSelection,
		useSoftSelection:      p.UseSoftSelection,
		displaySuggestionItem: p.DisplaySuggestionItem,
		selectSuggestionItem:  p.SelectSuggestionItem,
		suggestionDescription: p.SuggestionDescription,
		initiallyUnavailable:  p.InitiallyUnavailable,
	}
}

// update is the only way a Model changes: copy, then apply fn to the copy.
func (m *Model) update(fn func(n *Model)) *Model {
	n := *m
	fn(&n)
	return &n
}

func (m *Model) InitialItems() []*completion.Item               { return m.initialItems }
func (m *Model) SortedItems() []*completion.Item                { return m.sortedItems }
func (m *Model) Snapshot() *text.Snapshot                       { return m.snapshot }
func (m *Model) ApplicableSpan() *text.TrackingSpan             { return m.span }
func (m *Model) InitialTrigger() completion.TriggerReason       { return m.initialTrigger }
func (m *Model) Filters() []completion.FilterState              { return m.filters }
func (m *Model) PresentedItems() []completion.ItemWithHighlight { return m.presentedItems }
func (m *Model) SelectedIndex() int                             { return m.selectedIndex }
func (m *Model) UseSoftSelection() bool                         { return m.useSoftSelection }
func (m *Model) DisplaySuggestionItem() bool                    { return m.displaySuggestionItem }
func (m *Model) SelectSuggestionItem() bool                     { return m.selectSuggestionItem }
func (m *Model) SuggestionItem() *completion.Item               { return m.suggestionItem }
func (m *Model) SuggestionDescription() string                  { return m.suggestionDescription }
func (m *Model) UniqueItem() *completion.Item                   { return m.uniqueItem }
func (m *Model) ApplicableSpanWasEmpty() bool                   { return m.applicableSpanWasEmpty }
func (m *Model) InitiallyUnavailable() bool                     { return m.initiallyUnavailable }

// WithSortedItems stores the ItemManager's initial ordering.
func (m *Model) WithSortedItems(items []*completion.Item) *Model {
	return m.update(func(n *Model) { n.sortedItems = items })
}

// WithSnapshot records the latest snapshot without refiltering.
func (m *Model) WithSnapshot(s *text.Snapshot) *Model {
	return m.update(func(n *Model) { n.snapshot = s })
}

// WithFilters replaces the filter states.
func (m *Model) WithFilters(filters []completion.FilterState) *Model {
	return m.update(func(n *Model) { n.filters = filters })
}

// WithPresentedItems replaces the visible list and the selection index.
func (m *Model) WithPresentedItems(items []completion.ItemWithHighlight, selectedIndex int) *Model {
	return m.update(func(n *Model) {
		n.presentedItems = items
		n.setIndexKeepingSuggestion(selectedIndex)
	})
}

// WithSelectedIndex is an explicit selection of a regular item. It clears soft
// selection and the suggestion selection.
func (m *Model) WithSelectedIndex(i int) *Model {
	return m.update(func(n *Model) {
		n.selectedIndex = i
		n.selectSuggestionItem = false
		n.useSoftSelection = false
	})
}

// WithSuggestionItemSelected is an explicit selection of the suggestion item.
func (m *Model) WithSuggestionItemSelected() *Model {
	return m.update(func(n *Model) {
		n.selectedIndex = completion.NoSelection
		n.selectSuggestionItem = true
		n.useSoftSelection = false
	})
}

// WithSuggestionModeActive shows or hides the suggestion item. Turning it on
// also turns on soft selection.
func (m *Model) WithSuggestionModeActive(active bool) *Model {
	return m.update(func(n *Model) {
		n.displaySuggestionItem = active
		n.useSoftSelection = n.useSoftSelection || active
		if !active && n.selectSuggestionItem {
			n.selectSuggestionItem = false
			if len(n.presentedItems) > 0 {
				n.selectedIndex = 0
			}
		}
	})
}

// WithSuggestionItem replaces the suggestion item. Nil means the presenter
// shows the suggestion description instead.
func (m *Model) WithSuggestionItem(item *completion.Item) *Model {
	return m.update(func(n *Model) { n.suggestionItem = item })
}

// WithUniqueItem overrides the single-presented-item rule. Nil restores it.
func (m *Model) WithUniqueItem(item *completion.Item) *Model {
	return m.update(func(n *Model) { n.uniqueItem = item })
}

// WithSoftSelection is a policy decision on the selection mode.
func (m *Model) WithSoftSelection(soft bool) *Model {
	return m.update(func(n *Model) { n.useSoftSelection = soft })
}

// WithApplicableSpanEmptyRecord remembers whether the span was empty on the
// last keystroke.
func (m *Model) WithApplicableSpanEmptyRecord(empty bool) *Model {
	return m.update(func(n *Model) { n.applicableSpanWasEmpty = empty })
}

// WithInitiallyUnavailable sets or clears the sticky unavailable flag.
func (m *Model) WithInitiallyUnavailable(unavailable bool) *Model {
	return m.update(func(n *Model) { n.initiallyUnavailable = unavailable })
}

// WithSnapshotItemsAndFilters stores the outcome of a refilter.
func (m *Model) WithSnapshotItemsAndFilters(
	s *text.Snapshot,
	items []completion.ItemWithHighlight,
	selectedIndex int,
	unique *completion.Item,
	suggestion *completion.Item,
	filters []completion.FilterState,
) *Model {
	return m.update(func(n *Model) {
		n.snapshot = s
		n.presentedItems = items
		n.setIndexKeepingSuggestion(selectedIndex)
		n.uniqueItem = unique
		n.suggestionItem = suggestion
		n.filters = filters
	})
}

// setIndexKeepingSuggestion applies a recomputed index unless the user picked
// the suggestion item, which stays selected across refilters.
func (m *Model) setIndexKeepingSuggestion(i int) {
	if m.selectSuggestionItem {
		m.selectedIndex = completion.NoSelection
		return
	}
	if i >= len(m.presentedItems) {
		i = len(m.presentedItems) - 1
	}
	if i < 0 && len(m.presentedItems) > 0 {
		i = 0
	}
	m.selectedIndex = i
}

// UniqueCandidate returns the item commit-if-unique should commit, or nil.
func (m *Model) UniqueCandidate() *completion.Item {
	if m.uniqueItem != nil {
		return m.uniqueItem
	}
	if len(m.presentedItems) == 1 {
		return m.presentedItems[0].Item
	}
	return nil
}

// SelectedItem returns the selected regular item or the suggestion item.
func (m *Model) SelectedItem() *completion.Item {
	if m.selectSuggestionItem {
		return m.suggestionItem
	}
	if m.selectedIndex >= 0 && m.selectedIndex < len(m.presentedItems) {
		return m.presentedItems[m.selectedIndex].Item
	}
	return nil
}

// Items returns the presented items without highlights.
func (m *Model) Items() []*completion.Item {
	items := make([]*completion.Item, len(m.presentedItems))
	for i, p := range m.presentedItems {
		items[i] = p.Item
	}
	return items
}

// WithoutHighlights returns the presented items with highlight spans dropped.
func (m *Model) WithoutHighlights() []completion.ItemWithHighlight {
	out := make([]completion.ItemWithHighlight, len(m.presentedItems))
	for i, p := range m.presentedItems {
		out[i] = completion.ItemWithHighlight{Item: p.Item}
	}
	return out
}

// Computed reads the model for ComputedItems consumers.
func (m *Model) Computed() completion.ComputedItems {
	return completion.ComputedItems{
		Items:                  m.Items(),
		SuggestionItem:         m.suggestionItem,
		SelectedItem:           m.SelectedItem(),
		SuggestionItemSelected: m.selectSuggestionItem,
		UsesSoftSelection:      m.useSoftSelection,
	}
}

// ViewModel builds what the presenter draws, with the span mapped onto the
// model's snapshot.
func (m *Model) ViewModel() completion.ViewModel {
	var span text.Span
	if m.span != nil && m.snapshot != nil {
		span = m.span.SpanIn(m.snapshot)
	}
	return completion.ViewModel{
		Items:                 m.presentedItems,
		Filters:               m.filters,
		Snapshot:              m.snapshot,
		Span:                  span,
		UseSoftSelection:      m.useSoftSelection,
		DisplaySuggestionItem: m.displaySuggestionItem,
		SelectSuggestionItem:  m.selectSuggestionItem,
		SelectedIndex:         m.selectedIndex,
		SuggestionItem:        m.suggestionItem,
		SuggestionDescription: m.suggestionDescription,
	}
}
