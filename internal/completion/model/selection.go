package model

import "github.com/billie-coop/locomplete/internal/completion"

// MoveSelection scrolls by offset items. Single steps wrap around, passing
// through the suggestion slot when it is displayed. Larger steps stop at the
// first or last item before wrapping on the next move.
func (m *Model) MoveSelection(offset int) *Model {
	if offset == 0 {
		return m
	}
	if len(m.presentedItems) == 0 {
		if m.displaySuggestionItem {
			return m.WithSuggestionItemSelected()
		}
		return m
	}

	last := len(m.presentedItems) - 1
	current := m.selectedIndex
	if m.selectSuggestionItem {
		current = completion.NoSelection
	}

	if offset > 0 {
		if current == last {
			if m.displaySuggestionItem {
				return m.WithSuggestionItemSelected()
			}
			return m.WithSelectedIndex(0)
		}
		return m.WithSelectedIndex(min(current+offset, last))
	}

	switch {
	case current < 0:
		return m.WithSelectedIndex(last)
	case current == 0:
		if m.displaySuggestionItem {
			return m.WithSuggestionItemSelected()
		}
		return m.WithSelectedIndex(last)
	default:
		return m.WithSelectedIndex(max(current+offset, 0))
	}
}

// SelectItem applies a pick made directly in the presenter. Items that are no
// longer presented leave the model unchanged.
func (m *Model) SelectItem(item *completion.Item, suggestion bool) *Model {
	if suggestion {
		return m.WithSuggestionItemSelected()
	}
	for i, p := range m.presentedItems {
		if p.Item == item {
			return m.WithSelectedIndex(i)
		}
	}
	return m
}
