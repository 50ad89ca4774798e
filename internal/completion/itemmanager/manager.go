// Package itemmanager provides the default ItemManager: items are sorted by
// sort text and filtered with fuzzy matching against the typed text.
package itemmanager

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/sahilm/fuzzy"
	"go.uber.org/zap"

	"github.com/billie-coop/locomplete/internal/completion"
)

// Manager is the default completion.ItemManager. It is stateless and may be
// shared by every view.
type Manager struct {
	logger *zap.Logger
}

// New creates a Manager.
func New(logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{logger: logger.Named("itemmanager")}
}

// filterTexts adapts items to fuzzy.Source.
type filterTexts []*completion.Item

func (f filterTexts) String(i int) string { return f[i].FilterText() }
func (f filterTexts) Len() int            { return len(f) }

// SortInitial orders items by sort text, then display text.
func (m *Manager) SortInitial(_ context.Context, data completion.InitialData) ([]*completion.Item, error) {
	sorted := slices.Clone(data.Items)
	slices.SortStableFunc(sorted, bySortText)
	return sorted, nil
}

func bySortText(a, b *completion.Item) int {
	return cmp.Or(strings.Compare(a.SortText(), b.SortText()), strings.Compare(a.DisplayText(), b.DisplayText()))
}

// Refilter matches the typed text against each item's filter text.
//
// Blank text shows everything the selected filters allow. A single typed
// character keeps unmatched items too, highlighting only the matches.
// Filter availability is derived from the text-matched items. The best
// fuzzy match is selected.
func (m *Manager) Refilter(_ context.Context, sorted []*completion.Item, data completion.UpdateData) (*completion.FilteredResult, error) {
	typed := data.Span.TextIn(data.Snapshot)
	filters := data.Filters
	selected := completion.AnySelected(filters)

	if strings.TrimSpace(typed) == "" {
		var items []completion.ItemWithHighlight
		for _, item := range sorted {
			if !selected || allowed(item, filters) {
				items = append(items, completion.ItemWithHighlight{Item: item})
			}
		}
		return &completion.FilteredResult{Items: items, Filters: availability(sorted, filters)}, nil
	}

	matches := make(map[int]fuzzy.Match)
	for _, match := range fuzzy.FindFromNoSort(typed, filterTexts(sorted)) {
		matches[match.Index] = match
	}
	keepAll := utf8.RuneCountInString(typed) == 1

	type candidate struct {
		item    *completion.Item
		match   fuzzy.Match
		matched bool
	}
	var candidates []candidate
	matched := make([]*completion.Item, 0, len(sorted))
	for i, item := range sorted {
		match, ok := matches[i]
		if !ok && !keepAll {
			continue
		}
		candidates = append(candidates, candidate{item: item, match: match, matched: ok})
		matched = append(matched, item)
	}
	updated := availability(matched, filters)

	var items []completion.ItemWithHighlight
	best, bestScore := -1, 0
	for _, c := range candidates {
		if selected && !allowed(c.item, filters) {
			continue
		}
		var hl []completion.Highlight
		if c.matched {
			if best < 0 || c.match.Score > bestScore {
				best, bestScore = len(items), c.match.Score
			}
			hl = highlights(c.match)
		}
		items = append(items, completion.ItemWithHighlight{Item: c.item, Highlights: hl})
	}

	m.logger.Debug("refiltered",
		zap.String("typed", typed),
		zap.Int("matched", len(matches)),
		zap.Int("presented", len(items)))
	return &completion.FilteredResult{Items: items, SelectedIndex: max(best, 0), Filters: updated}, nil
}

// allowed reports whether item carries one of the selected filters.
func allowed(item *completion.Item, filters []completion.FilterState) bool {
	for _, f := range filters {
		if f.Selected && item.HasFilter(f.Filter) {
			return true
		}
	}
	return false
}

// highlights turns matched byte offsets into ranges, merging neighbours.
func highlights(match fuzzy.Match) []completion.Highlight {
	var out []completion.Highlight
	for _, start := range match.MatchedIndexes {
		_, size := utf8.DecodeRuneInString(match.Str[start:])
		end := start + size
		if n := len(out); n > 0 && out[n-1].End == start {
			out[n-1].End = end
			continue
		}
		out = append(out, completion.Highlight{Start: start, End: end})
	}
	return out
}

// availability returns a copy of filters where a filter is available iff
// some item in matched carries it.
func availability(matched []*completion.Item, filters []completion.FilterState) []completion.FilterState {
	present := make(map[*completion.Filter]bool)
	for _, item := range matched {
		for _, f := range item.Filters() {
			present[f] = true
		}
	}
	updated := make([]completion.FilterState, len(filters))
	for i, f := range filters {
		f.Available = present[f.Filter]
		updated[i] = f
	}
	return updated
}
