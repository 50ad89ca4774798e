package sources

import (
	"context"
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/billie-coop/locomplete/internal/completion"
	"github.com/billie-coop/locomplete/internal/text"
)

const occurrencesProperty = "occurrences"

// WordSource offers the words already present in the buffer.
type WordSource struct {
	minLength int
}

// NewWordSource creates a WordSource ignoring words shorter than minLength.
func NewWordSource(minLength int) *WordSource {
	return &WordSource{minLength: max(minLength, 1)}
}

// TryGetApplicableSpan claims the word at point when completion is invoked
// or an identifier character is typed.
func (w *WordSource) TryGetApplicableSpan(ch rune, point text.Point) (text.Span, bool) {
	return wordSpan(ch, point)
}

func wordSpan(ch rune, point text.Point) (text.Span, bool) {
	if ch != 0 && !text.IsWordRune(ch) {
		return text.Span{}, false
	}
	return text.WordSpanAt(point.Snapshot, point.Position), true
}

// GetCompletionContext collects the distinct words of the snapshot except
// the one being typed. Typing a digit at the start of a word gathers the
// items but marks them unavailable.
func (w *WordSource) GetCompletionContext(ctx context.Context, trigger completion.Trigger, point text.Point, span text.Span) (*completion.SourceContext, error) {
	s := point.Snapshot.Text()
	counts := make(map[string]int)
	var order []string

	start := -1
	for i := 0; i <= len(s); {
		r, size := utf8.RuneError, 1
		if i < len(s) {
			r, size = utf8.DecodeRuneInString(s[i:])
		}
		switch {
		case i < len(s) && text.IsWordRune(r):
			if start < 0 {
				start = i
			}
		case start >= 0:
			if start != span.Start && i-start >= w.minLength {
				word := s[start:i]
				if counts[word] == 0 {
					order = append(order, word)
				}
				counts[word]++
			}
			start = -1
		}
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		i += size
	}

	items := make([]*completion.Item, 0, len(order))
	for _, word := range order {
		items = append(items, completion.NewItem(word, w,
			completion.WithIcon(WordsFilter.Icon),
			completion.WithFilters(WordsFilter),
			completion.WithProperty(occurrencesProperty, counts[word])))
	}

	typed := point.Snapshot.Slice(span)
	first, _ := utf8.DecodeRuneInString(typed)
	unavailable := trigger.Reason == completion.TriggerInsertion && span.Len() == utf8.RuneLen(first) && unicode.IsDigit(first)
	return &completion.SourceContext{Items: items, InitiallyUnavailable: unavailable}, nil
}

// GetDescription reports how often the word occurs.
func (w *WordSource) GetDescription(_ context.Context, item *completion.Item) (string, error) {
	n, _ := item.Property(occurrencesProperty)
	return fmt.Sprintf("**%s**\n\nWord from this buffer, seen %v time(s).", item.DisplayText(), n), nil
}
