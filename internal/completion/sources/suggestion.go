package sources

import (
	"context"

	"github.com/billie-coop/locomplete/internal/completion"
	"github.com/billie-coop/locomplete/internal/text"
)

// SuggestionSource owns the suggestion item, the entry that commits exactly
// what was typed. It is never registered and never gathers anything.
type SuggestionSource struct{}

// Suggestion is the shared suggestion item owner.
var Suggestion = &SuggestionSource{}

func (*SuggestionSource) GetCompletionContext(context.Context, completion.Trigger, text.Point, text.Span) (*completion.SourceContext, error) {
	return completion.EmptyContext, nil
}

func (*SuggestionSource) GetDescription(context.Context, *completion.Item) (string, error) {
	return "", nil
}

func (*SuggestionSource) TryGetApplicableSpan(rune, text.Point) (text.Span, bool) {
	return text.Span{}, false
}
