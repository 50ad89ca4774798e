package sources

import (
	"context"
	"fmt"

	"github.com/billie-coop/locomplete/internal/completion"
	"github.com/billie-coop/locomplete/internal/text"
)

// KeywordSource offers a fixed list of language keywords.
type KeywordSource struct {
	language string
	keywords []string
}

// NewKeywordSource creates a source for the keywords of language.
func NewKeywordSource(language string, keywords []string) *KeywordSource {
	return &KeywordSource{language: language, keywords: keywords}
}

func (k *KeywordSource) TryGetApplicableSpan(ch rune, point text.Point) (text.Span, bool) {
	return wordSpan(ch, point)
}

func (k *KeywordSource) GetCompletionContext(context.Context, completion.Trigger, text.Point, text.Span) (*completion.SourceContext, error) {
	if len(k.keywords) == 0 {
		return completion.EmptyContext, nil
	}
	items := make([]*completion.Item, len(k.keywords))
	for i, kw := range k.keywords {
		items[i] = completion.NewItem(kw, k,
			completion.WithIcon(KeywordsFilter.Icon),
			completion.WithFilters(KeywordsFilter),
			completion.WithSuffix("keyword"))
	}
	return &completion.SourceContext{Items: items}, nil
}

func (k *KeywordSource) GetDescription(_ context.Context, item *completion.Item) (string, error) {
	return fmt.Sprintf("`%s` is a %s keyword.", item.DisplayText(), k.language), nil
}
