// Package sources contains the completion sources shipped with locomplete:
// words already in the buffer, per-language keywords, snippets loaded from
// YAML, and the owner of the synthetic suggestion item.
package sources

import "github.com/billie-coop/locomplete/internal/completion"

// Filters tagging the items of each source.
var (
	WordsFilter    = completion.NewFilter("Words", "w", "≡")
	KeywordsFilter = completion.NewFilter("Keywords", "k", "◆")
	SnippetsFilter = completion.NewFilter("Snippets", "s", "✂")
)
