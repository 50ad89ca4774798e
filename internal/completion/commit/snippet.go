package commit

import (
	"context"
	"fmt"

	"github.com/billie-coop/locomplete/internal/completion"
	"github.com/billie-coop/locomplete/internal/completion/sources"
	"github.com/billie-coop/locomplete/internal/text"
)

type caretHost interface {
	Caret() *text.Caret
}

// SnippetManager expands snippet items and leaves the caret on their first
// tab stop. Other items are left to the managers after it.
type SnippetManager struct{}

func NewSnippetManager() *SnippetManager { return &SnippetManager{} }

func (*SnippetManager) PotentialCommitCharacters() []rune { return nil }

func (*SnippetManager) ShouldCommit(rune, text.Point) bool { return false }

func (*SnippetManager) TryCommit(_ context.Context, view completion.View, item *completion.Item, span *text.TrackingSpan, _ rune) (completion.CommitResult, error) {
	sn, ok := sources.SnippetOf(item)
	if !ok {
		return completion.Unhandled, nil
	}

	target := span.SpanIn(view.Snapshot())
	body, cursor := sn.ExpandWithCursor()
	if err := view.Replace(target, body); err != nil {
		return completion.Unhandled, fmt.Errorf("failed to expand snippet %q: %w", sn.Prefix, err)
	}
	if host, ok := view.(caretHost); ok {
		host.Caret().MoveTo(target.Start + cursor)
	}
	return completion.CommitResult{Handled: true, Behavior: completion.SuppressFurtherTypeCharHandlers}, nil
}
