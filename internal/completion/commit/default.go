// Package commit holds the commit managers shipped with locomplete.
package commit

import (
	"context"
	"slices"

	"github.com/billie-coop/locomplete/internal/completion"
	"github.com/billie-coop/locomplete/internal/text"
)

// DefaultChars are the characters that commit the selection in most
// C-like languages.
var DefaultChars = []rune{' ', '.', ',', ';', '(', ')', '[', ']', '{', '}', '\n'}

// DefaultManager commits on a configurable set of characters and leaves the
// text insertion to the session.
type DefaultManager struct {
	chars []rune
}

// NewDefaultManager creates a manager committing on chars, or on
// DefaultChars when none are given.
func NewDefaultManager(chars ...rune) *DefaultManager {
	if len(chars) == 0 {
		chars = DefaultChars
	}
	return &DefaultManager{chars: slices.Clone(chars)}
}

func (d *DefaultManager) PotentialCommitCharacters() []rune { return d.chars }

func (d *DefaultManager) ShouldCommit(ch rune, _ text.Point) bool {
	return slices.Contains(d.chars, ch)
}

// TryCommit never handles the commit itself. Pressing return on an item that
// is already fully typed lets the newline through to the editor.
func (d *DefaultManager) TryCommit(_ context.Context, view completion.View, item *completion.Item, span *text.TrackingSpan, ch rune) (completion.CommitResult, error) {
	if ch == '\n' && span.TextIn(view.Snapshot()) == item.InsertText() {
		return completion.CommitResult{Behavior: completion.RaiseFurtherReturnTabHandlers}, nil
	}
	return completion.Unhandled, nil
}
