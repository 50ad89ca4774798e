package completion

import (
	"context"

	"github.com/billie-coop/locomplete/internal/text"
)

// Subscription detaches an observer.
type Subscription interface {
	Unsubscribe()
}

// View is the host editor surface a session is attached to. *text.View
// implements it.
type View interface {
	ID() string
	ContentType() string
	Snapshot() *text.Snapshot
	CaretPosition() text.Point
	OnCaretMoved(fn func(text.Point)) *text.Subscription
	Replace(span text.Span, s string) error
}

// Source produces completion items.
type Source interface {
	// GetCompletionContext gathers items. It runs off the UI goroutine and
	// must honor ctx.
	GetCompletionContext(ctx context.Context, trigger Trigger, point text.Point, span text.Span) (*SourceContext, error)
	// GetDescription returns markdown describing one of the source's items.
	GetDescription(ctx context.Context, item *Item) (string, error)
	// TryGetApplicableSpan decides whether typing ch at point starts completion
	// and over which span. It runs on the UI goroutine and must be fast.
	TryGetApplicableSpan(ch rune, point text.Point) (text.Span, bool)
}

// ItemManager sorts and filters items.
type ItemManager interface {
	SortInitial(ctx context.Context, data InitialData) ([]*Item, error)
	Refilter(ctx context.Context, sorted []*Item, data UpdateData) (*FilteredResult, error)
}

// CommitManager writes a committed item into the document.
type CommitManager interface {
	// PotentialCommitCharacters lists characters that may commit. The list
	// is a cheap pre-check; ShouldCommit has the final say.
	PotentialCommitCharacters() []rune
	ShouldCommit(ch rune, point text.Point) bool
	TryCommit(ctx context.Context, view View, item *Item, span *text.TrackingSpan, ch rune) (CommitResult, error)
}

// Presenter shows the completion list.
type Presenter interface {
	// Open shows the list and starts reporting gestures to observer until the
	// returned subscription is cancelled.
	Open(vm ViewModel, observer PresenterObserver) Subscription
	Update(vm ViewModel)
	Close()
	ResultsPerPage() int
}

// PresenterObserver receives user gestures from a Presenter.
type PresenterObserver interface {
	FiltersChanged(filters []FilterState)
	CommitRequested(item *Item)
	ItemSelected(item *Item, suggestion bool)
	Closed()
}
