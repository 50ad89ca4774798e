package broker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/billie-coop/locomplete/internal/completion"
	"github.com/billie-coop/locomplete/internal/completion/session"
	"github.com/billie-coop/locomplete/internal/events"
	"github.com/billie-coop/locomplete/internal/text"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// wordSource claims the word around the caret and offers fixed items.
type wordSource struct {
	name   string
	claims bool
	panics bool
	items  []string
	asked  int
}

func (w *wordSource) GetCompletionContext(context.Context, completion.Trigger, text.Point, text.Span) (*completion.SourceContext, error) {
	c := &completion.SourceContext{}
	for _, name := range w.items {
		c.Items = append(c.Items, completion.NewItem(name, w))
	}
	return c, nil
}

func (w *wordSource) GetDescription(context.Context, *completion.Item) (string, error) {
	return w.name, nil
}

func (w *wordSource) TryGetApplicableSpan(_ rune, point text.Point) (text.Span, bool) {
	w.asked++
	if w.panics {
		panic("bad source")
	}
	return text.WordSpanAt(point.Snapshot, point.Position), w.claims
}

type allManager struct{}

func (allManager) SortInitial(_ context.Context, d completion.InitialData) ([]*completion.Item, error) {
	return d.Items, nil
}

func (allManager) Refilter(_ context.Context, sorted []*completion.Item, d completion.UpdateData) (*completion.FilteredResult, error) {
	items := make([]completion.ItemWithHighlight, len(sorted))
	for i, item := range sorted {
		items[i] = completion.ItemWithHighlight{Item: item}
	}
	return &completion.FilteredResult{Items: items, Filters: d.Filters}, nil
}

type charsManager struct{ chars []rune }

func (c charsManager) PotentialCommitCharacters() []rune { return c.chars }
func (c charsManager) ShouldCommit(rune, text.Point) bool { return true }
func (c charsManager) TryCommit(context.Context, completion.View, *completion.Item, *text.TrackingSpan, rune) (completion.CommitResult, error) {
	return completion.Unhandled, nil
}

func newBroker(t *testing.T) (*Broker, *events.Broker) {
	t.Helper()
	bus := events.NewBroker()
	b := New(Options{Registry: NewRegistry(), Events: bus, Logger: zaptest.NewLogger(t)})
	t.Cleanup(func() {
		b.Close()
		b.Wait()
	})
	return b, bus
}

func trigger(b *Broker, view *text.View) *session.Session {
	return b.TriggerCompletion(view, completion.Trigger{Reason: completion.TriggerInvoke}, view.CaretPosition())
}

func TestResolveOrdersByOrderThenRegistration(t *testing.T) {
	r := NewRegistry()
	var got []string
	add := func(name string, order int) {
		r.RegisterSource(AnyContentType, func(completion.View) completion.Source { return nil }, WithName(name), WithOrder(order))
	}
	add("late", 10)
	add("first", 0)
	add("second", 0)
	add("early", -5)
	r.RegisterSource(ContentTypes("go"), func(completion.View) completion.Source { return nil }, WithName("go-only"))

	for _, reg := range r.sourcesFor("text") {
		got = append(got, reg.name)
	}
	assert.Equal(t, []string{"early", "first", "second", "late"}, got)
	assert.Len(t, r.sourcesFor("go"), 5)
}

func TestSupportsIsCachedUntilNextRegistration(t *testing.T) {
	r := NewRegistry()
	r.RegisterSource(ContentTypes("go"), func(completion.View) completion.Source { return &wordSource{} })
	assert.False(t, r.Supports("go"), "no item manager yet")

	r.RegisterItemManager(AnyContentType, func(completion.View) completion.ItemManager { return allManager{} })
	assert.True(t, r.Supports("go"))
	assert.False(t, r.Supports("markdown"))
}

func TestTriggerCompletion(t *testing.T) {
	b, bus := newBroker(t)
	triggered := bus.Subscribe(events.CompletionTriggeredEvent)
	defer bus.Unsubscribe(triggered)

	shy := &wordSource{name: "shy"}
	eager := &wordSource{name: "eager", claims: true, items: []string{"alpha"}}
	late := &wordSource{name: "late", claims: true, items: []string{"beta"}}
	for _, src := range []*wordSource{shy, eager, late} {
		b.Registry().RegisterSource(AnyContentType, func(completion.View) completion.Source { return src }, WithName(src.name))
	}
	b.Registry().RegisterItemManager(AnyContentType, func(completion.View) completion.ItemManager { return allManager{} })
	b.Registry().RegisterCommitManager(AnyContentType, func(completion.View) completion.CommitManager { return charsManager{chars: []rune{'.'}} })
	b.Registry().RegisterCommitManager(AnyContentType, func(completion.View) completion.CommitManager { return charsManager{chars: []rune{';'}} })

	view := text.NewView("v", text.NewBuffer("go", "x al"))
	s := b.TriggerCompletion(view, completion.Trigger{Reason: completion.TriggerInvoke}, view.CaretPosition())
	require.NotNil(t, s)

	assert.Equal(t, text.Span{Start: 2, End: 4}, s.ApplicableSpan())
	assert.Equal(t, 1, shy.asked)
	assert.Equal(t, 1, eager.asked)
	assert.Zero(t, late.asked, "span already decided")
	assert.True(t, b.IsCompletionActive(view))
	assert.Same(t, s, b.GetSession(view))
	assert.Same(t, s, b.TriggerCompletion(view, completion.Trigger{}, view.CaretPosition()), "one session per view")

	point := view.CaretPosition()
	assert.True(t, s.ShouldCommit('.', point))
	assert.True(t, s.ShouldCommit(';', point))
	assert.False(t, s.ShouldCommit(',', point))

	e := <-triggered
	assert.Equal(t, s.ID(), e.Payload.(events.TriggeredPayload).SessionID)

	s.OpenOrUpdate(context.Background(), completion.Trigger{Reason: completion.TriggerInvoke}, view.CaretPosition())
	assert.False(t, s.CommitIfUnique(context.Background()))
	assert.Equal(t, []string{"alpha", "beta"}, []string{s.PresentedItems()[0].DisplayText(), s.PresentedItems()[1].DisplayText()})

	s.Dismiss()
	assert.False(t, b.IsCompletionActive(view))
	assert.Nil(t, b.GetSession(view))
}

func TestTriggerCompletionWithoutSpan(t *testing.T) {
	b, _ := newBroker(t)
	b.Registry().RegisterSource(AnyContentType, func(completion.View) completion.Source { return &wordSource{} })
	b.Registry().RegisterItemManager(AnyContentType, func(completion.View) completion.ItemManager { return allManager{} })

	view := text.NewView("v", text.NewBuffer("go", "x al"))
	assert.Nil(t, trigger(b, view))
	assert.False(t, b.IsCompletionActive(view))
}

func TestTriggerCompletionUnsupportedContentType(t *testing.T) {
	b, _ := newBroker(t)
	b.Registry().RegisterSource(ContentTypes("go"), func(completion.View) completion.Source { return &wordSource{claims: true} })
	b.Registry().RegisterItemManager(AnyContentType, func(completion.View) completion.ItemManager { return allManager{} })

	view := text.NewView("v", text.NewBuffer("markdown", "x al"))
	assert.Nil(t, b.TriggerCompletion(view, completion.Trigger{}, view.CaretPosition()))
}

func TestPanickingSourceIsSkipped(t *testing.T) {
	b, bus := newBroker(t)
	faults := bus.Subscribe(events.SessionFaultEvent)
	defer bus.Unsubscribe(faults)

	b.Registry().RegisterSource(AnyContentType, func(completion.View) completion.Source { return &wordSource{panics: true} }, WithName("bad"))
	b.Registry().RegisterSource(AnyContentType, func(completion.View) completion.Source { return &wordSource{claims: true} }, WithName("good"))
	b.Registry().RegisterItemManager(AnyContentType, func(completion.View) completion.ItemManager { return allManager{} })

	view := text.NewView("v", text.NewBuffer("go", "al"))
	require.NotNil(t, b.TriggerCompletion(view, completion.Trigger{}, view.CaretPosition()))
	assert.Equal(t, 1, b.Faults().Count())

	e := <-faults
	assert.Equal(t, "source.try_get_applicable_span:bad", e.Payload.(events.FaultPayload).Operation)
}

func TestCloseDismissesSessions(t *testing.T) {
	b, _ := newBroker(t)
	b.Registry().RegisterSource(AnyContentType, func(completion.View) completion.Source { return &wordSource{claims: true} })
	b.Registry().RegisterItemManager(AnyContentType, func(completion.View) completion.ItemManager { return allManager{} })

	v1 := text.NewView("v1", text.NewBuffer("go", "a"))
	v2 := text.NewView("v2", text.NewBuffer("go", "b"))
	s1 := b.TriggerCompletion(v1, completion.Trigger{}, v1.CaretPosition())
	s2 := b.TriggerCompletion(v2, completion.Trigger{}, v2.CaretPosition())
	require.NotNil(t, s1)
	require.NotNil(t, s2)

	b.Close()
	assert.True(t, s1.IsDismissed())
	assert.True(t, s2.IsDismissed())
	assert.False(t, b.IsCompletionActive(v1))
}
