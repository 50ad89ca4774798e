package commands

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/billie-coop/locomplete/internal/completion"
	"github.com/billie-coop/locomplete/internal/completion/broker"
	"github.com/billie-coop/locomplete/internal/completion/commit"
	"github.com/billie-coop/locomplete/internal/completion/itemmanager"
	"github.com/billie-coop/locomplete/internal/completion/session"
	"github.com/billie-coop/locomplete/internal/completion/sources"
	"github.com/billie-coop/locomplete/internal/text"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const snippetsYAML = `
snippets:
  - prefix: fn
    name: function
    body: "func ${1:name}() {}"
`

type editor struct {
	t      *testing.T
	view   *text.View
	router *Router
	broker *broker.Broker
}

func newEditor(t *testing.T, contentType, content string) *editor {
	t.Helper()
	logger := zaptest.NewLogger(t)
	snippets, err := sources.ParseSnippets([]byte(snippetsYAML))
	require.NoError(t, err)

	reg := broker.NewRegistry()
	reg.RegisterSource(broker.AnyContentType, func(completion.View) completion.Source {
		return sources.NewWordSource(2)
	}, broker.WithName("words"))
	reg.RegisterSource(broker.ContentTypes("go"), func(completion.View) completion.Source {
		return sources.NewSnippetSource("go", snippets)
	}, broker.WithName("snippets"))
	reg.RegisterItemManager(broker.AnyContentType, func(completion.View) completion.ItemManager {
		return itemmanager.New(logger)
	})
	reg.RegisterCommitManager(broker.AnyContentType, func(completion.View) completion.CommitManager {
		return commit.NewSnippetManager()
	}, broker.WithOrder(-1))
	reg.RegisterCommitManager(broker.AnyContentType, func(completion.View) completion.CommitManager {
		return commit.NewDefaultManager()
	})

	b := broker.New(broker.Options{
		Registry:   reg,
		Suggestion: sources.Suggestion,
		Logger:     logger,
		Config:     session.DefaultConfig(),
	})
	r := NewRouter(context.Background(), b, logger)
	t.Cleanup(func() {
		r.Close()
		b.Close()
		b.Wait()
	})
	return &editor{t: t, view: text.NewView("main", text.NewBuffer(contentType, content)), router: r, broker: b}
}

func (e *editor) insert(s string) {
	pos := e.view.CaretPosition().Position
	require.NoError(e.t, e.view.Replace(text.Span{Start: pos, End: pos}, s))
}

func (e *editor) typeText(s string) {
	for _, ch := range s {
		e.router.TypeChar(e.view, ch, func() { e.insert(string(ch)) })
	}
}

func (e *editor) backspace() {
	e.router.Backspace(e.view, func() {
		pos := e.view.CaretPosition().Position
		require.NoError(e.t, e.view.Replace(text.Span{Start: pos - 1, End: pos}, ""))
	})
}

func (e *editor) text() string { return e.view.Snapshot().Text() }

func (e *editor) presented() []string {
	s := e.broker.GetSession(e.view)
	if s == nil {
		return nil
	}
	var out []string
	for _, item := range s.PresentedItems() {
		out = append(out, item.DisplayText())
	}
	return out
}

func (e *editor) eventuallyPresents(want ...string) {
	e.t.Helper()
	assert.Eventually(e.t, func() bool {
		return assert.ObjectsAreEqual(want, e.presented())
	}, time.Second, time.Millisecond, "want %v, have %v", want, e.presented())
}

func TestTypingOpensAndTabCommits(t *testing.T) {
	e := newEditor(t, "text", "alpha albert\n")

	e.typeText("a")
	require.True(t, e.broker.IsCompletionActive(e.view))
	e.eventuallyPresents("albert", "alpha")

	e.typeText("lb")
	e.eventuallyPresents("albert")

	assert.True(t, e.router.Tab(e.view))
	assert.Equal(t, "alpha albert\nalbert", e.text())
	assert.False(t, e.broker.IsCompletionActive(e.view))
}

func TestCommitCharacterIsReplayed(t *testing.T) {
	e := newEditor(t, "text", "alpha albert\n")

	e.typeText("alp.")
	assert.Equal(t, "alpha albert\nalpha.", e.text())
	assert.False(t, e.broker.IsCompletionActive(e.view), "'.' starts no new session")
}

func TestReturnOnFullyTypedWordPassesThrough(t *testing.T) {
	e := newEditor(t, "text", "alpha albert\n")

	e.typeText("alpha")
	e.eventuallyPresents("alpha")
	assert.False(t, e.router.Return(e.view), "editor inserts the newline")
	assert.Equal(t, "alpha albert\nalpha", e.text())
	assert.False(t, e.broker.IsCompletionActive(e.view))
}

func TestBackspaceRefilters(t *testing.T) {
	e := newEditor(t, "text", "alpha albert\n")

	e.typeText("alb")
	e.eventuallyPresents("albert")

	e.backspace()
	e.eventuallyPresents("albert", "alpha")
	assert.Equal(t, "alpha albert\nal", e.text())
}

func TestCommandsWithoutSession(t *testing.T) {
	e := newEditor(t, "text", "alpha ")

	assert.False(t, e.router.Up(e.view))
	assert.False(t, e.router.Down(e.view))
	assert.False(t, e.router.PageUp(e.view))
	assert.False(t, e.router.PageDown(e.view))
	assert.False(t, e.router.Escape(e.view))
	assert.False(t, e.router.Tab(e.view))
	assert.False(t, e.router.Return(e.view))
	assert.False(t, e.router.DismissAndPass(e.view))

	e.backspace()
	assert.Equal(t, "alpha", e.text())
	assert.False(t, e.broker.IsCompletionActive(e.view), "deletion never starts a session")
}

func TestEscapeAndDismissAndPass(t *testing.T) {
	e := newEditor(t, "text", "alpha albert\n")

	e.typeText("a")
	assert.True(t, e.router.Down(e.view))
	assert.True(t, e.router.Escape(e.view))
	assert.False(t, e.broker.IsCompletionActive(e.view))

	require.True(t, e.router.Invoke(e.view))
	assert.False(t, e.router.DismissAndPass(e.view))
	assert.False(t, e.broker.IsCompletionActive(e.view))
}

func TestCommitUnique(t *testing.T) {
	e := newEditor(t, "text", "alpha albert\nalp")

	assert.True(t, e.router.CommitUnique(e.view))
	assert.Equal(t, "alpha albert\nalpha", e.text())
	assert.False(t, e.broker.IsCompletionActive(e.view))
}

func TestCommitUniqueKeepsListWhenAmbiguous(t *testing.T) {
	e := newEditor(t, "text", "alpha albert\nal")

	assert.True(t, e.router.CommitUnique(e.view))
	assert.Equal(t, "alpha albert\nal", e.text())
	assert.True(t, e.broker.IsCompletionActive(e.view))
	e.eventuallyPresents("albert", "alpha")
}

func TestSnippetExpandsOnTab(t *testing.T) {
	e := newEditor(t, "go", "fn")

	require.True(t, e.router.Invoke(e.view))
	e.eventuallyPresents("fn")
	assert.True(t, e.router.Tab(e.view))
	assert.Equal(t, "func name() {}", e.text())
	assert.Equal(t, len("func "), e.view.CaretPosition().Position)
}

func TestToggleSuggestionMode(t *testing.T) {
	e := newEditor(t, "text", "alpha albert\n")

	assert.False(t, e.router.SuggestionMode(e.view))
	assert.False(t, e.router.ToggleSuggestionMode(e.view), "no session to apply it to")
	assert.True(t, e.router.SuggestionMode(e.view))

	e.typeText("al")
	s := e.broker.GetSession(e.view)
	require.NotNil(t, s)
	assert.Eventually(t, func() bool {
		c := s.ComputedItems()
		return c.UsesSoftSelection && c.SuggestionItem != nil
	}, time.Second, time.Millisecond)

	assert.True(t, e.router.ToggleSuggestionMode(e.view))
	assert.False(t, e.router.SuggestionMode(e.view))
}

func TestCancelDismissesSession(t *testing.T) {
	e := newEditor(t, "text", "alpha albert\n")

	e.typeText("al")
	s := e.broker.GetSession(e.view)
	require.NotNil(t, s)

	e.router.Cancel(e.view)
	assert.Eventually(t, s.IsDismissed, time.Second, time.Millisecond)

	e.typeText("p")
	assert.True(t, e.broker.IsCompletionActive(e.view), "a fresh scope serves later commands")
}
