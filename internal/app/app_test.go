package app

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/billie-coop/locomplete/internal/config"
	"github.com/billie-coop/locomplete/internal/events"
	"github.com/billie-coop/locomplete/internal/text"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const snippetsYAML = `
snippets:
  - prefix: fori
    name: for loop
    body: "for ${1:i} := range ${2:n} {}"
    content_types: [go]
`

func newApp(t *testing.T, snippets string) (*App, *events.Broker) {
	t.Helper()
	dir := t.TempDir()
	mgr := config.NewManager(dir)
	require.NoError(t, mgr.Load())
	if snippets != "" {
		require.NoError(t, os.WriteFile(filepath.Join(mgr.Dir(), "snippets.yaml"), []byte(snippets), 0o644))
	}

	ev := events.NewBroker()
	a := New(context.Background(), Options{
		Config: mgr,
		Events: ev,
		Logger: zaptest.NewLogger(t),
	})
	t.Cleanup(func() {
		a.Close()
		a.Wait()
	})
	return a, ev
}

func typeText(t *testing.T, a *App, view *text.View, s string) {
	for _, ch := range s {
		a.Router.TypeChar(view, ch, func() {
			pos := view.CaretPosition().Position
			require.NoError(t, view.Replace(text.Span{Start: pos, End: pos}, string(ch)))
		})
	}
}

func presented(a *App, view *text.View) []string {
	s := a.Broker.GetSession(view)
	if s == nil {
		return nil
	}
	var out []string
	for _, item := range s.PresentedItems() {
		out = append(out, item.DisplayText())
	}
	return out
}

func TestSourcesFollowContentType(t *testing.T) {
	a, _ := newApp(t, snippetsYAML)

	goView := text.NewView("go", text.NewBuffer("go", "forward\n"))
	typeText(t, a, goView, "for")
	assert.Eventually(t, func() bool {
		items := presented(a, goView)
		return assert.ObjectsAreEqual([]string{"for", "fori", "forward"}, slices.Sorted(slices.Values(items)))
	}, time.Second, time.Millisecond, "keyword, snippet and word")

	plain := text.NewView("txt", text.NewBuffer("text", "forward\n"))
	typeText(t, a, plain, "for")
	assert.Eventually(t, func() bool {
		return assert.ObjectsAreEqual([]string{"forward"}, presented(a, plain))
	}, time.Second, time.Millisecond, "words only")
}

func TestSnippetCommitExpandsBody(t *testing.T) {
	a, _ := newApp(t, snippetsYAML)

	view := text.NewView("go", text.NewBuffer("go", ""))
	typeText(t, a, view, "fori")
	require.Eventually(t, func() bool {
		items := presented(a, view)
		return len(items) > 0 && items[0] == "fori"
	}, time.Second, time.Millisecond)

	require.True(t, a.Router.Tab(view))
	assert.Equal(t, "for i := range n {}", view.Snapshot().Text())
	assert.Equal(t, 4, view.CaretPosition().Position, "caret on the first tab stop")
}

func TestMissingSnippetsFile(t *testing.T) {
	a, _ := newApp(t, "")
	assert.Nil(t, a.snippets.Load())
}

func TestBrokenSnippetsKeepPreviousSet(t *testing.T) {
	a, _ := newApp(t, snippetsYAML)
	require.NotNil(t, a.snippets.Load())

	path := a.Config.Resolve(a.Config.Get().SnippetsFile)
	require.NoError(t, os.WriteFile(path, []byte("snippets: [{name: nameless}]"), 0o644))
	a.loadSnippets(a.Config.Get())

	require.NotNil(t, a.snippets.Load())
	assert.Equal(t, "fori", (*a.snippets.Load())[0].Prefix)
}

func TestApplyPublishesReload(t *testing.T) {
	a, ev := newApp(t, "")
	sub := ev.Subscribe(events.ConfigReloadedEvent)
	defer ev.Unsubscribe(sub)

	cfg := a.Config.Get()
	cfg.PageSize = 3
	cfg.StartInSuggestionMode = true
	a.Apply(cfg)

	assert.Equal(t, 3, a.Broker.Config().PageSize)
	assert.True(t, a.Broker.Config().StartInSuggestionMode)

	select {
	case e := <-sub:
		payload, ok := e.Payload.(events.ConfigReloadedPayload)
		require.True(t, ok)
		assert.Equal(t, a.Config.Path(), payload.Path)
	case <-time.After(time.Second):
		t.Fatal("no reload event")
	}
}

func TestWatchAppliesSavedChanges(t *testing.T) {
	a, _ := newApp(t, "")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan *config.Config, 1)
	w, err := a.Watch(ctx, func(cfg *config.Config) {
		select {
		case changed <- cfg:
		default:
		}
	})
	require.NoError(t, err)
	defer w.Stop()

	other := config.NewManager(filepath.Dir(a.Config.Dir()))
	require.NoError(t, other.Load())
	require.NoError(t, other.Set("page_size", "4"))

	select {
	case cfg := <-changed:
		assert.Equal(t, 4, cfg.PageSize)
		assert.Equal(t, 4, a.Broker.Config().PageSize)
	case <-time.After(5 * time.Second):
		t.Fatal("config change not applied")
	}
}
