package popup

import (
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billie-coop/locomplete/internal/completion"
)

type observer struct {
	filters   [][]completion.FilterState
	commits   []*completion.Item
	selected  []*completion.Item
	suggested []bool
	closed    int
}

func (o *observer) FiltersChanged(f []completion.FilterState) { o.filters = append(o.filters, f) }
func (o *observer) CommitRequested(item *completion.Item)      { o.commits = append(o.commits, item) }
func (o *observer) ItemSelected(item *completion.Item, suggestion bool) {
	o.selected = append(o.selected, item)
	o.suggested = append(o.suggested, suggestion)
}
func (o *observer) Closed() { o.closed++ }

var keywords = completion.NewFilter("keywords", "k", "◆")

func viewModel(selected int, words ...string) completion.ViewModel {
	vm := completion.ViewModel{SelectedIndex: selected}
	for _, w := range words {
		item := completion.NewItem(w, nil, completion.WithFilters(keywords))
		vm.Items = append(vm.Items, completion.ItemWithHighlight{Item: item})
	}
	return vm
}

func plain(p *Popup) string { return ansi.Strip(p.View()) }

func TestOpenUpdateClose(t *testing.T) {
	p := New()
	obs := &observer{}
	assert.False(t, p.IsOpen())
	assert.Empty(t, p.View())

	p.Open(viewModel(0, "alpha", "albert"), obs)
	require.True(t, p.IsOpen())
	assert.Contains(t, plain(p), "alpha")
	assert.Contains(t, plain(p), "albert")

	p.Update(viewModel(0, "albert"))
	assert.NotContains(t, plain(p), "alpha")

	p.Close()
	assert.False(t, p.IsOpen())
	assert.Zero(t, obs.closed, "the session closed it")

	p.Update(viewModel(0, "alpha"))
	assert.False(t, p.IsOpen(), "updates never reopen")
}

func TestDismissNotifiesObserver(t *testing.T) {
	p := New()
	obs := &observer{}
	p.Open(viewModel(0, "alpha"), obs)

	p.Dismiss()
	assert.False(t, p.IsOpen())
	assert.Equal(t, 1, obs.closed)

	p.Dismiss()
	assert.Equal(t, 1, obs.closed)
}

func TestStaleSubscription(t *testing.T) {
	p := New()
	first := &observer{}
	second := &observer{}

	sub := p.Open(viewModel(0, "alpha"), first)
	p.Close()
	p.Open(viewModel(0, "alpha"), second)
	sub.Unsubscribe()

	p.Dismiss()
	assert.Zero(t, first.closed)
	assert.Equal(t, 1, second.closed)
}

func TestUnsubscribeStopsGestures(t *testing.T) {
	p := New()
	obs := &observer{}
	sub := p.Open(viewModel(0, "alpha"), obs)
	sub.Unsubscribe()

	p.SetPosition(0, 0)
	assert.False(t, p.HandleMsg(tea.MouseClickMsg{X: 1, Y: 1, Button: tea.MouseLeft}))
	p.Dismiss()
	assert.Zero(t, obs.closed)
}

func TestFilterToggle(t *testing.T) {
	p := New()
	obs := &observer{}
	vm := viewModel(0, "alpha")
	vm.Filters = []completion.FilterState{{Filter: keywords, Available: true}}
	p.Open(vm, obs)

	assert.False(t, p.HandleMsg(tea.KeyPressMsg{Code: 'x', Text: "x", Mod: tea.ModAlt}))
	assert.False(t, p.HandleMsg(tea.KeyPressMsg{Code: 'k', Text: "k"}), "needs alt")

	require.True(t, p.HandleMsg(tea.KeyPressMsg{Code: 'K', Text: "K", Mod: tea.ModAlt}))
	require.Len(t, obs.filters, 1)
	assert.True(t, obs.filters[0][0].Selected)
	assert.False(t, vm.Filters[0].Selected, "the shown model is left alone")
}

func TestClickSelectsThenCommits(t *testing.T) {
	p := New()
	obs := &observer{}
	vm := viewModel(0, "alpha", "albert")
	p.Open(vm, obs)
	p.SetPosition(0, 0)

	// row 0 sits under the top border
	require.True(t, p.HandleMsg(tea.MouseClickMsg{X: 1, Y: 2, Button: tea.MouseLeft}))
	require.Len(t, obs.selected, 1)
	assert.Equal(t, "albert", obs.selected[0].DisplayText())
	assert.False(t, obs.suggested[0])

	require.True(t, p.HandleMsg(tea.MouseClickMsg{X: 1, Y: 1, Button: tea.MouseLeft}))
	require.Len(t, obs.commits, 1)
	assert.Equal(t, "alpha", obs.commits[0].DisplayText())

	assert.False(t, p.HandleMsg(tea.MouseClickMsg{X: 1, Y: 0, Button: tea.MouseLeft}), "border")
	assert.False(t, p.HandleMsg(tea.MouseClickMsg{X: 200, Y: 1, Button: tea.MouseLeft}))
	assert.False(t, p.HandleMsg(tea.MouseClickMsg{X: 1, Y: 1, Button: tea.MouseRight}))
}

func TestClickSuggestionRow(t *testing.T) {
	p := New()
	obs := &observer{}
	vm := viewModel(0, "alpha")
	vm.DisplaySuggestionItem = true
	vm.SuggestionItem = completion.NewItem("alp", nil)
	p.Open(vm, obs)
	p.SetPosition(3, 2)

	require.True(t, p.HandleMsg(tea.MouseClickMsg{X: 4, Y: 3, Button: tea.MouseLeft}))
	require.Len(t, obs.selected, 1)
	assert.Same(t, vm.SuggestionItem, obs.selected[0])
	assert.True(t, obs.suggested[0])
	assert.Contains(t, plain(p), "alp")
}

func TestScrollFollowsSelection(t *testing.T) {
	p := New(WithRows(3))
	words := make([]string, 10)
	for i := range words {
		words[i] = fmt.Sprintf("word%02d", i)
	}
	p.Open(viewModel(0, words...), &observer{})
	assert.Equal(t, 3, p.ResultsPerPage())
	assert.Contains(t, plain(p), "word02")
	assert.NotContains(t, plain(p), "word03")
	assert.Contains(t, plain(p), "1/10")

	p.Update(viewModel(6, words...))
	out := plain(p)
	assert.Contains(t, out, "word06")
	assert.NotContains(t, out, "word03")
	assert.Contains(t, out, "7/10")
	assert.Contains(t, out, "▲")
	assert.Contains(t, out, "▼")

	p.Update(viewModel(9, words...))
	assert.Contains(t, plain(p), "word09")
	assert.NotContains(t, plain(p), "▼")
}

func TestDescriber(t *testing.T) {
	var asked []string
	p := New(WithDescriber(func(item *completion.Item) string {
		asked = append(asked, item.DisplayText())
		return "about " + item.DisplayText()
	}))
	vm := viewModel(0, "alpha", "albert")
	p.Open(vm, &observer{})
	assert.Contains(t, plain(p), "about alpha")

	p.Update(vm)
	vm.SelectedIndex = 1
	p.Update(vm)
	assert.Contains(t, plain(p), "about albert")
	assert.Equal(t, []string{"alpha", "albert"}, asked, "asked again only when the selection changes")
}

func TestHighlight(t *testing.T) {
	bold := lipgloss.NewStyle().Bold(true)
	out := highlight("albert", []completion.Highlight{{Start: 0, End: 2}, {Start: 1, End: 4}}, bold)
	assert.Equal(t, "albert", ansi.Strip(out))
	assert.True(t, strings.HasSuffix(out, "rt"))
	assert.Equal(t, "plain", highlight("plain", nil, bold))
}
