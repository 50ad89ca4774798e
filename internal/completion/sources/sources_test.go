package sources

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billie-coop/locomplete/internal/completion"
	"github.com/billie-coop/locomplete/internal/text"
)

func pointAtEnd(content string) text.Point {
	s := text.NewBuffer("go", content).CurrentSnapshot()
	return text.Point{Snapshot: s, Position: s.Len()}
}

func displays(items []*completion.Item) []string {
	var out []string
	for _, item := range items {
		out = append(out, item.DisplayText())
	}
	return out
}

func TestWordSpan(t *testing.T) {
	point := pointAtEnd("foo ba")

	span, ok := NewWordSource(1).TryGetApplicableSpan('a', point)
	require.True(t, ok)
	assert.Equal(t, text.Span{Start: 4, End: 6}, span)

	_, ok = NewWordSource(1).TryGetApplicableSpan('.', point)
	assert.False(t, ok)

	span, ok = NewWordSource(1).TryGetApplicableSpan(0, point)
	assert.True(t, ok, "explicit invocation")
	assert.Equal(t, text.Span{Start: 4, End: 6}, span)
}

func TestWordSourceCollectsDistinctWords(t *testing.T) {
	point := pointAtEnd("alpha beta alpha ab gamma be")
	src := NewWordSource(3)
	span := text.WordSpanAt(point.Snapshot, point.Position)

	c, err := src.GetCompletionContext(context.Background(), completion.Trigger{}, point, span)
	require.NoError(t, err)

	assert.Equal(t, []string{"alpha", "beta", "gamma"}, displays(c.Items))
	assert.False(t, c.InitiallyUnavailable)
	n, _ := c.Items[0].Property(occurrencesProperty)
	assert.Equal(t, 2, n)
	assert.True(t, c.Items[0].HasFilter(WordsFilter))

	desc, err := src.GetDescription(context.Background(), c.Items[0])
	require.NoError(t, err)
	assert.Contains(t, desc, "2 time(s)")
}

func TestWordSourceDigitIsInitiallyUnavailable(t *testing.T) {
	point := pointAtEnd("alpha 4")
	span := text.WordSpanAt(point.Snapshot, point.Position)

	c, err := NewWordSource(1).GetCompletionContext(context.Background(),
		completion.Trigger{Reason: completion.TriggerInsertion, Char: '4'}, point, span)
	require.NoError(t, err)
	assert.True(t, c.InitiallyUnavailable)
	assert.Equal(t, []string{"alpha"}, displays(c.Items))
}

func TestWordSourceHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	point := pointAtEnd("alpha")
	_, err := NewWordSource(1).GetCompletionContext(ctx, completion.Trigger{}, point, text.Span{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestKeywordSource(t *testing.T) {
	src := NewKeywordSource("go", []string{"func", "for"})
	c, err := src.GetCompletionContext(context.Background(), completion.Trigger{}, pointAtEnd("f"), text.Span{})
	require.NoError(t, err)
	assert.Equal(t, []string{"func", "for"}, displays(c.Items))
	assert.True(t, c.Items[0].HasFilter(KeywordsFilter))

	empty, err := NewKeywordSource("go", nil).GetCompletionContext(context.Background(), completion.Trigger{}, pointAtEnd(""), text.Span{})
	require.NoError(t, err)
	assert.Empty(t, empty.Items)
}

const snippetsYAML = `
snippets:
  - prefix: fn
    name: function
    description: A function declaration.
    body: "func ${1:name}() {\n\t$0\n}"
    content_types: [go]
  - prefix: todo
    name: todo comment
    body: "// TODO(${1:owner}): "
  - prefix: h1
    name: heading
    body: "# ${1:title}"
    content_types: [markdown]
`

func TestParseSnippets(t *testing.T) {
	snippets, err := ParseSnippets([]byte(snippetsYAML))
	require.NoError(t, err)
	require.Len(t, snippets, 3)

	assert.Equal(t, "func name() {\n\t\n}", snippets[0].Expand())
	assert.Equal(t, "// TODO(owner): ", snippets[1].Expand())
	assert.True(t, snippets[1].AppliesTo("anything"))
	assert.False(t, snippets[2].AppliesTo("go"))

	out, cursor := snippets[0].ExpandWithCursor()
	assert.Equal(t, "func name() {\n\t\n}", out)
	assert.Equal(t, len("func "), cursor)

	_, err = ParseSnippets([]byte("snippets:\n  - name: nameless\n"))
	assert.Error(t, err)
	_, err = ParseSnippets([]byte("snippets: ["))
	assert.Error(t, err)
}

func TestSnippetSource(t *testing.T) {
	snippets, err := ParseSnippets([]byte(snippetsYAML))
	require.NoError(t, err)
	src := NewSnippetSource("go", snippets)
	require.Equal(t, 2, src.Len())

	c, err := src.GetCompletionContext(context.Background(), completion.Trigger{}, pointAtEnd("fn"), text.Span{})
	require.NoError(t, err)
	require.Equal(t, []string{"fn", "todo"}, displays(c.Items))

	fn := c.Items[0]
	assert.Equal(t, "func name() {\n\t\n}", fn.InsertText())
	sn, ok := SnippetOf(fn)
	require.True(t, ok)
	assert.Equal(t, "function", sn.Name)

	desc, err := src.GetDescription(context.Background(), fn)
	require.NoError(t, err)
	assert.Contains(t, desc, "A function declaration.")
	assert.Contains(t, desc, "```")

	_, ok = NewSnippetSource("text", nil).TryGetApplicableSpan(0, pointAtEnd("x"))
	assert.False(t, ok)
}

func TestSuggestionSourceIsInert(t *testing.T) {
	c, err := Suggestion.GetCompletionContext(context.Background(), completion.Trigger{}, pointAtEnd(""), text.Span{})
	require.NoError(t, err)
	assert.Empty(t, c.Items)
	_, ok := Suggestion.TryGetApplicableSpan('a', pointAtEnd("a"))
	assert.False(t, ok)
}

func TestExpandWithCursor(t *testing.T) {
	tests := []struct {
		body   string
		want   string
		cursor int
	}{
		{body: "plain", want: "plain", cursor: 5},
		{body: "a$0b", want: "ab", cursor: 1},
		{body: "${2:x} ${1:y}$0", want: "x y", cursor: 2},
		{body: "$0 ${3:z}", want: " z", cursor: 1},
	}
	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			out, cursor := (&Snippet{Body: tt.body}).ExpandWithCursor()
			assert.Equal(t, tt.want, out)
			assert.Equal(t, tt.cursor, cursor)
		})
	}
}
