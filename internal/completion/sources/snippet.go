package sources

import (
	"context"
	"fmt"
	"math"
	"os"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/billie-coop/locomplete/internal/completion"
	"github.com/billie-coop/locomplete/internal/text"
)

const snippetProperty = "snippet"

// Snippet is a named template inserted in place of its prefix.
type Snippet struct {
	Prefix       string   `yaml:"prefix"`
	Name         string   `yaml:"name"`
	Description  string   `yaml:"description"`
	Body         string   `yaml:"body"`
	ContentTypes []string `yaml:"content_types"`
}

type snippetFile struct {
	Snippets []Snippet `yaml:"snippets"`
}

var placeholder = regexp.MustCompile(`\$\{(\d+):([^}]*)\}|\$(\d+)`)

// Expand returns the body with placeholders replaced by their defaults.
func (s *Snippet) Expand() string {
	out, _ := s.ExpandWithCursor()
	return out
}

// ExpandWithCursor expands the body and returns the byte offset of the
// first tab stop: the lowest numbered placeholder, then $0, then the end.
func (s *Snippet) ExpandWithCursor() (string, int) {
	var b strings.Builder
	cursor, best := -1, -1
	last := 0
	for _, m := range placeholder.FindAllStringSubmatchIndex(s.Body, -1) {
		b.WriteString(s.Body[last:m[0]])
		last = m[1]

		num, def := "", ""
		if m[2] >= 0 {
			num, def = s.Body[m[2]:m[3]], s.Body[m[4]:m[5]]
		} else {
			num = s.Body[m[6]:m[7]]
		}
		n, _ := strconv.Atoi(num)
		if n == 0 {
			n = math.MaxInt
		}
		if best < 0 || n < best {
			best, cursor = n, b.Len()
		}
		b.WriteString(def)
	}
	b.WriteString(s.Body[last:])
	if cursor < 0 {
		cursor = b.Len()
	}
	return b.String(), cursor
}

// AppliesTo reports whether the snippet is offered for contentType. A
// snippet without content types applies everywhere.
func (s *Snippet) AppliesTo(contentType string) bool {
	return len(s.ContentTypes) == 0 || slices.Contains(s.ContentTypes, contentType)
}

// ParseSnippets decodes a snippets YAML document.
func ParseSnippets(data []byte) ([]Snippet, error) {
	var f snippetFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse snippets: %w", err)
	}
	for i, s := range f.Snippets {
		if s.Prefix == "" {
			return nil, fmt.Errorf("snippet %d (%q) has no prefix", i, s.Name)
		}
	}
	return f.Snippets, nil
}

// LoadSnippets reads and parses a snippets file.
func LoadSnippets(path string) ([]Snippet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snippets: %w", err)
	}
	return ParseSnippets(data)
}

// SnippetOf returns the snippet an item was created for.
func SnippetOf(item *completion.Item) (*Snippet, bool) {
	v, ok := item.Property(snippetProperty)
	if !ok {
		return nil, false
	}
	s, ok := v.(*Snippet)
	return s, ok
}

// SnippetSource offers snippets for one content type.
type SnippetSource struct {
	snippets []*Snippet
}

// NewSnippetSource keeps the snippets applying to contentType.
func NewSnippetSource(contentType string, snippets []Snippet) *SnippetSource {
	src := &SnippetSource{}
	for i := range snippets {
		if snippets[i].AppliesTo(contentType) {
			src.snippets = append(src.snippets, &snippets[i])
		}
	}
	return src
}

// Len returns the number of snippets offered.
func (s *SnippetSource) Len() int { return len(s.snippets) }

func (s *SnippetSource) TryGetApplicableSpan(ch rune, point text.Point) (text.Span, bool) {
	if len(s.snippets) == 0 {
		return text.Span{}, false
	}
	return wordSpan(ch, point)
}

func (s *SnippetSource) GetCompletionContext(context.Context, completion.Trigger, text.Point, text.Span) (*completion.SourceContext, error) {
	items := make([]*completion.Item, len(s.snippets))
	for i, sn := range s.snippets {
		items[i] = completion.NewItem(sn.Prefix, s,
			completion.WithInsertText(sn.Expand()),
			completion.WithSuffix(sn.Name),
			completion.WithIcon(SnippetsFilter.Icon),
			completion.WithFilters(SnippetsFilter),
			completion.WithProperty(snippetProperty, sn))
	}
	return &completion.SourceContext{Items: items}, nil
}

// GetDescription shows the snippet body as a code block.
func (s *SnippetSource) GetDescription(_ context.Context, item *completion.Item) (string, error) {
	sn, ok := SnippetOf(item)
	if !ok {
		return "", nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "**%s**", sn.Name)
	if sn.Description != "" {
		fmt.Fprintf(&b, "\n\n%s", sn.Description)
	}
	fmt.Fprintf(&b, "\n\n```\n%s\n```", sn.Expand())
	return b.String(), nil
}
