package styles

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour/v2"
)

type rendererKey struct {
	theme string
	width int
}

var renderers sync.Map // rendererKey -> *glamour.TermRenderer

// GetMarkdownRenderer returns a glamour TermRenderer configured with the
// current theme. Renderers are cached per theme and width.
func GetMarkdownRenderer(width int) (*glamour.TermRenderer, error) {
	t := CurrentTheme()
	key := rendererKey{theme: t.Name, width: width}
	if r, ok := renderers.Load(key); ok {
		return r.(*glamour.TermRenderer), nil
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(t.S().Markdown),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	actual, _ := renderers.LoadOrStore(key, r)
	return actual.(*glamour.TermRenderer), nil
}

// RenderMarkdown renders md for a box width cells wide. It falls back to the
// raw text when rendering fails.
func RenderMarkdown(md string, width int) string {
	r, err := GetMarkdownRenderer(width)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(out, "\n")
}
