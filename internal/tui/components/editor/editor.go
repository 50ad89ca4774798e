// Package editor is a small multi-line text editor whose commands pass
// through the completion command router before touching the buffer.
package editor

import (
	"strings"

	"github.com/charmbracelet/bubbles/v2/key"
	tea "github.com/charmbracelet/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/billie-coop/locomplete/internal/completion/commands"
	"github.com/billie-coop/locomplete/internal/text"
	"github.com/billie-coop/locomplete/internal/tui/components/core"
	"github.com/billie-coop/locomplete/internal/tui/styles"
)

// SpanFunc returns the span completion is currently working on, if any.
type SpanFunc func() (text.Span, bool)

// Editor edits one text.View.
type Editor struct {
	view   *text.View
	router *commands.Router
	keys   KeyMap
	logger *zap.Logger
	span   SpanFunc

	width   int
	height  int
	scroll  int
	focused bool
}

var (
	_ core.Component = (*Editor)(nil)
	_ core.Sizeable  = (*Editor)(nil)
	_ core.Focusable = (*Editor)(nil)
)

// New creates a focused editor over view.
func New(view *text.View, router *commands.Router, keys KeyMap, logger *zap.Logger) *Editor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Editor{
		view:    view,
		router:  router,
		keys:    keys,
		logger:  logger.Named("editor"),
		focused: true,
	}
}

// SetSpanFunc sets where the editor asks for the span to underline.
func (e *Editor) SetSpanFunc(fn SpanFunc) { e.span = fn }

// TextView returns the edited view.
func (e *Editor) TextView() *text.View { return e.view }

func (e *Editor) Init() tea.Cmd { return nil }

// Update handles key presses. Every command is offered to the router first;
// the editor's own behavior runs as the router's next step or when the
// router declines.
func (e *Editor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyPressMsg)
	if !ok || !e.focused {
		return e, nil
	}
	e.handleKey(keyMsg)
	e.follow()
	return e, nil
}

func (e *Editor) handleKey(msg tea.KeyPressMsg) {
	v, r := e.view, e.router
	switch {
	case key.Matches(msg, e.keys.Invoke):
		r.Invoke(v)
	case key.Matches(msg, e.keys.CommitUnique):
		r.CommitUnique(v)
	case key.Matches(msg, e.keys.ToggleSuggestion):
		r.ToggleSuggestionMode(v)
	case key.Matches(msg, e.keys.Escape):
		r.Escape(v)
	case key.Matches(msg, e.keys.Return):
		if !r.Return(v) {
			e.insert("\n")
		}
	case key.Matches(msg, e.keys.Tab):
		if !r.Tab(v) {
			e.insert("\t")
		}
	case key.Matches(msg, e.keys.Up):
		if !r.Up(v) {
			e.moveLines(-1)
		}
	case key.Matches(msg, e.keys.Down):
		if !r.Down(v) {
			e.moveLines(1)
		}
	case key.Matches(msg, e.keys.PageUp):
		if !r.PageUp(v) {
			e.moveLines(-e.pageLines())
		}
	case key.Matches(msg, e.keys.PageDown):
		if !r.PageDown(v) {
			e.moveLines(e.pageLines())
		}
	case key.Matches(msg, e.keys.Backspace):
		r.Backspace(v, e.backspace)
	case key.Matches(msg, e.keys.Delete):
		r.Delete(v, e.deleteForward)
	case key.Matches(msg, e.keys.DeleteWord):
		r.DismissAndPass(v)
		e.deleteWord()
	case key.Matches(msg, e.keys.Left):
		e.moveTo(prevRune(e.text(), e.caret()))
	case key.Matches(msg, e.keys.Right):
		e.moveTo(nextRune(e.text(), e.caret()))
	case key.Matches(msg, e.keys.Home):
		start, _ := lineBounds(e.text(), e.caretLine())
		e.moveTo(start)
	case key.Matches(msg, e.keys.End):
		_, end := lineBounds(e.text(), e.caretLine())
		e.moveTo(end)
	default:
		k := msg.Key()
		if k.Text == "" || k.Mod&^tea.ModShift != 0 {
			return
		}
		for _, ch := range k.Text {
			r.TypeChar(v, ch, func() { e.insert(string(ch)) })
		}
	}
}

func (e *Editor) text() string { return e.view.Snapshot().Text() }

func (e *Editor) caret() int { return e.view.CaretPosition().Position }

func (e *Editor) caretLine() int {
	line, _ := lineCol(e.text(), e.caret())
	return line
}

func (e *Editor) replace(span text.Span, s string) {
	if err := e.view.Replace(span, s); err != nil {
		e.logger.Warn("edit failed", zap.Stringer("span", span), zap.Error(err))
	}
}

// Insert types s at the caret without going through completion.
func (e *Editor) Insert(s string) {
	e.insert(s)
	e.follow()
}

func (e *Editor) insert(s string) {
	pos := e.caret()
	e.replace(text.Span{Start: pos, End: pos}, s)
}

func (e *Editor) backspace() {
	pos := e.caret()
	if pos == 0 {
		return
	}
	e.replace(text.Span{Start: prevRune(e.text(), pos), End: pos}, "")
}

func (e *Editor) deleteForward() {
	pos := e.caret()
	if end := nextRune(e.text(), pos); end > pos {
		e.replace(text.Span{Start: pos, End: end}, "")
	}
}

func (e *Editor) deleteWord() {
	pos := e.caret()
	if start := wordStartBefore(e.text(), pos); start < pos {
		e.replace(text.Span{Start: start, End: pos}, "")
	}
}

func (e *Editor) moveTo(pos int) {
	e.view.Caret().MoveTo(pos)
}

// moveLines keeps the caret's display column while moving delta lines.
func (e *Editor) moveLines(delta int) {
	s := e.text()
	line, col := lineCol(s, e.caret())
	start, _ := lineBounds(s, line)
	column := displayWidth(s[start : start+col])

	target := min(max(line+delta, 0), strings.Count(s, "\n"))
	if target == line {
		return
	}
	e.moveTo(offsetAt(s, target, column))
}

func (e *Editor) pageLines() int {
	return max(e.contentHeight()-1, 1)
}

func (e *Editor) contentHeight() int {
	return max(e.height-2, 1)
}

// follow scrolls so the caret line stays visible.
func (e *Editor) follow() {
	line := e.caretLine()
	h := e.contentHeight()
	switch {
	case line < e.scroll:
		e.scroll = line
	case line >= e.scroll+h:
		e.scroll = line - h + 1
	}
}

// CaretCell returns the caret's screen cell relative to the editor's top
// left corner, border included.
func (e *Editor) CaretCell() (x, y int) {
	s := e.text()
	line, col := lineCol(s, e.caret())
	start, _ := lineBounds(s, line)
	// border and left padding
	return displayWidth(s[start:start+col]) + 2, line - e.scroll + 1
}

func (e *Editor) SetSize(width, height int) tea.Cmd {
	e.width = width
	e.height = height
	e.follow()
	return nil
}

func (e *Editor) Focus() tea.Cmd {
	e.focused = true
	return nil
}

func (e *Editor) Blur() tea.Cmd {
	e.focused = false
	return nil
}

func (e *Editor) Focused() bool { return e.focused }

// View renders the visible lines with the caret and the completion span.
func (e *Editor) View() string {
	st := styles.CurrentTheme().S()

	var span text.Span
	var hasSpan bool
	if e.span != nil {
		span, hasSpan = e.span()
	}

	lines := e.render(e.text(), e.caret(), span, hasSpan, st)
	end := min(e.scroll+e.contentHeight(), len(lines))
	var visible []string
	if e.scroll < end {
		visible = lines[e.scroll:end]
	}

	return st.Editor.
		Width(max(e.width-2, 0)).
		Height(e.contentHeight()).
		Render(strings.Join(visible, "\n"))
}

func (e *Editor) render(src string, caret int, span text.Span, hasSpan bool, st *styles.Styles) []string {
	var (
		lines []string
		b     strings.Builder
	)
	cursor := func(i int) bool { return e.focused && i == caret }

	for i, r := range src {
		if r == '\n' {
			if cursor(i) {
				b.WriteString(st.Cursor.Render(" "))
			}
			lines = append(lines, b.String())
			b.Reset()
			continue
		}
		cell := string(r)
		if r == '\t' {
			cell = strings.Repeat(" ", tabWidth)
		}
		switch {
		case cursor(i):
			cell = st.Cursor.Render(cell)
		case hasSpan && i >= span.Start && i < span.End:
			cell = st.Span.Render(cell)
		}
		b.WriteString(cell)
	}
	if cursor(len(src)) {
		b.WriteString(st.Cursor.Render(" "))
	}
	return append(lines, b.String())
}
