package text

import (
	"sync"
	"unicode"
	"unicode/utf8"
)

// Caret is the insertion point of a view.
type Caret struct {
	mu        sync.RWMutex
	buffer    *Buffer
	position  int
	listeners *listeners[Point]
}

// Position returns the caret as a point in the buffer's current snapshot.
func (c *Caret) Position() Point {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snapshot := c.buffer.CurrentSnapshot()
	return Point{Snapshot: snapshot, Position: clamp(c.position, 0, snapshot.Len())}
}

// MoveTo places the caret and notifies listeners when it actually moved.
func (c *Caret) MoveTo(pos int) {
	snapshot := c.buffer.CurrentSnapshot()
	pos = clamp(pos, 0, snapshot.Len())

	c.mu.Lock()
	moved := c.position != pos
	c.position = pos
	c.mu.Unlock()

	if moved {
		c.listeners.notify(Point{Snapshot: snapshot, Position: pos})
	}
}

// OnMoved registers fn for caret movement.
func (c *Caret) OnMoved(fn func(Point)) *Subscription {
	return c.listeners.add(fn)
}

// Listeners returns the number of attached movement listeners.
func (c *Caret) Listeners() int {
	return c.listeners.len()
}

// View pairs a buffer with a caret, the unit completion sessions attach to.
type View struct {
	id     string
	buffer *Buffer
	caret  *Caret
}

// NewView creates a view over buffer with the caret at the end of the text.
func NewView(id string, buffer *Buffer) *View {
	return &View{
		id:     id,
		buffer: buffer,
		caret: &Caret{
			buffer:    buffer,
			position:  buffer.CurrentSnapshot().Len(),
			listeners: newListeners[Point](),
		},
	}
}

// ID identifies the view.
func (v *View) ID() string { return v.id }

// ContentType returns the buffer's content type.
func (v *View) ContentType() string { return v.buffer.ContentType() }

// Buffer returns the underlying buffer.
func (v *View) Buffer() *Buffer { return v.buffer }

// Caret returns the view's caret.
func (v *View) Caret() *Caret { return v.caret }

// Snapshot returns the buffer's current snapshot.
func (v *View) Snapshot() *Snapshot { return v.buffer.CurrentSnapshot() }

// CaretPosition returns the caret point.
func (v *View) CaretPosition() Point { return v.caret.Position() }

// OnCaretMoved registers fn for caret movement.
func (v *View) OnCaretMoved(fn func(Point)) *Subscription { return v.caret.OnMoved(fn) }

// Replace edits the buffer. The caret is left after the inserted text when it
// was inside or at the end of the replaced span.
func (v *View) Replace(span Span, s string) error {
	before := v.caret.Position().Position
	if _, err := v.buffer.Replace(span, s); err != nil {
		return err
	}
	switch {
	case before >= span.Start && before <= span.End:
		v.caret.MoveTo(span.Start + len(s))
	case before > span.End:
		v.caret.MoveTo(before + len(s) - span.Len())
	}
	return nil
}

// IsWordRune reports whether r belongs to an identifier-like word.
func IsWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// WordSpanAt returns the span of the word touching pos. When pos is not next
// to a word rune the result is the empty span at pos.
func WordSpanAt(snapshot *Snapshot, pos int) Span {
	s := snapshot.Text()
	pos = clamp(pos, 0, len(s))

	start := pos
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(s[:start])
		if !IsWordRune(r) {
			break
		}
		start -= size
	}
	end := pos
	for end < len(s) {
		r, size := utf8.DecodeRuneInString(s[end:])
		if !IsWordRune(r) {
			break
		}
		end += size
	}
	return Span{Start: start, End: end}
}
