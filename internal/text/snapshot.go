package text

import (
	"errors"
	"fmt"
	"strings"
)

// ErrForeignSnapshot is returned when two snapshots do not belong to the same
// buffer history.
var ErrForeignSnapshot = errors.New("snapshot belongs to a different buffer")

// Change describes one replacement: OldLen bytes at Position replaced by NewText.
type Change struct {
	Position int
	OldLen   int
	NewText  string
}

// Delta returns the change in buffer length.
func (c Change) Delta() int { return len(c.NewText) - c.OldLen }

// mapStart tracks a span start: text inserted exactly at the start is pulled
// into the span.
func (c Change) mapStart(pos int) int {
	switch {
	case pos <= c.Position:
		return pos
	case pos >= c.Position+c.OldLen:
		return pos + c.Delta()
	default:
		return c.Position
	}
}

// mapEnd tracks a span end: text inserted exactly at the end is pulled into
// the span.
func (c Change) mapEnd(pos int) int {
	switch {
	case pos < c.Position:
		return pos
	case pos >= c.Position+c.OldLen:
		return pos + c.Delta()
	default:
		return c.Position + len(c.NewText)
	}
}

// Snapshot is an immutable version of a buffer's text.
type Snapshot struct {
	buffer  *Buffer
	version int
	text    string
	prev    *Snapshot
	change  Change
}

// Version is the snapshot's position in its buffer history, starting at 0.
func (s *Snapshot) Version() int { return s.version }

// Text returns the whole text.
func (s *Snapshot) Text() string { return s.text }

// Len returns the text length in bytes.
func (s *Snapshot) Len() int { return len(s.text) }

// Buffer returns the buffer that produced the snapshot.
func (s *Snapshot) Buffer() *Buffer { return s.buffer }

// Slice returns the text covered by span, clamped to the snapshot bounds.
func (s *Snapshot) Slice(span Span) string {
	start := clamp(span.Start, 0, len(s.text))
	end := clamp(span.End, start, len(s.text))
	return s.text[start:end]
}

// Contains reports whether span fits the snapshot.
func (s *Snapshot) Contains(span Span) bool {
	return span.Start >= 0 && span.Start <= span.End && span.End <= len(s.text)
}

// Lines splits the text on newlines.
func (s *Snapshot) Lines() []string {
	return strings.Split(s.text, "\n")
}

func (s *Snapshot) String() string {
	return fmt.Sprintf("snapshot v%d (%d bytes)", s.version, len(s.text))
}

// changesBetween lists the changes leading from 'from' to 'to', oldest first.
func changesBetween(from, to *Snapshot) ([]Change, error) {
	if from == nil || to == nil || from.buffer != to.buffer {
		return nil, ErrForeignSnapshot
	}
	if to.version < from.version {
		return nil, fmt.Errorf("cannot map v%d back to v%d", from.version, to.version)
	}
	changes := make([]Change, to.version-from.version)
	for s := to; s.version > from.version; s = s.prev {
		if s.prev == nil {
			return nil, ErrForeignSnapshot
		}
		changes[s.version-from.version-1] = s.change
	}
	return changes, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
