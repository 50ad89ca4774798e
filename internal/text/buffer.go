package text

import (
	"fmt"
	"sync"
)

// Buffer is a mutable document. Every edit produces a new Snapshot.
type Buffer struct {
	mu          sync.RWMutex
	current     *Snapshot
	contentType string
	listeners   *listeners[ChangeEvent]
}

// ChangeEvent is delivered to buffer listeners after an edit.
type ChangeEvent struct {
	Before *Snapshot
	After  *Snapshot
	Change Change
}

// NewBuffer creates a buffer holding initial text.
func NewBuffer(contentType, initial string) *Buffer {
	b := &Buffer{
		contentType: contentType,
		listeners:   newListeners[ChangeEvent](),
	}
	b.current = &Snapshot{buffer: b, text: initial}
	return b
}

// ContentType returns the buffer's content type, e.g. "go" or "text".
func (b *Buffer) ContentType() string { return b.contentType }

// CurrentSnapshot returns the latest snapshot.
func (b *Buffer) CurrentSnapshot() *Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.current
}

// Replace swaps the text covered by span in the current snapshot for newText.
func (b *Buffer) Replace(span Span, newText string) (*Snapshot, error) {
	b.mu.Lock()
	cur := b.current
	if !cur.Contains(span) {
		b.mu.Unlock()
		return nil, fmt.Errorf("replace %s: out of range for %s", span, cur)
	}
	change := Change{Position: span.Start, OldLen: span.Len(), NewText: newText}
	next := &Snapshot{
		buffer:  b,
		version: cur.version + 1,
		text:    cur.text[:span.Start] + newText + cur.text[span.End:],
		prev:    cur,
		change:  change,
	}
	b.current = next
	b.mu.Unlock()

	b.listeners.notify(ChangeEvent{Before: cur, After: next, Change: change})
	return next, nil
}

// Insert adds s at pos.
func (b *Buffer) Insert(pos int, s string) (*Snapshot, error) {
	return b.Replace(Span{Start: pos, End: pos}, s)
}

// Delete removes the text covered by span.
func (b *Buffer) Delete(span Span) (*Snapshot, error) {
	return b.Replace(span, "")
}

// OnChanged registers fn for edit notifications. Listeners run synchronously
// on the editing goroutine.
func (b *Buffer) OnChanged(fn func(ChangeEvent)) *Subscription {
	return b.listeners.add(fn)
}
