package session

import (
	"context"
	"fmt"

	"github.com/billie-coop/locomplete/internal/completion"
	"github.com/billie-coop/locomplete/internal/completion/guard"
	"github.com/billie-coop/locomplete/internal/completion/model"
	"github.com/billie-coop/locomplete/internal/text"
)

// enqueue adds a UI-goroutine transformation that skips nil models.
func (s *Session) enqueue(operation string, requestUIUpdate bool, fn func(ctx context.Context, m *model.Model) *model.Model) {
	s.assertOwner(operation)
	p := s.pipeline.Load()
	if p == nil || s.dismissed.Load() {
		return
	}
	p.Enqueue(func(ctx context.Context, m *model.Model) (*model.Model, error) {
		if m == nil {
			return m, nil
		}
		return fn(ctx, m), nil
	}, requestUIUpdate)
}

// SelectDown moves the selection one item down.
func (s *Session) SelectDown() { s.move("select_down", 1) }

// SelectUp moves the selection one item up.
func (s *Session) SelectUp() { s.move("select_up", -1) }

// SelectPageDown moves the selection one page down.
func (s *Session) SelectPageDown() { s.move("select_page_down", s.pageSize()) }

// SelectPageUp moves the selection one page up.
func (s *Session) SelectPageUp() { s.move("select_page_up", -s.pageSize()) }

func (s *Session) move(operation string, offset int) {
	s.stats.recordScroll()
	s.enqueue(operation, true, func(_ context.Context, m *model.Model) *model.Model {
		return m.MoveSelection(offset)
	})
}

// SelectItem selects item, or the suggestion item, as picked in the presenter.
func (s *Session) SelectItem(item *completion.Item, suggestion bool) {
	s.enqueue("select_item", false, func(_ context.Context, m *model.Model) *model.Model {
		return m.SelectItem(item, suggestion)
	})
}

// SetSuggestionMode shows or hides the suggestion item.
func (s *Session) SetSuggestionMode(on bool) {
	s.enqueue("set_suggestion_mode", true, func(_ context.Context, m *model.Model) *model.Model {
		return m.WithSuggestionModeActive(on)
	})
}

// SetFilters replaces the filter selection and refilters. Like typing, a
// newer filter change preempts an older one.
func (s *Session) SetFilters(filters []completion.FilterState) {
	s.stats.recordFilters()
	id := s.filterSeq.Add(1)
	s.enqueue("set_filters", true, func(ctx context.Context, m *model.Model) *model.Model {
		return s.updateFilters(ctx, m, filters, id)
	})
}

func (s *Session) updateFilters(ctx context.Context, m *model.Model, filters []completion.FilterState, id int64) *model.Model {
	if len(filters) != len(m.Filters()) {
		s.faults.Report("set_filters", fmt.Errorf("%w: got %d, want %d",
			completion.ErrFilterCountMismatch, len(filters), len(m.Filters())))
		return m
	}
	m = m.WithFilters(filters)
	if id != s.filterSeq.Load() {
		return m
	}
	return s.refilter(ctx, m, m.Snapshot(), completion.FilterChange)
}

// IgnoreCaretMovement suspends the caret check while a command edits the
// buffer on the session's behalf.
func (s *Session) IgnoreCaretMovement(ignore bool) {
	s.assertOwner("ignore_caret_movement")
	s.ignoreCaret.Store(ignore)
}

// onCaretMoved dismisses the session once the caret leaves the applicable
// span.
func (s *Session) onCaretMoved(point text.Point) {
	if s.ignoreCaret.Load() {
		return
	}
	s.enqueue("caret_moved", false, func(_ context.Context, m *model.Model) *model.Model {
		if !m.ApplicableSpan().SpanIn(point.Snapshot).Touches(point.Position) {
			s.Dismiss()
		}
		return m
	})
}

// ShouldCommit reports whether typing ch at point commits. Characters no
// commit manager listed are rejected without asking.
func (s *Session) ShouldCommit(ch rune, point text.Point) bool {
	s.assertOwner("should_commit")
	if s.dismissed.Load() {
		return false
	}
	if _, ok := s.commitChars[ch]; !ok {
		return false
	}
	for _, cm := range s.commitManagers {
		ok := guard.Call(s.faults, "commit_manager.should_commit", false, func() (bool, error) {
			return cm.ShouldCommit(ch, point), nil
		})
		if ok {
			return true
		}
	}
	return false
}
