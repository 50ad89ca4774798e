package session

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/billie-coop/locomplete/internal/completion"
	"github.com/billie-coop/locomplete/internal/completion/guard"
	"github.com/billie-coop/locomplete/internal/completion/model"
	"github.com/billie-coop/locomplete/internal/events"
)

// explicitCommit reports whether ch is a deliberate commit gesture. Zero
// stands for a command without a typed character.
func explicitCommit(ch rune) bool {
	return ch == 0 || ch == '\t'
}

// settled blocks until every queued transformation has run.
func (s *Session) settled(ctx context.Context) (*model.Model, bool) {
	p := s.pipeline.Load()
	if p == nil {
		return nil, false
	}
	m, ok := p.WaitAndGetResult(ctx, true)
	return m, ok && m != nil
}

// Commit commits the selected item in response to typedChar and returns
// what the editor should do with the keystroke.
func (s *Session) Commit(ctx context.Context, typedChar rune) completion.CommitBehavior {
	s.assertOwner("commit")
	if s.dismissed.Load() {
		return completion.BehaviorNone
	}
	m, ok := s.settled(ctx)
	if !ok {
		s.Dismiss()
		return completion.BehaviorNone
	}

	switch {
	case m.InitiallyUnavailable():
		s.Dismiss()
		return completion.BehaviorNone
	case m.UseSoftSelection() && !explicitCommit(typedChar):
		s.Dismiss()
		return completion.BehaviorNone
	case m.SelectSuggestionItem() && (m.SuggestionItem() == nil || m.SuggestionItem().InsertText() == ""):
		return completion.BehaviorNone
	case m.SelectSuggestionItem():
		return s.commitItem(ctx, m, m.SuggestionItem(), typedChar)
	case len(m.PresentedItems()) == 0:
		s.Dismiss()
		return completion.BehaviorNone
	}

	item := m.SelectedItem()
	if item == nil {
		s.Dismiss()
		return completion.BehaviorNone
	}
	return s.commitItem(ctx, m, item, typedChar)
}

// CommitIfUnique commits the unique item if there is one. Otherwise it
// shows the list and returns false.
func (s *Session) CommitIfUnique(ctx context.Context) bool {
	s.assertOwner("commit_if_unique")
	if s.dismissed.Load() {
		return false
	}
	m, ok := s.settled(ctx)
	if !ok {
		return false
	}
	if item := m.UniqueCandidate(); item != nil {
		s.commitItem(ctx, m, item, 0)
		return true
	}
	s.render(m)
	return false
}

// commitItem lets the commit managers try in order and falls back to
// replacing the applicable span with the item's insert text. The session is
// dismissed afterwards in every case.
func (s *Session) commitItem(ctx context.Context, m *model.Model, item *completion.Item, typedChar rune) completion.CommitBehavior {
	start := time.Now()
	span := m.ApplicableSpan()

	behavior := completion.BehaviorNone
	handled := false
	s.ignoreCaret.Store(true)
	for _, cm := range s.commitManagers {
		r := guard.Call(s.faults, "commit_manager.try_commit", completion.Unhandled, func() (completion.CommitResult, error) {
			return cm.TryCommit(ctx, s.view, item, span, typedChar)
		})
		if behavior == completion.BehaviorNone {
			behavior = r.Behavior
		}
		if r.Handled {
			handled = true
			break
		}
	}

	if !handled {
		target := span.SpanIn(s.view.Snapshot())
		if err := s.view.Replace(target, item.InsertText()); err != nil {
			s.faults.Report("commit.insert_text", err)
		}
	}
	s.ignoreCaret.Store(false)

	s.stats.recordCommit(time.Since(start))
	s.logger.Debug("item committed",
		zap.Stringer("item", item),
		zap.Bool("handled_by_manager", handled),
		zap.Stringer("behavior", behavior))
	s.publish(events.ItemCommittedEvent, events.ItemCommittedPayload{
		SessionID: s.id,
		ViewID:    s.view.ID(),
		Item:      item,
		Behavior:  behavior,
	})
	s.Dismiss()
	return behavior
}
