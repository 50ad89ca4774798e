package session

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/billie-coop/locomplete/internal/completion"
	"github.com/billie-coop/locomplete/internal/completion/guard"
	"github.com/billie-coop/locomplete/internal/completion/model"
	"github.com/billie-coop/locomplete/internal/completion/pipeline"
	"github.com/billie-coop/locomplete/internal/events"
	"github.com/billie-coop/locomplete/internal/text"
)

// OpenOrUpdate starts the session on its first call and refilters on every
// later one. Cancelling ctx dismisses the session.
func (s *Session) OpenOrUpdate(ctx context.Context, trigger completion.Trigger, point text.Point) {
	s.assertOwner("open_or_update")
	if s.dismissed.Load() {
		return
	}
	s.linkContext(ctx)

	p := s.pipeline.Load()
	if p == nil {
		p = pipeline.New(s.ctx, s.gather(trigger, point), s,
			pipeline.WithLogger(s.logger),
			pipeline.WithFaultReporter(s.faults),
			pipeline.WithName("session.pipeline"),
		)
		s.pipeline.Store(p)
		s.logger.Debug("session opened",
			zap.Stringer("reason", trigger.Reason),
			zap.Stringer("span", s.initialSpan),
			zap.Int("sources", len(s.sources)))
	}

	id := s.filterSeq.Add(1)
	p.Enqueue(func(ctx context.Context, m *model.Model) (*model.Model, error) {
		return s.updateSnapshot(ctx, m, trigger, trigger.Reason.FilterReason(), point, id), nil
	}, true)
}

// InvokeAndCommitIfUnique opens the session if needed and commits right away
// when exactly one item fits.
func (s *Session) InvokeAndCommitIfUnique(ctx context.Context, trigger completion.Trigger, point text.Point) bool {
	if s.dismissed.Load() {
		return false
	}
	if s.pipeline.Load() == nil {
		s.OpenOrUpdate(ctx, trigger, point)
	}
	return s.CommitIfUnique(ctx)
}

// linkContext dismisses the session when a command context ends.
func (s *Session) linkContext(ctx context.Context) {
	if ctx == nil || ctx.Done() == nil {
		return
	}
	stop := context.AfterFunc(ctx, s.Dismiss)
	s.mu.Lock()
	s.stopFuncs = append(s.stopFuncs, stop)
	s.mu.Unlock()
}

type gathered struct {
	index   int
	context *completion.SourceContext
}

// gather builds the first model from every source's items.
func (s *Session) gather(trigger completion.Trigger, point text.Point) pipeline.Transformation[*model.Model] {
	return func(ctx context.Context, _ *model.Model) (*model.Model, error) {
		start := time.Now()
		contexts := s.collectContexts(ctx, trigger, point)

		var items []*completion.Item
		for _, c := range contexts {
			if c != nil {
				items = append(items, c.Items...)
			}
		}
		if len(items) == 0 {
			s.logger.Debug("no items gathered, dismissing")
			s.Dismiss()
			return nil, nil
		}

		var sourceSuggestion, sourceSoft, unavailable bool
		description := s.cfg.SuggestionDescription
		described := false
		for _, c := range contexts {
			if c == nil {
				continue
			}
			sourceSuggestion = sourceSuggestion || c.UseSuggestionMode
			sourceSoft = sourceSoft || c.UseSoftSelection
			unavailable = unavailable || c.InitiallyUnavailable
			if !described && c.SuggestionDescription != "" {
				description, described = c.SuggestionDescription, true
			}
		}
		typed := trigger.Reason == completion.TriggerInsertion || trigger.Reason == completion.TriggerDeletion

		span := text.NewTrackingSpan(point.Snapshot, s.initialSpan)
		m := model.New(model.Params{
			Items:                 items,
			Snapshot:              point.Snapshot,
			Span:                  span,
			InitialTrigger:        trigger.Reason,
			Filters:               completion.DistinctFilters(items),
			UseSoftSelection:      (!sourceSuggestion && s.cfg.StartInSuggestionMode) || sourceSoft,
			DisplaySuggestionItem: s.cfg.StartInSuggestionMode || sourceSuggestion,
			SelectSuggestionItem:  sourceSuggestion,
			SuggestionDescription: description,
			InitiallyUnavailable:  unavailable && typed,
		})

		sorted := guard.Call(s.faults, "item_manager.sort_initial", items, func() ([]*completion.Item, error) {
			return s.itemManager.SortInitial(ctx, completion.InitialData{
				Items:    items,
				Trigger:  trigger,
				Snapshot: point.Snapshot,
				Span:     span,
			})
		})

		s.stats.recordInitial(time.Since(start), len(items))
		s.logger.Debug("items gathered", zap.Int("items", len(items)), zap.Duration("took", time.Since(start)))
		return m.WithSortedItems(sorted), nil
	}
}

// collectContexts asks every source concurrently. Sources still running when
// the gather budget runs out are ignored.
func (s *Session) collectContexts(ctx context.Context, trigger completion.Trigger, point text.Point) []*completion.SourceContext {
	budget, cancel := ctx, context.CancelFunc(func() {})
	if s.cfg.GatherTimeout > 0 {
		budget, cancel = context.WithTimeout(ctx, s.cfg.GatherTimeout)
	}
	defer cancel()

	results := make(chan gathered, len(s.sources))
	g, gctx := errgroup.WithContext(budget)
	for i, src := range s.sources {
		g.Go(func() error {
			c := guard.Call(s.faults, "source.get_completion_context", nil, func() (*completion.SourceContext, error) {
				return src.GetCompletionContext(gctx, trigger, point, s.initialSpan)
			})
			results <- gathered{index: i, context: c}
			return nil
		})
	}
	go func() {
		_ = g.Wait()
		close(results)
	}()

	contexts := make([]*completion.SourceContext, len(s.sources))
	for {
		select {
		case r, ok := <-results:
			if !ok {
				return contexts
			}
			contexts[r.index] = r.context
		case <-budget.Done():
			s.logger.Warn("gather budget exhausted", zap.Duration("budget", s.cfg.GatherTimeout))
			return contexts
		}
	}
}

// updateSnapshot reacts to typing: it dismisses when the caret left the
// span, records the snapshot when a newer keystroke is queued, and refilters
// otherwise.
func (s *Session) updateSnapshot(
	ctx context.Context,
	m *model.Model,
	trigger completion.Trigger,
	reason completion.FilterReason,
	point text.Point,
	id int64,
) *model.Model {
	s.stats.recordKeystroke()
	if m == nil || ctx.Err() != nil {
		return m
	}

	snapshot := point.Snapshot
	span := m.ApplicableSpan().SpanIn(snapshot)
	if !span.Touches(point.Position) {
		s.Dismiss()
		return m
	}
	// Empty twice while deleting: the text that started completion is gone.
	if span.IsEmpty() && m.ApplicableSpanWasEmpty() && trigger.Reason == completion.TriggerDeletion {
		s.Dismiss()
		return m
	}
	m = m.WithApplicableSpanEmptyRecord(span.IsEmpty())
	if trigger.Reason == completion.TriggerInvoke || trigger.Reason == completion.TriggerInvokeAndCommitIfUnique {
		m = m.WithInitiallyUnavailable(false)
	}

	if id != s.filterSeq.Load() {
		return m.WithSnapshot(snapshot)
	}

	return s.refilter(ctx, m, snapshot, reason)
}

// refilter asks the ItemManager for the items matching snapshot and applies
// the no-result fallback.
func (s *Session) refilter(ctx context.Context, m *model.Model, snapshot *text.Snapshot, reason completion.FilterReason) *model.Model {
	start := time.Now()
	result := guard.Call(s.faults, "item_manager.refilter", nil, func() (*completion.FilteredResult, error) {
		return s.itemManager.Refilter(ctx, m.SortedItems(), completion.UpdateData{
			InitialTrigger: m.InitialTrigger(),
			FilterReason:   reason,
			Snapshot:       snapshot,
			Span:           m.ApplicableSpan(),
			Filters:        m.Filters(),
		})
	})
	if result == nil {
		return m.WithSnapshot(snapshot)
	}
	if result.Filters != nil && len(result.Filters) != len(m.Filters()) {
		s.faults.Report("item_manager.refilter", fmt.Errorf("%w: got %d, want %d",
			completion.ErrFilterCountMismatch, len(result.Filters), len(m.Filters())))
		return m
	}

	items, selected := result.Items, result.SelectedIndex
	switch {
	case len(items) == 0 && len(m.PresentedItems()) > 0:
		items, selected = m.WithoutHighlights(), m.SelectedIndex()
		if !s.inFallback {
			s.softBeforeFallback = m.UseSoftSelection()
			s.inFallback = true
		}
		m = m.WithSoftSelection(true)
	case len(items) > 0:
		if s.inFallback {
			m = m.WithSoftSelection(s.softBeforeFallback)
			s.inFallback = false
		}
		switch result.SelectionHint {
		case completion.HintSoftSelected:
			m = m.WithSoftSelection(true)
		case completion.HintRegular:
			m = m.WithSoftSelection(false)
		}
	}
	s.stats.recordProcessing(time.Since(start), len(items))

	filters := result.Filters
	if filters == nil {
		filters = m.Filters()
	}
	typed := snapshot.Slice(m.ApplicableSpan().SpanIn(snapshot))
	suggestion := completion.NewItem(typed, s.suggestionSource)
	m = m.WithSnapshotItemsAndFilters(snapshot, items, selected, result.UniqueItem, suggestion, filters)

	s.publish(events.ItemsUpdatedEvent, events.ItemsUpdatedPayload{
		SessionID: s.id,
		ViewID:    s.view.ID(),
		Items:     m.Computed(),
	})
	return m
}
