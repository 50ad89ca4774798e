package session

import (
	"go.uber.org/zap"

	"github.com/billie-coop/locomplete/internal/completion/guard"
	"github.com/billie-coop/locomplete/internal/events"
)

// Dismiss ends the session. Only the first call has any effect; it may come
// from any goroutine, including from inside a transformation.
func (s *Session) Dismiss() {
	if !s.dismissed.CompareAndSwap(false, true) {
		return
	}
	s.cancel()

	s.mu.Lock()
	stops := s.stopFuncs
	s.stopFuncs = nil
	s.mu.Unlock()
	for _, stop := range stops {
		stop()
	}

	s.caretSub.Unsubscribe()
	if s.forgetter != nil {
		s.forgetter.ForgetSession(s)
	}
	s.dispatcher.Post(s.closePresenter)

	s.publish(events.DismissedEvent, events.DismissedPayload{
		SessionID: s.id,
		ViewID:    s.view.ID(),
	})

	fields := []zap.Field{s.stats.Snapshot().Field()}
	if p := s.pipeline.Load(); p != nil {
		m := p.Metrics()
		fields = append(fields,
			zap.Int("units_executed", m.Executed),
			zap.Int("units_skipped", m.Skipped),
			zap.Duration("unit_avg", m.AvgDuration))
	}
	s.logger.Debug("session dismissed", fields...)
}

// closePresenter detaches from the presenter and closes it. It runs on the
// UI goroutine and may run more than once when a render raced the dismissal.
func (s *Session) closePresenter() {
	if s.presenter == nil {
		return
	}
	s.mu.Lock()
	sub := s.presenterSub
	s.presenterSub = nil
	wasClosed := s.presenterClosed
	s.presenterClosed = true
	s.mu.Unlock()

	if sub != nil {
		guard.Do(s.faults, "presenter.unsubscribe", sub.Unsubscribe)
	}
	if sub != nil || !wasClosed {
		guard.Do(s.faults, "presenter.close", s.presenter.Close)
	}
}
