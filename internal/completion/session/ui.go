package session

import (
	"context"
	"time"

	"github.com/billie-coop/locomplete/internal/completion"
	"github.com/billie-coop/locomplete/internal/completion/guard"
	"github.com/billie-coop/locomplete/internal/completion/model"
)

// UpdateUI hands a settled model to the UI goroutine. It is called by the
// pipeline.
func (s *Session) UpdateUI(m *model.Model, current func() bool) {
	s.dispatcher.Post(func() {
		if !current() || s.dismissed.Load() {
			return
		}
		s.render(m)
	})
}

// render opens the presenter on first use and updates it afterwards. Models
// whose items are not yet available are not shown.
func (s *Session) render(m *model.Model) {
	if m == nil || m.InitiallyUnavailable() || s.presenter == nil {
		return
	}
	start := time.Now()
	vm := m.ViewModel()

	s.mu.Lock()
	if s.presenterClosed || s.dismissed.Load() {
		s.mu.Unlock()
		return
	}
	opened := s.presenterSub != nil
	s.mu.Unlock()

	if opened {
		guard.Do(s.faults, "presenter.update", func() { s.presenter.Update(vm) })
		s.stats.recordRender(time.Since(start))
		return
	}

	sub := guard.Call(s.faults, "presenter.open", nil, func() (completion.Subscription, error) {
		return s.presenter.Open(vm, &presenterObserver{s: s}), nil
	})
	s.mu.Lock()
	s.presenterSub = sub
	s.mu.Unlock()
	s.stats.recordRender(time.Since(start))

	// A dismissal that slipped in while opening already ran closePresenter.
	if s.dismissed.Load() {
		s.closePresenter()
	}
}

// presenterObserver turns presenter gestures into session operations. The
// presenter calls it on the UI goroutine.
type presenterObserver struct {
	s *Session
}

func (o *presenterObserver) FiltersChanged(filters []completion.FilterState) {
	o.s.SetFilters(filters)
}

// CommitRequested commits item, e.g. after a double click. The commit is
// bounded by the commit timeout so a stuck commit manager cannot hang the UI.
func (o *presenterObserver) CommitRequested(item *completion.Item) {
	s := o.s
	if s.dismissed.Load() {
		return
	}
	ctx, cancel := context.Background(), context.CancelFunc(func() {})
	if s.cfg.CommitTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, s.cfg.CommitTimeout)
	}
	defer cancel()

	m, ok := s.settled(ctx)
	if !ok {
		s.Dismiss()
		return
	}
	s.commitItem(ctx, m, item, 0)
}

func (o *presenterObserver) ItemSelected(item *completion.Item, suggestion bool) {
	o.s.SelectItem(item, suggestion)
}

func (o *presenterObserver) Closed() {
	o.s.Dismiss()
}
