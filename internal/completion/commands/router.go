// Package commands routes editor commands to completion sessions. Chained
// commands receive the editor's own handler as next and decide when it runs.
package commands

import (
	"context"

	"go.uber.org/zap"

	"github.com/billie-coop/locomplete/internal/completion"
	"github.com/billie-coop/locomplete/internal/completion/broker"
	"github.com/billie-coop/locomplete/internal/completion/session"
	"github.com/billie-coop/locomplete/internal/csync"
	"github.com/billie-coop/locomplete/internal/text"
)

// Router maps editor commands onto the broker and its sessions. All methods
// must be called on the UI goroutine.
type Router struct {
	broker *broker.Broker
	logger *zap.Logger
	base   context.Context

	// scopes holds the cancellation scope of each view. Cancel replaces it.
	scopes *csync.Map[string, *scope]
	// suggestion records views where the user toggled suggestion mode.
	suggestion *csync.Map[string, bool]
}

type scope struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// NewRouter creates a router whose command contexts derive from ctx.
func NewRouter(ctx context.Context, b *broker.Broker, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		broker:     b,
		logger:     logger.Named("commands"),
		base:       ctx,
		scopes:     csync.NewMap[string, *scope](),
		suggestion: csync.NewMap[string, bool](),
	}
}

// commandContext returns the context commands on view run under. It lives
// until Cancel is called for the view or the router's context ends.
func (r *Router) commandContext(view completion.View) context.Context {
	sc, _ := r.scopes.GetOrCreate(view.ID(), func() *scope {
		ctx, cancel := context.WithCancel(r.base)
		return &scope{ctx: ctx, cancel: cancel}
	})
	return sc.ctx
}

// Cancel aborts whatever completion work the view's commands started,
// dismissing its session.
func (r *Router) Cancel(view completion.View) {
	if sc, ok := r.scopes.Get(view.ID()); ok {
		r.scopes.Delete(view.ID())
		sc.cancel()
	}
}

// Close cancels every view's scope.
func (r *Router) Close() {
	for _, sc := range r.scopes.Clear() {
		sc.cancel()
	}
}

// SuggestionMode reports whether suggestion mode is on for view.
func (r *Router) SuggestionMode(view completion.View) bool {
	if on, ok := r.suggestion.Get(view.ID()); ok {
		return on
	}
	return r.broker.Config().StartInSuggestionMode
}

func (r *Router) start(view completion.View, trigger completion.Trigger) *session.Session {
	point := view.CaretPosition()
	s := r.broker.TriggerCompletion(view, trigger, point)
	if s == nil {
		return nil
	}
	s.OpenOrUpdate(r.commandContext(view), trigger, point)
	if on, ok := r.suggestion.Get(view.ID()); ok {
		s.SetSuggestionMode(on)
	}
	return s
}

// TypeChar handles a typed character. next inserts it into the buffer.
func (r *Router) TypeChar(view completion.View, ch rune, next func()) {
	before := view.Snapshot()
	location := view.CaretPosition()

	s := r.broker.GetSession(view)
	if s != nil {
		s.IgnoreCaretMovement(true)
	}
	next()
	inserted := view.Snapshot().Version() != before.Version()

	if s != nil && s.ShouldCommit(ch, location) {
		r.commitTyped(view, s, ch, inserted, next)
	}
	if s != nil {
		s.IgnoreCaretMovement(false)
	}

	trigger := completion.Trigger{Reason: completion.TriggerInsertion, Char: ch}
	if s := r.broker.GetSession(view); s != nil {
		s.OpenOrUpdate(r.commandContext(view), trigger, view.CaretPosition())
		return
	}
	r.start(view, trigger)
}

// commitTyped undoes the typed character, commits, and types it again
// unless the commit swallowed it.
func (r *Router) commitTyped(view completion.View, s *session.Session, ch rune, inserted bool, next func()) {
	if inserted {
		caret := view.CaretPosition().Position
		width := len(string(ch))
		if caret >= width {
			if err := view.Replace(text.Span{Start: caret - width, End: caret}, ""); err != nil {
				r.logger.Warn("failed to roll back typed character", zap.Error(err))
			}
		}
	}
	behavior := s.Commit(r.commandContext(view), ch)
	if inserted && !behavior.Has(completion.SuppressFurtherTypeCharHandlers) {
		next()
	}
}

// Backspace deletes through next and refilters the open session.
func (r *Router) Backspace(view completion.View, next func()) {
	r.deletion(view, next)
}

// Delete deletes forward through next and refilters the open session.
func (r *Router) Delete(view completion.View, next func()) {
	r.deletion(view, next)
}

func (r *Router) deletion(view completion.View, next func()) {
	next()
	if s := r.broker.GetSession(view); s != nil {
		s.OpenOrUpdate(r.commandContext(view), completion.Trigger{Reason: completion.TriggerDeletion}, view.CaretPosition())
	}
}

// Escape dismisses the session.
func (r *Router) Escape(view completion.View) bool {
	s := r.broker.GetSession(view)
	if s == nil {
		return false
	}
	s.Dismiss()
	return true
}

// DismissAndPass dismisses the session and leaves the command to the editor.
// Undo, redo and word deletions go through it.
func (r *Router) DismissAndPass(view completion.View) bool {
	if s := r.broker.GetSession(view); s != nil {
		s.Dismiss()
	}
	return false
}

// Invoke explicitly opens completion at the caret.
func (r *Router) Invoke(view completion.View) bool {
	return r.start(view, completion.Trigger{Reason: completion.TriggerInvoke}) != nil
}

// CommitUnique opens completion and commits right away when a single item
// fits.
func (r *Router) CommitUnique(view completion.View) bool {
	trigger := completion.Trigger{Reason: completion.TriggerInvokeAndCommitIfUnique}
	s := r.broker.GetSession(view)
	if s == nil {
		if s = r.start(view, trigger); s == nil {
			return false
		}
	}
	s.InvokeAndCommitIfUnique(r.commandContext(view), trigger, view.CaretPosition())
	return true
}

// Return commits on the return key. A false result lets the editor insert
// the newline.
func (r *Router) Return(view completion.View) bool {
	return r.commitKey(view, '\n')
}

// Tab commits on the tab key.
func (r *Router) Tab(view completion.View) bool {
	return r.commitKey(view, '\t')
}

func (r *Router) commitKey(view completion.View, ch rune) bool {
	s := r.broker.GetSession(view)
	if s == nil {
		return false
	}
	behavior := s.Commit(r.commandContext(view), ch)
	s.Dismiss()
	return !behavior.Has(completion.RaiseFurtherReturnTabHandlers)
}

// Up moves the selection up.
func (r *Router) Up(view completion.View) bool {
	return r.withSession(view, (*session.Session).SelectUp)
}

// Down moves the selection down.
func (r *Router) Down(view completion.View) bool {
	return r.withSession(view, (*session.Session).SelectDown)
}

// PageUp moves the selection one page up.
func (r *Router) PageUp(view completion.View) bool {
	return r.withSession(view, (*session.Session).SelectPageUp)
}

// PageDown moves the selection one page down.
func (r *Router) PageDown(view completion.View) bool {
	return r.withSession(view, (*session.Session).SelectPageDown)
}

func (r *Router) withSession(view completion.View, fn func(*session.Session)) bool {
	s := r.broker.GetSession(view)
	if s == nil {
		return false
	}
	fn(s)
	return true
}

// ToggleSuggestionMode flips suggestion mode for view and applies it to the
// open session.
func (r *Router) ToggleSuggestionMode(view completion.View) bool {
	on := !r.SuggestionMode(view)
	r.suggestion.Set(view.ID(), on)
	r.logger.Debug("suggestion mode toggled", zap.String("view", view.ID()), zap.Bool("on", on))
	return r.withSession(view, func(s *session.Session) { s.SetSuggestionMode(on) })
}
