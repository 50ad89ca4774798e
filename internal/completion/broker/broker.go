// Package broker starts completion sessions. It resolves the providers
// registered for a view's content type, keeps at most one session per view
// and forgets sessions once they are dismissed.
package broker

import (
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/billie-coop/locomplete/internal/completion"
	"github.com/billie-coop/locomplete/internal/completion/guard"
	"github.com/billie-coop/locomplete/internal/completion/session"
	"github.com/billie-coop/locomplete/internal/csync"
	"github.com/billie-coop/locomplete/internal/events"
	"github.com/billie-coop/locomplete/internal/text"
	"github.com/billie-coop/locomplete/internal/uithread"
)

// Options wires a Broker.
type Options struct {
	Registry *Registry
	// Suggestion owns the synthetic suggestion item of every session.
	Suggestion completion.Source
	Owner      uithread.Token
	Dispatcher uithread.Dispatcher
	Faults     *guard.Sink
	Events     *events.Broker
	Logger     *zap.Logger
	Config     session.Config
}

// Broker is the entry point for starting completion.
type Broker struct {
	registry   *Registry
	suggestion completion.Source
	owner      uithread.Token
	dispatcher uithread.Dispatcher
	faults     *guard.Sink
	events     *events.Broker
	logger     *zap.Logger
	config     atomic.Pointer[session.Config]

	sessions *csync.Map[string, *session.Session]
	live     sync.WaitGroup
}

// New creates a broker. Faults reported to opts.Faults are republished as
// events.SessionFaultEvent.
func New(opts Options) *Broker {
	if opts.Registry == nil {
		opts.Registry = NewRegistry()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Owner == nil {
		opts.Owner = uithread.Free
	}
	if opts.Dispatcher == nil {
		opts.Dispatcher = uithread.Inline
	}
	if opts.Faults == nil {
		opts.Faults = guard.NewSink(opts.Logger, 64)
	}

	b := &Broker{
		registry:   opts.Registry,
		suggestion: opts.Suggestion,
		owner:      opts.Owner,
		dispatcher: opts.Dispatcher,
		faults:     opts.Faults,
		events:     opts.Events,
		logger:     opts.Logger,
		sessions:   csync.NewMap[string, *session.Session](),
	}
	cfg := opts.Config
	b.config.Store(&cfg)

	if b.events != nil {
		b.faults.OnFault(func(f guard.Fault) {
			b.events.Publish(events.Event{
				Type:    events.SessionFaultEvent,
				Payload: events.FaultPayload{Operation: f.Operation, Err: f.Err},
			})
		})
	}
	return b
}

// Registry returns the provider registry.
func (b *Broker) Registry() *Registry { return b.registry }

// Faults returns the shared fault sink.
func (b *Broker) Faults() *guard.Sink { return b.faults }

// SetConfig replaces the tunables used by sessions started from now on.
func (b *Broker) SetConfig(cfg session.Config) {
	b.config.Store(&cfg)
}

// Config returns the tunables for new sessions.
func (b *Broker) Config() session.Config {
	return *b.config.Load()
}

// IsCompletionSupported reports whether views of contentType can complete.
func (b *Broker) IsCompletionSupported(contentType string) bool {
	return b.registry.Supports(contentType)
}

// IsCompletionActive reports whether view has a live session.
func (b *Broker) IsCompletionActive(view completion.View) bool {
	_, ok := b.sessions.Get(view.ID())
	return ok
}

// GetSession returns the live session of view, or nil.
func (b *Broker) GetSession(view completion.View) *session.Session {
	s, _ := b.sessions.Get(view.ID())
	return s
}

// TriggerCompletion returns the live session of view or starts a new one.
// It returns nil when no source wants to complete at point. The returned
// session has not computed anything yet; call OpenOrUpdate.
func (b *Broker) TriggerCompletion(view completion.View, trigger completion.Trigger, point text.Point) *session.Session {
	if s := b.GetSession(view); s != nil {
		return s
	}
	if !b.owner.IsOwner() {
		b.faults.Report("broker.trigger_completion", completion.ErrNotOwner)
		b.logger.DPanic("completion triggered off the UI goroutine")
		return nil
	}

	contentType := view.ContentType()
	if !b.IsCompletionSupported(contentType) {
		return nil
	}

	commitManagers, commitChars := b.commitManagers(view, contentType)
	sources, span, ok := b.sources(view, contentType, trigger.Char, point)
	if !ok {
		return nil
	}
	itemManager := b.itemManager(view, contentType)
	if itemManager == nil {
		b.faults.Report("broker.item_manager", fmt.Errorf("no item manager for %q", contentType))
		return nil
	}

	s := session.New(session.Params{
		View:                 view,
		InitialSpan:          span,
		Sources:              sources,
		ItemManager:          itemManager,
		CommitManagers:       commitManagers,
		Presenter:            b.presenter(view, contentType),
		SuggestionSource:     b.suggestion,
		PotentialCommitChars: commitChars,
		Owner:                b.owner,
		Dispatcher:           b.dispatcher,
		Faults:               b.faults,
		Events:               b.events,
		Forgetter:            b,
		Logger:               b.logger,
		Config:               b.Config(),
	})
	b.sessions.Set(view.ID(), s)
	b.live.Add(1)
	go func() {
		defer b.live.Done()
		<-s.Done()
		s.Wait()
	}()

	b.logger.Debug("completion triggered",
		zap.String("view", view.ID()),
		zap.String("content_type", contentType),
		zap.Stringer("span", span),
		zap.Int("sources", len(sources)),
		zap.Int("commit_managers", len(commitManagers)))
	b.events.Publish(events.Event{
		Type: events.CompletionTriggeredEvent,
		Payload: events.TriggeredPayload{
			SessionID: s.ID(),
			ViewID:    view.ID(),
			Trigger:   trigger,
		},
	})
	return s
}

// ForgetSession drops s from the view map. It does not dismiss s.
func (b *Broker) ForgetSession(s *session.Session) {
	b.sessions.DeleteIf(s.View().ID(), func(v *session.Session) bool { return v == s })
}

// Close dismisses every live session.
func (b *Broker) Close() {
	for _, s := range b.sessions.Clear() {
		s.Dismiss()
	}
}

// Wait blocks until every dismissed session's computations have returned.
// Call it after Close and off the UI goroutine when the dispatcher needs one.
func (b *Broker) Wait() {
	b.live.Wait()
}

func (b *Broker) commitManagers(view completion.View, contentType string) ([]completion.CommitManager, []rune) {
	var managers []completion.CommitManager
	var chars []rune
	for _, reg := range b.registry.commitManagersFor(contentType) {
		m := guard.Call(b.faults, "commit_manager.create:"+reg.name, nil, func() (completion.CommitManager, error) {
			return reg.factory(view), nil
		})
		if m == nil {
			continue
		}
		chars = append(chars, guard.Call(b.faults, "commit_manager.potential_commit_characters", nil, func() ([]rune, error) {
			return m.PotentialCommitCharacters(), nil
		})...)
		managers = append(managers, m)
	}
	return managers, chars
}

// sources instantiates the sources for view. The first source, in order,
// that reports an applicable span decides it.
func (b *Broker) sources(view completion.View, contentType string, ch rune, point text.Point) ([]completion.Source, text.Span, bool) {
	var sources []completion.Source
	var span text.Span
	found := false
	for _, reg := range b.registry.sourcesFor(contentType) {
		src := guard.Call(b.faults, "source.create:"+reg.name, nil, func() (completion.Source, error) {
			return reg.factory(view), nil
		})
		if src == nil {
			continue
		}
		sources = append(sources, src)
		if found {
			continue
		}
		type result struct {
			span text.Span
			ok   bool
		}
		r := guard.Call(b.faults, "source.try_get_applicable_span:"+reg.name, result{}, func() (result, error) {
			s, ok := src.TryGetApplicableSpan(ch, point)
			return result{s, ok}, nil
		})
		span, found = r.span, r.ok
	}
	return sources, span, found
}

func (b *Broker) itemManager(view completion.View, contentType string) completion.ItemManager {
	for _, reg := range b.registry.itemManagersFor(contentType) {
		m := guard.Call(b.faults, "item_manager.create:"+reg.name, nil, func() (completion.ItemManager, error) {
			return reg.factory(view), nil
		})
		if m != nil {
			return m
		}
	}
	return nil
}

func (b *Broker) presenter(view completion.View, contentType string) completion.Presenter {
	for _, reg := range b.registry.presentersFor(contentType) {
		p := guard.Call(b.faults, "presenter.create:"+reg.name, nil, func() (completion.Presenter, error) {
			return reg.factory(view), nil
		})
		if p != nil {
			return p
		}
	}
	return nil
}
