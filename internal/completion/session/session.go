// Package session implements one completion interaction, from the trigger
// to commit or dismissal.
//
// A Session owns a pipeline of model transformations. Editor events and
// presenter gestures become transformations; the pipeline runs them in
// order off the UI goroutine and hands the newest result back for
// rendering. Commit paths block on the pipeline so they always act on the
// settled model.
package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/billie-coop/locomplete/internal/completion"
	"github.com/billie-coop/locomplete/internal/completion/guard"
	"github.com/billie-coop/locomplete/internal/completion/model"
	"github.com/billie-coop/locomplete/internal/completion/pipeline"
	"github.com/billie-coop/locomplete/internal/events"
	"github.com/billie-coop/locomplete/internal/text"
	"github.com/billie-coop/locomplete/internal/uithread"
)

// State is the lifecycle stage of a session.
type State int

const (
	Uninitialized State = iota
	Computing
	Active
	Dismissed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Computing:
		return "computing"
	case Active:
		return "active"
	case Dismissed:
		return "dismissed"
	default:
		return "unknown"
	}
}

// Forgetter is told when a session ends so it can stop tracking it.
type Forgetter interface {
	ForgetSession(s *Session)
}

// Config holds the tunables a session reads once at creation.
type Config struct {
	// GatherTimeout bounds the initial fan-out to sources. Zero means no limit.
	GatherTimeout time.Duration
	// CommitTimeout bounds commits requested by the presenter, e.g. a click.
	CommitTimeout time.Duration
	// PageSize is used for page moves when the presenter has no opinion.
	PageSize int
	// StartInSuggestionMode shows the suggestion item from the start.
	StartInSuggestionMode bool
	// SuggestionDescription labels the suggestion item when no source does.
	SuggestionDescription string
}

// DefaultConfig returns the tunables used when none are configured.
func DefaultConfig() Config {
	return Config{
		GatherTimeout: 2 * time.Second,
		CommitTimeout: time.Second,
		PageSize:      8,
	}
}

// Params wires a session to its collaborators.
type Params struct {
	View        completion.View
	InitialSpan text.Span

	Sources        []completion.Source
	ItemManager    completion.ItemManager
	CommitManagers []completion.CommitManager
	// Presenter may be nil for headless sessions.
	Presenter completion.Presenter
	// SuggestionSource owns the synthetic suggestion item.
	SuggestionSource completion.Source
	// PotentialCommitChars is the union of the commit managers' characters.
	PotentialCommitChars []rune

	Owner      uithread.Token
	Dispatcher uithread.Dispatcher
	Faults     *guard.Sink
	Events     *events.Broker
	Forgetter  Forgetter
	Logger     *zap.Logger
	Config     Config
}

// Session is one completion interaction.
type Session struct {
	id          string
	view        completion.View
	initialSpan text.Span

	sources          []completion.Source
	itemManager      completion.ItemManager
	commitManagers   []completion.CommitManager
	presenter        completion.Presenter
	suggestionSource completion.Source
	commitChars      map[rune]struct{}

	owner      uithread.Token
	dispatcher uithread.Dispatcher
	faults     *guard.Sink
	events     *events.Broker
	forgetter  Forgetter
	logger     *zap.Logger
	cfg        Config

	ctx      context.Context
	cancel   context.CancelFunc
	pipeline atomic.Pointer[pipeline.Pipeline[*model.Model]]

	dismissed   atomic.Bool
	ignoreCaret atomic.Bool
	filterSeq   atomic.Int64
	caretSub    *text.Subscription

	// Touched only by transformations, which never run concurrently.
	inFallback         bool
	softBeforeFallback bool

	mu              sync.Mutex
	presenterSub    completion.Subscription
	presenterClosed bool
	stopFuncs       []func() bool

	stats *Stats
}

// New creates a session and starts watching the caret. It must be called on
// the UI goroutine. No work starts until OpenOrUpdate.
func New(p Params) *Session {
	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}
	if p.Owner == nil {
		p.Owner = uithread.Free
	}
	if p.Dispatcher == nil {
		p.Dispatcher = uithread.Inline
	}
	if p.Faults == nil {
		p.Faults = guard.NewSink(p.Logger, 32)
	}

	id := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		id:               id,
		view:             p.View,
		initialSpan:      p.InitialSpan,
		sources:          p.Sources,
		itemManager:      p.ItemManager,
		commitManagers:   p.CommitManagers,
		presenter:        p.Presenter,
		suggestionSource: p.SuggestionSource,
		commitChars:      make(map[rune]struct{}, len(p.PotentialCommitChars)),
		owner:            p.Owner,
		dispatcher:       p.Dispatcher,
		faults:           p.Faults,
		events:           p.Events,
		forgetter:        p.Forgetter,
		logger:           p.Logger.Named("session").With(zap.String("session", id), zap.String("view", p.View.ID())),
		cfg:              p.Config,
		ctx:              ctx,
		cancel:           cancel,
		stats:            &Stats{},
	}
	for _, ch := range p.PotentialCommitChars {
		s.commitChars[ch] = struct{}{}
	}
	s.caretSub = p.View.OnCaretMoved(s.onCaretMoved)
	return s
}

// ID identifies the session in logs and events.
func (s *Session) ID() string { return s.id }

// View returns the view the session is attached to.
func (s *Session) View() completion.View { return s.view }

// Done is closed once the session is dismissed.
func (s *Session) Done() <-chan struct{} { return s.ctx.Done() }

// Wait blocks until the session's background computations have returned.
func (s *Session) Wait() {
	if p := s.pipeline.Load(); p != nil {
		p.Wait()
	}
}

// IsDismissed reports whether the session ended.
func (s *Session) IsDismissed() bool { return s.dismissed.Load() }

// State reports the lifecycle stage.
func (s *Session) State() State {
	if s.dismissed.Load() {
		return Dismissed
	}
	p := s.pipeline.Load()
	if p == nil {
		return Uninitialized
	}
	if p.Recent() == nil {
		return Computing
	}
	return Active
}

// Stats returns a copy of the session's diagnostics.
func (s *Session) Stats() StatsSnapshot {
	return s.stats.Snapshot()
}

// recent returns the last completed model, or nil.
func (s *Session) recent() *model.Model {
	if p := s.pipeline.Load(); p != nil {
		return p.Recent()
	}
	return nil
}

// PresentedItems returns the items currently shown.
func (s *Session) PresentedItems() []*completion.Item {
	if m := s.recent(); m != nil {
		return m.Items()
	}
	return nil
}

// SelectedItem returns the selected item, which may be the suggestion item.
func (s *Session) SelectedItem() *completion.Item {
	if m := s.recent(); m != nil {
		return m.SelectedItem()
	}
	return nil
}

// ComputedItems reads the latest results without side effects.
func (s *Session) ComputedItems() completion.ComputedItems {
	if m := s.recent(); m != nil {
		return m.Computed()
	}
	return completion.EmptyComputedItems
}

// ApplicableSpan returns the tracked span in the view's current snapshot.
func (s *Session) ApplicableSpan() text.Span {
	if m := s.recent(); m != nil {
		return m.ApplicableSpan().SpanIn(s.view.Snapshot())
	}
	return s.initialSpan
}

// Describe returns the owning source's description of item.
func (s *Session) Describe(ctx context.Context, item *completion.Item) string {
	if item == nil || item.Source() == nil {
		return ""
	}
	return guard.Call(s.faults, "source.describe", "", func() (string, error) {
		return item.Source().GetDescription(ctx, item)
	})
}

// assertOwner flags calls made off the UI goroutine.
func (s *Session) assertOwner(operation string) {
	if s.owner.IsOwner() {
		return
	}
	s.faults.Report(operation, completion.ErrNotOwner)
	s.logger.DPanic("completion session used off the UI goroutine", zap.String("operation", operation))
}

func (s *Session) publish(t events.EventType, payload any) {
	s.events.Publish(events.Event{Type: t, Payload: payload})
}

func (s *Session) pageSize() int {
	if s.presenter != nil {
		n := guard.Call(s.faults, "presenter.results_per_page", 0, func() (int, error) {
			return s.presenter.ResultsPerPage(), nil
		})
		if n > 0 {
			return n
		}
	}
	if s.cfg.PageSize > 0 {
		return s.cfg.PageSize
	}
	return 1
}
