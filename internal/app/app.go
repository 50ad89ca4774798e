// Package app wires the completion engine from configuration: the provider
// registry, the broker and the command router shared by the editor and the
// replay tool.
package app

import (
	"context"
	"errors"
	"io/fs"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/billie-coop/locomplete/internal/completion"
	"github.com/billie-coop/locomplete/internal/completion/broker"
	"github.com/billie-coop/locomplete/internal/completion/commands"
	"github.com/billie-coop/locomplete/internal/completion/commit"
	"github.com/billie-coop/locomplete/internal/completion/itemmanager"
	"github.com/billie-coop/locomplete/internal/completion/sources"
	"github.com/billie-coop/locomplete/internal/config"
	"github.com/billie-coop/locomplete/internal/events"
	"github.com/billie-coop/locomplete/internal/uithread"
	"github.com/billie-coop/locomplete/internal/watcher"
)

// Options configures New.
type Options struct {
	Config *config.Manager
	Events *events.Broker
	// Presenter draws sessions. Headless hosts leave it nil.
	Presenter  broker.PresenterFactory
	Owner      uithread.Token
	Dispatcher uithread.Dispatcher
	Logger     *zap.Logger
}

// App holds all the completion services
type App struct {
	Config   *config.Manager
	Events   *events.Broker
	Registry *broker.Registry
	Broker   *broker.Broker
	Router   *commands.Router

	logger   *zap.Logger
	snippets atomic.Pointer[[]sources.Snippet]
}

// New creates the services. ctx bounds every command the router runs.
func New(ctx context.Context, opts Options) *App {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	a := &App{
		Config: opts.Config,
		Events: opts.Events,
		logger: opts.Logger,
	}
	a.loadSnippets(a.Config.Get())

	a.Registry = a.newRegistry(opts.Presenter)
	a.Broker = broker.New(broker.Options{
		Registry:   a.Registry,
		Suggestion: sources.Suggestion,
		Owner:      opts.Owner,
		Dispatcher: opts.Dispatcher,
		Events:     opts.Events,
		Logger:     opts.Logger,
		Config:     a.Config.Get().Session(),
	})
	a.Router = commands.NewRouter(ctx, a.Broker, opts.Logger)
	return a
}

func (a *App) newRegistry(presenter broker.PresenterFactory) *broker.Registry {
	reg := broker.NewRegistry()

	reg.RegisterSource(broker.AnyContentType, func(view completion.View) completion.Source {
		snippets := a.snippets.Load()
		if snippets == nil {
			return nil
		}
		src := sources.NewSnippetSource(view.ContentType(), *snippets)
		if src.Len() == 0 {
			return nil
		}
		return src
	}, broker.WithName("snippets"), broker.WithOrder(0))

	reg.RegisterSource(broker.AnyContentType, func(view completion.View) completion.Source {
		keywords := a.Config.Get().KeywordsFor(view.ContentType())
		if len(keywords) == 0 {
			return nil
		}
		return sources.NewKeywordSource(view.ContentType(), keywords)
	}, broker.WithName("keywords"), broker.WithOrder(1))

	reg.RegisterSource(broker.AnyContentType, func(completion.View) completion.Source {
		return sources.NewWordSource(a.Config.Get().WordMinLength)
	}, broker.WithName("words"), broker.WithOrder(2))

	reg.RegisterItemManager(broker.AnyContentType, func(completion.View) completion.ItemManager {
		return itemmanager.New(a.logger)
	}, broker.WithName("fuzzy"))

	reg.RegisterCommitManager(broker.AnyContentType, func(completion.View) completion.CommitManager {
		return commit.NewSnippetManager()
	}, broker.WithName("snippets"), broker.WithOrder(-1))
	reg.RegisterCommitManager(broker.AnyContentType, func(completion.View) completion.CommitManager {
		return commit.NewDefaultManager()
	}, broker.WithName("default"))

	if presenter != nil {
		reg.RegisterPresenter(broker.AnyContentType, presenter, broker.WithName("popup"))
	}
	return reg
}

// loadSnippets replaces the snippet set. A missing file means no snippets;
// a broken one keeps the previous set.
func (a *App) loadSnippets(cfg *config.Config) {
	path := a.Config.Resolve(cfg.SnippetsFile)
	if path == "" {
		a.snippets.Store(nil)
		return
	}
	snippets, err := sources.LoadSnippets(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		a.snippets.Store(nil)
	case err != nil:
		a.logger.Warn("failed to load snippets", zap.String("path", path), zap.Error(err))
	default:
		a.snippets.Store(&snippets)
		a.logger.Info("snippets loaded", zap.String("path", path), zap.Int("count", len(snippets)))
	}
}

// Apply takes a reloaded configuration into use. Running sessions keep the
// settings they started with.
func (a *App) Apply(cfg *config.Config) {
	a.Broker.SetConfig(cfg.Session())
	a.loadSnippets(cfg)
	a.Events.Publish(events.Event{
		Type:    events.ConfigReloadedEvent,
		Payload: events.ConfigReloadedPayload{Path: a.Config.Path()},
	})
}

// Watch applies configuration changes until ctx is done. onChange, when
// set, runs after each Apply.
func (a *App) Watch(ctx context.Context, onChange func(*config.Config)) (*watcher.FileWatcher, error) {
	return a.Config.Watch(ctx, a.logger, func(cfg *config.Config) {
		a.Apply(cfg)
		if onChange != nil {
			onChange(cfg)
		}
	})
}

// Close cancels running commands and dismisses every session.
func (a *App) Close() {
	a.Router.Close()
	a.Broker.Close()
}

// Wait blocks until dismissed sessions have stopped computing.
func (a *App) Wait() {
	a.Broker.Wait()
}
