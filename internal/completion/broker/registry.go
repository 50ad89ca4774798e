package broker

import (
	"cmp"
	"slices"
	"sync"

	"github.com/billie-coop/locomplete/internal/completion"
	"github.com/billie-coop/locomplete/internal/csync"
)

// ContentTypePredicate decides whether a provider serves a content type.
type ContentTypePredicate func(contentType string) bool

// AnyContentType matches every content type.
func AnyContentType(string) bool { return true }

// ContentTypes matches the listed content types exactly.
func ContentTypes(types ...string) ContentTypePredicate {
	set := make(map[string]struct{}, len(types))
	for _, t := range types {
		set[t] = struct{}{}
	}
	return func(contentType string) bool {
		_, ok := set[contentType]
		return ok
	}
}

// Factories create a collaborator for one view. Returning nil skips the
// provider for that view.
type (
	SourceFactory        func(view completion.View) completion.Source
	ItemManagerFactory   func(view completion.View) completion.ItemManager
	CommitManagerFactory func(view completion.View) completion.CommitManager
	PresenterFactory     func(view completion.View) completion.Presenter
)

// RegisterOption configures a registration.
type RegisterOption func(*registrationOptions)

type registrationOptions struct {
	name  string
	order int
}

// WithName labels the provider in logs and fault reports.
func WithName(name string) RegisterOption {
	return func(o *registrationOptions) { o.name = name }
}

// WithOrder positions the provider. Lower orders come first; equal orders
// keep registration order.
func WithOrder(order int) RegisterOption {
	return func(o *registrationOptions) { o.order = order }
}

type registration[F any] struct {
	registrationOptions
	seq     int
	match   ContentTypePredicate
	factory F
}

// Registry holds every completion provider known to the process.
type Registry struct {
	mu             sync.RWMutex
	seq            int
	sources        []registration[SourceFactory]
	itemManagers   []registration[ItemManagerFactory]
	commitManagers []registration[CommitManagerFactory]
	presenters     []registration[PresenterFactory]

	supported *csync.Map[string, bool]
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{supported: csync.NewMap[string, bool]()}
}

func newRegistration[F any](r *Registry, match ContentTypePredicate, factory F, opts []RegisterOption) registration[F] {
	reg := registration[F]{seq: r.seq, match: match, factory: factory}
	r.seq++
	for _, opt := range opts {
		opt(&reg.registrationOptions)
	}
	if reg.match == nil {
		reg.match = AnyContentType
	}
	return reg
}

// RegisterSource adds a completion source provider.
func (r *Registry) RegisterSource(match ContentTypePredicate, factory SourceFactory, opts ...RegisterOption) {
	r.mu.Lock()
	r.sources = append(r.sources, newRegistration(r, match, factory, opts))
	r.mu.Unlock()
	r.supported.Clear()
}

// RegisterItemManager adds an item manager provider. Sessions use the first
// matching one.
func (r *Registry) RegisterItemManager(match ContentTypePredicate, factory ItemManagerFactory, opts ...RegisterOption) {
	r.mu.Lock()
	r.itemManagers = append(r.itemManagers, newRegistration(r, match, factory, opts))
	r.mu.Unlock()
	r.supported.Clear()
}

// RegisterCommitManager adds a commit manager provider.
func (r *Registry) RegisterCommitManager(match ContentTypePredicate, factory CommitManagerFactory, opts ...RegisterOption) {
	r.mu.Lock()
	r.commitManagers = append(r.commitManagers, newRegistration(r, match, factory, opts))
	r.mu.Unlock()
}

// RegisterPresenter adds a presenter provider. Sessions use the first
// matching one.
func (r *Registry) RegisterPresenter(match ContentTypePredicate, factory PresenterFactory, opts ...RegisterOption) {
	r.mu.Lock()
	r.presenters = append(r.presenters, newRegistration(r, match, factory, opts))
	r.mu.Unlock()
}

// resolve returns the registrations matching contentType in order.
func resolve[F any](regs []registration[F], contentType string) []registration[F] {
	var out []registration[F]
	for _, reg := range regs {
		if reg.match(contentType) {
			out = append(out, reg)
		}
	}
	slices.SortStableFunc(out, func(a, b registration[F]) int {
		return cmp.Or(cmp.Compare(a.order, b.order), cmp.Compare(a.seq, b.seq))
	})
	return out
}

func (r *Registry) sourcesFor(contentType string) []registration[SourceFactory] {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return resolve(r.sources, contentType)
}

func (r *Registry) itemManagersFor(contentType string) []registration[ItemManagerFactory] {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return resolve(r.itemManagers, contentType)
}

func (r *Registry) commitManagersFor(contentType string) []registration[CommitManagerFactory] {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return resolve(r.commitManagers, contentType)
}

func (r *Registry) presentersFor(contentType string) []registration[PresenterFactory] {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return resolve(r.presenters, contentType)
}

// Supports reports whether contentType has at least one source and one item
// manager. Answers are cached until the next registration.
func (r *Registry) Supports(contentType string) bool {
	ok, _ := r.supported.GetOrCreate(contentType, func() bool {
		return len(r.sourcesFor(contentType)) > 0 && len(r.itemManagersFor(contentType)) > 0
	})
	return ok
}
