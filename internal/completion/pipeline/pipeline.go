package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// ErrTerminated is returned by Err after a transformation failed.
var ErrTerminated = errors.New("pipeline terminated")

// Pipeline executes transformations one after another in submission order.
//
// Enqueue and WaitAndGetResult belong to the UI goroutine. Recent, Len,
// Metrics and Cancel may be called from anywhere.
type Pipeline[M any] struct {
	ctx     context.Context
	cancel  context.CancelFunc
	handler Handler[M]
	opts    options

	last       atomic.Pointer[unit[M]]
	nextID     atomic.Uint64
	uiEpoch    atomic.Uint64
	inFlight   atomic.Int64
	terminated atomic.Bool
	failOnce   sync.Once
	wg         sync.WaitGroup

	recentMu sync.RWMutex
	recent   M

	metricsMu sync.Mutex
	metrics   Metrics
}

// New creates a pipeline whose first unit runs initial against the zero
// value of M. The pipeline stops when ctx ends or Cancel is called.
func New[M any](ctx context.Context, initial Transformation[M], handler Handler[M], opts ...Option) *Pipeline[M] {
	o := options{logger: zap.NewNop(), name: "pipeline"}
	for _, opt := range opts {
		opt(&o)
	}

	pctx, cancel := context.WithCancel(ctx)
	p := &Pipeline[M]{
		ctx:     pctx,
		cancel:  cancel,
		handler: handler,
		opts:    o,
	}
	p.Enqueue(initial, false)
	return p
}

// Enqueue appends t to the chain. It is a no-op once the pipeline is
// terminated or cancelled. When requestUIUpdate is set and no newer unit has
// been enqueued by the time t completes, the result is handed to the
// handler's UpdateUI.
func (p *Pipeline[M]) Enqueue(t Transformation[M], requestUIUpdate bool) {
	if p.terminated.Load() || p.ctx.Err() != nil {
		return
	}

	prev := p.last.Load()
	u := &unit[M]{
		id:    p.nextID.Add(1),
		done:  make(chan struct{}),
		epoch: p.uiEpoch.Load(),
	}
	p.last.Store(u)
	p.inFlight.Add(1)
	p.wg.Add(1)
	go p.run(prev, u, t, requestUIUpdate)
}

func (p *Pipeline[M]) run(prev, u *unit[M], t Transformation[M], requestUIUpdate bool) {
	defer p.wg.Done()

	if prev != nil {
		<-prev.done
		u.result, u.hasValue = prev.result, prev.hasValue
	}

	if p.terminated.Load() || p.ctx.Err() != nil {
		p.record(func(m *Metrics) { m.Skipped++ })
		p.finish(u)
		return
	}

	start := time.Now()
	out, err := p.call(t, u.result)
	elapsed := time.Since(start)
	p.opts.complete(u.id, err, elapsed)

	if err != nil {
		p.record(func(m *Metrics) { m.Failed++ })
		// Successors wake on u.done; they must already see the termination.
		p.terminated.Store(true)
		p.finish(u)
		p.fail(u.id, err)
		return
	}

	u.result, u.hasValue = out, true
	p.setRecent(out)
	p.record(func(m *Metrics) {
		m.Executed++
		m.LastDuration = elapsed
		if m.AvgDuration == 0 {
			m.AvgDuration = elapsed
		} else {
			m.AvgDuration = (m.AvgDuration*4 + elapsed) / 5
		}
	})
	p.finish(u)

	if requestUIUpdate && p.isCurrent(u) && p.ctx.Err() == nil && !p.terminated.Load() {
		p.handler.UpdateUI(out, func() bool {
			return p.uiEpoch.Load() == u.epoch && p.ctx.Err() == nil
		})
	}
}

// call runs t, turning a panic into an error.
func (p *Pipeline[M]) call(t Transformation[M], in M) (out M, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("transformation panicked: %v", r)
		}
	}()
	return t(p.ctx, in)
}

func (p *Pipeline[M]) finish(u *unit[M]) {
	close(u.done)
	p.inFlight.Add(-1)
}

func (p *Pipeline[M]) fail(id uint64, err error) {
	p.failOnce.Do(func() {
		p.terminated.Store(true)
		p.opts.logger.Warn("transformation failed, terminating",
			zap.String("pipeline", p.opts.name),
			zap.Uint64("unit", id),
			zap.Error(err))
		if p.opts.reporter != nil {
			p.opts.reporter.Report(p.opts.name, err)
		}
		p.handler.Dismiss()
	})
}

// isCurrent reports whether u is the most recently enqueued unit and no
// pending UI update was cancelled since it was enqueued.
func (p *Pipeline[M]) isCurrent(u *unit[M]) bool {
	return p.last.Load() == u && p.uiEpoch.Load() == u.epoch
}

// WaitAndGetResult blocks until every enqueued unit has finished and returns
// the final value. It returns false when the pipeline was cancelled, when no
// transformation ever succeeded, or when ctx ends first. With
// cancelPendingUIUpdates, redraws scheduled by already enqueued units are
// dropped.
func (p *Pipeline[M]) WaitAndGetResult(ctx context.Context, cancelPendingUIUpdates bool) (M, bool) {
	var zero M
	if cancelPendingUIUpdates {
		p.uiEpoch.Add(1)
	}

	u := p.last.Load()
	if u == nil {
		return zero, false
	}
	select {
	case <-u.done:
	case <-ctx.Done():
		return zero, false
	}
	if p.ctx.Err() != nil || !u.hasValue {
		return zero, false
	}
	return u.result, true
}

// Recent returns the most recently completed value without blocking.
func (p *Pipeline[M]) Recent() M {
	p.recentMu.RLock()
	defer p.recentMu.RUnlock()
	return p.recent
}

func (p *Pipeline[M]) setRecent(m M) {
	p.recentMu.Lock()
	p.recent = m
	p.recentMu.Unlock()
}

// Len returns the number of units not yet finished.
func (p *Pipeline[M]) Len() int {
	return int(p.inFlight.Load())
}

// Terminated reports whether a transformation failed.
func (p *Pipeline[M]) Terminated() bool {
	return p.terminated.Load()
}

// Err returns ErrTerminated after a failure, the context error after
// cancellation, or nil.
func (p *Pipeline[M]) Err() error {
	if p.terminated.Load() {
		return ErrTerminated
	}
	return p.ctx.Err()
}

// Context is the shared context handed to every transformation.
func (p *Pipeline[M]) Context() context.Context {
	return p.ctx
}

// Cancel stops the pipeline. Units already running finish, later ones skip
// their transformation. Cancel does not wait and is safe to call from a
// transformation.
func (p *Pipeline[M]) Cancel() {
	p.cancel()
}

// Wait blocks until every started unit has returned. It must not be called
// from a transformation.
func (p *Pipeline[M]) Wait() {
	p.wg.Wait()
}

// Metrics returns a copy of the execution counters.
func (p *Pipeline[M]) Metrics() Metrics {
	p.metricsMu.Lock()
	defer p.metricsMu.Unlock()
	return p.metrics
}

func (p *Pipeline[M]) record(fn func(*Metrics)) {
	p.metricsMu.Lock()
	fn(&p.metrics)
	p.metricsMu.Unlock()
}
