package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Transformation maps one state to the next. It must not modify its input.
// Returning an error terminates the pipeline.
type Transformation[M any] func(ctx context.Context, m M) (M, error)

// Handler receives results and failures from a Pipeline.
//
// Used by: Pipeline after each unit and on failure
// Implemented by: session.Session
type Handler[M any] interface {
	// UpdateUI is called off the UI goroutine with a settled result. The
	// implementation marshals it to the UI goroutine and skips rendering
	// once current reports false.
	UpdateUI(m M, current func() bool)
	// Dismiss is called once when a transformation fails.
	Dismiss()
}

// FaultReporter records transformation failures.
type FaultReporter interface {
	Report(operation string, err error)
}

// unit is one enqueued transformation.
type unit[M any] struct {
	id       uint64
	done     chan struct{}
	result   M
	hasValue bool
	epoch    uint64
}

// Option configures a Pipeline.
type Option func(*options)

type options struct {
	logger     *zap.Logger
	reporter   FaultReporter
	onComplete func(id uint64, err error, duration time.Duration)
	name       string
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithFaultReporter sets where failures are reported.
func WithFaultReporter(r FaultReporter) Option {
	return func(o *options) { o.reporter = r }
}

// WithOnComplete sets a callback run after every executed transformation.
func WithOnComplete(fn func(id uint64, err error, duration time.Duration)) Option {
	return func(o *options) { o.onComplete = fn }
}

// WithName labels the pipeline in logs and fault reports.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// Metrics summarizes the work a pipeline did.
type Metrics struct {
	Executed     int
	Skipped      int
	Failed       int
	AvgDuration  time.Duration
	LastDuration time.Duration
}

func (o *options) complete(id uint64, err error, d time.Duration) {
	if o.onComplete != nil {
		o.onComplete(id, err, d)
	}
}
