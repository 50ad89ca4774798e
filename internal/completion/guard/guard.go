// Package guard runs collaborator code so that its failures cannot take a
// completion session down. A failing call is logged, recorded and replaced
// by a fallback value.
package guard

import (
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"go.uber.org/zap"

	"github.com/billie-coop/locomplete/internal/csync"
)

// Fault is one recorded failure.
type Fault struct {
	Operation string
	Err       error
	At        time.Time
}

// PanicError wraps a value recovered from a panicking collaborator.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Sink collects faults from every session. It is safe for concurrent use.
type Sink struct {
	logger  *zap.Logger
	faults  *csync.Ring[Fault]
	onFault func(Fault)
}

// NewSink creates a sink keeping the last limit faults.
func NewSink(logger *zap.Logger, limit int) *Sink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sink{
		logger: logger,
		faults: csync.NewRing[Fault](limit),
	}
}

// OnFault registers fn to run after each report. Set it before the sink is
// shared.
func (s *Sink) OnFault(fn func(Fault)) {
	s.onFault = fn
}

// Report records err against operation.
func (s *Sink) Report(operation string, err error) {
	if err == nil {
		return
	}
	f := Fault{Operation: operation, Err: err, At: time.Now()}
	s.faults.Append(f)

	fields := []zap.Field{zap.String("operation", operation), zap.Error(err)}
	var pe *PanicError
	if errors.As(err, &pe) {
		fields = append(fields, zap.ByteString("stack", pe.Stack))
	}
	s.logger.Error("completion collaborator failed", fields...)

	if s.onFault != nil {
		s.onFault(f)
	}
}

// Faults returns the retained faults, oldest first.
func (s *Sink) Faults() []Fault {
	return s.faults.Snapshot()
}

// Count returns how many faults were ever reported.
func (s *Sink) Count() int {
	return s.faults.Total()
}

// Call runs fn and returns its value. When fn returns an error or panics the
// failure is reported and fallback is returned instead.
func Call[T any](s *Sink, operation string, fallback T, fn func() (T, error)) (result T) {
	defer func() {
		if r := recover(); r != nil {
			s.Report(operation, &PanicError{Value: r, Stack: debug.Stack()})
			result = fallback
		}
	}()

	v, err := fn()
	if err != nil {
		s.Report(operation, err)
		return fallback
	}
	return v
}

// Do runs fn, reporting a panic. It returns false when fn panicked.
func Do(s *Sink, operation string, fn func()) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			s.Report(operation, &PanicError{Value: r, Stack: debug.Stack()})
			ok = false
		}
	}()
	fn()
	return true
}
