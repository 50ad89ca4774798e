package session

import (
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Stats collects per-session diagnostics. It is logged when the session ends.
type Stats struct {
	mu sync.Mutex
	s  StatsSnapshot
}

// StatsSnapshot is a copy of a session's diagnostics.
type StatsSnapshot struct {
	Keystrokes         int
	Refilters          int
	ProcessingTime     time.Duration
	MaxProcessingTime  time.Duration
	Renders            int
	RenderingTime      time.Duration
	CommitTime         time.Duration
	InitialItemCount   int
	FinalItemCount     int
	UserEverScrolled   bool
	UserEverSetFilters bool
	Committed          bool
}

// MarshalLogObject lets the snapshot travel as a single zap field.
func (s StatsSnapshot) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddInt("keystrokes", s.Keystrokes)
	enc.AddInt("refilters", s.Refilters)
	enc.AddDuration("processing", s.ProcessingTime)
	enc.AddDuration("max_processing", s.MaxProcessingTime)
	enc.AddInt("renders", s.Renders)
	enc.AddDuration("rendering", s.RenderingTime)
	enc.AddDuration("commit", s.CommitTime)
	enc.AddInt("initial_items", s.InitialItemCount)
	enc.AddInt("final_items", s.FinalItemCount)
	enc.AddBool("scrolled", s.UserEverScrolled)
	enc.AddBool("set_filters", s.UserEverSetFilters)
	enc.AddBool("committed", s.Committed)
	return nil
}

// Field returns the snapshot as a zap field.
func (s StatsSnapshot) Field() zap.Field {
	return zap.Object("stats", s)
}

func (st *Stats) with(fn func(*StatsSnapshot)) {
	st.mu.Lock()
	fn(&st.s)
	st.mu.Unlock()
}

// Snapshot copies the current values.
func (st *Stats) Snapshot() StatsSnapshot {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.s
}

func (st *Stats) recordKeystroke() {
	st.with(func(s *StatsSnapshot) { s.Keystrokes++ })
}

func (st *Stats) recordInitial(d time.Duration, items int) {
	st.with(func(s *StatsSnapshot) {
		s.InitialItemCount = items
		s.ProcessingTime += d
		s.MaxProcessingTime = max(s.MaxProcessingTime, d)
	})
}

func (st *Stats) recordProcessing(d time.Duration, items int) {
	st.with(func(s *StatsSnapshot) {
		s.Refilters++
		s.FinalItemCount = items
		s.ProcessingTime += d
		s.MaxProcessingTime = max(s.MaxProcessingTime, d)
	})
}

func (st *Stats) recordRender(d time.Duration) {
	st.with(func(s *StatsSnapshot) {
		s.Renders++
		s.RenderingTime += d
	})
}

func (st *Stats) recordCommit(d time.Duration) {
	st.with(func(s *StatsSnapshot) {
		s.CommitTime = d
		s.Committed = true
	})
}

func (st *Stats) recordScroll() {
	st.with(func(s *StatsSnapshot) { s.UserEverScrolled = true })
}

func (st *Stats) recordFilters() {
	st.with(func(s *StatsSnapshot) { s.UserEverSetFilters = true })
}
