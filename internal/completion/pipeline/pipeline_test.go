package pipeline

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recordingHandler struct {
	mu        sync.Mutex
	rendered  [][]int
	dismissed int
}

func (h *recordingHandler) UpdateUI(m []int, current func() bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if current() {
		h.rendered = append(h.rendered, m)
	}
}

func (h *recordingHandler) Dismiss() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dismissed++
}

func (h *recordingHandler) renders() [][]int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([][]int(nil), h.rendered...)
}

type recordingReporter struct {
	mu   sync.Mutex
	errs []error
}

func (r *recordingReporter) Report(_ string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

func start(ctx context.Context, m []int) ([]int, error) {
	return []int{}, nil
}

// appendStep returns a transformation that checks it sees exactly the
// history of the steps before it.
func appendStep(t *testing.T, i int, jitter bool) Transformation[[]int] {
	return func(ctx context.Context, m []int) ([]int, error) {
		if jitter {
			time.Sleep(time.Duration(rand.Intn(300)) * time.Microsecond)
		}
		assert.Len(t, m, i, "step %d saw the wrong predecessor", i)
		next := make([]int, len(m), len(m)+1)
		copy(next, m)
		return append(next, i), nil
	}
}

func TestTransformationsRunInSubmissionOrder(t *testing.T) {
	for _, n := range []int{2, 5, 50} {
		h := &recordingHandler{}
		p := New(context.Background(), start, h, WithLogger(zaptest.NewLogger(t)))

		for i := 0; i < n; i++ {
			p.Enqueue(appendStep(t, i, true), false)
		}

		got, ok := p.WaitAndGetResult(context.Background(), false)
		p.Wait()

		require.True(t, ok)
		want := make([]int, n)
		for i := range want {
			want[i] = i
		}
		assert.Equal(t, want, got)
		assert.Equal(t, want, p.Recent())
		assert.Equal(t, n+1, p.Metrics().Executed)
	}
}

func TestOnlyLatestUnitRenders(t *testing.T) {
	h := &recordingHandler{}
	p := New(context.Background(), start, h)

	gate := make(chan struct{})
	p.Enqueue(func(ctx context.Context, m []int) ([]int, error) {
		<-gate
		return append([]int{}, 0), nil
	}, true)
	for i := 1; i < 10; i++ {
		p.Enqueue(appendStep(t, i, false), true)
	}
	close(gate)
	p.Wait()

	renders := h.renders()
	require.Len(t, renders, 1)
	assert.Len(t, renders[0], 10)
}

func TestWaitAndGetResultCancelsPendingRedraw(t *testing.T) {
	h := &recordingHandler{}
	p := New(context.Background(), start, h)

	gate := make(chan struct{})
	p.Enqueue(func(ctx context.Context, m []int) ([]int, error) {
		<-gate
		return []int{42}, nil
	}, true)

	time.AfterFunc(5*time.Millisecond, func() { close(gate) })
	got, ok := p.WaitAndGetResult(context.Background(), true)
	p.Wait()

	require.True(t, ok)
	assert.Equal(t, []int{42}, got)
	assert.Empty(t, h.renders())

	// Redraws requested after the wait render again.
	p.Enqueue(appendStep(t, 1, false), true)
	p.Wait()
	assert.Len(t, h.renders(), 1)
}

func TestFailureTerminatesAndKeepsLastGoodValue(t *testing.T) {
	tests := []struct {
		name string
		step Transformation[[]int]
	}{
		{
			name: "error",
			step: func(ctx context.Context, m []int) ([]int, error) { return nil, errors.New("boom") },
		},
		{
			name: "panic",
			step: func(ctx context.Context, m []int) ([]int, error) { panic("boom") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &recordingHandler{}
			r := &recordingReporter{}
			p := New(context.Background(), start, h, WithFaultReporter(r))

			p.Enqueue(appendStep(t, 0, false), false)
			p.Enqueue(tt.step, true)
			p.Enqueue(appendStep(t, 99, false), true)

			got, ok := p.WaitAndGetResult(context.Background(), false)
			p.Wait()

			require.True(t, ok)
			assert.Equal(t, []int{0}, got)
			assert.True(t, p.Terminated())
			assert.ErrorIs(t, p.Err(), ErrTerminated)
			assert.Equal(t, 1, h.dismissed)
			assert.Len(t, r.errs, 1)
			assert.Empty(t, h.renders())

			p.Enqueue(appendStep(t, 1, false), false)
			p.Wait()
			assert.Equal(t, []int{0}, p.Recent())
		})
	}
}

func TestNothingRunsAfterFailure(t *testing.T) {
	var ran atomic.Int32
	for range 2000 {
		p := New(context.Background(), start, &recordingHandler{})
		p.Enqueue(func(ctx context.Context, m []int) ([]int, error) { return nil, errors.New("boom") }, false)
		p.Enqueue(func(ctx context.Context, m []int) ([]int, error) {
			ran.Add(1)
			return m, nil
		}, false)
		p.Wait()
		require.True(t, p.Terminated())
	}
	assert.Zero(t, ran.Load(), "transformations ran after a failure")
}

func TestCancelStopsNewWork(t *testing.T) {
	h := &recordingHandler{}
	p := New(context.Background(), start, h)
	_, ok := p.WaitAndGetResult(context.Background(), false)
	require.True(t, ok)

	p.Cancel()
	p.Enqueue(appendStep(t, 0, false), true)
	p.Wait()

	_, ok = p.WaitAndGetResult(context.Background(), false)
	assert.False(t, ok)
	assert.Empty(t, h.renders())
	assert.ErrorIs(t, p.Err(), context.Canceled)
}

func TestWaitHonorsCallerContext(t *testing.T) {
	h := &recordingHandler{}
	p := New(context.Background(), start, h)

	gate := make(chan struct{})
	p.Enqueue(func(ctx context.Context, m []int) ([]int, error) {
		<-gate
		return m, nil
	}, false)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	_, ok := p.WaitAndGetResult(ctx, false)
	close(gate)
	p.Wait()

	assert.False(t, ok)
}

func TestWaitIsNeverOlderThanRecent(t *testing.T) {
	h := &recordingHandler{}
	p := New(context.Background(), func(ctx context.Context, _ int) (int, error) { return 0, nil }, &intHandler{h})

	for i := 0; i < 200; i++ {
		p.Enqueue(func(ctx context.Context, m int) (int, error) {
			time.Sleep(time.Duration(rand.Intn(100)) * time.Microsecond)
			return m + 1, nil
		}, true)

		if i%7 == 0 {
			before := p.Recent()
			got, ok := p.WaitAndGetResult(context.Background(), false)
			require.True(t, ok)
			assert.GreaterOrEqual(t, got, before)
			assert.Equal(t, i+1, got)
		}
	}
	p.Wait()
	assert.Equal(t, 200, p.Recent())
	assert.Equal(t, 0, p.Len())
}

type intHandler struct{ h *recordingHandler }

func (i *intHandler) UpdateUI(m int, current func() bool) { i.h.UpdateUI([]int{m}, current) }
func (i *intHandler) Dismiss()                           { i.h.Dismiss() }
