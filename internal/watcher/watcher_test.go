package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recorder struct {
	mu    sync.Mutex
	calls [][]string
}

func (r *recorder) onChange(paths []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, paths)
}

func (r *recorder) snapshot() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]string(nil), r.calls...)
}

func TestDebounceCollapsesBursts(t *testing.T) {
	rec := &recorder{}
	w := NewWatcher(20*time.Millisecond, rec.onChange)
	defer w.Stop()

	w.FileChanged("/p/config.json")
	w.FileChanged("/p/snippets.yaml")
	w.FileChanged("/p/config.json")
	w.FileChanged("/p/.config.json.swp")

	assert.Eventually(t, func() bool { return len(rec.snapshot()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"/p/config.json", "/p/snippets.yaml"}, rec.snapshot()[0])
}

func TestStopDropsPending(t *testing.T) {
	rec := &recorder{}
	w := NewWatcher(20*time.Millisecond, rec.onChange)
	w.FileChanged("/p/config.json")
	w.Stop()

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, rec.snapshot())
}

func TestWatchReportsWrites(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "config.json")
	other := filepath.Join(dir, "other.json")
	require.NoError(t, os.WriteFile(target, []byte("{}"), 0o644))

	rec := &recorder{}
	w := NewWatcher(10*time.Millisecond, rec.onChange)
	require.NoError(t, w.Watch(context.Background(), target))
	defer w.Stop()

	require.NoError(t, os.WriteFile(other, []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(target, []byte(`{"page_size": 4}`), 0o644))

	assert.Eventually(t, func() bool { return len(rec.snapshot()) > 0 }, 2*time.Second, 10*time.Millisecond)
	for _, call := range rec.snapshot() {
		assert.Equal(t, []string{target}, call)
	}
}

func TestWatchEndsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	w := NewWatcher(10*time.Millisecond, nil)
	require.NoError(t, w.Watch(ctx, filepath.Join(t.TempDir(), "config.json")))
	cancel()
	<-w.done
	w.Stop()
}
