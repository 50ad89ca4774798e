package config

import (
	"context"
	"os"
	"path/filepath"
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

func TestLoadCreatesDefaults(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir)
	require.NoError(t, m.Load())

	assert.FileExists(t, filepath.Join(dir, ".locomplete", "config.json"))
	assert.FileExists(t, filepath.Join(dir, ".locomplete", ".gitignore"))

	cfg := m.Get()
	assert.Equal(t, 2000, cfg.GatherTimeoutMS)
	assert.Equal(t, 8, cfg.PageSize)
	assert.Contains(t, cfg.KeywordsFor("go"), "func")

	s := cfg.Session()
	assert.Equal(t, 2*time.Second, s.GatherTimeout)
	assert.Equal(t, time.Second, s.CommitTimeout)
	assert.Equal(t, "<new>", s.SuggestionDescription)
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir)
	require.NoError(t, os.MkdirAll(m.Dir(), 0o755))
	require.NoError(t, os.WriteFile(m.Path(), []byte(`{"page_size": 4, "log": {"file": "${LOCOMPLETE_TEST_LOG}"}}`), 0o644))
	t.Setenv("LOCOMPLETE_TEST_LOG", "/var/log/locomplete.log")

	require.NoError(t, m.Load())
	cfg := m.Get()
	assert.Equal(t, 4, cfg.PageSize)
	assert.Equal(t, 2000, cfg.GatherTimeoutMS, "missing keys keep defaults")
	assert.Equal(t, "/var/log/locomplete.log", cfg.Log.File)
}

func TestLoadRejectsInvalidFiles(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "malformed", content: `{"page_size":`},
		{name: "zero page size", content: `{"page_size": 0}`},
		{name: "negative timeout", content: `{"gather_timeout_ms": -1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager(t.TempDir())
			require.NoError(t, os.MkdirAll(m.Dir(), 0o755))
			require.NoError(t, os.WriteFile(m.Path(), []byte(tt.content), 0o644))
			assert.Error(t, m.Load())
		})
	}
}

func TestSetAndValue(t *testing.T) {
	m := NewManager(t.TempDir())
	require.NoError(t, m.Load())

	require.NoError(t, m.Set("page_size", "12"))
	require.NoError(t, m.Set("start_in_suggestion_mode", "true"))
	require.NoError(t, m.Set("keywords.python", "def, class,,return"))

	v, err := m.Value("page_size")
	require.NoError(t, err)
	assert.Equal(t, "12", v)
	v, err = m.Value("keywords.python")
	require.NoError(t, err)
	assert.Equal(t, "def,class,return", v)

	reloaded := NewManager(filepath.Dir(m.Dir()))
	require.NoError(t, reloaded.Load())
	assert.Equal(t, 12, reloaded.Get().PageSize)
	assert.True(t, reloaded.Get().StartInSuggestionMode)

	assert.ErrorIs(t, m.Set("nope", "1"), ErrUnknownKey)
	_, err = m.Value("nope")
	assert.ErrorIs(t, err, ErrUnknownKey)
	assert.Error(t, m.Set("page_size", "many"))
	assert.Error(t, m.Set("page_size", "0"))
	assert.Equal(t, 12, m.Get().PageSize, "rejected values leave the config alone")
}

func TestEveryKeyHasAValue(t *testing.T) {
	m := NewManager(t.TempDir())
	for _, key := range Keys {
		_, err := m.Value(key)
		assert.NoError(t, err, key)
	}
}

func TestGetReturnsCopy(t *testing.T) {
	m := NewManager(t.TempDir())
	cfg := m.Get()
	cfg.Keywords["go"][0] = "changed"
	cfg.PageSize = 99
	assert.Equal(t, "break", m.Get().Keywords["go"][0])
	assert.Equal(t, 8, m.Get().PageSize)
}

func TestResolve(t *testing.T) {
	m := NewManager("/project")
	assert.Equal(t, "/project/.locomplete/snippets.yaml", m.Resolve("snippets.yaml"))
	assert.Equal(t, "/abs/s.yaml", m.Resolve("/abs/s.yaml"))
	assert.Empty(t, m.Resolve(""))
}

func TestWatchReloads(t *testing.T) {
	m := NewManager(t.TempDir())
	require.NoError(t, m.Load())

	reloaded := make(chan *Config, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w, err := m.Watch(ctx, zaptest.NewLogger(t), func(cfg *Config) { reloaded <- cfg })
	require.NoError(t, err)
	defer w.Stop()

	require.NoError(t, os.WriteFile(m.Path(), []byte(`{"page_size": 3}`), 0o644))

	select {
	case cfg := <-reloaded:
		assert.Equal(t, 3, cfg.PageSize)
		assert.Equal(t, 3, m.Get().PageSize)
	case <-time.After(3 * time.Second):
		t.Fatal("config was not reloaded")
	}
}
