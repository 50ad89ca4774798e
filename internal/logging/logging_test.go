package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithoutFileIsNop(t *testing.T) {
	logger, err := New(Options{})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(-1))
}

func TestNewWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "locomplete.log")

	logger, err := New(Options{File: path, Debug: true})
	require.NoError(t, err)
	logger.Named("session").Debug("session opened")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	line := strings.TrimSpace(string(data))

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "session opened", entry["msg"])
	assert.Equal(t, "session", entry["logger"])
	assert.Equal(t, "debug", entry["level"])
	assert.Contains(t, entry, "timestamp")
}

func TestInfoLevelDropsDebug(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locomplete.log")

	logger, err := New(Options{File: path})
	require.NoError(t, err)
	logger.Debug("hidden")
	logger.Info("shown")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "shown")
}
