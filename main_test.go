package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestConfigSetAndGet(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, "config", "--dir", dir, "set", "page_size", "12")
	require.NoError(t, err)
	assert.Equal(t, "page_size = 12\n", out)
	assert.FileExists(t, filepath.Join(dir, ".locomplete", "config.json"))

	out, err = execute(t, "config", "--dir", dir, "get", "page_size")
	require.NoError(t, err)
	assert.Equal(t, "12\n", out)

	out, err = execute(t, "config", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "page_size = 12\n")
	assert.Contains(t, out, "theme = fire\n")
}

func TestConfigRejectsUnknownKey(t *testing.T) {
	_, err := execute(t, "config", "--dir", t.TempDir(), "get", "colour")
	assert.ErrorContains(t, err, "unknown config key")
}

func TestBufferContentType(t *testing.T) {
	defer func() { contentType = "" }()

	assert.Equal(t, "go", bufferContentType("main.go"))
	assert.Equal(t, "md", bufferContentType("README.MD"))
	assert.Equal(t, "text", bufferContentType("Makefile"))
	assert.Equal(t, "text", bufferContentType(""))

	contentType = "python"
	assert.Equal(t, "python", bufferContentType("main.go"))
}

func TestReadFile(t *testing.T) {
	s, err := readFile(filepath.Join(t.TempDir(), "new.txt"))
	require.NoError(t, err)
	assert.Empty(t, s)

	path := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("alpha"), 0o644))
	s, err = readFile(path)
	require.NoError(t, err)
	assert.Equal(t, "alpha", s)
}
