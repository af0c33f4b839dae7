package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestSetup_WritesFileAndStderr(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "gitjot.log")
	var stderr bytes.Buffer

	logger, closeFn, err := Setup(Options{File: path, Level: "info", Stderr: &stderr})
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.With("note", 7).Info("note sent", "path", "inbox/a.md")
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "note sent")
	assert.Contains(t, string(data), "note=7")
	assert.NotContains(t, string(data), "hidden")

	assert.Contains(t, stderr.String(), "path=inbox/a.md")
	assert.NotContains(t, stderr.String(), "\x1b[")
}

func TestSetup_FileOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gitjot.log")
	var stderr bytes.Buffer

	logger, closeFn, err := Setup(Options{File: path, FileOnly: true, Stderr: &stderr})
	require.NoError(t, err)
	defer closeFn()

	logger.Warn("quiet")
	assert.Empty(t, stderr.String())
}
