package util

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cq-suite/src/config"
)

func TestLogger_LevelsAndFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cq.log")
	l := NewLogger(config.LoggingConfig{Level: "warn", File: path})
	assert.Equal(t, "warn", l.GetLevel())

	l.Info("hidden %d", 1)
	l.Warn("visible %d", 2)
	require.NoError(t, l.SetLevel("debug"))
	l.Debug("now visible")
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.NotContains(t, out, "hidden 1")
	assert.Contains(t, out, "visible 2")
	assert.Contains(t, out, "now visible")
	assert.Contains(t, out, "WARN")
}

func TestLogger_JSONFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cq.json")
	l := NewLogger(config.LoggingConfig{Level: "info", Format: "json", File: path})
	l.Error("tool %s failed", "pylint")
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(string(data))), &entry))
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "tool pylint failed", entry["msg"])
	assert.NotContains(t, entry, "ts")
}

func TestLogger_UnknownLevelFallsBackToInfo(t *testing.T) {
	l := NewLogger(config.LoggingConfig{Level: "chatty"})
	assert.Equal(t, "info", l.GetLevel())
	assert.Error(t, l.SetLevel("chatty"))
}

func TestLogger_CloseReleasesFile(t *testing.T) {
	l := NewLogger(config.LoggingConfig{Level: "info", File: filepath.Join(t.TempDir(), "cq.log")})
	f := l.file
	require.NotNil(t, f)

	require.NoError(t, l.Close())
	_, err := f.WriteString("late")
	assert.ErrorIs(t, err, os.ErrClosed)
	assert.NoError(t, l.Close())
}

func TestSetDefaultLogger_ClosesPrevious(t *testing.T) {
	saved := DefaultLogger
	t.Cleanup(func() { DefaultLogger = saved })

	dir := t.TempDir()
	DefaultLogger = NewLogger(config.LoggingConfig{Level: "info", File: filepath.Join(dir, "first.log")})
	first := DefaultLogger.file

	SetDefaultLogger(config.LoggingConfig{Level: "info", File: filepath.Join(dir, "second.log")})
	_, err := first.WriteString("late")
	assert.ErrorIs(t, err, os.ErrClosed)
	require.NotNil(t, DefaultLogger.file)
	require.NoError(t, DefaultLogger.Close())
}
