package core

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferedLogger(t *testing.T, level, format string) (*StdLogger, *bytes.Buffer) {
	t.Helper()
	t.Setenv("GOPROBE_LOG_LEVEL", level)
	t.Setenv("GOPROBE_LOG_FORMAT", format)
	l := NewStdLogger("test-service")
	var buf bytes.Buffer
	l.SetOutput(&buf)
	return l, &buf
}

func TestStdLogger_LevelFiltering(t *testing.T) {
	l, buf := newBufferedLogger(t, "WARN", "text")

	l.Debug("debug msg", nil)
	l.Info("info msg", nil)
	l.Warn("warn msg", nil)
	l.Error("error msg", nil)

	out := buf.String()
	assert.NotContains(t, out, "debug msg")
	assert.NotContains(t, out, "info msg")
	assert.Contains(t, out, "warn msg")
	assert.Contains(t, out, "error msg")
}

func TestStdLogger_TextFormat(t *testing.T) {
	l, buf := newBufferedLogger(t, "DEBUG", "text")

	l.Info("publishing", map[string]interface{}{"instrument": "a", "error": "nope"})

	out := buf.String()
	assert.Contains(t, out, "[INFO] [test-service] publishing")
	assert.Contains(t, out, "instrument=a")
	assert.Contains(t, out, `error="nope"`)
}

func TestStdLogger_JSONFormat(t *testing.T) {
	l, buf := newBufferedLogger(t, "INFO", "json")

	l.Error("sink failed", map[string]interface{}{"topic": "a/b"})

	line := strings.TrimSpace(buf.String())
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "test-service", entry["service"])
	assert.Equal(t, "sink failed", entry["message"])
	assert.Equal(t, "a/b", entry["topic"])
}

func TestNoOpLogger(t *testing.T) {
	// Must accept any call without effect.
	l := &NoOpLogger{}
	l.Debug("x", nil)
	l.Info("x", map[string]interface{}{"k": "v"})
	l.Warn("x", nil)
	l.Error("x", nil)
}
