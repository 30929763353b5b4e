package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARN"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("loud"))
}

func TestPrettyHandler(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "pretty", "info")

	log.Debug("hidden")
	log.With("surface", "web").WithGroup("req").Info("converted", "bytes", 12)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "INF")
	assert.Contains(t, out, "converted")
	assert.Contains(t, out, "surface"+reset+"=web")
	assert.Contains(t, out, "req.bytes"+reset+"=12")
}

func TestJSONHandler(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "json", "warn")

	log.Info("skipped")
	log.Warn("rule reload failed", "path", "rules.yaml")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "rule reload failed", rec["msg"])
	assert.Equal(t, "rules.yaml", rec["path"])
}
