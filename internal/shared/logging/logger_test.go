package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	require.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	require.Equal(t, slog.LevelError, ParseLevel(" error "))
	require.Equal(t, slog.LevelInfo, ParseLevel("info"))
	require.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestSlogLogger_JSONWithUTCTime(t *testing.T) {
	var buf bytes.Buffer
	logger := newSlogLogger(&buf, slog.LevelInfo, "json")

	logger.Debug("hidden")
	logger.Info("Round completed", "round", 3)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	require.Equal(t, "Round completed", entry["msg"])
	require.Equal(t, float64(3), entry["round"])
	require.True(t, strings.HasSuffix(entry["time"].(string), "Z"))
}

func TestSlogLogger_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := newSlogLogger(&buf, slog.LevelDebug, "text")

	logger.Debug("Reducer state", "reducer", 2)
	require.Contains(t, buf.String(), "msg=\"Reducer state\"")
	require.Contains(t, buf.String(), "reducer=2")
}

func TestNewNop(t *testing.T) {
	logger := NewNop()
	require.NotPanics(t, func() {
		logger.Info("ignored", "k", "v")
		logger.Fatal("also ignored")
	})
}
