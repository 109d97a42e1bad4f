package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"":        slog.LevelInfo,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}

	_, err := ParseLevel("trace")
	require.Error(t, err)
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "debug", FormatJSON)
	require.NoError(t, err)

	logger.Debug("reader open", "rows", 3)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "reader open", entry["msg"])
	require.Equal(t, float64(3), entry["rows"])
	require.Equal(t, "DEBUG", entry["level"])
}

func TestNew_TextFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "warn", FormatText)
	require.NoError(t, err)

	logger.Info("hidden")
	require.Empty(t, buf.String())

	logger.Warn("shown")
	require.Contains(t, buf.String(), "msg=shown")
}

func TestNew_BadFormat(t *testing.T) {
	_, err := New(&bytes.Buffer{}, "info", "xml")
	require.Error(t, err)
}

func TestInit(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	require.NoError(t, Init(&buf, "info", FormatText))
	slog.Info("hello")
	require.Contains(t, buf.String(), "msg=hello")
}
