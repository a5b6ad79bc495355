package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/phrazzld/study-buddy/internal/config"
	"github.com/phrazzld/study-buddy/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"chatty", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := logger.ParseLevel(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantErr, err != nil)
		})
	}
}

func TestNewJSONHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l, err := logger.New(&buf, config.ServerConfig{LogLevel: "warn", LogFormat: "json"})
	require.NoError(t, err)

	l.Info("hidden")
	l.Warn("shown", "component", "test")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, "test", entry["component"])
}

func TestNewTextHandler(t *testing.T) {
	var buf bytes.Buffer
	l, err := logger.New(&buf, config.ServerConfig{LogLevel: "info", LogFormat: "text"})
	require.NoError(t, err)

	l.Info("card flipped", "index", 2)
	out := buf.String()
	assert.Contains(t, out, "card flipped")
	assert.Contains(t, out, "index")
	assert.False(t, json.Valid([]byte(strings.TrimSpace(out))), "text format should not emit JSON")
}

func TestContextLogger(t *testing.T) {
	l, buf := logger.GetTestLogger(t)

	assert.Same(t, slog.Default(), logger.FromContext(context.Background()))
	assert.Same(t, l, logger.FromContextOrDefault(context.Background(), l))

	ctx := logger.WithLogger(context.Background(), l.With("trace_id", "abc"))
	logger.FromContext(ctx).Info("hello")

	logger.FromContextOrDefault(ctx, nil).Warn("careful")

	entries := buf.Entries(t)
	require.Len(t, entries, 2)
	assert.Equal(t, "abc", entries[0]["trace_id"])
	assert.Equal(t, []string{"careful"}, buf.Messages(t, slog.LevelWarn))
}
