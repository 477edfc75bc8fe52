package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"fittrack/backend/internal/config"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordHTTPRequest(t *testing.T) {
	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/users/:id", "404"))

	RecordHTTPRequest("GET", "/api/users/:id", 404, 3*time.Millisecond)

	after := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/users/:id", "404"))
	assert.Equal(t, before+1, after)
}

func TestRecordHTTPRequest_UnmatchedRoute(t *testing.T) {
	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "unmatched", "404"))
	RecordHTTPRequest("GET", "", 404, time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequests.WithLabelValues("GET", "unmatched", "404")))
}

func TestRecordDanglingReference(t *testing.T) {
	before := testutil.ToFloat64(danglingReferences.WithLabelValues("workoutIds"))
	RecordDanglingReference("workoutIds")
	RecordDanglingReference("workoutIds")
	assert.Equal(t, before+2, testutil.ToFloat64(danglingReferences.WithLabelValues("workoutIds")))
}

func TestNewLogger_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, config.LogConfig{Level: "info", Format: "json"})
	logger.Info("hello", "user", "Phil")

	var m map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &m))
	assert.Equal(t, "hello", m["msg"])
	assert.Equal(t, "Phil", m["user"])
	_, hasSource := m["source"]
	assert.False(t, hasSource)
}

func TestNewLogger_TextIncludesSource(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, config.LogConfig{Level: "debug", Format: "text"})
	logger.Debug("source test")
	assert.Contains(t, buf.String(), "source=")
}

func TestNewLogger_Levels(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run("level_"+tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger := newLogger(&buf, config.LogConfig{Level: tt.level, Format: "json"})

			logger.Log(context.Background(), tt.want, "should appear")
			assert.NotZero(t, buf.Len())

			buf.Reset()
			logger.Log(context.Background(), tt.want-1, "should be suppressed")
			assert.Zero(t, buf.Len())
		})
	}
}

func TestNewLogger_SetsDefault(t *testing.T) {
	logger := NewLogger(config.LogConfig{Level: "info", Format: "json"})
	assert.Same(t, logger.Handler(), slog.Default().Handler())
}
