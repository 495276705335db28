package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_JSONAddsContextValues(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, LoggerOptions{Production: true})

	ctx := WithUserID(WithRequestID(context.Background(), "req-1"), "u1")
	logger.InfoContext(ctx, "hello", slog.String("route", "/api/posts"))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "hello", rec["msg"])
	assert.Equal(t, "req-1", rec["request_id"])
	assert.Equal(t, "u1", rec["user_id"])
	assert.Equal(t, "/api/posts", rec["route"])
}

func TestNewLogger_TextInDevelopment(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, LoggerOptions{}).With(slog.String("component", "session"))
	logger.Info("ready")

	out := buf.String()
	assert.Contains(t, out, "msg=ready")
	assert.Contains(t, out, "component=session")
}

func TestNewLogger_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, LoggerOptions{Level: "warn"})
	logger.Info("dropped")
	assert.Empty(t, buf.String())

	logger.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

func TestInitTracing_Disabled(t *testing.T) {
	shutdown, err := InitTracing(TracingConfig{ServiceName: "writex-test"})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))

	ctx, span := StartClientSpan(context.Background(), "GET", "/api/posts")
	assert.NotNil(t, ctx)
	EndSpan(span, 200, nil)
}
