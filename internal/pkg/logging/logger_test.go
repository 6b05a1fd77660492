package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextIDs(t *testing.T) {
	tests := []struct {
		name string
		ctx  context.Context
		id   string
	}{
		{name: "nil context", ctx: nil, id: "req-1"},
		{name: "background context", ctx: context.Background(), id: "req-2"},
		{name: "empty id", ctx: context.Background(), id: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := ContextWithRequestID(tt.ctx, tt.id)
			assert.Equal(t, tt.id, RequestIDFromContext(ctx))

			ctx = ContextWithMergeID(tt.ctx, tt.id)
			assert.Equal(t, tt.id, MergeIDFromContext(ctx))
		})
	}
}

func TestWithContextAddsFields(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	ctx := ContextWithMergeID(ContextWithRequestID(context.Background(), "r-1"), "m-1")
	l := WithContext(ctx, logger)
	l.Info().Msg("hello")

	var event map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &event))
	assert.Equal(t, "r-1", event["request_id"])
	assert.Equal(t, "m-1", event["merge_id"])
}

func TestConfigureLevelAndService(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: "warn", Output: &buf, Service: "merger-test"})
	t.Cleanup(func() { Configure(Config{}) })

	l := WithComponent("planner")
	l.Info().Msg("dropped")
	l.Warn().Msg("kept")

	out := buf.String()
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, "kept")
	assert.Contains(t, out, `"service":"merger-test"`)
	assert.Contains(t, out, `"component":"planner"`)
}

func TestLineWriterSplitsLines(t *testing.T) {
	var buf bytes.Buffer
	w := &LineWriter{Logger: zerolog.New(&buf).Level(zerolog.DebugLevel), Field: "ffmpeg"}

	_, err := w.Write([]byte("frame=1\rframe=2\npart"))
	require.NoError(t, err)
	_, err = w.Write([]byte("ial\n"))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], `"ffmpeg":"frame=1"`)
	assert.Contains(t, lines[1], `"ffmpeg":"frame=2"`)
	assert.Contains(t, lines[2], `"ffmpeg":"partial"`)
}
