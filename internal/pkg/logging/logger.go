// Package logging wraps the process-wide zerolog logger and carries request
// scoped fields through context.
package logging

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config captures options for configuring the global logger.
type Config struct {
	Level   string    // "debug", "info", ...; falls back to LOG_LEVEL
	Output  io.Writer // defaults to os.Stdout
	Service string
}

var (
	mu   sync.RWMutex
	base = zerolog.New(os.Stdout).With().Timestamp().Str("service", "video-merger").Logger()
)

// Configure replaces the base logger.
func Configure(cfg Config) {
	level := zerolog.InfoLevel
	lvl := cfg.Level
	if lvl == "" {
		lvl = os.Getenv("LOG_LEVEL")
	}
	if lvl != "" {
		if parsed, err := zerolog.ParseLevel(lvl); err == nil {
			level = parsed
		}
	}
	zerolog.TimeFieldFormat = time.RFC3339

	writer := cfg.Output
	if writer == nil {
		writer = os.Stdout
	}
	service := cfg.Service
	if service == "" {
		service = "video-merger"
	}

	mu.Lock()
	base = zerolog.New(writer).Level(level).With().
		Timestamp().
		Str("service", service).
		Logger()
	mu.Unlock()
}

// Base returns the configured base logger instance.
func Base() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// WithComponent returns a child logger annotated with the given component name.
func WithComponent(component string) zerolog.Logger {
	return Base().With().Str("component", component).Logger()
}

type ctxKey string

const (
	requestIDKey ctxKey = "request_id"
	mergeIDKey   ctxKey = "merge_id"
)

// ContextWithRequestID stores the HTTP request ID in the context.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// ContextWithMergeID stores the merge request ID in the context.
func ContextWithMergeID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, mergeIDKey, id)
}

// RequestIDFromContext extracts the request ID from context if present.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// MergeIDFromContext extracts the merge ID from context if present.
func MergeIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(mergeIDKey).(string); ok {
		return v
	}
	return ""
}

// WithContext enriches logger with the identifiers carried by ctx.
func WithContext(ctx context.Context, logger zerolog.Logger) zerolog.Logger {
	rid := RequestIDFromContext(ctx)
	mid := MergeIDFromContext(ctx)
	if rid == "" && mid == "" {
		return logger
	}
	builder := logger.With()
	if rid != "" {
		builder = builder.Str("request_id", rid)
	}
	if mid != "" {
		builder = builder.Str("merge_id", mid)
	}
	return builder.Logger()
}

// LineWriter turns newline-delimited output (ffmpeg stderr) into debug events.
type LineWriter struct {
	Logger zerolog.Logger
	Field  string
	buf    []byte
}

func (w *LineWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	for {
		i := indexLineEnd(w.buf)
		if i < 0 {
			break
		}
		if line := w.buf[:i]; len(line) > 0 {
			w.Logger.Debug().Str(w.field(), string(line)).Msg("engine output")
		}
		w.buf = w.buf[i+1:]
	}
	return len(p), nil
}

func (w *LineWriter) field() string {
	if w.Field == "" {
		return "line"
	}
	return w.Field
}

// ffmpeg progress uses bare carriage returns.
func indexLineEnd(b []byte) int {
	for i, c := range b {
		if c == '\n' || c == '\r' {
			return i
		}
	}
	return -1
}
