// Package logger is the structured JSON logger used by every medtrace process.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/trace"

	"github.com/ghuser/medtrace/pkg/config"
)

// Logger is the logging surface passed through the code base. Callers log
// with the *Context variants wherever a request or message context exists,
// so trace and request ids are attached.
type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
	Debug(msg string, args ...any)
	InfoContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)
	WarnContext(ctx context.Context, msg string, args ...any)
	DebugContext(ctx context.Context, msg string, args ...any)
	With(args ...any) Logger
	// ToSlog exposes the handler chain to libraries that take *slog.Logger.
	ToSlog() *slog.Logger
}

// New returns the process logger, writing to stdout with service and env bound.
func New(cfg *config.Config) Logger {
	return NewWithWriter(os.Stdout, cfg.LogLevel).With(
		"service", cfg.ServiceName,
		"env", cfg.Environment,
	)
}

// NewWithWriter returns a logger writing JSON lines to w at level.
func NewWithWriter(w io.Writer, level string) Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       parseLevel(level),
		ReplaceAttr: redact,
	})
	return &slogLogger{Logger: slog.New(&traceHandler{h})}
}

type slogLogger struct {
	*slog.Logger
}

func (l *slogLogger) With(args ...any) Logger {
	return &slogLogger{Logger: l.Logger.With(args...)}
}

func (l *slogLogger) ToSlog() *slog.Logger {
	return l.Logger
}

// sensitiveKeys never reach the log sink in full. A signed code is as good as
// a genuine pack, so only a short prefix is kept for correlation.
var sensitiveKeys = map[string]int{
	"signature":     8,
	"authorization": 0,
	"cookie":        0,
	"session":       0,
	"password":      0,
}

func redact(_ []string, a slog.Attr) slog.Attr {
	keep, ok := sensitiveKeys[strings.ToLower(a.Key)]
	if !ok || a.Value.Kind() != slog.KindString {
		return a
	}
	v := a.Value.String()
	if v == "" {
		return a
	}
	if keep > 0 && len(v) > keep {
		return slog.String(a.Key, v[:keep]+"…")
	}
	return slog.String(a.Key, "[redacted]")
}

// traceHandler adds trace_id, span_id and request_id from the record's context.
type traceHandler struct {
	slog.Handler
}

func (h *traceHandler) Handle(ctx context.Context, r slog.Record) error {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		r.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	if id := middleware.GetReqID(ctx); id != "" {
		r.AddAttrs(slog.String("request_id", id))
	}
	return h.Handler.Handle(ctx, r)
}

func (h *traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &traceHandler{h.Handler.WithAttrs(attrs)}
}

func (h *traceHandler) WithGroup(name string) slog.Handler {
	return &traceHandler{h.Handler.WithGroup(name)}
}

func parseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}
