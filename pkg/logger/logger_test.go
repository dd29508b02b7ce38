package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func setupTracer(t *testing.T) {
	t.Helper()
	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
}

func lastEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	var m map[string]any
	if err := json.Unmarshal([]byte(lines[len(lines)-1]), &m); err != nil {
		t.Fatalf("parse log line %q: %v", lines[len(lines)-1], err)
	}
	return m
}

func TestTraceFields(t *testing.T) {
	setupTracer(t)
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "debug")

	log.InfoContext(context.Background(), "no span")
	if e := lastEntry(t, &buf); e["trace_id"] != nil || e["span_id"] != nil {
		t.Fatalf("unexpected trace fields without a span: %v", e)
	}

	ctx, parent := otel.Tracer("test").Start(context.Background(), "verify")
	log.ErrorContext(ctx, "scan not recorded", "error", errors.New("boom"), "batch_id", "B-123")
	p := lastEntry(t, &buf)
	if p["trace_id"] == nil || p["span_id"] == nil || p["batch_id"] != "B-123" || p["error"] != "boom" {
		t.Fatalf("unexpected entry: %v", p)
	}

	ctx, child := otel.Tracer("test").Start(ctx, "record")
	log.InfoContext(ctx, "child")
	c := lastEntry(t, &buf)
	child.End()
	parent.End()

	if p["trace_id"] != c["trace_id"] || p["span_id"] == c["span_id"] {
		t.Fatalf("expected one trace with two spans: %v / %v", p, c)
	}
}

func TestRedaction(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "info")

	log.Info("verify", "signature", "9f86d081884c7d659a2feaa0c55ad015", "cookie", "medtrace_session=abc", "batch_id", "B1")
	e := lastEntry(t, &buf)
	if e["signature"] != "9f86d081…" {
		t.Errorf("signature must keep only a prefix, got %v", e["signature"])
	}
	if e["cookie"] != "[redacted]" {
		t.Errorf("cookie must be redacted, got %v", e["cookie"])
	}
	if e["batch_id"] != "B1" {
		t.Errorf("batch_id must pass through, got %v", e["batch_id"])
	}

	log.With("Session", "s3cr3t").Info("bound")
	if e := lastEntry(t, &buf); e["Session"] != "[redacted]" {
		t.Errorf("bound attrs must be redacted too, got %v", e["Session"])
	}
}

func TestParseLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "WARN")
	log.Info("dropped")
	if buf.Len() != 0 {
		t.Fatalf("expected info to be filtered at warn level, got %q", buf.String())
	}
	log.With("batch_id", "B1").Warn("kept")
	if e := lastEntry(t, &buf); e["batch_id"] != "B1" {
		t.Errorf("expected bound batch_id, got %v", e["batch_id"])
	}

	if got := parseLevel("nonsense"); got.String() != "INFO" {
		t.Errorf("unknown levels fall back to info, got %s", got)
	}
}

func TestMiddleware(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		status    int
		wantLevel string
		wantRoute string
	}{
		{"ok", "/api/batches/B1", http.StatusOK, "INFO", "/api/batches/{batchID}"},
		{"conflict", "/api/batches/B1", http.StatusConflict, "WARN", "/api/batches/{batchID}"},
		{"not found stays info", "/api/batches/B1", http.StatusNotFound, "INFO", "/api/batches/{batchID}"},
		{"server error", "/api/batches/B1", http.StatusInternalServerError, "ERROR", "/api/batches/{batchID}"},
		{"probe", "/health", http.StatusOK, "DEBUG", "/health"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := NewWithWriter(&buf, "debug")

			r := chi.NewRouter()
			r.Use(middleware.RequestID)
			r.Use(Middleware(log))
			handler := func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("body"))
			}
			r.Get("/api/batches/{batchID}", handler)
			r.Get("/health", handler)

			r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tt.path, http.NoBody))

			e := lastEntry(t, &buf)
			if e["level"] != tt.wantLevel || e["route"] != tt.wantRoute {
				t.Fatalf("got level=%v route=%v", e["level"], e["route"])
			}
			if e["request_id"] == nil || e["bytes"] != float64(4) || e["status"] != float64(tt.status) {
				t.Fatalf("unexpected entry: %v", e)
			}
		})
	}
}

func TestRecovery(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "debug")

	h := Recovery(log)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("nil batch")
	}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/holdings", http.NoBody))

	if w.Code != http.StatusInternalServerError || !strings.Contains(w.Body.String(), `"error"`) {
		t.Fatalf("expected a JSON 500, got %d %q", w.Code, w.Body.String())
	}
	if e := lastEntry(t, &buf); e["msg"] != "panic recovered" || e["panic"] != "nil batch" || e["stack"] == nil {
		t.Fatalf("unexpected entry: %v", e)
	}
}
