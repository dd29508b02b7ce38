package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/ghuser/medtrace/pkg/logger"
)

func nopLogger() logger.Logger {
	return logger.NewWithWriter(io.Discard, "error")
}

var fastPolicy = RetryPolicy{Attempts: 3, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}

func TestRetryWithBackoff(t *testing.T) {
	tests := []struct {
		name      string
		failFirst int
		wantCalls int
		wantErr   bool
	}{
		{"first attempt succeeds", 0, 1, false},
		{"succeeds on last attempt", 2, 3, false},
		{"exhausts attempts", 99, 3, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			handler := func(context.Context, *message.Message) error {
				calls++
				if calls <= tt.failFirst {
					return errors.New("db unavailable")
				}
				return nil
			}
			err := retryWithBackoff(context.Background(), message.NewMessage("id", nil), handler, fastPolicy, nopLogger())
			if (err != nil) != tt.wantErr || calls != tt.wantCalls {
				t.Fatalf("got err=%v calls=%d", err, calls)
			}
		})
	}
}

func TestRetryWithBackoff_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	handler := func(context.Context, *message.Message) error {
		calls++
		return errors.New("boom")
	}
	err := retryWithBackoff(ctx, message.NewMessage("id", nil), handler, RetryPolicy{Attempts: 5, BaseDelay: time.Second}, nopLogger())
	if !errors.Is(err, context.Canceled) || calls != 1 {
		t.Fatalf("expected a canceled error after one call, got %v after %d", err, calls)
	}
}

func TestDeadLetter_CopiesAndAnnotates(t *testing.T) {
	msg := message.NewMessage(watermill.NewUUID(), []byte(`{"batch_id":"B1"}`))
	msg.Metadata.Set(MetaEventID, "evt-9")

	dead := deadLetter("scan.retry", msg, errors.New("constraint violation"))

	if dead.UUID != msg.UUID || string(dead.Payload) != string(msg.Payload) {
		t.Fatal("dead letter must keep the id and payload")
	}
	if dead.Metadata.Get(MetaEventID) != "evt-9" ||
		dead.Metadata.Get(MetaDeadLetterTopic) != "scan.retry" ||
		dead.Metadata.Get(MetaDeadLetterReason) != "constraint violation" {
		t.Fatalf("unexpected metadata: %v", dead.Metadata)
	}
	if msg.Metadata.Get(MetaDeadLetterTopic) != "" {
		t.Fatal("the original message must not be modified")
	}
}

func TestStartForwarder_RequiresForwarderMode(t *testing.T) {
	bus := &EventBus{}
	if err := bus.StartForwarder(context.Background()); err == nil {
		t.Fatal("expected error for a bus without forwarder mode")
	}
}

func TestTracePropagation(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	defer tp.Shutdown(context.Background()) //nolint:errcheck

	ctx, span := otel.Tracer("test").Start(context.Background(), "verify")
	defer span.End()

	msg := message.NewMessage("id", nil)
	injectTrace(ctx, []*message.Message{msg})

	got := trace.SpanContextFromContext(extractTrace(context.Background(), msg))
	if !got.IsValid() || got.TraceID() != span.SpanContext().TraceID() {
		t.Fatalf("trace did not survive the round trip: %v", got)
	}
}

func TestNewJSONMessage(t *testing.T) {
	msg, err := NewJSONMessage("evt-1", 2, map[string]string{"batch_id": "B1"})
	if err != nil {
		t.Fatalf("NewJSONMessage: %v", err)
	}
	if msg.Metadata.Get(MetaEventID) != "evt-1" || msg.Metadata.Get(MetaEventVersion) != "2" {
		t.Fatalf("unexpected metadata: %v", msg.Metadata)
	}
	var got map[string]string
	if err := json.Unmarshal(msg.Payload, &got); err != nil || got["batch_id"] != "B1" {
		t.Fatalf("unexpected payload %s: %v", msg.Payload, err)
	}
	if _, err := NewJSONMessage("evt-2", 1, make(chan int)); err == nil {
		t.Fatal("expected a marshal error")
	}
}

func TestWatermillLogger_FieldsAndTrace(t *testing.T) {
	var buf bytes.Buffer
	l := watermillLogger{log: logger.NewWithWriter(&buf, "debug")}
	l.With(watermill.LogFields{"topic": "batch.changed"}).Trace("polling", watermill.LogFields{"offset": 42})

	out := buf.String()
	for _, want := range []string{`"level":"DEBUG"`, `"topic":"batch.changed"`, `"offset":42`} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %s in %s", want, out)
		}
	}
}
