package events

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ghuser/medtrace/pkg/logger"
)

// Handler processes one message. A nil return acknowledges it.
type Handler func(ctx context.Context, msg *message.Message) error

// RetryPolicy bounds in-process redelivery of a failing message.
type RetryPolicy struct {
	Attempts  int
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

// DefaultRetryPolicy tries three times, waiting 1s then 2s.
var DefaultRetryPolicy = RetryPolicy{Attempts: 3, BaseDelay: time.Second, MaxDelay: 10 * time.Second}

// Metadata set on dead-lettered messages.
const (
	MetaDeadLetterTopic  = "dead_letter_topic"
	MetaDeadLetterReason = "dead_letter_reason"
)

// Subscribe consumes topic in the background until ctx ends or the bus closes.
// Each message runs with the publisher's trace restored and a consumer span.
//
// After the retry policy is spent the message goes to topic+DeadLetterSuffix
// and is acknowledged; if that publish fails it is Nacked instead. Every
// exhausted message is also reported on the returned channel, which callers
// must drain:
//
//	errCh, err := bus.Subscribe(ctx, topic, handler)
//	go func() { for err := range errCh { log.ErrorContext(ctx, "subscriber error", "error", err) } }()
func (q *EventBus) Subscribe(ctx context.Context, topic string, handler Handler) (<-chan error, error) {
	ch, err := q.subscriber.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("events: subscribe to %s: %w", topic, err)
	}

	errCh := make(chan error, errChannelDepth)
	tracer := otel.Tracer("github.com/ghuser/medtrace/pkg/events")

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		defer close(errCh)

		for msg := range ch {
			msgCtx, span := tracer.Start(extractTrace(ctx, msg), "consume "+topic,
				trace.WithSpanKind(trace.SpanKindConsumer),
				trace.WithAttributes(
					attribute.String("messaging.destination.name", topic),
					attribute.String("messaging.message.id", msg.UUID),
				))

			err := retryWithBackoff(msgCtx, msg, handler, q.opts.Retry, q.log)
			if err == nil {
				msg.Ack()
				span.End()
				continue
			}

			span.RecordError(err)
			span.SetStatus(codes.Error, "handler exhausted retries")
			q.settleFailed(msgCtx, topic, msg, err)
			span.End()

			select {
			case errCh <- err:
			default:
				q.log.ErrorContext(msgCtx, "events: error channel full, dropping error",
					"error", err, "topic", topic)
			}
		}
	}()

	return errCh, nil
}

// settleFailed parks msg on the dead-letter topic and acks it, or nacks it
// when dead-lettering is off or fails.
func (q *EventBus) settleFailed(ctx context.Context, topic string, msg *message.Message, cause error) {
	if q.opts.DisableDeadLetter {
		msg.Nack()
		return
	}
	dead := deadLetter(topic, msg, cause)
	if err := q.direct.Publish(topic+DeadLetterSuffix, dead); err != nil { //nolint:contextcheck
		q.log.ErrorContext(ctx, "events: dead-letter publish failed, message will be redelivered",
			"topic", topic, "message_id", msg.UUID, "error", err)
		msg.Nack()
		return
	}
	q.log.WarnContext(ctx, "events: message dead-lettered",
		"topic", topic, "message_id", msg.UUID, "event_id", msg.Metadata.Get(MetaEventID), "error", cause)
	msg.Ack()
}

// deadLetter copies msg with its origin and failure recorded in metadata.
func deadLetter(topic string, msg *message.Message, cause error) *message.Message {
	out := message.NewMessage(msg.UUID, msg.Payload)
	for k, v := range msg.Metadata {
		out.Metadata.Set(k, v)
	}
	out.Metadata.Set(MetaDeadLetterTopic, topic)
	out.Metadata.Set(MetaDeadLetterReason, cause.Error())
	return out
}

// retryWithBackoff runs handler until it succeeds or p.Attempts is spent,
// doubling the wait each time up to p.MaxDelay.
func retryWithBackoff(ctx context.Context, msg *message.Message, handler Handler, p RetryPolicy, log logger.Logger) error {
	delay := p.BaseDelay
	var err error
	for attempt := 1; attempt <= p.Attempts; attempt++ {
		if err = handler(ctx, msg); err == nil {
			return nil
		}
		if attempt == p.Attempts {
			break
		}
		log.WarnContext(ctx, "events: handler failed, retrying",
			"attempt", attempt, "max_attempts", p.Attempts, "next_delay", delay, "error", err)
		select {
		case <-ctx.Done():
			return fmt.Errorf("events: retry aborted: %w", ctx.Err())
		case <-time.After(delay):
		}
		delay *= 2
		if p.MaxDelay > 0 && delay > p.MaxDelay {
			delay = p.MaxDelay
		}
	}
	return fmt.Errorf("events: handler failed after %d attempts: %w", p.Attempts, err)
}
