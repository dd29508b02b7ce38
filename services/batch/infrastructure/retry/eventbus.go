// Package retry implements the event-bus scan retry queue used when Temporal
// is disabled. The worker process consumes TopicScanRetry.
package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/ghuser/medtrace/pkg/events"
	domainevents "github.com/ghuser/medtrace/services/batch/domain/events"
	"github.com/ghuser/medtrace/services/batch/domain/models"
)

// Publisher is the subset of *events.EventBus the queue needs.
type Publisher interface {
	Publish(ctx context.Context, topic string, msgs ...*message.Message) error
}

// EventBusQueue publishes failed scan writes as ScanRetryEvent.
type EventBusQueue struct {
	pub Publisher
}

// NewEventBusQueue returns a queue publishing on pub.
func NewEventBusQueue(pub Publisher) *EventBusQueue {
	return &EventBusQueue{pub: pub}
}

// Enqueue publishes entry on TopicScanRetry.
func (q *EventBusQueue) Enqueue(ctx context.Context, entry models.ScanLogEntry, cause error) error {
	evt := domainevents.ScanRetryEvent{
		EventID:    uuid.New(),
		Version:    1,
		Scan:       domainevents.NewScanPayload(entry),
		OccurredAt: time.Now().UTC(),
	}
	if cause != nil {
		evt.Cause = cause.Error()
	}
	msg, err := events.NewJSONMessage(evt.EventID.String(), evt.Version, evt)
	if err != nil {
		return err
	}
	if err := q.pub.Publish(ctx, domainevents.TopicScanRetry, msg); err != nil {
		return fmt.Errorf("publish scan retry: %w", err)
	}
	return nil
}
