package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/components/forwarder"
)

// StartForwarder runs the outbox daemon that moves enveloped messages from
// the outbox queue to their target topics. It returns once the daemon is
// running. Only valid on a bus opened with Options.Forwarder.
func (q *EventBus) StartForwarder(ctx context.Context) error {
	if !q.opts.Forwarder {
		return errors.New("events: bus was not opened in forwarder mode")
	}
	if q.fwd != nil {
		return errors.New("events: forwarder already started")
	}

	wlog := watermillLogger{log: q.log.With("subsystem", "forwarder")}
	outbox, err := newSQLSubscriber(q.db, q.opts.ConsumerGroup+"-forwarder", wlog)
	if err != nil {
		return err
	}
	fwd, err := forwarder.NewForwarder(outbox, q.direct, wlog, forwarder.Config{
		ForwarderTopic: forwarderTopic,
	})
	if err != nil {
		_ = outbox.Close()
		return fmt.Errorf("events: create forwarder: %w", err)
	}
	q.fwd = fwd

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		if err := fwd.Run(ctx); err != nil {
			q.log.ErrorContext(ctx, "events: forwarder stopped", "error", err)
			return
		}
		q.log.InfoContext(ctx, "events: forwarder stopped")
	}()

	select {
	case <-fwd.Running():
		q.log.InfoContext(ctx, "events: forwarder running", "outbox_topic", forwarderTopic)
		return nil
	case <-ctx.Done():
		return fmt.Errorf("events: waiting for forwarder: %w", ctx.Err())
	}
}
