// Package events is the PostgreSQL-backed event bus shared by the API and the
// worker, built on Watermill's SQL transport.
//
// Subscribers in one consumer group split a topic between them, so each
// message reaches one worker instance. The API publishes through the outbox
// forwarder: a message is durable once its transaction commits, and the
// forwarder delivers it to the real topic afterwards.
//
// Handlers must be idempotent. A failing handler is retried with capped
// exponential backoff; a message that still fails is parked on its
// dead-letter topic and acknowledged so it cannot stall the topic.
//
// Trace context travels in message metadata from Publish to Subscribe.
package events

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	watermillsql "github.com/ThreeDotsLabs/watermill-sql/v3/pkg/sql"
	"github.com/ThreeDotsLabs/watermill/components/forwarder"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/ghuser/medtrace/pkg/config"
	"github.com/ghuser/medtrace/pkg/logger"
)

const (
	// DeadLetterSuffix is appended to a topic to name its dead-letter topic.
	DeadLetterSuffix = ".dead"

	forwarderTopic  = "medtrace_outbox"
	closeTimeout    = 30 * time.Second
	errChannelDepth = 100
)

// Options selects how a process uses the bus.
type Options struct {
	// ConsumerGroup defaults to "<service>-consumer".
	ConsumerGroup string
	// Forwarder routes Publish through the outbox queue. Call StartForwarder.
	Forwarder bool
	// Retry defaults to DefaultRetryPolicy.
	Retry RetryPolicy
	// DisableDeadLetter leaves exhausted messages Nacked for redelivery.
	DisableDeadLetter bool
}

// EventBus publishes and consumes domain events over PostgreSQL.
type EventBus struct {
	publisher  message.Publisher
	direct     message.Publisher
	subscriber *watermillsql.Subscriber
	fwd        *forwarder.Forwarder
	db         *sql.DB
	log        logger.Logger
	opts       Options
	wg         sync.WaitGroup
}

// New opens the bus against cfg.DatabaseURL. Watermill creates its tables on
// first use.
func New(cfg *config.Config, log logger.Logger, opts Options) (*EventBus, error) {
	if opts.ConsumerGroup == "" {
		opts.ConsumerGroup = cfg.ServiceName + "-consumer"
	}
	if opts.Retry.Attempts <= 0 {
		opts.Retry = DefaultRetryPolicy
	}
	log = log.With("component", "events")

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("events: open db: %w", err)
	}

	wlog := watermillLogger{log: log}
	pub, err := newSQLPublisher(db, true, wlog)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	sub, err := newSQLSubscriber(db, opts.ConsumerGroup, wlog)
	if err != nil {
		_ = pub.Close()
		_ = db.Close()
		return nil, err
	}

	bus := &EventBus{
		publisher:  pub,
		direct:     pub,
		subscriber: sub,
		db:         db,
		log:        log,
		opts:       opts,
	}
	if opts.Forwarder {
		bus.publisher = forwarder.NewPublisher(pub, forwarder.PublisherConfig{ForwarderTopic: forwarderTopic})
	}
	return bus, nil
}

func newSQLPublisher(db watermillsql.ContextExecutor, initSchema bool, wlog watermillLogger) (*watermillsql.Publisher, error) {
	pub, err := watermillsql.NewPublisher(db, watermillsql.PublisherConfig{
		SchemaAdapter:        watermillsql.DefaultPostgreSQLSchema{},
		AutoInitializeSchema: initSchema,
	}, wlog)
	if err != nil {
		return nil, fmt.Errorf("events: new publisher: %w", err)
	}
	return pub, nil
}

func newSQLSubscriber(db *sql.DB, group string, wlog watermillLogger) (*watermillsql.Subscriber, error) {
	sub, err := watermillsql.NewSubscriber(db, watermillsql.SubscriberConfig{
		SchemaAdapter:    watermillsql.DefaultPostgreSQLSchema{},
		OffsetsAdapter:   watermillsql.DefaultPostgreSQLOffsetsAdapter{},
		InitializeSchema: true,
		ConsumerGroup:    group,
	}, wlog)
	if err != nil {
		return nil, fmt.Errorf("events: new subscriber %s: %w", group, err)
	}
	return sub, nil
}

// Ping checks the bus database connection.
func (q *EventBus) Ping(ctx context.Context) error {
	if err := q.db.PingContext(ctx); err != nil {
		return fmt.Errorf("events: ping db: %w", err)
	}
	return nil
}

// Close stops consuming, waits for in-flight handlers and closes the
// connection. Handlers still running after closeTimeout are abandoned.
func (q *EventBus) Close() error {
	var errs []error
	if err := q.subscriber.Close(); err != nil {
		errs = append(errs, fmt.Errorf("events: close subscriber: %w", err))
	}
	if q.fwd != nil {
		if err := q.fwd.Close(); err != nil {
			errs = append(errs, fmt.Errorf("events: close forwarder: %w", err))
		}
	}

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(closeTimeout):
		q.log.Error("events: in-flight handlers still running at close", "timeout", closeTimeout)
	}

	if err := q.direct.Close(); err != nil {
		errs = append(errs, fmt.Errorf("events: close publisher: %w", err))
	}
	if err := q.db.Close(); err != nil {
		errs = append(errs, fmt.Errorf("events: close db: %w", err))
	}
	return errors.Join(errs...)
}
