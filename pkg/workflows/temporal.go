// Package workflows connects the process to Temporal for durable background work.
package workflows

import (
	"context"
	"fmt"
	"os"

	"go.opentelemetry.io/otel"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	"go.temporal.io/sdk/interceptor"
	temporallog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"

	"github.com/ghuser/medtrace/pkg/config"
	"github.com/ghuser/medtrace/pkg/logger"
)

// TemporalClient is the process-wide Temporal connection. The API enqueues
// scan retries through it; the worker polls the same task queue.
type TemporalClient struct {
	Client    client.Client
	Namespace string

	identity            string
	activityConcurrency int
	log                 logger.Logger
}

// NewTemporalClient dials cfg.TemporalHostPort with tracing interceptors.
// Callers must Close it on shutdown.
func NewTemporalClient(ctx context.Context, cfg *config.Config, log logger.Logger) (*TemporalClient, error) {
	log = log.With("component", "temporal")

	tracing, err := temporalotel.NewTracingInterceptor(temporalotel.TracerOptions{
		Tracer: otel.Tracer(cfg.ServiceName + "/temporal"),
	})
	if err != nil {
		return nil, fmt.Errorf("temporal tracing interceptor: %w", err)
	}

	identity := processIdentity(cfg.ServiceName)
	c, err := client.DialContext(ctx, client.Options{
		HostPort:     cfg.TemporalHostPort,
		Namespace:    cfg.TemporalNamespace,
		Identity:     identity,
		Logger:       temporalLogger{log: log},
		Interceptors: []interceptor.ClientInterceptor{tracing},
	})
	if err != nil {
		return nil, fmt.Errorf("dial temporal at %s: %w", cfg.TemporalHostPort, err)
	}

	log.Info("temporal client connected",
		"host_port", cfg.TemporalHostPort, "namespace", cfg.TemporalNamespace, "identity", identity)
	return &TemporalClient{
		Client:              c,
		Namespace:           cfg.TemporalNamespace,
		identity:            identity,
		activityConcurrency: cfg.TemporalActivityConcurrency,
		log:                 log,
	}, nil
}

// Ping asks the frontend service for its health. Used by the readiness probe.
func (tc *TemporalClient) Ping(ctx context.Context) error {
	if _, err := tc.Client.CheckHealth(ctx, &client.CheckHealthRequest{}); err != nil {
		return fmt.Errorf("temporal health: %w", err)
	}
	return nil
}

// Close drops the connection.
func (tc *TemporalClient) Close() {
	tc.Client.Close()
	tc.log.Info("temporal client closed")
}

// NewWorker returns a worker polling taskQueue. Activity concurrency is capped
// so retried scan writes cannot exhaust the database pool.
func (tc *TemporalClient) NewWorker(taskQueue string) worker.Worker {
	return worker.New(tc.Client, taskQueue, workerOptions(tc.identity, tc.activityConcurrency))
}

func workerOptions(identity string, activityConcurrency int) worker.Options {
	opts := worker.Options{Identity: identity}
	if activityConcurrency > 0 {
		opts.MaxConcurrentActivityExecutionSize = activityConcurrency
	}
	return opts
}

func processIdentity(service string) string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "unknown-host"
	}
	return fmt.Sprintf("%s@%s:%d", service, host, os.Getpid())
}

// temporalLogger routes SDK logs into the process logger. Temporal passes
// alternating key/value pairs, which slog accepts as is.
type temporalLogger struct {
	log logger.Logger
}

var _ temporallog.Logger = temporalLogger{}

func (l temporalLogger) Debug(msg string, keyvals ...any) { l.log.Debug(msg, keyvals...) }
func (l temporalLogger) Info(msg string, keyvals ...any)  { l.log.Info(msg, keyvals...) }
func (l temporalLogger) Warn(msg string, keyvals ...any)  { l.log.Warn(msg, keyvals...) }
func (l temporalLogger) Error(msg string, keyvals ...any) { l.log.Error(msg, keyvals...) }
