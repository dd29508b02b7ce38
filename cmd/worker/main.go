package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/ghuser/medtrace/pkg/app"
	"github.com/ghuser/medtrace/pkg/cache"
	"github.com/ghuser/medtrace/pkg/config"
	"github.com/ghuser/medtrace/pkg/events"
	"github.com/ghuser/medtrace/pkg/logger"
	"github.com/ghuser/medtrace/pkg/telemetry"
	appsvcs "github.com/ghuser/medtrace/services/batch/application/services"
	batchWorkflows "github.com/ghuser/medtrace/services/batch/application/workflows"
	batchEvents "github.com/ghuser/medtrace/services/batch/domain/events"
)

func main() {
	if err := run(); err != nil {
		slog.Error("worker exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := config.ValidateForProduction(cfg); err != nil {
		return fmt.Errorf("production config: %w", err)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	otelShutdown, _, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		return fmt.Errorf("setup otel: %w", err)
	}
	defer otelShutdown(context.WithoutCancel(ctx)) //nolint:errcheck

	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("sentry disabled", "error", err)
	}
	defer telemetry.SentryFlush()

	a, cleanup, err := app.Bootstrap(ctx, cfg, log, app.ProcessWorker)
	if err != nil {
		return err
	}
	// The bus closes during cleanup and waits for in-flight handlers.
	defer cleanup()

	svcs := appsvcs.New(a)
	if err := registerSubscribers(ctx, a, svcs); err != nil {
		return fmt.Errorf("register subscribers: %w", err)
	}

	if svcs.RetryBuffer != nil {
		go drainScanBuffer(ctx, a, svcs, cfg.ScanBufferDrainInterval)
	}

	if a.TemporalClient != nil {
		w := a.TemporalClient.NewWorker(cfg.TemporalTaskQueue)
		batchWorkflows.Register(w, &batchWorkflows.ScanActivities{Writer: svcs.Recorder})
		if err := w.Start(); err != nil {
			return fmt.Errorf("start temporal worker: %w", err)
		}
		defer w.Stop()
		log.Info("temporal worker started", "task_queue", cfg.TemporalTaskQueue)
	}

	<-ctx.Done()
	log.Info("shutting down worker")
	return nil
}

// scanDrainBatch bounds one drain pass so a large backlog does not hold the
// database for long.
const scanDrainBatch = 500

// drainScanBuffer replays scan writes parked in Redis until ctx ends.
func drainScanBuffer(ctx context.Context, a *app.Application, svcs *appsvcs.Services, every time.Duration) {
	if every <= 0 {
		every = 30 * time.Second
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
		n, err := svcs.RetryBuffer.Drain(ctx, scanDrainBatch, svcs.Recorder.Write)
		if n > 0 {
			a.Logger.InfoContext(ctx, "buffered scan log entries recovered", "count", n)
		}
		if err != nil && ctx.Err() == nil {
			a.Logger.WarnContext(ctx, "scan buffer drain stopped", "error", err)
		}
	}
}

// registerSubscribers wires all domain event handlers.
// Add new topics here as more services publish events.
func registerSubscribers(ctx context.Context, a *app.Application, svcs *appsvcs.Services) error {
	handlers := map[string]events.Handler{
		batchEvents.TopicScanRetry:       handleScanRetry(a, svcs),
		batchEvents.TopicScanRecorded:    handleScanRecorded(a),
		batchEvents.TopicBatchRegistered: handleBatchRegistered(a, svcs),
		batchEvents.TopicBatchChanged:    handleBatchChanged(a, svcs),
	}

	topics := make([]string, 0, len(handlers))
	for topic, h := range handlers {
		errCh, err := a.EventBus.Subscribe(ctx, topic, h)
		if err != nil {
			return err
		}

		// Drain subscriber errors in background so the channel never blocks.
		go func(topic string) {
			for err := range errCh {
				a.Logger.ErrorContext(ctx, "subscriber error", "topic", topic, "error", err)
			}
		}(topic)
		topics = append(topics, topic)
	}

	a.Logger.Info("event subscribers registered", "topics", topics)
	return nil
}

// handleScanRetry writes scan log entries whose first write failed in the API.
// Writes are idempotent on the scan ID, so redelivery is safe.
func handleScanRetry(a *app.Application, svcs *appsvcs.Services) events.Handler {
	return func(ctx context.Context, msg *message.Message) error {
		var evt batchEvents.ScanRetryEvent
		if err := json.Unmarshal(msg.Payload, &evt); err != nil {
			return err
		}
		if err := svcs.Recorder.Write(ctx, evt.Scan.Entry()); err != nil {
			return err
		}
		a.Logger.InfoContext(ctx, "scan log entry recovered",
			"scan_id", evt.Scan.ID, "batch_id", evt.Scan.BatchID, "cause", evt.Cause)
		return nil
	}
}

// handleScanRecorded reports anomalous scans so they reach alerting.
func handleScanRecorded(a *app.Application) events.Handler {
	return func(ctx context.Context, msg *message.Message) error {
		var evt batchEvents.ScanRecordedEvent
		if err := json.Unmarshal(msg.Payload, &evt); err != nil {
			return err
		}
		if evt.Scan.Anomaly {
			a.Logger.WarnContext(ctx, "anomalous scan recorded",
				"batch_id", evt.Scan.BatchID,
				"outcome", evt.Scan.Outcome,
				"trust_score", evt.Scan.TrustScore,
				"device_id", evt.Scan.DeviceID,
				"location", evt.Scan.Location,
			)
		}
		return nil
	}
}

// handleBatchRegistered warms the Redis read model so the first detail read
// is served from cache.
func handleBatchRegistered(a *app.Application, svcs *appsvcs.Services) events.Handler {
	return func(ctx context.Context, msg *message.Message) error {
		var evt batchEvents.BatchRegisteredEvent
		if err := json.Unmarshal(msg.Payload, &evt); err != nil {
			return err
		}
		warm(ctx, a, svcs, evt.BatchID)
		return nil
	}
}

// handleBatchChanged drops the cached read model and reloads it. The API
// already invalidates after its own writes; this covers writers that bypass it.
func handleBatchChanged(a *app.Application, svcs *appsvcs.Services) events.Handler {
	batchCache := cache.NewBatchCache(a.Redis)
	return func(ctx context.Context, msg *message.Message) error {
		var evt batchEvents.BatchChangedEvent
		if err := json.Unmarshal(msg.Payload, &evt); err != nil {
			return err
		}
		if err := batchCache.Delete(ctx, evt.BatchID); err != nil {
			return err
		}
		if evt.Change == batchEvents.ChangeBlocked {
			a.Logger.WarnContext(ctx, "batch blocked", "batch_id", evt.BatchID)
		}
		warm(ctx, a, svcs, evt.BatchID)
		return nil
	}
}

// warm loads the batch through the read-through cache. Best-effort; a miss
// here only costs the next reader a store round trip.
func warm(ctx context.Context, a *app.Application, svcs *appsvcs.Services, batchID string) {
	if _, err := svcs.Ledger.GetBatch(ctx, batchID); err != nil {
		a.Logger.WarnContext(ctx, "cache warm failed", "batch_id", batchID, "error", err)
		return
	}
	a.Logger.DebugContext(ctx, "cache warmed", "batch_id", batchID)
}
