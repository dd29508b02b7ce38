package services

import (
	"github.com/ghuser/medtrace/pkg/app"
	"github.com/ghuser/medtrace/pkg/cache"
	"github.com/ghuser/medtrace/services/batch/application/workflows"
	"github.com/ghuser/medtrace/services/batch/infrastructure/persistence/postgres"
	"github.com/ghuser/medtrace/services/batch/infrastructure/retry"
)

// Services is the application-layer service container for this bounded context.
// It wires domain services with their infrastructure implementations.
type Services struct {
	Ledger       *LedgerService
	Verification *VerificationService
	Recorder     *ScanRecorder
	// RetryBuffer holds scan writes that no retry queue accepted; nil
	// without Redis. The worker drains it.
	RetryBuffer  *retry.RedisBuffer
}

// New wires all batch application services with infrastructure from the Application container.
func New(a *app.Application) *Services {
	batches := postgres.NewBatchRepository(a.Db, a.EventBus)
	scans := postgres.NewScanLogRepository(a.Db, a.EventBus)

	var batchCache BatchCache
	if a.Redis != nil {
		batchCache = cache.NewBatchCache(a.Redis)
	}

	var queue ScanRetryQueue
	switch {
	case a.TemporalClient != nil:
		queue = workflows.NewTemporalRetryQueue(a.TemporalClient.Client, a.Config.TemporalTaskQueue)
	case a.EventBus != nil:
		queue = retry.NewEventBusQueue(a.EventBus)
	}

	var buffer *retry.RedisBuffer
	if a.Redis != nil {
		buffer = retry.NewRedisBuffer(a.Redis.Client())
		queue = withBuffer(queue, buffer)
	}

	recorder := NewScanRecorder(scans, a.ScanPool, queue, a.Logger)
	return &Services{
		Ledger:       NewLedgerService(batches, batchCache, a.Locker, a.Config.BatchLockTTL, a.Signer, a.Logger),
		Verification: NewVerificationService(batches, scans, postgres.NewScoringReader(a.Db), recorder, batchCache, a.Signer, a.Logger),
		Recorder:     recorder,
		RetryBuffer:  buffer,
	}
}

// withBuffer puts buffer behind queue. Both the event bus and a failed scan
// write depend on Postgres, so the bus alone cannot absorb a database outage.
func withBuffer(queue ScanRetryQueue, buffer *retry.RedisBuffer) ScanRetryQueue {
	if queue == nil {
		return buffer
	}
	return retry.Fallback{Primary: queue, Secondary: buffer}
}
