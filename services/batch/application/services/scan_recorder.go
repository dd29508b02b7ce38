package services

import (
	"context"
	"fmt"

	"github.com/ghuser/medtrace/pkg/logger"
	"github.com/ghuser/medtrace/pkg/worker"
	"github.com/ghuser/medtrace/services/batch/domain/models"
	"github.com/ghuser/medtrace/services/batch/domain/repositories"
)

// ScanRetryQueue durably schedules a scan log entry whose write failed.
// Implementations must tolerate the same entry being enqueued twice.
type ScanRetryQueue interface {
	Enqueue(ctx context.Context, entry models.ScanLogEntry, cause error) error
}

// ScanRecorder writes scan log entries off the request path.
//
// Entries are written on the worker pool. When the pool is saturated or the
// write fails the entry is handed to the retry queue; the verify response
// never waits on either.
type ScanRecorder struct {
	repo    repositories.ScanLogRepository
	pool    *worker.Pool
	retry   ScanRetryQueue
	log     logger.Logger
	metrics *serviceMetrics
}

// NewScanRecorder returns a ScanRecorder. A nil pool writes synchronously;
// a nil retry queue only logs entries that could not be written.
func NewScanRecorder(repo repositories.ScanLogRepository, pool *worker.Pool, retry ScanRetryQueue, log logger.Logger) *ScanRecorder {
	return &ScanRecorder{
		repo:    repo,
		pool:    pool,
		retry:   retry,
		log:     log,
		metrics: newServiceMetrics(),
	}
}

// Record schedules entry for writing and returns immediately.
func (r *ScanRecorder) Record(ctx context.Context, entry models.ScanLogEntry) {
	if r.pool == nil {
		r.write(context.WithoutCancel(ctx), entry)
		return
	}
	if err := r.pool.SubmitDetached(func(ctx context.Context) {
		r.write(ctx, entry)
	}); err != nil {
		r.metrics.scanFailure(ctx, "submit")
		r.handoff(context.WithoutCancel(ctx), entry, fmt.Errorf("submit scan write: %w", err))
	}
}

// Write appends entry synchronously. Retry consumers call it directly.
func (r *ScanRecorder) Write(ctx context.Context, entry models.ScanLogEntry) error {
	if err := r.repo.Append(ctx, entry); err != nil {
		return fmt.Errorf("append scan log: %w", err)
	}
	return nil
}

func (r *ScanRecorder) write(ctx context.Context, entry models.ScanLogEntry) {
	if err := r.Write(ctx, entry); err != nil {
		r.metrics.scanFailure(ctx, "write")
		r.handoff(context.WithoutCancel(ctx), entry, err)
	}
}

func (r *ScanRecorder) handoff(ctx context.Context, entry models.ScanLogEntry, cause error) {
	if r.retry == nil {
		r.log.ErrorContext(ctx, "scan log entry not written and no retry queue configured",
			"scan_id", entry.ID, "batch_id", entry.BatchID, "error", cause)
		return
	}
	if err := r.retry.Enqueue(ctx, entry, cause); err != nil {
		r.log.ErrorContext(ctx, "scan log entry could not be queued for retry",
			"scan_id", entry.ID, "batch_id", entry.BatchID, "cause", cause, "error", err)
		return
	}
	r.log.WarnContext(ctx, "scan log write deferred to retry queue",
		"scan_id", entry.ID, "batch_id", entry.BatchID, "error", cause)
}
