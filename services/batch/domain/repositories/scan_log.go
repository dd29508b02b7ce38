package repositories

import (
	"context"

	"github.com/ghuser/medtrace/services/batch/domain/models"
)

// ScanLogRepository is the append-only store of verification attempts.
type ScanLogRepository interface {
	// Append writes an entry. Appending an entry whose ID already exists is a no-op,
	// so retries are safe.
	Append(ctx context.Context, entry models.ScanLogEntry) error

	// ListByBatch returns every entry for the scanned batch ID in chronological order.
	ListByBatch(ctx context.Context, batchID string) ([]models.ScanLogEntry, error)

	// FindByBatch returns a newest-first page of entries and the total count.
	FindByBatch(ctx context.Context, batchID string, opts QueryOpts) ([]models.ScanLogEntry, int, error)
}

// ScoringSnapshotReader loads a batch and its full scan history from one
// consistent view, so a trust score never pairs a status with a scan history
// from a different moment.
type ScoringSnapshotReader interface {
	// LoadForScoring returns batchdomain.ErrBatchNotFound for an unknown ID.
	LoadForScoring(ctx context.Context, id models.BatchID) (*models.Batch, []models.ScanLogEntry, error)
}
