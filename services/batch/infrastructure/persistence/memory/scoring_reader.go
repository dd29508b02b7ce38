package memory

import (
	"context"

	"github.com/ghuser/medtrace/services/batch/domain/models"
	"github.com/ghuser/medtrace/services/batch/domain/repositories"
)

// ScoringReader reads a batch and its scans while holding the scan log's read
// lock, so no scan lands between the two reads.
type ScoringReader struct {
	batches *BatchRepository
	scans   *ScanLogRepository
}

var _ repositories.ScoringSnapshotReader = (*ScoringReader)(nil)

func NewScoringReader(batches *BatchRepository, scans *ScanLogRepository) *ScoringReader {
	return &ScoringReader{batches: batches, scans: scans}
}

func (r *ScoringReader) LoadForScoring(ctx context.Context, id models.BatchID) (*models.Batch, []models.ScanLogEntry, error) {
	r.scans.mu.RLock()
	defer r.scans.mu.RUnlock()
	b, err := r.batches.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return b, r.scans.chronological(id.String()), nil
}
