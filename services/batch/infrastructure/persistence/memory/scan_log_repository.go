package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/ghuser/medtrace/services/batch/domain/models"
	"github.com/ghuser/medtrace/services/batch/domain/repositories"
)

// ScanLogRepository implements repositories.ScanLogRepository in memory.
type ScanLogRepository struct {
	mu      sync.RWMutex
	byBatch map[string][]models.ScanLogEntry
	seen    map[uuid.UUID]struct{}
}

var _ repositories.ScanLogRepository = (*ScanLogRepository)(nil)

// NewScanLogRepository returns an empty repository.
func NewScanLogRepository() *ScanLogRepository {
	return &ScanLogRepository{
		byBatch: make(map[string][]models.ScanLogEntry),
		seen:    make(map[uuid.UUID]struct{}),
	}
}

func (r *ScanLogRepository) Append(ctx context.Context, entry models.ScanLogEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.seen[entry.ID]; dup {
		return nil
	}
	r.seen[entry.ID] = struct{}{}
	r.byBatch[entry.BatchID] = append(r.byBatch[entry.BatchID], entry)
	return nil
}

func (r *ScanLogRepository) ListByBatch(ctx context.Context, batchID string) ([]models.ScanLogEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.chronological(batchID), nil
}

// chronological copies the batch's entries oldest first. Callers hold mu.
func (r *ScanLogRepository) chronological(batchID string) []models.ScanLogEntry {
	out := append([]models.ScanLogEntry(nil), r.byBatch[batchID]...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out
}

func (r *ScanLogRepository) FindByBatch(ctx context.Context, batchID string, opts repositories.QueryOpts) ([]models.ScanLogEntry, int, error) {
	all, err := r.ListByBatch(ctx, batchID)
	if err != nil {
		return nil, 0, err
	}
	for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
		all[i], all[j] = all[j], all[i]
	}
	return paginate(all, opts), len(all), nil
}

// Len returns the number of stored entries across all batches.
func (r *ScanLogRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.seen)
}
