// Package memory provides in-process implementations of the batch repositories.
// They honour the same contracts as the Postgres implementations and back unit
// tests and local runs without a database.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	batchdomain "github.com/ghuser/medtrace/services/batch/domain"
	"github.com/ghuser/medtrace/services/batch/domain/models"
	"github.com/ghuser/medtrace/services/batch/domain/repositories"
)

// BatchRepository implements repositories.BatchRepository in memory.
// Writes to one batch are serialized by a per-batch mutex.
type BatchRepository struct {
	mu      sync.RWMutex
	batches map[models.BatchID]*models.Batch
	locks   map[models.BatchID]*sync.Mutex
}

var _ repositories.BatchRepository = (*BatchRepository)(nil)

// NewBatchRepository returns an empty repository.
func NewBatchRepository() *BatchRepository {
	return &BatchRepository{
		batches: make(map[models.BatchID]*models.Batch),
		locks:   make(map[models.BatchID]*sync.Mutex),
	}
}

func (r *BatchRepository) Create(ctx context.Context, b *models.Batch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.batches[b.ID]; ok {
		return batchdomain.ErrBatchAlreadyExists
	}
	r.batches[b.ID] = b.Clone()
	r.locks[b.ID] = &sync.Mutex{}
	return nil
}

func (r *BatchRepository) GetByID(ctx context.Context, id models.BatchID) (*models.Batch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.batches[id]
	if !ok {
		return nil, batchdomain.ErrBatchNotFound
	}
	return b.Clone(), nil
}

func (r *BatchRepository) Update(ctx context.Context, id models.BatchID, fn repositories.MutateFunc) (*models.Batch, error) {
	r.mu.RLock()
	lock, ok := r.locks[id]
	r.mu.RUnlock()
	if !ok {
		return nil, batchdomain.ErrBatchNotFound
	}

	lock.Lock()
	defer lock.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	working := r.batches[id].Clone()
	r.mu.RUnlock()

	if err := fn(working); err != nil {
		return nil, err
	}
	if working.ID != id {
		return nil, fmt.Errorf("batch id changed during update")
	}

	r.mu.Lock()
	r.batches[id] = working.Clone()
	r.mu.Unlock()
	return working, nil
}

func (r *BatchRepository) SaveTrust(ctx context.Context, id models.BatchID, score int, digest string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.batches[id]
	if !ok {
		return batchdomain.ErrBatchNotFound
	}
	b.TrustScore = score
	b.IntegrityDigest = digest
	return nil
}

func (r *BatchRepository) FindByParty(ctx context.Context, party models.Party, opts repositories.QueryOpts) ([]*models.Batch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	var out []*models.Batch
	for _, b := range r.batches {
		if mentions(b, party) {
			out = append(out, b.Clone())
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return paginate(out, opts), nil
}

func mentions(b *models.Batch, p models.Party) bool {
	for _, e := range b.Events {
		if e.Recipient == p || e.SourceParty == p {
			return true
		}
	}
	return false
}

func paginate[T any](items []T, opts repositories.QueryOpts) []T {
	if opts.Offset > 0 {
		if opts.Offset >= len(items) {
			return nil
		}
		items = items[opts.Offset:]
	}
	if opts.Limit > 0 && opts.Limit < len(items) {
		items = items[:opts.Limit]
	}
	return items
}
