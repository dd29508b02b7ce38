package repositories

import (
	"context"

	"github.com/ghuser/medtrace/services/batch/domain/models"
)

// QueryOpts contains pagination parameters for list queries.
type QueryOpts struct {
	Limit  int // Maximum number of records to return
	Offset int // Number of records to skip
}

// MutateFunc applies a ledger operation to a locked batch. Returning an error
// aborts the update and nothing is persisted.
type MutateFunc func(b *models.Batch) error

// BatchRepository is the persistence interface for the Batch aggregate.
// The domain layer owns this interface; infrastructure implements it.
type BatchRepository interface {
	// Create persists a newly registered batch. Returns ErrBatchAlreadyExists on a duplicate ID.
	Create(ctx context.Context, b *models.Batch) error

	// GetByID returns a consistent snapshot of the batch and its full event log.
	// Returns ErrBatchNotFound if no such batch exists.
	GetByID(ctx context.Context, id models.BatchID) (*models.Batch, error)

	// Update loads the batch under an exclusive per-batch lock, applies fn and
	// persists appended events and the new status atomically.
	Update(ctx context.Context, id models.BatchID, fn MutateFunc) (*models.Batch, error)

	// SaveTrust refreshes the cached trust score and integrity digest.
	// It does not touch UpdatedAt.
	SaveTrust(ctx context.Context, id models.BatchID, score int, digest string) error

	// FindByParty returns batches whose event log names the party as a
	// recipient or source, most recently updated first.
	FindByParty(ctx context.Context, party models.Party, opts QueryOpts) ([]*models.Batch, error)
}
