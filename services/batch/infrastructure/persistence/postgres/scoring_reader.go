package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ghuser/medtrace/pkg/database"
	batchdomain "github.com/ghuser/medtrace/services/batch/domain"
	"github.com/ghuser/medtrace/services/batch/domain/models"
	"github.com/ghuser/medtrace/services/batch/domain/repositories"
	"github.com/ghuser/medtrace/services/batch/infrastructure/persistence/postgres/db"
)

// ScoringReader loads a batch with its events and scan history inside one
// repeatable-read transaction.
type ScoringReader struct {
	db *database.Database
}

var _ repositories.ScoringSnapshotReader = (*ScoringReader)(nil)

// NewScoringReader returns a ScoringReader.
func NewScoringReader(database *database.Database) *ScoringReader {
	return &ScoringReader{db: database}
}

// LoadForScoring reads the batch, its ledger events and its scans, oldest
// first, from the same snapshot.
func (r *ScoringReader) LoadForScoring(ctx context.Context, id models.BatchID) (*models.Batch, []models.ScanLogEntry, error) {
	var (
		b     *models.Batch
		scans []models.ScanLogEntry
	)
	err := r.db.WithSnapshot(ctx, func(tx *sql.Tx) error {
		q := db.New(tx)
		row, err := q.GetBatch(ctx, id.String())
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return batchdomain.ErrBatchNotFound
			}
			return fmt.Errorf("query batch: %w", err)
		}
		if b, err = loadEvents(ctx, q, row); err != nil {
			return err
		}

		rows, err := q.ListScanLogsByBatch(ctx, id.String())
		if err != nil {
			return fmt.Errorf("query scan logs: %w", err)
		}
		scans = make([]models.ScanLogEntry, len(rows))
		for i, sr := range rows {
			scans[i] = rowToScan(sr)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return b, scans, nil
}
