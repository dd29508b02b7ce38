package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ghuser/medtrace/pkg/database"
	"github.com/ghuser/medtrace/pkg/events"
	domainevents "github.com/ghuser/medtrace/services/batch/domain/events"
	"github.com/ghuser/medtrace/services/batch/domain/models"
	"github.com/ghuser/medtrace/services/batch/domain/repositories"
	"github.com/ghuser/medtrace/services/batch/infrastructure/persistence/postgres/db"
)

// ScanLogRepository implements repositories.ScanLogRepository against PostgreSQL.
type ScanLogRepository struct {
	db  *database.Database
	bus *events.EventBus
}

var _ repositories.ScanLogRepository = (*ScanLogRepository)(nil)

// NewScanLogRepository returns a ScanLogRepository. A nil bus disables event publishing.
func NewScanLogRepository(database *database.Database, bus *events.EventBus) *ScanLogRepository {
	return &ScanLogRepository{db: database, bus: bus}
}

// Append inserts the entry and publishes ScanRecordedEvent in the same transaction.
// Re-appending an existing ID inserts nothing and publishes nothing.
func (r *ScanLogRepository) Append(ctx context.Context, entry models.ScanLogEntry) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		n, err := db.New(tx).InsertScanLog(ctx, db.InsertScanLogParams{
			ID:         entry.ID,
			BatchID:    entry.BatchID,
			Outcome:    string(entry.Outcome),
			DeviceID:   entry.DeviceID,
			Location:   entry.Location,
			Principal:  entry.Principal.String(),
			ScannedAt:  entry.Timestamp,
			Anomaly:    entry.Anomaly,
			TrustScore: int32(entry.TrustScore),
		})
		if err != nil {
			return fmt.Errorf("insert scan log: %w", err)
		}
		if n == 0 || r.bus == nil {
			return nil
		}

		evt := domainevents.ScanRecordedEvent{
			EventID:    entry.ID,
			Version:    1,
			Scan:       domainevents.NewScanPayload(entry),
			OccurredAt: entry.Timestamp,
		}
		msg, err := events.NewJSONMessage(evt.EventID.String(), evt.Version, evt)
		if err != nil {
			return err
		}
		if err := r.bus.PublishTx(ctx, tx, domainevents.TopicScanRecorded, msg); err != nil {
			return fmt.Errorf("publish scan recorded: %w", err)
		}
		return nil
	})
}

// ListByBatch returns every entry for batchID, oldest first.
func (r *ScanLogRepository) ListByBatch(ctx context.Context, batchID string) ([]models.ScanLogEntry, error) {
	rows, err := db.New(r.db.DB()).ListScanLogsByBatch(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("query scan logs: %w", err)
	}
	out := make([]models.ScanLogEntry, len(rows))
	for i, row := range rows {
		out[i] = rowToScan(row)
	}
	return out, nil
}

// FindByBatch returns a newest-first page of entries and the total count.
func (r *ScanLogRepository) FindByBatch(ctx context.Context, batchID string, opts repositories.QueryOpts) ([]models.ScanLogEntry, int, error) {
	limit, offset := pageParams(opts)
	q := db.New(r.db.DB())
	rows, err := q.FindScanLogsByBatch(ctx, db.FindScanLogsByBatchParams{
		BatchID: batchID,
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("query scan logs: %w", err)
	}
	total, err := q.CountScanLogsByBatch(ctx, batchID)
	if err != nil {
		return nil, 0, fmt.Errorf("count scan logs: %w", err)
	}
	out := make([]models.ScanLogEntry, len(rows))
	for i, row := range rows {
		out[i] = rowToScan(row)
	}
	return out, int(total), nil
}

func rowToScan(row db.BatchScanLog) models.ScanLogEntry {
	return models.ScanLogEntry{
		ID:         row.ID,
		BatchID:    row.BatchID,
		Outcome:    models.Outcome(row.Outcome),
		DeviceID:   row.DeviceID,
		Location:   row.Location,
		Principal:  models.Party(row.Principal),
		Timestamp:  row.ScannedAt.UTC(),
		Anomaly:    row.Anomaly,
		TrustScore: int(row.TrustScore),
	}
}
