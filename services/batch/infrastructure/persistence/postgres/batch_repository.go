package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ghuser/medtrace/pkg/database"
	"github.com/ghuser/medtrace/pkg/events"
	batchdomain "github.com/ghuser/medtrace/services/batch/domain"
	domainevents "github.com/ghuser/medtrace/services/batch/domain/events"
	"github.com/ghuser/medtrace/services/batch/domain/models"
	"github.com/ghuser/medtrace/services/batch/domain/repositories"
	"github.com/ghuser/medtrace/services/batch/infrastructure/persistence/postgres/db"
)

const (
	pgUniqueViolation = "23505"
	defaultPageSize   = 100
)

// pageParams converts opts to query parameters, clamped to the int4 range
// the LIMIT and OFFSET placeholders are typed as.
func pageParams(opts repositories.QueryOpts) (limit, offset int32) {
	l := opts.Limit
	if l <= 0 {
		l = defaultPageSize
	}
	return int32(min(l, math.MaxInt32)), int32(min(max(opts.Offset, 0), math.MaxInt32))
}

// BatchRepository implements repositories.BatchRepository against PostgreSQL.
//
// Ledger writes take a row lock on the batch (SELECT ... FOR UPDATE) and append
// events under the (batch_id, seq) primary key, so two writers can never commit
// against the same pre-state. Domain events are published through the outbox
// in the same transaction.
type BatchRepository struct {
	db  *database.Database
	bus *events.EventBus
}

var _ repositories.BatchRepository = (*BatchRepository)(nil)

// NewBatchRepository returns a BatchRepository backed by the given pool and event bus.
// A nil bus disables event publishing.
func NewBatchRepository(database *database.Database, bus *events.EventBus) *BatchRepository {
	return &BatchRepository{db: database, bus: bus}
}

// Create inserts the batch with its REGISTERED event and publishes BatchRegisteredEvent.
func (r *BatchRepository) Create(ctx context.Context, b *models.Batch) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		q := db.New(tx)
		if err := q.InsertBatch(ctx, db.InsertBatchParams{
			BatchID:         b.ID.String(),
			Name:            b.Name,
			ProducerName:    b.ProducerName,
			ManufactureDate: b.ManufactureDate,
			ExpiryDate:      b.ExpiryDate,
			TotalUnits:      int32(b.TotalUnits),
			Status:          string(b.Status),
			Registrant:      b.Registrant.String(),
			TrustScore:      int32(b.TrustScore),
			IntegrityDigest: b.IntegrityDigest,
			CreatedAt:       b.CreatedAt,
			UpdatedAt:       b.UpdatedAt,
		}); err != nil {
			if isUniqueViolation(err) {
				return batchdomain.ErrBatchAlreadyExists
			}
			return fmt.Errorf("insert batch: %w", err)
		}

		if err := insertEvents(ctx, q, b.ID, b.Events); err != nil {
			return err
		}

		if r.bus != nil {
			evt := domainevents.NewBatchRegistered(b)
			if err := r.publish(ctx, tx, domainevents.TopicBatchRegistered, evt.EventID.String(), evt.Version, evt); err != nil {
				return fmt.Errorf("publish batch registered: %w", err)
			}
		}
		return nil
	})
}

// GetByID reads the batch row and its events from one snapshot.
func (r *BatchRepository) GetByID(ctx context.Context, id models.BatchID) (*models.Batch, error) {
	var b *models.Batch
	err := r.db.WithSnapshot(ctx, func(tx *sql.Tx) error {
		q := db.New(tx)
		row, err := q.GetBatch(ctx, id.String())
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return batchdomain.ErrBatchNotFound
			}
			return fmt.Errorf("query batch: %w", err)
		}
		b, err = loadEvents(ctx, q, row)
		return err
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Update locks the batch row, applies fn and persists the appended events and
// status in the same transaction.
func (r *BatchRepository) Update(ctx context.Context, id models.BatchID, fn repositories.MutateFunc) (*models.Batch, error) {
	var updated *models.Batch
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		q := db.New(tx)
		row, err := q.GetBatchForUpdate(ctx, id.String())
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return batchdomain.ErrBatchNotFound
			}
			return fmt.Errorf("lock batch: %w", err)
		}
		b, err := loadEvents(ctx, q, row)
		if err != nil {
			return err
		}

		known := len(b.Events)
		prevStatus, prevUpdated := b.Status, b.UpdatedAt

		if err := fn(b); err != nil {
			return err
		}
		if len(b.Events) < known {
			return fmt.Errorf("ledger events may only be appended")
		}

		appended := b.Events[known:]
		if err := insertEvents(ctx, q, b.ID, appended); err != nil {
			return err
		}
		if b.Status != prevStatus || !b.UpdatedAt.Equal(prevUpdated) {
			if err := q.UpdateBatchStatus(ctx, db.UpdateBatchStatusParams{
				BatchID:   b.ID.String(),
				Status:    string(b.Status),
				UpdatedAt: b.UpdatedAt,
			}); err != nil {
				return fmt.Errorf("update batch status: %w", err)
			}
		}

		if r.bus != nil {
			for _, e := range appended {
				evt := domainevents.NewLedgerChange(b, e)
				if err := r.publish(ctx, tx, domainevents.TopicBatchChanged, evt.EventID.String(), evt.Version, evt); err != nil {
					return fmt.Errorf("publish ledger change: %w", err)
				}
			}
			if b.Status != prevStatus {
				evt := domainevents.NewStatusChange(b)
				if err := r.publish(ctx, tx, domainevents.TopicBatchChanged, evt.EventID.String(), evt.Version, evt); err != nil {
					return fmt.Errorf("publish status change: %w", err)
				}
			}
		}

		updated = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// SaveTrust refreshes the cached trust columns without touching updated_at.
func (r *BatchRepository) SaveTrust(ctx context.Context, id models.BatchID, score int, digest string) error {
	q := db.New(r.db.DB())
	n, err := q.UpdateBatchTrust(ctx, db.UpdateBatchTrustParams{
		BatchID:         id.String(),
		TrustScore:      int32(score),
		IntegrityDigest: digest,
	})
	if err != nil {
		return fmt.Errorf("update batch trust: %w", err)
	}
	if n == 0 {
		return batchdomain.ErrBatchNotFound
	}
	return nil
}

// FindByParty returns a page of batches whose history mentions party.
func (r *BatchRepository) FindByParty(ctx context.Context, party models.Party, opts repositories.QueryOpts) ([]*models.Batch, error) {
	limit, offset := pageParams(opts)

	var out []*models.Batch
	err := r.db.WithSnapshot(ctx, func(tx *sql.Tx) error {
		q := db.New(tx)
		rows, err := q.FindBatchesByParty(ctx, db.FindBatchesByPartyParams{
			Recipient: party.String(),
			Limit:     limit,
			Offset:    offset,
		})
		if err != nil {
			return fmt.Errorf("query batches by party: %w", err)
		}
		out = make([]*models.Batch, 0, len(rows))
		for _, row := range rows {
			b, err := loadEvents(ctx, q, row)
			if err != nil {
				return err
			}
			out = append(out, b)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *BatchRepository) publish(ctx context.Context, tx *sql.Tx, topic, eventID string, version int, payload any) error {
	msg, err := events.NewJSONMessage(eventID, version, payload)
	if err != nil {
		return err
	}
	return r.bus.PublishTx(ctx, tx, topic, msg)
}

func insertEvents(ctx context.Context, q *db.Queries, id models.BatchID, evts []models.LedgerEvent) error {
	for _, e := range evts {
		if err := q.InsertBatchEvent(ctx, db.InsertBatchEventParams{
			BatchID:       id.String(),
			Seq:           int32(e.Sequence),
			Kind:          string(e.Kind),
			Recipient:     e.Recipient.String(),
			RecipientRole: string(e.RecipientRole),
			SourceParty:   e.SourceParty.String(),
			Units:         int32(e.Units),
			OccurredAt:    e.Timestamp,
		}); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("append event %d to batch %s: concurrent append", e.Sequence, id)
			}
			return fmt.Errorf("insert batch event: %w", err)
		}
	}
	return nil
}

func loadEvents(ctx context.Context, q *db.Queries, row db.BatchBatch) (*models.Batch, error) {
	rows, err := q.ListBatchEvents(ctx, row.BatchID)
	if err != nil {
		return nil, fmt.Errorf("query batch events: %w", err)
	}
	b := rowToBatch(row)
	b.Events = make([]models.LedgerEvent, len(rows))
	for i, e := range rows {
		b.Events[i] = rowToEvent(e)
	}
	return b, nil
}

func rowToBatch(row db.BatchBatch) *models.Batch {
	return &models.Batch{
		ID:              models.BatchID(row.BatchID),
		Name:            row.Name,
		ProducerName:    row.ProducerName,
		ManufactureDate: row.ManufactureDate.UTC(),
		ExpiryDate:      row.ExpiryDate.UTC(),
		TotalUnits:      int(row.TotalUnits),
		Status:          models.Status(row.Status),
		Registrant:      models.Party(row.Registrant),
		TrustScore:      int(row.TrustScore),
		IntegrityDigest: row.IntegrityDigest,
		CreatedAt:       row.CreatedAt.UTC(),
		UpdatedAt:       row.UpdatedAt.UTC(),
	}
}

func rowToEvent(row db.BatchBatchEvent) models.LedgerEvent {
	return models.LedgerEvent{
		Sequence:      int(row.Seq),
		Kind:          models.EventKind(row.Kind),
		Recipient:     models.Party(row.Recipient),
		RecipientRole: models.Role(row.RecipientRole),
		SourceParty:   models.Party(row.SourceParty),
		Units:         int(row.Units),
		Timestamp:     row.OccurredAt.UTC(),
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
