package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/medtrace/services/batch/domain/models"
)

const (
	// TopicBatchRegistered is published when a new batch is persisted.
	TopicBatchRegistered = "batch.registered"

	// TopicBatchChanged is published for every committed ledger mutation:
	// an appended transfer or sale, or a status change.
	TopicBatchChanged = "batch.changed"
)

// Change kinds carried by BatchChangedEvent.
const (
	ChangeTransferred = "TRANSFERRED"
	ChangePurchased   = "PURCHASED"
	ChangeBlocked     = "BLOCKED"
	ChangeSoldOut     = "SOLD_OUT"
)

// BatchRegisteredEvent is published in the same transaction that inserts the batch.
type BatchRegisteredEvent struct {
	EventID    uuid.UUID `json:"event_id"`
	Version    int       `json:"version"`
	BatchID    string    `json:"batch_id"`
	Name       string    `json:"name"`
	Registrant string    `json:"registrant"`
	TotalUnits int       `json:"total_units"`
	ExpiryDate string    `json:"expiry_date"`
	OccurredAt time.Time `json:"occurred_at"`
}

// BatchChangedEvent is published in the same transaction as the ledger write.
// Consumers use it to invalidate read models; it is not a replication log.
type BatchChangedEvent struct {
	EventID     uuid.UUID `json:"event_id"`
	Version     int       `json:"version"`
	BatchID     string    `json:"batch_id"`
	Change      string    `json:"change"`
	Sequence    int       `json:"sequence,omitempty"`
	SourceParty string    `json:"source_party,omitempty"`
	Recipient   string    `json:"recipient,omitempty"`
	Units       int       `json:"units,omitempty"`
	Status      string    `json:"status"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// NewBatchRegistered builds the registration event for b.
func NewBatchRegistered(b *models.Batch) BatchRegisteredEvent {
	return BatchRegisteredEvent{
		EventID:    uuid.New(),
		Version:    1,
		BatchID:    b.ID.String(),
		Name:       b.Name,
		Registrant: b.Registrant.String(),
		TotalUnits: b.TotalUnits,
		ExpiryDate: b.ExpiryDate.Format(time.DateOnly),
		OccurredAt: b.CreatedAt,
	}
}

// NewLedgerChange builds the change event for an appended ledger event.
func NewLedgerChange(b *models.Batch, e models.LedgerEvent) BatchChangedEvent {
	return BatchChangedEvent{
		EventID:     uuid.New(),
		Version:     1,
		BatchID:     b.ID.String(),
		Change:      string(e.Kind),
		Sequence:    e.Sequence,
		SourceParty: e.SourceParty.String(),
		Recipient:   e.Recipient.String(),
		Units:       e.Units,
		Status:      string(b.Status),
		OccurredAt:  e.Timestamp,
	}
}

// NewStatusChange builds the change event for a status transition.
func NewStatusChange(b *models.Batch) BatchChangedEvent {
	return BatchChangedEvent{
		EventID:    uuid.New(),
		Version:    1,
		BatchID:    b.ID.String(),
		Change:     string(b.Status),
		Status:     string(b.Status),
		OccurredAt: b.UpdatedAt,
	}
}
