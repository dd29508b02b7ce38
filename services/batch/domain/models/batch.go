package models

import (
	"fmt"
	"strings"
	"time"
)

// Status is the lifecycle state of a batch.
type Status string

const (
	StatusActive  Status = "ACTIVE"
	StatusSoldOut Status = "SOLD_OUT"
	StatusBlocked Status = "BLOCKED"
)

const (
	MinTotalUnits = 1
	MaxTotalUnits = 1_000_000

	maxDescriptiveLength = 255

	// InitialTrustScore is cached on a batch until its first successful verification.
	InitialTrustScore = 100
)

// Batch is the core aggregate for this bounded context.
type Batch struct {
	ID              BatchID
	Name            string
	ProducerName    string
	ManufactureDate time.Time
	ExpiryDate      time.Time
	TotalUnits      int
	Status          Status
	Registrant      Party
	Events          []LedgerEvent

	// Cached projections refreshed by verification; never authoritative.
	TrustScore      int
	IntegrityDigest string

	CreatedAt time.Time
	// UpdatedAt is the last ledger mutation (register, transfer, sale, block).
	UpdatedAt time.Time
}

// NewBatch constructs an ACTIVE batch whose history is a single REGISTERED
// event crediting the registrant with every unit.
func NewBatch(id BatchID, name, producer string, mfg, exp time.Time, totalUnits int, registrant Party, role Role, now time.Time) (*Batch, error) {
	name = strings.TrimSpace(name)
	producer = strings.TrimSpace(producer)
	if name == "" || len(name) > maxDescriptiveLength {
		return nil, fmt.Errorf("batch name must be 1..%d characters", maxDescriptiveLength)
	}
	if producer == "" || len(producer) > maxDescriptiveLength {
		return nil, fmt.Errorf("producer name must be 1..%d characters", maxDescriptiveLength)
	}
	if mfg.IsZero() || exp.IsZero() {
		return nil, fmt.Errorf("manufacture and expiry dates are required")
	}
	mfg, exp = truncateDay(mfg), truncateDay(exp)
	if exp.Before(mfg) {
		return nil, fmt.Errorf("expiry date %s precedes manufacture date %s", exp.Format(time.DateOnly), mfg.Format(time.DateOnly))
	}
	if totalUnits < MinTotalUnits || totalUnits > MaxTotalUnits {
		return nil, fmt.Errorf("total units must be between %d and %d", MinTotalUnits, MaxTotalUnits)
	}

	now = now.UTC()
	b := &Batch{
		ID:              id,
		Name:            name,
		ProducerName:    producer,
		ManufactureDate: mfg,
		ExpiryDate:      exp,
		TotalUnits:      totalUnits,
		Status:          StatusActive,
		Registrant:      registrant,
		TrustScore:      InitialTrustScore,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	b.Append(LedgerEvent{
		Kind:          EventRegistered,
		Recipient:     registrant,
		RecipientRole: role,
		Timestamp:     now,
	})
	return b, nil
}

// Append adds e to the history, assigning its sequence number and clamping its
// timestamp so the log stays monotonic non-decreasing.
func (b *Batch) Append(e LedgerEvent) LedgerEvent {
	e.Timestamp = e.Timestamp.UTC()
	if n := len(b.Events); n > 0 && e.Timestamp.Before(b.Events[n-1].Timestamp) {
		e.Timestamp = b.Events[n-1].Timestamp
	}
	e.Sequence = len(b.Events) + 1
	b.Events = append(b.Events, e)
	b.touch(e.Timestamp)
	return e
}

// Block freezes the batch. Blocking an already blocked batch is a no-op.
func (b *Batch) Block(now time.Time) {
	if b.Status == StatusBlocked {
		return
	}
	b.Status = StatusBlocked
	b.touch(now.UTC())
}

// MarkSoldOut moves an active batch to SOLD_OUT.
func (b *Batch) MarkSoldOut() {
	if b.Status == StatusActive {
		b.Status = StatusSoldOut
	}
}

// IsActive reports whether ledger operations are allowed.
func (b *Batch) IsActive() bool {
	return b.Status == StatusActive
}

// LatestOwner is the recipient of the most recent event, for display only.
func (b *Batch) LatestOwner() Party {
	if len(b.Events) == 0 {
		return b.Registrant
	}
	return b.Events[len(b.Events)-1].Recipient
}

// Clone returns a deep copy so callers can mutate without aliasing the event slice.
func (b *Batch) Clone() *Batch {
	if b == nil {
		return nil
	}
	c := *b
	c.Events = append([]LedgerEvent(nil), b.Events...)
	return &c
}

func (b *Batch) touch(t time.Time) {
	if t.After(b.UpdatedAt) {
		b.UpdatedAt = t
	}
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
