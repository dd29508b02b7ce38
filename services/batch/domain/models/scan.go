package models

import (
	"time"

	"github.com/google/uuid"
)

// Outcome is the result of a single verification attempt.
type Outcome string

const (
	OutcomeGenuine       Outcome = "GENUINE"
	OutcomeSuspicious    Outcome = "SUSPICIOUS"
	OutcomeFakeSignature Outcome = "FAKE_SIGNATURE"
	OutcomeFakeUnknown   Outcome = "FAKE_UNKNOWN"
	OutcomeBlocked       Outcome = "BLOCKED"
)

// IsNegative reports whether the outcome means the code could not be trusted at all.
func (o Outcome) IsNegative() bool {
	switch o {
	case OutcomeFakeSignature, OutcomeFakeUnknown, OutcomeBlocked:
		return true
	default:
		return false
	}
}

// ScanContext describes where and by whom a code was scanned. All fields are optional.
type ScanContext struct {
	DeviceID  string
	Location  string
	Principal Party
}

// ScanLogEntry is one append-only record of a verification attempt.
type ScanLogEntry struct {
	ID uuid.UUID
	// BatchID is the raw scanned value; it may not name an existing batch.
	BatchID    string
	Outcome    Outcome
	DeviceID   string
	Location   string
	Principal  Party
	Timestamp  time.Time
	Anomaly    bool
	TrustScore int
}

// NewScanLogEntry stamps a new entry with a fresh ID.
func NewScanLogEntry(batchID string, outcome Outcome, sc ScanContext, anomaly bool, score int, at time.Time) ScanLogEntry {
	return ScanLogEntry{
		ID:         uuid.New(),
		BatchID:    batchID,
		Outcome:    outcome,
		DeviceID:   sc.DeviceID,
		Location:   sc.Location,
		Principal:  sc.Principal,
		Timestamp:  at.UTC(),
		Anomaly:    anomaly,
		TrustScore: score,
	}
}
