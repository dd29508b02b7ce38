package models

import "time"

// EventKind tags a ledger event.
type EventKind string

const (
	EventRegistered  EventKind = "REGISTERED"
	EventTransferred EventKind = "TRANSFERRED"
	EventPurchased   EventKind = "PURCHASED"
)

// LedgerEvent is one immutable entry in a batch's history. The ordered
// sequence of events is the only source of truth for balances.
type LedgerEvent struct {
	// Sequence is the 1-based position of the event within its batch.
	Sequence      int
	Kind          EventKind
	Recipient     Party
	RecipientRole Role
	// SourceParty is empty for REGISTERED events.
	SourceParty Party
	// Units is 0 for REGISTERED; the registrant is implicitly credited TotalUnits.
	Units     int
	Timestamp time.Time
}
