package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/medtrace/services/batch/domain/models"
)

const (
	// TopicScanRecorded is published after a scan log entry is durably written.
	TopicScanRecorded = "scan.recorded"

	// TopicScanRetry carries scan log entries whose first write failed.
	TopicScanRetry = "scan.retry"
)

// ScanPayload is the wire form of a scan log entry.
type ScanPayload struct {
	ID         uuid.UUID `json:"id"`
	BatchID    string    `json:"batch_id"`
	Outcome    string    `json:"outcome"`
	DeviceID   string    `json:"device_id,omitempty"`
	Location   string    `json:"location,omitempty"`
	Principal  string    `json:"principal,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	Anomaly    bool      `json:"anomaly"`
	TrustScore int       `json:"trust_score"`
}

// ScanRecordedEvent is published in the same transaction as the scan insert.
type ScanRecordedEvent struct {
	EventID    uuid.UUID   `json:"event_id"`
	Version    int         `json:"version"`
	Scan       ScanPayload `json:"scan"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// ScanRetryEvent asks the worker to write a scan log entry again.
type ScanRetryEvent struct {
	EventID    uuid.UUID   `json:"event_id"`
	Version    int         `json:"version"`
	Scan       ScanPayload `json:"scan"`
	Cause      string      `json:"cause"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// NewScanPayload converts a scan log entry to its wire form.
func NewScanPayload(s models.ScanLogEntry) ScanPayload {
	return ScanPayload{
		ID:         s.ID,
		BatchID:    s.BatchID,
		Outcome:    string(s.Outcome),
		DeviceID:   s.DeviceID,
		Location:   s.Location,
		Principal:  s.Principal.String(),
		Timestamp:  s.Timestamp,
		Anomaly:    s.Anomaly,
		TrustScore: s.TrustScore,
	}
}

// Entry converts the payload back into a scan log entry.
func (p ScanPayload) Entry() models.ScanLogEntry {
	return models.ScanLogEntry{
		ID:         p.ID,
		BatchID:    p.BatchID,
		Outcome:    models.Outcome(p.Outcome),
		DeviceID:   p.DeviceID,
		Location:   p.Location,
		Principal:  models.Party(p.Principal),
		Timestamp:  p.Timestamp,
		Anomaly:    p.Anomaly,
		TrustScore: p.TrustScore,
	}
}
