package services

import (
	"time"

	"github.com/ghuser/medtrace/services/batch/domain/models"
)

// AnomalyThreshold is the score below which a verification is flagged.
const AnomalyThreshold = 70

const (
	maxDistinctDevices   = 3
	maxScans             = 10
	maxDistinctLocations = 2

	penaltyDevices    = 20
	penaltyFrequency  = 15
	penaltyLocations  = 15
	penaltyAfterClose = 30
	penaltyExpired    = 10
)

const (
	ReasonMultipleDevices   = "multiple devices scanned"
	ReasonHighFrequency     = "high scan frequency"
	ReasonMultipleLocations = "scans from multiple locations"
	ReasonScanAfterClose    = "scans after sold/consumed/expired"
	ReasonExpired           = "medicine expired"
)

// TrustAssessment is the outcome of scoring a batch's scan history.
type TrustAssessment struct {
	Score   int
	Reasons []string
	Anomaly bool
}

// TrustInput is a consistent snapshot of everything the score depends on.
type TrustInput struct {
	Scans     []models.ScanLogEntry
	Status    models.Status
	UpdatedAt time.Time
	Expiry    time.Time
	Now       time.Time
}

// AssessTrust applies the fixed deduction table to a batch's scan history.
// Rules are independent; empty device and location values are not counted.
func AssessTrust(in TrustInput) TrustAssessment {
	score := 100
	reasons := []string{}

	devices := make(map[string]struct{})
	locations := make(map[string]struct{})
	scannedAfterClose := false
	for _, s := range in.Scans {
		if s.DeviceID != "" {
			devices[s.DeviceID] = struct{}{}
		}
		if s.Location != "" {
			locations[s.Location] = struct{}{}
		}
		if s.Timestamp.After(in.UpdatedAt) {
			scannedAfterClose = true
		}
	}

	if len(devices) > maxDistinctDevices {
		score -= penaltyDevices
		reasons = append(reasons, ReasonMultipleDevices)
	}
	if len(in.Scans) > maxScans {
		score -= penaltyFrequency
		reasons = append(reasons, ReasonHighFrequency)
	}
	if len(locations) > maxDistinctLocations {
		score -= penaltyLocations
		reasons = append(reasons, ReasonMultipleLocations)
	}
	if in.Status != models.StatusActive && scannedAfterClose {
		score -= penaltyAfterClose
		reasons = append(reasons, ReasonScanAfterClose)
	}
	if in.Expiry.Before(in.Now) {
		score -= penaltyExpired
		reasons = append(reasons, ReasonExpired)
	}

	score = max(0, min(100, score))
	return TrustAssessment{
		Score:   score,
		Reasons: reasons,
		Anomaly: score < AnomalyThreshold,
	}
}
