package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/medtrace/pkg/auth"
	"github.com/ghuser/medtrace/pkg/httpx"
	"github.com/ghuser/medtrace/services/batch/domain/models"
	"github.com/ghuser/medtrace/services/batch/domain/repositories"
	domainsvcs "github.com/ghuser/medtrace/services/batch/domain/services"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 200
)

// ErrorResponse is returned on all error responses.
type ErrorResponse = httpx.ErrorResponse

// LedgerEventResponse is one entry of a batch's ownership history.
type LedgerEventResponse struct {
	Sequence      int       `json:"seq"                    example:"2"`
	Kind          string    `json:"kind"                   example:"TRANSFERRED"`
	Recipient     string    `json:"recipient"              example:"dist@example.com"`
	RecipientRole string    `json:"recipient_role"         example:"DISTRIBUTOR"`
	SourceParty   string    `json:"source_party,omitempty" example:"mfg@example.com"`
	Units         int       `json:"units"                  example:"40"`
	Timestamp     time.Time `json:"timestamp"              example:"2026-01-15T10:30:00Z"`
} // @name LedgerEventResponse

// BatchResponse is the detail view of a batch.
type BatchResponse struct {
	ID              string                `json:"id"               example:"PCM-2026-001"`
	Name            string                `json:"name"             example:"Paracetamol 500mg"`
	ProducerName    string                `json:"producer_name"    example:"Acme Pharma"`
	ManufactureDate string                `json:"manufacture_date" example:"2026-01-01"`
	ExpiryDate      string                `json:"expiry_date"      example:"2028-01-01"`
	TotalUnits      int                   `json:"total_units"      example:"100"`
	Status          string                `json:"status"           example:"ACTIVE"`
	Registrant      string                `json:"registrant"       example:"mfg@example.com"`
	LatestOwner     string                `json:"latest_owner"     example:"dist@example.com"`
	UnitsSold       int                   `json:"units_sold"       example:"10"`
	TrustScore      int                   `json:"trust_score"      example:"100"`
	IntegrityDigest string                `json:"integrity_digest" example:"9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08"`
	CreatedAt       time.Time             `json:"created_at"       example:"2026-01-15T10:30:00Z"`
	UpdatedAt       time.Time             `json:"updated_at"       example:"2026-01-15T10:30:00Z"`
	Events          []LedgerEventResponse `json:"events"`
} // @name BatchResponse

// ScanResponse is one logged verification attempt.
type ScanResponse struct {
	ID         uuid.UUID `json:"id"                  example:"123e4567-e89b-12d3-a456-426614174000"`
	BatchID    string    `json:"batch_id"            example:"PCM-2026-001"`
	Outcome    string    `json:"outcome"             example:"GENUINE"`
	DeviceID   string    `json:"device_id,omitempty" example:"scanner-7"`
	Location   string    `json:"location,omitempty"  example:"Pune"`
	Principal  string    `json:"principal,omitempty" example:"pharm@example.com"`
	Timestamp  time.Time `json:"timestamp"           example:"2026-01-15T10:30:00Z"`
	Anomaly    bool      `json:"anomaly"             example:"false"`
	TrustScore int       `json:"trust_score"         example:"100"`
} // @name ScanResponse

func toBatchResponse(b *models.Batch) BatchResponse {
	evts := make([]LedgerEventResponse, len(b.Events))
	for i, e := range b.Events {
		evts[i] = LedgerEventResponse{
			Sequence:      e.Sequence,
			Kind:          string(e.Kind),
			Recipient:     e.Recipient.String(),
			RecipientRole: string(e.RecipientRole),
			SourceParty:   e.SourceParty.String(),
			Units:         e.Units,
			Timestamp:     e.Timestamp,
		}
	}
	return BatchResponse{
		ID:              b.ID.String(),
		Name:            b.Name,
		ProducerName:    b.ProducerName,
		ManufactureDate: b.ManufactureDate.Format(time.DateOnly),
		ExpiryDate:      b.ExpiryDate.Format(time.DateOnly),
		TotalUnits:      b.TotalUnits,
		Status:          string(b.Status),
		Registrant:      b.Registrant.String(),
		LatestOwner:     b.LatestOwner().String(),
		UnitsSold:       domainsvcs.UnitsSold(b),
		TrustScore:      b.TrustScore,
		IntegrityDigest: b.IntegrityDigest,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
		Events:          evts,
	}
}

func toScanResponse(s models.ScanLogEntry) ScanResponse {
	return ScanResponse{
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

// principalFrom returns the caller's domain principal. A session whose email
// or role does not parse is treated as unauthenticated.
func principalFrom(r *http.Request) (models.Principal, error) {
	id, err := auth.IdentityFromCtx(r.Context())
	if err != nil {
		return models.Principal{}, err
	}
	p, err := models.NewPrincipal(id.Email, id.Role)
	if err != nil {
		return models.Principal{}, fmt.Errorf("%w: %w", auth.ErrIdentityNotFound, err)
	}
	return p, nil
}

// queryOpts reads limit and offset query parameters. It writes a 400 and
// returns false when either is malformed. Offsets are capped at the range
// of a Postgres integer.
func queryOpts(w http.ResponseWriter, r *http.Request) (repositories.QueryOpts, bool) {
	opts := repositories.QueryOpts{Limit: defaultPageLimit}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			httpx.JSONError(w, http.StatusBadRequest, "limit must be a positive integer")
			return opts, false
		}
		opts.Limit = min(n, maxPageLimit)
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil || n < 0 {
			httpx.JSONError(w, http.StatusBadRequest, "offset must be an integer between 0 and 2147483647")
			return opts, false
		}
		opts.Offset = int(n)
	}
	return opts, true
}
