package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/medtrace/pkg/auth"
	"github.com/ghuser/medtrace/pkg/errhttp"
	"github.com/ghuser/medtrace/pkg/httpx"
	pkgvalidator "github.com/ghuser/medtrace/pkg/validator"
	appsvcs "github.com/ghuser/medtrace/services/batch/application/services"
	"github.com/ghuser/medtrace/services/batch/domain/models"
)

// VerifyRequest is the request body for POST /verify: the scanned code and
// optional scanner context.
type VerifyRequest struct {
	BatchID   string `json:"batch_id"            validate:"required,max=128"  example:"PCM-2026-001"`
	Signature string `json:"signature"           validate:"max=256"           example:"5d41402abc4b2a76b9719d911017c592"`
	DeviceID  string `json:"device_id,omitempty" validate:"omitempty,max=128" example:"scanner-7"`
	Location  string `json:"location,omitempty"  validate:"omitempty,max=255" example:"Pune"`
} // @name VerifyRequest

// VerifyResponse is the verdict on a scanned code. Negative outcomes are
// returned with 200 like positive ones.
type VerifyResponse struct {
	Outcome    string         `json:"outcome"         example:"GENUINE"`
	BatchID    string         `json:"batch_id"        example:"PCM-2026-001"`
	ScanID     uuid.UUID      `json:"scan_id"         example:"123e4567-e89b-12d3-a456-426614174000"`
	CheckedAt  time.Time      `json:"checked_at"      example:"2026-01-15T10:30:00Z"`
	TrustScore int            `json:"trust_score"     example:"80"`
	Anomaly    bool           `json:"anomaly"         example:"false"`
	Reasons    []string       `json:"reasons"`
	Batch      *BatchResponse `json:"batch,omitempty"`
} // @name VerifyResponse

// PostVerifyHandler handles POST /verify requests.
type PostVerifyHandler struct {
	svc *appsvcs.Services
}

// NewPostVerifyHandler returns a PostVerifyHandler backed by the given services.
func NewPostVerifyHandler(svc *appsvcs.Services) *PostVerifyHandler {
	return &PostVerifyHandler{svc: svc}
}

// Execute verifies a scanned code. Authentication is optional; when present
// the caller is recorded as the scanner.
//
//	@Summary		Verify code
//	@Description	Checks a scanned batch code and returns GENUINE, SUSPICIOUS, BLOCKED, FAKE_SIGNATURE or FAKE_UNKNOWN
//	@Tags			verification
//	@Accept			json
//	@Produce		json
//	@Param			request	body		VerifyRequest	true	"Scanned code"
//	@Success		200		{object}	VerifyResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		422		{object}	pkgvalidator.ValidationErrorResponse
//	@Router			/verify [post]
func (h *PostVerifyHandler) Execute(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[VerifyRequest](w, r)
	if !ok {
		return
	}

	scan := models.ScanContext{DeviceID: req.DeviceID, Location: req.Location}
	if id, err := auth.IdentityFromCtx(r.Context()); err == nil {
		if p, err := models.NewParty(id.Email); err == nil {
			scan.Principal = p
		}
	}

	res, err := h.svc.Verification.Verify(r.Context(), appsvcs.VerifyRequest{
		BatchID:   req.BatchID,
		Signature: req.Signature,
		Scan:      scan,
	})
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	out := VerifyResponse{
		Outcome:    string(res.Outcome),
		BatchID:    res.BatchID,
		ScanID:     res.ScanID,
		CheckedAt:  res.CheckedAt,
		TrustScore: res.TrustScore,
		Anomaly:    res.Anomaly,
		Reasons:    res.Reasons,
	}
	if res.Batch != nil {
		b := toBatchResponse(res.Batch)
		out.Batch = &b
	}
	httpx.JSON(w, http.StatusOK, out)
}
