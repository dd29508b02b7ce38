package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ghuser/medtrace/pkg/errhttp"
	"github.com/ghuser/medtrace/pkg/httpx"
	pkgvalidator "github.com/ghuser/medtrace/pkg/validator"
	appsvcs "github.com/ghuser/medtrace/services/batch/application/services"
	batchdomain "github.com/ghuser/medtrace/services/batch/domain"
	domainsvcs "github.com/ghuser/medtrace/services/batch/domain/services"
)

// RegisterBatchRequest is the request body for POST /batches.
type RegisterBatchRequest struct {
	BatchID         string `json:"batch_id"         validate:"required,batchid"             example:"PCM-2026-001"`
	Name            string `json:"name"             validate:"required,min=1,max=255"       example:"Paracetamol 500mg"`
	ProducerName    string `json:"producer_name"    validate:"required,min=1,max=255"       example:"Acme Pharma"`
	ManufactureDate string `json:"manufacture_date" validate:"required,datetime=2006-01-02" example:"2026-01-01"`
	ExpiryDate      string `json:"expiry_date"      validate:"required,datetime=2006-01-02" example:"2028-01-01"`
	TotalUnits      int    `json:"total_units"      validate:"required"                     example:"100"`
} // @name RegisterBatchRequest

// RegisterBatchResponse is returned on successful registration. Signature is
// the code to print alongside the batch ID.
type RegisterBatchResponse struct {
	BatchResponse
	Signature string `json:"signature" example:"5d41402abc4b2a76b9719d911017c592"`
} // @name RegisterBatchResponse

// PostBatchHandler handles POST /batches requests.
type PostBatchHandler struct {
	svc *appsvcs.Services
}

// NewPostBatchHandler returns a PostBatchHandler backed by the given services.
func NewPostBatchHandler(svc *appsvcs.Services) *PostBatchHandler {
	return &PostBatchHandler{svc: svc}
}

// Execute registers a new batch credited to the calling manufacturer.
//
//	@Summary		Register batch
//	@Description	Registers a batch; the caller must be a manufacturer and receives every unit
//	@Tags			batches
//	@Accept			json
//	@Produce		json
//	@Param			request	body		RegisterBatchRequest	true	"Batch registration request"
//	@Success		201		{object}	RegisterBatchResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		403		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Failure		422		{object}	pkgvalidator.ValidationErrorResponse
//	@Router			/batches [post]
func (h *PostBatchHandler) Execute(w http.ResponseWriter, r *http.Request) {
	actor, err := principalFrom(r)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	req, ok := pkgvalidator.ValidateRequest[RegisterBatchRequest](w, r)
	if !ok {
		return
	}

	mfg, err := time.Parse(time.DateOnly, req.ManufactureDate)
	if err != nil {
		errhttp.WriteError(w, fmt.Errorf("%w: manufacture_date: %w", batchdomain.ErrInvalidBatch, err))
		return
	}
	exp, err := time.Parse(time.DateOnly, req.ExpiryDate)
	if err != nil {
		errhttp.WriteError(w, fmt.Errorf("%w: expiry_date: %w", batchdomain.ErrInvalidBatch, err))
		return
	}

	b, sig, err := h.svc.Ledger.Register(r.Context(), actor, domainsvcs.Registration{
		BatchID:         req.BatchID,
		Name:            req.Name,
		ProducerName:    req.ProducerName,
		ManufactureDate: mfg,
		ExpiryDate:      exp,
		TotalUnits:      req.TotalUnits,
	})
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, RegisterBatchResponse{
		BatchResponse: toBatchResponse(b),
		Signature:     sig,
	})
}
