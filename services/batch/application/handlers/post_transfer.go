package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ghuser/medtrace/pkg/errhttp"
	"github.com/ghuser/medtrace/pkg/httpx"
	pkgvalidator "github.com/ghuser/medtrace/pkg/validator"
	appsvcs "github.com/ghuser/medtrace/services/batch/application/services"
)

// TransferRequest is the request body for POST /batches/{batchID}/transfers.
type TransferRequest struct {
	Recipient     string `json:"recipient"      validate:"required,max=254,party" example:"dist@example.com"`
	RecipientRole string `json:"recipient_role" validate:"required,role"          example:"DISTRIBUTOR"`
	Units         int    `json:"units"          validate:"required"               example:"40"`
} // @name TransferRequest

// PostTransferHandler handles POST /batches/{batchID}/transfers requests.
type PostTransferHandler struct {
	svc *appsvcs.Services
}

// NewPostTransferHandler returns a PostTransferHandler backed by the given services.
func NewPostTransferHandler(svc *appsvcs.Services) *PostTransferHandler {
	return &PostTransferHandler{svc: svc}
}

// Execute moves units from the caller to another supply-chain party.
//
//	@Summary		Transfer units
//	@Description	Transfers units the caller holds to a manufacturer, distributor or pharmacy
//	@Tags			batches
//	@Accept			json
//	@Produce		json
//	@Param			batchID	path		string			true	"Batch ID"
//	@Param			request	body		TransferRequest	true	"Transfer request"
//	@Success		200		{object}	BatchResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		403		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		409		{object}	errhttp.InsufficientBalanceResponse
//	@Failure		422		{object}	pkgvalidator.ValidationErrorResponse
//	@Router			/batches/{batchID}/transfers [post]
func (h *PostTransferHandler) Execute(w http.ResponseWriter, r *http.Request) {
	actor, err := principalFrom(r)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	req, ok := pkgvalidator.ValidateRequest[TransferRequest](w, r)
	if !ok {
		return
	}

	b, err := h.svc.Ledger.Transfer(r.Context(), actor, chi.URLParam(r, "batchID"), req.Recipient, req.RecipientRole, req.Units)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toBatchResponse(b))
}
