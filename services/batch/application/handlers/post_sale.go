package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ghuser/medtrace/pkg/errhttp"
	"github.com/ghuser/medtrace/pkg/httpx"
	pkgvalidator "github.com/ghuser/medtrace/pkg/validator"
	appsvcs "github.com/ghuser/medtrace/services/batch/application/services"
)

// SaleRequest is the request body for POST /batches/{batchID}/sales.
type SaleRequest struct {
	Units         int    `json:"units"                    validate:"required"               example:"2"`
	CustomerEmail string `json:"customer_email,omitempty" validate:"omitempty,max=254,party" example:"patient@example.com"`
} // @name SaleRequest

// PostSaleHandler handles POST /batches/{batchID}/sales requests.
type PostSaleHandler struct {
	svc *appsvcs.Services
}

// NewPostSaleHandler returns a PostSaleHandler backed by the given services.
func NewPostSaleHandler(svc *appsvcs.Services) *PostSaleHandler {
	return &PostSaleHandler{svc: svc}
}

// Execute records a sale to an end customer.
//
//	@Summary		Sell units
//	@Description	Records a sale of units the caller holds; the customer is optional
//	@Tags			batches
//	@Accept			json
//	@Produce		json
//	@Param			batchID	path		string		true	"Batch ID"
//	@Param			request	body		SaleRequest	true	"Sale request"
//	@Success		200		{object}	BatchResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		403		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		409		{object}	errhttp.InsufficientBalanceResponse
//	@Failure		422		{object}	pkgvalidator.ValidationErrorResponse
//	@Router			/batches/{batchID}/sales [post]
func (h *PostSaleHandler) Execute(w http.ResponseWriter, r *http.Request) {
	actor, err := principalFrom(r)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	req, ok := pkgvalidator.ValidateRequest[SaleRequest](w, r)
	if !ok {
		return
	}

	b, err := h.svc.Ledger.Sell(r.Context(), actor, chi.URLParam(r, "batchID"), req.CustomerEmail, req.Units)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toBatchResponse(b))
}
