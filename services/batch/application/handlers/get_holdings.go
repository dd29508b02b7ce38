package handlers

import (
	"net/http"
	"time"

	"github.com/ghuser/medtrace/pkg/errhttp"
	"github.com/ghuser/medtrace/pkg/httpx"
	appsvcs "github.com/ghuser/medtrace/services/batch/application/services"
)

// HoldingResponse is one batch the caller holds units of.
type HoldingResponse struct {
	BatchID    string `json:"batch_id"    example:"PCM-2026-001"`
	Name       string `json:"name"        example:"Paracetamol 500mg"`
	Status     string `json:"status"      example:"ACTIVE"`
	ExpiryDate string `json:"expiry_date" example:"2028-01-01"`
	Available  int    `json:"available"   example:"40"`
} // @name HoldingResponse

// GetHoldingsHandler handles GET /holdings requests.
type GetHoldingsHandler struct {
	svc *appsvcs.Services
}

// NewGetHoldingsHandler returns a GetHoldingsHandler backed by the given services.
func NewGetHoldingsHandler(svc *appsvcs.Services) *GetHoldingsHandler {
	return &GetHoldingsHandler{svc: svc}
}

// Execute lists the batches in which the caller currently holds units.
//
//	@Summary		Holdings
//	@Description	Lists batches in which the caller controls at least one unit
//	@Tags			batches
//	@Produce		json
//	@Param			limit	query	int	false	"Page size (max 200)"
//	@Param			offset	query	int	false	"Records to skip"
//	@Success		200		{array}		HoldingResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Router			/holdings [get]
func (h *GetHoldingsHandler) Execute(w http.ResponseWriter, r *http.Request) {
	caller, err := principalFrom(r)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	opts, ok := queryOpts(w, r)
	if !ok {
		return
	}

	holdings, err := h.svc.Ledger.Holdings(r.Context(), caller.Party, opts)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	out := make([]HoldingResponse, len(holdings))
	for i, hd := range holdings {
		out[i] = HoldingResponse{
			BatchID:    hd.Batch.ID.String(),
			Name:       hd.Batch.Name,
			Status:     string(hd.Batch.Status),
			ExpiryDate: hd.Batch.ExpiryDate.Format(time.DateOnly),
			Available:  hd.Available,
		}
	}
	httpx.JSON(w, http.StatusOK, out)
}
