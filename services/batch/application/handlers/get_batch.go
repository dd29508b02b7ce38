package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ghuser/medtrace/pkg/errhttp"
	"github.com/ghuser/medtrace/pkg/httpx"
	appsvcs "github.com/ghuser/medtrace/services/batch/application/services"
)

// GetBatchHandler handles GET /batches/{batchID} requests.
type GetBatchHandler struct {
	svc *appsvcs.Services
}

// NewGetBatchHandler returns a GetBatchHandler backed by the given services.
func NewGetBatchHandler(svc *appsvcs.Services) *GetBatchHandler {
	return &GetBatchHandler{svc: svc}
}

// Execute returns a batch with its ownership history.
//
//	@Summary		Get batch
//	@Description	Returns batch detail, the full event history and the latest owner
//	@Tags			batches
//	@Produce		json
//	@Param			batchID	path		string	true	"Batch ID"
//	@Success		200		{object}	BatchResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/batches/{batchID} [get]
func (h *GetBatchHandler) Execute(w http.ResponseWriter, r *http.Request) {
	b, err := h.svc.Ledger.GetBatch(r.Context(), chi.URLParam(r, "batchID"))
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toBatchResponse(b))
}
