package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ghuser/medtrace/pkg/errhttp"
	"github.com/ghuser/medtrace/pkg/httpx"
	appsvcs "github.com/ghuser/medtrace/services/batch/application/services"
)

// PostBlockHandler handles POST /batches/{batchID}/block requests.
type PostBlockHandler struct {
	svc *appsvcs.Services
}

// NewPostBlockHandler returns a PostBlockHandler backed by the given services.
func NewPostBlockHandler(svc *appsvcs.Services) *PostBlockHandler {
	return &PostBlockHandler{svc: svc}
}

// Execute blocks a batch. Admin only; blocking is irreversible and idempotent.
//
//	@Summary		Block batch
//	@Description	Freezes all further transfers and sales of the batch
//	@Tags			batches
//	@Produce		json
//	@Param			batchID	path		string	true	"Batch ID"
//	@Success		200		{object}	BatchResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		403		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/batches/{batchID}/block [post]
func (h *PostBlockHandler) Execute(w http.ResponseWriter, r *http.Request) {
	actor, err := principalFrom(r)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	b, err := h.svc.Ledger.Block(r.Context(), actor, chi.URLParam(r, "batchID"))
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toBatchResponse(b))
}
