package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ghuser/medtrace/pkg/errhttp"
	"github.com/ghuser/medtrace/pkg/httpx"
	appsvcs "github.com/ghuser/medtrace/services/batch/application/services"
)

// SignatureResponse carries the printable code of a batch.
type SignatureResponse struct {
	BatchID   string `json:"batch_id"  example:"PCM-2026-001"`
	Signature string `json:"signature" example:"5d41402abc4b2a76b9719d911017c592"`
} // @name SignatureResponse

// GetSignatureHandler handles GET /batches/{batchID}/signature requests.
type GetSignatureHandler struct {
	svc *appsvcs.Services
}

// NewGetSignatureHandler returns a GetSignatureHandler backed by the given services.
func NewGetSignatureHandler(svc *appsvcs.Services) *GetSignatureHandler {
	return &GetSignatureHandler{svc: svc}
}

// Execute reissues the signed code of a batch to its registrant or an admin.
//
//	@Summary		Batch signature
//	@Description	Returns the signature to print with the batch ID
//	@Tags			batches
//	@Produce		json
//	@Param			batchID	path		string	true	"Batch ID"
//	@Success		200		{object}	SignatureResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		403		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/batches/{batchID}/signature [get]
func (h *GetSignatureHandler) Execute(w http.ResponseWriter, r *http.Request) {
	actor, err := principalFrom(r)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	batchID := chi.URLParam(r, "batchID")
	sig, err := h.svc.Ledger.SignatureFor(r.Context(), actor, batchID)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, SignatureResponse{BatchID: batchID, Signature: sig})
}
