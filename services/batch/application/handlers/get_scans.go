package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ghuser/medtrace/pkg/errhttp"
	"github.com/ghuser/medtrace/pkg/httpx"
	appsvcs "github.com/ghuser/medtrace/services/batch/application/services"
)

// ScanListResponse is a page of scan log entries, newest first.
type ScanListResponse struct {
	Items []ScanResponse `json:"items"`
	Total int            `json:"total" example:"12"`
} // @name ScanListResponse

// GetScansHandler handles GET /batches/{batchID}/scans requests.
type GetScansHandler struct {
	svc *appsvcs.Services
}

// NewGetScansHandler returns a GetScansHandler backed by the given services.
func NewGetScansHandler(svc *appsvcs.Services) *GetScansHandler {
	return &GetScansHandler{svc: svc}
}

// Execute lists verification attempts for a batch.
//
//	@Summary		Scan history
//	@Description	Lists verification attempts for the batch; registrant or admin only
//	@Tags			batches
//	@Produce		json
//	@Param			batchID	path		string	true	"Batch ID"
//	@Param			limit	query		int		false	"Page size (max 200)"
//	@Param			offset	query		int		false	"Records to skip"
//	@Success		200		{object}	ScanListResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		403		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/batches/{batchID}/scans [get]
func (h *GetScansHandler) Execute(w http.ResponseWriter, r *http.Request) {
	actor, err := principalFrom(r)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	opts, ok := queryOpts(w, r)
	if !ok {
		return
	}

	entries, total, err := h.svc.Verification.ScanHistory(r.Context(), actor, chi.URLParam(r, "batchID"), opts)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	items := make([]ScanResponse, len(entries))
	for i, e := range entries {
		items[i] = toScanResponse(e)
	}
	httpx.JSON(w, http.StatusOK, ScanListResponse{Items: items, Total: total})
}
