package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ghuser/medtrace/pkg/errhttp"
	"github.com/ghuser/medtrace/pkg/httpx"
	appsvcs "github.com/ghuser/medtrace/services/batch/application/services"
	batchdomain "github.com/ghuser/medtrace/services/batch/domain"
	"github.com/ghuser/medtrace/services/batch/domain/models"
)

// AvailableResponse is the balance of one party in one batch.
type AvailableResponse struct {
	BatchID   string `json:"batch_id"  example:"PCM-2026-001"`
	Party     string `json:"party"     example:"dist@example.com"`
	Available int    `json:"available" example:"40"`
} // @name AvailableResponse

// GetAvailableHandler handles GET /batches/{batchID}/available requests.
type GetAvailableHandler struct {
	svc *appsvcs.Services
}

// NewGetAvailableHandler returns a GetAvailableHandler backed by the given services.
func NewGetAvailableHandler(svc *appsvcs.Services) *GetAvailableHandler {
	return &GetAvailableHandler{svc: svc}
}

// Execute returns the caller's available units. Admins may ask for any party.
//
//	@Summary		Available units
//	@Description	Returns the units the caller (or, for admins, the given party) controls
//	@Tags			batches
//	@Produce		json
//	@Param			batchID	path		string	true	"Batch ID"
//	@Param			party	query		string	false	"Party email (admin only)"
//	@Success		200		{object}	AvailableResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		403		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/batches/{batchID}/available [get]
func (h *GetAvailableHandler) Execute(w http.ResponseWriter, r *http.Request) {
	caller, err := principalFrom(r)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	party := caller.Party
	if q := r.URL.Query().Get("party"); q != "" {
		p, err := models.NewParty(q)
		if err != nil {
			errhttp.WriteError(w, fmt.Errorf("%w: %w", batchdomain.ErrInvalidParty, err))
			return
		}
		if p != caller.Party && caller.Role != models.RoleAdmin {
			errhttp.WriteError(w, fmt.Errorf("%w: only admins may read another party's balance", batchdomain.ErrRoleNotPermitted))
			return
		}
		party = p
	}

	batchID := chi.URLParam(r, "batchID")
	n, err := h.svc.Ledger.AvailableUnits(r.Context(), batchID, party)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, AvailableResponse{BatchID: batchID, Party: party.String(), Available: n})
}
