package handlers

import (
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/ghuser/medtrace/pkg/auth"
	"github.com/ghuser/medtrace/pkg/errhttp"
	"github.com/ghuser/medtrace/pkg/httpx"
	pkgvalidator "github.com/ghuser/medtrace/pkg/validator"
	"github.com/ghuser/medtrace/services/batch/domain/models"
)

// SessionRequest is the request body for POST /session.
type SessionRequest struct {
	Email string `json:"email" validate:"required,party" example:"mfg@example.com"`
	Role  string `json:"role"  validate:"required,role"  example:"MANUFACTURER"`
} // @name SessionRequest

// PostSessionHandler handles POST /session. It stands in for the identity
// provider outside production and is not mounted there.
type PostSessionHandler struct {
	store sessions.Store
}

// NewPostSessionHandler returns a PostSessionHandler writing to store.
func NewPostSessionHandler(store sessions.Store) *PostSessionHandler {
	return &PostSessionHandler{store: store}
}

// Execute starts a session for the given identity.
//
//	@Summary		Start session (development)
//	@Description	Starts a session for an email and role; not available in production
//	@Tags			session
//	@Accept			json
//	@Produce		json
//	@Param			request	body	SessionRequest	true	"Identity"
//	@Success		204
//	@Failure		400	{object}	ErrorResponse
//	@Failure		422	{object}	pkgvalidator.ValidationErrorResponse
//	@Router			/session [post]
func (h *PostSessionHandler) Execute(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[SessionRequest](w, r)
	if !ok {
		return
	}
	p, err := models.NewPrincipal(req.Email, req.Role)
	if err != nil {
		httpx.JSONError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := auth.SaveIdentity(h.store, w, r, auth.Identity{Email: p.Party.String(), Role: p.Role.String()}); err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.NoContent(w)
}
