// Package errhttp maps domain sentinel errors to HTTP status codes.
// Add a case to mapErrorToStatus for each new domain sentinel error.
package errhttp

import (
	"errors"
	"net/http"

	"github.com/ghuser/medtrace/pkg/auth"
	"github.com/ghuser/medtrace/pkg/httpx"
	batchdomain "github.com/ghuser/medtrace/services/batch/domain"
)

// InsufficientBalanceResponse is the 409 body for an over-drawn transfer or sale.
type InsufficientBalanceResponse struct {
	Error     string `json:"error"     example:"insufficient balance: available 30, requested 50"`
	Available int    `json:"available" example:"30"`
	Requested int    `json:"requested" example:"50"`
} // @name InsufficientBalanceResponse

// WriteError maps err to an HTTP status code and writes a JSON error response.
// Uses errors.Is() so wrapped sentinel errors are matched correctly.
// Unrecognized errors become a 500 whose body does not echo the cause.
func WriteError(w http.ResponseWriter, err error) {
	var ibe *batchdomain.InsufficientBalanceError
	if errors.As(err, &ibe) {
		httpx.JSON(w, http.StatusConflict, InsufficientBalanceResponse{
			Error:     ibe.Error(),
			Available: ibe.Available,
			Requested: ibe.Requested,
		})
		return
	}
	status := mapErrorToStatus(err)
	httpx.JSONError(w, status, httpx.ErrorMessage(err, status))
}

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, auth.ErrIdentityNotFound):
		return http.StatusUnauthorized // 401
	case errors.Is(err, batchdomain.ErrBatchNotFound):
		return http.StatusNotFound // 404
	case errors.Is(err, batchdomain.ErrBatchAlreadyExists),
		errors.Is(err, batchdomain.ErrBatchNotActive),
		errors.Is(err, batchdomain.ErrInsufficientBalance):
		return http.StatusConflict // 409
	case errors.Is(err, batchdomain.ErrInvalidBatch),
		errors.Is(err, batchdomain.ErrInvalidUnitCount),
		errors.Is(err, batchdomain.ErrInvalidParty):
		return http.StatusUnprocessableEntity // 422
	case errors.Is(err, batchdomain.ErrRoleNotPermitted),
		errors.Is(err, batchdomain.ErrUnauthorizedActor):
		return http.StatusForbidden // 403
	default:
		return http.StatusInternalServerError // 500
	}
}
