// Package validator decodes and validates JSON request bodies.
//
// Besides the stock go-playground tags it registers:
//
//	batchid  2-64 letters, digits or hyphens
//	party    an email address after trimming and lowercasing
//	role     a ledger role, any case
package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ghuser/medtrace/pkg/httpx"
	"github.com/ghuser/medtrace/services/batch/domain/models"
)

// ValidationErrorResponse is the 422 body for a request that fails field rules.
type ValidationErrorResponse struct {
	Error  string            `json:"error"  example:"validation failed"`
	Fields map[string]string `json:"fields"`
} // @name ValidationErrorResponse

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("batchid", func(fl validator.FieldLevel) bool {
		return models.IsValidBatchID(fl.Field().String())
	})
	_ = v.RegisterValidation("party", func(fl validator.FieldLevel) bool {
		_, err := models.NewParty(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		_, err := models.ParseRole(fl.Field().String())
		return err == nil
	})
	return v
}

// Validate checks s against its validate tags.
func Validate(s any) error {
	return validate.Struct(s)
}

// FormatValidationErrors maps each failing field to a readable message. It
// returns an empty map for errors that are not field failures.
func FormatValidationErrors(err error) map[string]string {
	out := make(map[string]string)
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return out
	}
	for _, fe := range ve {
		out[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "email", "party":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "datetime":
		return "must be a date in the format " + fe.Param()
	case "batchid":
		return "must be 2-64 letters, digits or hyphens"
	case "role":
		return "must be one of MANUFACTURER, DISTRIBUTOR, PHARMACY, CUSTOMER, ADMIN"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	default:
		return fmt.Sprintf("failed the %q rule", fe.Tag())
	}
}

// ValidateRequest decodes the body into T and validates it. On failure it
// writes the response itself and returns false:
//
//	400 malformed or empty JSON
//	413 body over the server's size cap
//	422 field rules failed, with per-field messages
func ValidateRequest[T any](w http.ResponseWriter, r *http.Request) (*T, bool) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			httpx.JSONError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
		case errors.Is(err, io.EOF):
			httpx.JSONError(w, http.StatusBadRequest, "request body is empty")
		default:
			httpx.JSONError(w, http.StatusBadRequest, "invalid JSON")
		}
		return nil, false
	}
	if err := Validate(&req); err != nil {
		httpx.JSON(w, http.StatusUnprocessableEntity, ValidationErrorResponse{
			Error:  "validation failed",
			Fields: FormatValidationErrors(err),
		})
		return nil, false
	}
	return &req, true
}
