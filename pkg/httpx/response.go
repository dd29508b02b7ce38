package httpx

import (
	"encoding/json"
	"net/http"
)

const contentTypeJSON = "application/json; charset=utf-8"

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error string `json:"error" example:"batch not found"`
} // @name ErrorResponse

// JSON writes v with the given status. Encoding errors are dropped once the
// header is out; handlers only pass plain DTOs.
func JSON(w http.ResponseWriter, status int, v any) {
	h := w.Header()
	h.Set("Content-Type", contentTypeJSON)
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// JSONError writes an ErrorResponse.
func JSONError(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorResponse{Error: message})
}

// ErrorMessage is the client-facing text for err. Server errors never echo
// their cause: store and driver messages stay in the logs.
func ErrorMessage(err error, status int) string {
	if status >= http.StatusInternalServerError || err == nil {
		return http.StatusText(status)
	}
	return err.Error()
}

// NoContent writes a bare 204.
func NoContent(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusNoContent)
}
