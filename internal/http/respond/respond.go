package respond

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

// ErrorBody is the shape of every non-validation error response.
type ErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Generic messages for statuses whose details must stay server-side.
const (
	MessageUnauthorized = "Unauthorized"
	MessageInternal     = "Internal server error"
)

// JSON writes payload as the response body.
func JSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("respond: encode payload failed")
	}
}

// Error writes {code, message}.
func Error(w http.ResponseWriter, r *http.Request, status int, message string) {
	JSON(w, r, status, ErrorBody{Code: status, Message: message})
}

// Unauthorized writes the single response used for every authentication failure.
func Unauthorized(w http.ResponseWriter, r *http.Request) {
	Error(w, r, http.StatusUnauthorized, MessageUnauthorized)
}

// Internal writes a generic 500. Callers log the cause first.
func Internal(w http.ResponseWriter, r *http.Request) {
	Error(w, r, http.StatusInternalServerError, MessageInternal)
}
