package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/sanket913/VoiceMitra/internal/apperr"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Message string                 `json:"message"`
	Field   string                 `json:"field,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func write(w http.ResponseWriter, status int, body ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// RespondError writes a standardized error response to the HTTP response writer
func RespondError(w http.ResponseWriter, status int, code, message string) {
	write(w, status, ErrorResponse{Error: code, Message: message})
}

// RespondValidationError writes a validation error response with field information
func RespondValidationError(w http.ResponseWriter, code, message, field string) {
	write(w, http.StatusBadRequest, ErrorResponse{Error: code, Message: message, Field: field})
}

// RespondErrorWithDetails writes an error response with additional details
func RespondErrorWithDetails(w http.ResponseWriter, status int, code, message string, details map[string]interface{}) {
	write(w, status, ErrorResponse{Error: code, Message: message, Details: details})
}

// RespondAppError maps an error kind onto its HTTP status and code.
// Wrapped causes are never written to the client.
func RespondAppError(w http.ResponseWriter, err error) {
	var appErr *apperr.Error
	if !stderrors.As(err, &appErr) {
		RespondInternalError(w, "Internal server error")
		return
	}
	switch appErr.Kind {
	case apperr.KindNotAuthenticated:
		RespondUnauthorized(w, ErrCodeAuthenticationRequired, appErr.Message)
	case apperr.KindValidation:
		RespondValidationError(w, ErrCodeValidationFailed, appErr.Message, appErr.Field)
	case apperr.KindNotFound:
		RespondNotFound(w, ErrCodeNotFound, appErr.Message)
	case apperr.KindGeneration:
		RespondErrorWithDetails(w, http.StatusBadGateway, ErrCodeGenerationFailed, appErr.Message, map[string]interface{}{
			"reason": appErr.Reason,
		})
	case apperr.KindStorage:
		RespondError(w, http.StatusInternalServerError, ErrCodeStorageFailure, appErr.Message)
	default:
		RespondInternalError(w, "Internal server error")
	}
}

// RespondInternalError writes an internal server error response
func RespondInternalError(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusInternalServerError, ErrCodeInternalError, message)
}

// RespondNotFound writes a not found error response
func RespondNotFound(w http.ResponseWriter, code, message string) {
	RespondError(w, http.StatusNotFound, code, message)
}

// RespondUnauthorized writes an unauthorized error response
func RespondUnauthorized(w http.ResponseWriter, code, message string) {
	RespondError(w, http.StatusUnauthorized, code, message)
}

// RespondBadRequest writes a bad request error response
func RespondBadRequest(w http.ResponseWriter, code, message string) {
	RespondError(w, http.StatusBadRequest, code, message)
}

// RespondServiceUnavailable writes a service unavailable error response
func RespondServiceUnavailable(w http.ResponseWriter, code, message string) {
	RespondError(w, http.StatusServiceUnavailable, code, message)
}

// RespondJSON writes a JSON success body.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
