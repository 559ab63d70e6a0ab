package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"staybook/internal/domain"
)

// errorDetail is the machine-readable part of an error response.
type errorDetail struct {
	Code    string             `json:"code"`
	Message string             `json:"message"`
	Fields  domain.FieldErrors `json:"fields,omitempty"`
}

// errorResponse is the body of every non-2xx JSON response.
type errorResponse struct {
	Error errorDetail `json:"error"`
}

// writeJSON writes v as the JSON response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// respondError maps a service-layer error onto an HTTP status and body.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var fields domain.FieldErrors
	switch {
	case errors.As(err, &fields):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: errorDetail{
			Code: "validation_error", Message: "validation failed", Fields: fields,
		}})
	case errors.Is(err, domain.ErrValidation):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: errorDetail{
			Code: "validation_error", Message: unwrapMessage(err),
		}})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: errorDetail{
			Code: "not_found", Message: "not found",
		}})
	case errors.Is(err, domain.ErrUpstream):
		s.log.ErrorContext(r.Context(), "upstream failure", "error", err)
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: errorDetail{
			Code: "upstream_error", Message: "the booking platform is unavailable",
		}})
	default:
		s.log.ErrorContext(r.Context(), "unhandled error", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: errorDetail{
			Code: "internal_error", Message: "internal server error",
		}})
	}
}

// notFoundBody returns an errorResponse for a missing resource.
// The caller supplies the human-readable message (e.g. "house not found").
func notFoundBody(message string) errorResponse {
	return errorResponse{Error: errorDetail{Code: "not_found", Message: message}}
}

// requestBody returns an errorResponse for a bad request rejected before
// reaching the service layer (e.g. missing or malformed body).
func requestBody(message string) errorResponse {
	return errorResponse{Error: errorDetail{Code: "validation_error", Message: message}}
}

// unwrapMessage extracts the human-readable part from a wrapped sentinel error.
// e.g. "service.AuthService.Login: validation error: email and password are
// required" becomes "email and password are required".
func unwrapMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	const marker = "validation error: "
	if i := strings.LastIndex(msg, marker); i >= 0 {
		return msg[i+len(marker):]
	}
	return msg
}
