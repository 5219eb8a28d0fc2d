// Package handler implements the HTTP handlers for the API.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/almagid/almagid/internal/handler/dto"
	"github.com/almagid/almagid/internal/repository"
	"github.com/almagid/almagid/internal/service"
	"github.com/almagid/almagid/internal/storage"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			slog.Error("failed to encode response", "error", err)
		}
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, dto.ErrorResponse{Error: message, Code: code})
}

// serviceError maps a service-layer error to an HTTP status and error code.
// Unknown errors map to a generic 500 so internal details never leak.
func serviceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrFullNameRequired),
		errors.Is(err, service.ErrPhoneRequired),
		errors.Is(err, service.ErrEmailInvalid),
		errors.Is(err, service.ErrPasswordRequired),
		errors.Is(err, service.ErrNameRequired),
		errors.Is(err, service.ErrLocationRequired),
		errors.Is(err, service.ErrRatingOutOfRange),
		errors.Is(err, service.ErrUnknownKind):
		writeError(w, http.StatusBadRequest, err.Error(), "validation_error")
	case errors.Is(err, storage.ErrFileTooLarge):
		writeError(w, http.StatusBadRequest, "uploaded file is too large", "file_too_large")
	case errors.Is(err, storage.ErrUnsupportedType):
		writeError(w, http.StatusBadRequest, "unsupported file type", "unsupported_file_type")
	case errors.Is(err, service.ErrEmailTaken):
		writeError(w, http.StatusBadRequest, "email is already registered", "email_taken")
	case errors.Is(err, service.ErrPhoneTaken):
		writeError(w, http.StatusBadRequest, "phone is already registered", "phone_taken")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid email or password", "invalid_credentials")
	case errors.Is(err, service.ErrWrongPassword):
		writeError(w, http.StatusBadRequest, "old password is incorrect", "wrong_password")
	case errors.Is(err, service.ErrNotOwner):
		writeError(w, http.StatusForbidden, "you do not own this resource", "forbidden")
	case errors.Is(err, service.ErrListingNotFound), errors.Is(err, repository.ErrListingNotFound):
		writeError(w, http.StatusNotFound, "not found", "not_found")
	case errors.Is(err, repository.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "user not found", "not_found")
	default:
		slog.Error("unhandled service error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error", "internal_error")
	}
}

// decodeJSON decodes a JSON request body into v.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	return dec.Decode(v)
}

// NotFound handles unmatched routes.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "not found", "not_found")
}

// MethodNotAllowed handles unsupported methods on matched routes.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed", "method_not_allowed")
}
