package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/almagid/almagid/internal/handler/dto"
	"github.com/almagid/almagid/internal/service"
	"github.com/almagid/almagid/internal/storage"
)

func TestHandler_NotFound(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/nonexistent", nil)
	rec := httptest.NewRecorder()

	NotFound(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rec.Code)
	}

	var response dto.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response.Code != "not_found" {
		t.Errorf("unexpected error code: %s", response.Code)
	}
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	req := httptest.NewRequest(http.MethodPatch, "/places", nil)
	rec := httptest.NewRecorder()

	MethodNotAllowed(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", rec.Code)
	}
}

func TestServiceError_Mapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", service.ErrNameRequired, http.StatusBadRequest, "validation_error"},
		{"rating range", service.ErrRatingOutOfRange, http.StatusBadRequest, "validation_error"},
		{"bad email", service.ErrEmailInvalid, http.StatusBadRequest, "validation_error"},
		{"email taken", service.ErrEmailTaken, http.StatusBadRequest, "email_taken"},
		{"phone taken", service.ErrPhoneTaken, http.StatusBadRequest, "phone_taken"},
		{"bad credentials", service.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
		{"wrong old password", service.ErrWrongPassword, http.StatusBadRequest, "wrong_password"},
		{"not owner", service.ErrNotOwner, http.StatusForbidden, "forbidden"},
		{"listing missing", service.ErrListingNotFound, http.StatusNotFound, "not_found"},
		{"file too large", storage.ErrFileTooLarge, http.StatusBadRequest, "file_too_large"},
		{"bad file type", storage.ErrUnsupportedType, http.StatusBadRequest, "unsupported_file_type"},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			serviceError(rec, tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			var response dto.ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if response.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", response.Code, tt.wantCode)
			}
		})
	}
}

// TestServiceError_NoInternalLeak ensures unknown errors never echo their
// message to the client.
func TestServiceError_NoInternalLeak(t *testing.T) {
	rec := httptest.NewRecorder()
	serviceError(rec, errors.New("pq: connection to db-internal-host failed"))

	var response dto.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response.Error != "internal server error" {
		t.Errorf("internal detail leaked to client: %q", response.Error)
	}
}
