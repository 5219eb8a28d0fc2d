package handler

import (
	"net/http"

	"github.com/almagid/almagid/internal/auth"
	"github.com/almagid/almagid/internal/handler/dto"
	"github.com/almagid/almagid/internal/service"
)

// ProfileHandler serves the /me endpoints.
type ProfileHandler struct {
	auth          *service.AuthService
	maxUploadSize int64
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(authSvc *service.AuthService, maxUploadSize int64) *ProfileHandler {
	return &ProfileHandler{auth: authSvc, maxUploadSize: maxUploadSize}
}

// Me handles GET /me.
func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := auth.MustUserFromContext(r.Context())
	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}

// UpdateMe handles PUT /me. Fields arrive as form values so the endpoint
// accepts both urlencoded and multipart bodies.
func (h *ProfileHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user := auth.MustUserFromContext(r.Context())

	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil && err != http.ErrNotMultipart {
		writeError(w, http.StatusBadRequest, "invalid form data", "invalid_form")
		return
	}

	updated, err := h.auth.UpdateProfile(r.Context(), user, service.UpdateProfileInput{
		FullName: r.FormValue("full_name"),
		Email:    r.FormValue("email"),
		Phone:    r.FormValue("phone"),
	})
	if err != nil {
		serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToUserResponse(updated))
}

// UploadAvatar handles POST /me/avatar with a multipart "avatar" field.
func (h *ProfileHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	user := auth.MustUserFromContext(r.Context())

	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form", "invalid_form")
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		writeError(w, http.StatusBadRequest, "avatar file is required", "file_required")
		return
	}
	defer file.Close()

	updated, err := h.auth.SetAvatar(r.Context(), user, header.Filename, file)
	if err != nil {
		serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToUserResponse(updated))
}
