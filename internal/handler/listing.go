package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/almagid/almagid/internal/auth"
	"github.com/almagid/almagid/internal/handler/dto"
	"github.com/almagid/almagid/internal/model"
	"github.com/almagid/almagid/internal/service"
)

// ListingHandler serves the /places and /hostels endpoints. Each route
// binds its kind at registration time, so one handler covers both.
type ListingHandler struct {
	listings      *service.ListingService
	maxUploadSize int64
}

// NewListingHandler creates a new ListingHandler.
func NewListingHandler(listings *service.ListingService, maxUploadSize int64) *ListingHandler {
	return &ListingHandler{listings: listings, maxUploadSize: maxUploadSize}
}

// List handles GET /{kind}. Public, served through the list cache.
func (h *ListingHandler) List(kind model.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		listings, err := h.listings.List(r.Context(), kind)
		if err != nil {
			serviceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, dto.ToListingResponses(listings))
	}
}

// ListMine handles GET /{kind}/my. Requires auth, never cached.
func (h *ListingHandler) ListMine(kind model.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := auth.MustUserFromContext(r.Context())

		listings, err := h.listings.ListMine(r.Context(), kind, user)
		if err != nil {
			serviceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, dto.ToListingResponses(listings))
	}
}

// Get handles GET /{kind}/{id}. Public.
func (h *ListingHandler) Get(kind model.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		listing, err := h.listings.Get(r.Context(), kind, id)
		if err != nil {
			serviceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, dto.ToListingResponse(listing))
	}
}

// Create handles POST /{kind} with a multipart form. Requires auth.
func (h *ListingHandler) Create(kind model.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := auth.MustUserFromContext(r.Context())

		input, ok := h.listingForm(w, r)
		if !ok {
			return
		}

		listing, err := h.listings.Create(r.Context(), kind, input, user)
		if err != nil {
			serviceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, dto.ToListingResponse(listing))
	}
}

// Update handles PUT /{kind}/{id}. Full overwrite, owner only.
func (h *ListingHandler) Update(kind model.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := auth.MustUserFromContext(r.Context())

		id, ok := pathID(w, r)
		if !ok {
			return
		}

		input, ok := h.listingForm(w, r)
		if !ok {
			return
		}

		listing, err := h.listings.Update(r.Context(), kind, id, input, user)
		if err != nil {
			serviceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, dto.ToListingResponse(listing))
	}
}

// Delete handles DELETE /{kind}/{id}. Owner only.
func (h *ListingHandler) Delete(kind model.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := auth.MustUserFromContext(r.Context())

		id, ok := pathID(w, r)
		if !ok {
			return
		}

		if err := h.listings.Delete(r.Context(), kind, id, user); err != nil {
			serviceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

// listingForm parses the multipart listing fields shared by create and
// update. It writes the error response itself and reports success via ok.
func (h *ListingHandler) listingForm(w http.ResponseWriter, r *http.Request) (service.ListingInput, bool) {
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil && err != http.ErrNotMultipart {
		writeError(w, http.StatusBadRequest, "invalid form data", "invalid_form")
		return service.ListingInput{}, false
	}

	rating, err := strconv.Atoi(r.FormValue("rating"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "rating must be an integer", "validation_error")
		return service.ListingInput{}, false
	}

	input := service.ListingInput{
		Name:        r.FormValue("name"),
		Location:    r.FormValue("location"),
		PriceText:   r.FormValue("price_text"),
		Rating:      rating,
		Description: r.FormValue("description"),
	}

	file, header, err := r.FormFile("image")
	switch err {
	case nil:
		// Readers passed down to the service are drained before the
		// handler returns, so closing via the request body is enough.
		input.Image = &service.ImageUpload{Filename: header.Filename, Data: file}
	case http.ErrMissingFile, http.ErrNotMultipart:
		// image is optional
	default:
		writeError(w, http.StatusBadRequest, "invalid image field", "invalid_form")
		return service.ListingInput{}, false
	}

	return input, true
}

// pathID parses the {id} URL parameter.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusNotFound, "not found", "not_found")
		return 0, false
	}
	return id, true
}
