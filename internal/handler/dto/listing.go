package dto

import (
	"time"

	"github.com/almagid/almagid/internal/model"
)

// ListingResponse represents a place or hostel in API responses.
type ListingResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Location    string    `json:"location"`
	ImageURL    *string   `json:"image_url,omitempty"`
	PriceText   *string   `json:"price_text,omitempty"`
	Rating      int       `json:"rating"`
	Description *string   `json:"description,omitempty"`
	UserID      int64     `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// ToListingResponse converts a Listing model to its response shape.
func ToListingResponse(l *model.Listing) *ListingResponse {
	return &ListingResponse{
		ID:          l.ID,
		Name:        l.Name,
		Location:    l.Location,
		ImageURL:    l.ImageURL,
		PriceText:   l.PriceText,
		Rating:      l.Rating,
		Description: l.Description,
		UserID:      l.UserID,
		CreatedAt:   l.CreatedAt,
	}
}

// ToListingResponses converts a slice of listings, always returning a
// non-nil slice so empty results encode as [] rather than null.
func ToListingResponses(listings []model.Listing) []*ListingResponse {
	out := make([]*ListingResponse, 0, len(listings))
	for i := range listings {
		out = append(out, ToListingResponse(&listings[i]))
	}
	return out
}
