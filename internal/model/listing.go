package model

import "time"

// Kind distinguishes the two listing variants. They share one shape and
// one set of operations but live in separate tables with independent IDs.
type Kind string

const (
	KindPlace  Kind = "place"
	KindHostel Kind = "hostel"
)

// IsValid checks if the kind is one of the known variants.
func (k Kind) IsValid() bool {
	return k == KindPlace || k == KindHostel
}

// Table returns the database table holding listings of this kind.
func (k Kind) Table() string {
	if k == KindHostel {
		return "hostels"
	}
	return "places"
}

// CacheKey returns the cache key for this kind's public list view.
func (k Kind) CacheKey() string {
	if k == KindHostel {
		return "hostels:list"
	}
	return "places:list"
}

// Rating bounds for listings.
const (
	MinRating = 1
	MaxRating = 5
)

// Listing represents a place or hostel entry owned by a user.
type Listing struct {
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
