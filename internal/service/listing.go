package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/almagid/almagid/internal/cache"
	"github.com/almagid/almagid/internal/metrics"
	"github.com/almagid/almagid/internal/model"
	"github.com/almagid/almagid/internal/repository"
)

// Listing service errors.
var (
	ErrUnknownKind      = errors.New("unknown listing kind")
	ErrNameRequired     = errors.New("name is required")
	ErrLocationRequired = errors.New("location is required")
	ErrRatingOutOfRange = errors.New("rating must be between 1 and 5")
	ErrListingNotFound  = errors.New("listing not found")
	ErrNotOwner         = errors.New("caller does not own this listing")
)

// ListingStore is the persistence surface the listing service depends on.
type ListingStore interface {
	CreateListing(ctx context.Context, kind model.Kind, listing *model.Listing) error
	GetListingByID(ctx context.Context, kind model.Kind, id int64) (*model.Listing, error)
	ListListings(ctx context.Context, kind model.Kind) ([]model.Listing, error)
	ListListingsByOwner(ctx context.Context, kind model.Kind, ownerID int64) ([]model.Listing, error)
	UpdateListing(ctx context.Context, kind model.Kind, listing *model.Listing) error
	DeleteListing(ctx context.Context, kind model.Kind, id int64) error
}

// ListCache is the read-through cache for the public list views.
type ListCache interface {
	GetListings(ctx context.Context, kind model.Kind) ([]model.Listing, error)
	SetListings(ctx context.Context, kind model.Kind, listings []model.Listing, ttl time.Duration) error
	InvalidateListings(ctx context.Context, kind model.Kind) error
}

// ListingService handles listing business logic, parametrized by kind.
// The cache is purely an optimization: every path falls through to the
// store when the cache is unavailable.
type ListingService struct {
	store    ListingStore
	cache    ListCache
	uploads  ImageStore
	cacheTTL time.Duration
	logger   *slog.Logger
	metrics  metrics.Recorder
}

// NewListingService creates a new ListingService.
func NewListingService(store ListingStore, listCache ListCache, uploads ImageStore, cacheTTL time.Duration, logger *slog.Logger, recorder metrics.Recorder) *ListingService {
	if cacheTTL <= 0 {
		cacheTTL = cache.DefaultListTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &ListingService{
		store:    store,
		cache:    listCache,
		uploads:  uploads,
		cacheTTL: cacheTTL,
		logger:   logger,
		metrics:  recorder,
	}
}

// ListingInput defines the mutable fields of a listing. The same shape is
// used for create and update (full overwrite).
type ListingInput struct {
	Name        string
	Location    string
	PriceText   string
	Rating      int
	Description string
	Image       *ImageUpload
}

// ImageUpload carries an optional multipart image payload.
type ImageUpload struct {
	Filename string
	Data     io.Reader
}

// normalize trims whitespace on the text fields.
func (in *ListingInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Location = strings.TrimSpace(in.Location)
	in.PriceText = strings.TrimSpace(in.PriceText)
	in.Description = strings.TrimSpace(in.Description)
}

func (in *ListingInput) validate() error {
	if in.Name == "" {
		return ErrNameRequired
	}
	if in.Location == "" {
		return ErrLocationRequired
	}
	if in.Rating < model.MinRating || in.Rating > model.MaxRating {
		return ErrRatingOutOfRange
	}
	return nil
}

// Create stores a new listing bound to the owner. The image, when present,
// is written to disk before the row is inserted: a failed disk write aborts
// the create, while a failed insert leaves at worst an orphan file.
func (s *ListingService) Create(ctx context.Context, kind model.Kind, input ListingInput, owner *model.User) (*model.Listing, error) {
	if !kind.IsValid() {
		return nil, ErrUnknownKind
	}

	input.normalize()
	if err := input.validate(); err != nil {
		return nil, err
	}

	listing := &model.Listing{
		Name:     input.Name,
		Location: input.Location,
		Rating:   input.Rating,
		UserID:   owner.ID,
	}
	if input.PriceText != "" {
		listing.PriceText = &input.PriceText
	}
	if input.Description != "" {
		listing.Description = &input.Description
	}

	if input.Image != nil {
		imageURL, err := s.uploads.Store(input.Image.Filename, input.Image.Data)
		if err != nil {
			return nil, err
		}
		listing.ImageURL = &imageURL
	}

	if err := s.store.CreateListing(ctx, kind, listing); err != nil {
		return nil, fmt.Errorf("failed to create listing: %w", err)
	}

	s.metrics.IncListingCreated()
	s.invalidate(ctx, kind)

	return listing, nil
}

// List returns all listings of a kind, newest first. The public list view
// is read through the cache; any cache failure falls back to the store.
func (s *ListingService) List(ctx context.Context, kind model.Kind) ([]model.Listing, error) {
	if !kind.IsValid() {
		return nil, ErrUnknownKind
	}

	if cached, err := s.cache.GetListings(ctx, kind); err == nil {
		s.metrics.IncListCacheHit()
		return cached, nil
	}
	s.metrics.IncListCacheMiss()

	listings, err := s.store.ListListings(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to list listings: %w", err)
	}

	if err := s.cache.SetListings(ctx, kind, listings, s.cacheTTL); err != nil {
		s.logger.Warn("failed to populate list cache", "kind", kind, "error", err)
	}

	return listings, nil
}

// ListMine returns the owner's listings of a kind. Per-user results are
// never cached.
func (s *ListingService) ListMine(ctx context.Context, kind model.Kind, owner *model.User) ([]model.Listing, error) {
	if !kind.IsValid() {
		return nil, ErrUnknownKind
	}

	listings, err := s.store.ListListingsByOwner(ctx, kind, owner.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list own listings: %w", err)
	}
	return listings, nil
}

// Get returns a single listing by ID.
func (s *ListingService) Get(ctx context.Context, kind model.Kind, id int64) (*model.Listing, error) {
	if !kind.IsValid() {
		return nil, ErrUnknownKind
	}

	listing, err := s.store.GetListingByID(ctx, kind, id)
	if err != nil {
		if errors.Is(err, repository.ErrListingNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}
	return listing, nil
}

// Update overwrites a listing's mutable fields. Only the owner may update.
// A replacement image gets a fresh stored file; the previous file stays on
// disk so readers holding the old URL keep working.
func (s *ListingService) Update(ctx context.Context, kind model.Kind, id int64, input ListingInput, owner *model.User) (*model.Listing, error) {
	if !kind.IsValid() {
		return nil, ErrUnknownKind
	}

	input.normalize()
	if err := input.validate(); err != nil {
		return nil, err
	}

	listing, err := s.store.GetListingByID(ctx, kind, id)
	if err != nil {
		if errors.Is(err, repository.ErrListingNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}
	if listing.UserID != owner.ID {
		return nil, ErrNotOwner
	}

	listing.Name = input.Name
	listing.Location = input.Location
	listing.Rating = input.Rating
	listing.PriceText = nil
	if input.PriceText != "" {
		listing.PriceText = &input.PriceText
	}
	listing.Description = nil
	if input.Description != "" {
		listing.Description = &input.Description
	}

	if input.Image != nil {
		imageURL, err := s.uploads.Store(input.Image.Filename, input.Image.Data)
		if err != nil {
			return nil, err
		}
		listing.ImageURL = &imageURL
	}

	if err := s.store.UpdateListing(ctx, kind, listing); err != nil {
		if errors.Is(err, repository.ErrListingNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("failed to update listing: %w", err)
	}

	s.metrics.IncListingUpdated()
	s.invalidate(ctx, kind)

	return listing, nil
}

// Delete removes a listing. Only the owner may delete.
func (s *ListingService) Delete(ctx context.Context, kind model.Kind, id int64, owner *model.User) error {
	if !kind.IsValid() {
		return ErrUnknownKind
	}

	listing, err := s.store.GetListingByID(ctx, kind, id)
	if err != nil {
		if errors.Is(err, repository.ErrListingNotFound) {
			return ErrListingNotFound
		}
		return fmt.Errorf("failed to get listing: %w", err)
	}
	if listing.UserID != owner.ID {
		return ErrNotOwner
	}

	if err := s.store.DeleteListing(ctx, kind, id); err != nil {
		if errors.Is(err, repository.ErrListingNotFound) {
			return ErrListingNotFound
		}
		return fmt.Errorf("failed to delete listing: %w", err)
	}

	s.metrics.IncListingDeleted()
	s.invalidate(ctx, kind)

	return nil
}

// invalidate drops the kind's cached list view. The store commit already
// happened, so a cache failure is logged and swallowed: the entry ages out
// within its TTL.
func (s *ListingService) invalidate(ctx context.Context, kind model.Kind) {
	if err := s.cache.InvalidateListings(ctx, kind); err != nil {
		s.logger.Warn("failed to invalidate list cache", "kind", kind, "error", err)
	}
}
