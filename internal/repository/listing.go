package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/almagid/almagid/internal/model"
)

// ErrListingNotFound indicates no listing row matches the given ID.
var ErrListingNotFound = errors.New("listing not found")

// Listing queries are parametrized over the kind's table. Kind.Table()
// only ever yields one of two literal names, so interpolating it into the
// query text is safe.

// CreateListing inserts a new listing and fills in the assigned ID and timestamp.
func (r *Repository) CreateListing(ctx context.Context, kind model.Kind, listing *model.Listing) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (name, location, image_url, price_text, rating, description, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, kind.Table())

	err := r.pool.QueryRow(ctx, query,
		listing.Name,
		listing.Location,
		listing.ImageURL,
		listing.PriceText,
		listing.Rating,
		listing.Description,
		listing.UserID,
	).Scan(&listing.ID, &listing.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create %s: %w", kind, err)
	}

	return nil
}

// GetListingByID retrieves a listing of the given kind by its ID.
func (r *Repository) GetListingByID(ctx context.Context, kind model.Kind, id int64) (*model.Listing, error) {
	query := fmt.Sprintf(`
		SELECT id, name, location, image_url, price_text, rating, description, user_id, created_at
		FROM %s
		WHERE id = $1
	`, kind.Table())

	listing, err := scanListing(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("failed to get %s by ID: %w", kind, err)
	}

	return listing, nil
}

// ListListings returns all listings of a kind, newest first.
// ID breaks creation-time ties so the order stays deterministic.
func (r *Repository) ListListings(ctx context.Context, kind model.Kind) ([]model.Listing, error) {
	query := fmt.Sprintf(`
		SELECT id, name, location, image_url, price_text, rating, description, user_id, created_at
		FROM %s
		ORDER BY created_at DESC, id DESC
	`, kind.Table())

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list %ss: %w", kind, err)
	}
	defer rows.Close()

	return collectListings(rows, kind)
}

// ListListingsByOwner returns a user's own listings of a kind, newest first.
func (r *Repository) ListListingsByOwner(ctx context.Context, kind model.Kind, ownerID int64) ([]model.Listing, error) {
	query := fmt.Sprintf(`
		SELECT id, name, location, image_url, price_text, rating, description, user_id, created_at
		FROM %s
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`, kind.Table())

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list %ss by owner: %w", kind, err)
	}
	defer rows.Close()

	return collectListings(rows, kind)
}

// UpdateListing overwrites the mutable fields of a listing row.
func (r *Repository) UpdateListing(ctx context.Context, kind model.Kind, listing *model.Listing) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $2, location = $3, image_url = $4, price_text = $5, rating = $6, description = $7
		WHERE id = $1
	`, kind.Table())

	tag, err := r.pool.Exec(ctx, query,
		listing.ID,
		listing.Name,
		listing.Location,
		listing.ImageURL,
		listing.PriceText,
		listing.Rating,
		listing.Description,
	)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", kind, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrListingNotFound
	}

	return nil
}

// DeleteListing removes a listing row.
func (r *Repository) DeleteListing(ctx context.Context, kind model.Kind, id int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, kind.Table())

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", kind, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrListingNotFound
	}

	return nil
}

func collectListings(rows pgx.Rows, kind model.Kind) ([]model.Listing, error) {
	listings := make([]model.Listing, 0)
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", kind, err)
		}
		listings = append(listings, *listing)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s rows: %w", kind, err)
	}
	return listings, nil
}

func scanListing(row pgx.Row) (*model.Listing, error) {
	var listing model.Listing
	err := row.Scan(
		&listing.ID,
		&listing.Name,
		&listing.Location,
		&listing.ImageURL,
		&listing.PriceText,
		&listing.Rating,
		&listing.Description,
		&listing.UserID,
		&listing.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &listing, nil
}
