package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/almagid/almagid/internal/model"
)

// Common errors for user repository operations.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailExists  = errors.New("email already exists")
	ErrPhoneExists  = errors.New("phone already exists")
)

// CreateUser inserts a new user and fills in the assigned ID and timestamp.
func (r *Repository) CreateUser(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (full_name, phone, email, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(ctx, query,
		user.FullName,
		user.Phone,
		user.Email,
		user.PasswordHash,
	).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		if err := mapUserUniqueViolation(err); err != nil {
			return err
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByID retrieves a user by their ID.
func (r *Repository) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	query := `
		SELECT id, full_name, phone, email, avatar_url, password_hash, created_at
		FROM users
		WHERE id = $1
	`

	user, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return user, nil
}

// GetUserByEmail retrieves a user by their email address.
// Callers are expected to pass the email already lower-cased.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `
		SELECT id, full_name, phone, email, avatar_url, password_hash, created_at
		FROM users
		WHERE email = $1
	`

	user, err := scanUser(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// UpdateUserProfile overwrites the mutable profile fields.
func (r *Repository) UpdateUserProfile(ctx context.Context, user *model.User) error {
	query := `
		UPDATE users
		SET full_name = $2, email = $3, phone = $4
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, user.ID, user.FullName, user.Email, user.Phone)
	if err != nil {
		if err := mapUserUniqueViolation(err); err != nil {
			return err
		}
		return fmt.Errorf("failed to update user profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

// UpdateUserPassword replaces the stored password hash.
func (r *Repository) UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET password_hash = $2 WHERE id = $1`,
		id, passwordHash,
	)
	if err != nil {
		return fmt.Errorf("failed to update user password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

// UpdateUserAvatar records the public path of a stored avatar image.
func (r *Repository) UpdateUserAvatar(ctx context.Context, id int64, avatarURL string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET avatar_url = $2 WHERE id = $1`,
		id, avatarURL,
	)
	if err != nil {
		return fmt.Errorf("failed to update user avatar: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

// mapUserUniqueViolation translates a unique constraint violation on the
// users table into the matching sentinel error, or returns nil when the
// error is something else.
func mapUserUniqueViolation(err error) error {
	constraint := uniqueViolation(err)
	switch {
	case constraint == "":
		return nil
	case strings.Contains(constraint, "phone"):
		return ErrPhoneExists
	default:
		return ErrEmailExists
	}
}

func scanUser(row pgx.Row) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.FullName,
		&user.Phone,
		&user.Email,
		&user.AvatarURL,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
