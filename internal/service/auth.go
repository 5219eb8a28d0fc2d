// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/mail"
	"strings"

	"github.com/almagid/almagid/internal/auth"
	"github.com/almagid/almagid/internal/metrics"
	"github.com/almagid/almagid/internal/model"
	"github.com/almagid/almagid/internal/repository"
)

// Account service errors.
var (
	ErrFullNameRequired   = errors.New("full name is required")
	ErrPhoneRequired      = errors.New("phone is required")
	ErrEmailInvalid       = errors.New("invalid email address")
	ErrPasswordRequired   = errors.New("password is required")
	ErrEmailTaken         = errors.New("email already registered")
	ErrPhoneTaken         = errors.New("phone already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWrongPassword      = errors.New("old password does not match")
)

// UserStore is the persistence surface the auth service depends on.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateUserProfile(ctx context.Context, user *model.User) error
	UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error
	UpdateUserAvatar(ctx context.Context, id int64, avatarURL string) error
}

// ImageStore persists uploaded image payloads and returns their public path.
type ImageStore interface {
	Store(originalName string, r io.Reader) (string, error)
}

// AuthService handles account registration, login and profile management.
type AuthService struct {
	store   UserStore
	tokens  *auth.Tokens
	uploads ImageStore
	metrics metrics.Recorder
}

// NewAuthService creates a new AuthService.
func NewAuthService(store UserStore, tokens *auth.Tokens, uploads ImageStore, recorder metrics.Recorder) *AuthService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &AuthService{
		store:   store,
		tokens:  tokens,
		uploads: uploads,
		metrics: recorder,
	}
}

// RegisterInput defines input for creating an account.
type RegisterInput struct {
	FullName string
	Phone    string
	Email    string
	Password string
}

// normalize trims the text fields and lower-cases the email.
func (in *RegisterInput) normalize() {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
}

func (in *RegisterInput) validate() error {
	if in.FullName == "" {
		return ErrFullNameRequired
	}
	if in.Phone == "" {
		return ErrPhoneRequired
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return ErrEmailInvalid
	}
	if in.Password == "" {
		return ErrPasswordRequired
	}
	return nil
}

// Register creates a new account. Duplicate email or phone fail with
// ErrEmailTaken / ErrPhoneTaken.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	input.normalize()
	if err := input.validate(); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		FullName:     input.FullName,
		Phone:        input.Phone,
		Email:        input.Email,
		PasswordHash: hash,
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrEmailExists):
			return nil, ErrEmailTaken
		case errors.Is(err, repository.ErrPhoneExists):
			return nil, ErrPhoneTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.metrics.IncUserRegistered()

	return user, nil
}

// Login verifies credentials and issues a bearer token. An unknown email
// and a wrong password are indistinguishable from the outside.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.metrics.IncLoginFailed()
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		s.metrics.IncLoginFailed()
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return token, user, nil
}

// ChangePassword replaces the caller's password after verifying the old
// one. A stored hash in an unknown format counts as a mismatch.
func (s *AuthService) ChangePassword(ctx context.Context, user *model.User, oldPassword, newPassword string) error {
	if newPassword == "" {
		return ErrPasswordRequired
	}

	if !auth.CheckPassword(oldPassword, user.PasswordHash) {
		return ErrWrongPassword
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.store.UpdateUserPassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}

// UpdateProfileInput defines input for updating profile fields.
type UpdateProfileInput struct {
	FullName string
	Email    string
	Phone    string
}

// UpdateProfile overwrites the caller's profile fields with the same
// normalization and uniqueness rules as registration.
func (s *AuthService) UpdateProfile(ctx context.Context, user *model.User, input UpdateProfileInput) (*model.User, error) {
	fullName := strings.TrimSpace(input.FullName)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	phone := strings.TrimSpace(input.Phone)

	if fullName == "" {
		return nil, ErrFullNameRequired
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrEmailInvalid
	}
	if phone == "" {
		return nil, ErrPhoneRequired
	}

	updated := *user
	updated.FullName = fullName
	updated.Email = email
	updated.Phone = phone

	if err := s.store.UpdateUserProfile(ctx, &updated); err != nil {
		switch {
		case errors.Is(err, repository.ErrEmailExists):
			return nil, ErrEmailTaken
		case errors.Is(err, repository.ErrPhoneExists):
			return nil, ErrPhoneTaken
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return &updated, nil
}

// SetAvatar stores an uploaded avatar image and records its public path.
func (s *AuthService) SetAvatar(ctx context.Context, user *model.User, filename string, payload io.Reader) (*model.User, error) {
	avatarURL, err := s.uploads.Store(filename, payload)
	if err != nil {
		return nil, err
	}

	if err := s.store.UpdateUserAvatar(ctx, user.ID, avatarURL); err != nil {
		return nil, fmt.Errorf("failed to update avatar: %w", err)
	}

	updated := *user
	updated.AvatarURL = &avatarURL
	return &updated, nil
}
