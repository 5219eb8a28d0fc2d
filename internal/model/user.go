// Package model defines domain entities for the application.
package model

import "time"

// User represents a registered account.
// Email is stored lower-cased; email and phone are each globally unique.
type User struct {
	ID           int64     `json:"id"`
	FullName     string    `json:"full_name"`
	Phone        string    `json:"phone"`
	Email        string    `json:"email"`
	AvatarURL    *string   `json:"avatar_url,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
