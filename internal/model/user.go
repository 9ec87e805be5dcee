package model

import "time"

// UserID uniquely identifies a user account
type UserID string

// User represents a registered account.
// The password hash never leaves the storage/auth layer; API responses
// carry only the public profile.
type User struct {
	ID           UserID
	Username     string // login username (immutable, unique)
	PasswordHash string // bcrypt hash
	CreatedAt    time.Time
}
