package auth

import (
	"context"
	"time"
)

// User is a registered account. Its ID is the owner of the links it creates.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// UserRepository persists accounts.
type UserRepository interface {
	// Create stores a new user, returning ErrUsernameTaken on a duplicate username.
	Create(ctx context.Context, user *User) error
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
}
