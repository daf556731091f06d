package auth

import "errors"

var (
	// ErrUnauthenticated is returned when a request carries no usable credentials.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrInvalidToken is returned for malformed or wrongly signed tokens.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned for tokens past their expiry.
	ErrExpiredToken = errors.New("token expired")
	// ErrInvalidCredentials is returned when a username and password do not match.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUsernameTaken is returned when signing up with an existing username.
	ErrUsernameTaken = errors.New("username is already taken")
	// ErrInvalidUsername is returned when a username fails validation.
	ErrInvalidUsername = errors.New("invalid username")
	// ErrWeakPassword is returned when a password fails the strength rules.
	ErrWeakPassword = errors.New("weak password")
	// ErrUserNotFound is returned by a UserRepository lookup miss.
	ErrUserNotFound = errors.New("user not found")
)
