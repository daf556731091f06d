package shortener

import "errors"

var (
	// ErrInvalidFormat is returned when a code, URL or strategy is malformed.
	ErrInvalidFormat = errors.New("invalid format")
	// ErrCodeTaken is returned when a requested custom code already exists.
	ErrCodeTaken = errors.New("custom code is already taken")
	// ErrDuplicateCode is returned by a Repository when an insert collides on code.
	ErrDuplicateCode = errors.New("duplicate code")
	// ErrDuplicateURL is returned by a Repository when the owner already has a
	// hashed link for the same URL.
	ErrDuplicateURL = errors.New("url already shortened by owner")
	// ErrExhaustedRetries is returned when random generation keeps colliding.
	ErrExhaustedRetries = errors.New("could not allocate a unique code")
	// ErrNotFound is returned when no link matches the lookup.
	ErrNotFound = errors.New("link not found")
	// ErrStoreUnavailable wraps transient backend failures.
	ErrStoreUnavailable = errors.New("store unavailable")
)
