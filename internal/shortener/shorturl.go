package shortener

import "time"

// Code represents a short code.
type Code string

// URLHash represents a hash of a normalized URL.
type URLHash string

// OwnerID identifies the account that owns a link.
type OwnerID string

// Link represents a shortened URL owned by an account.
type Link struct {
	Code        Code
	OriginalURL string
	OwnerID     OwnerID
	URLHash     URLHash // empty for token strategy, populated for hash strategy
	VisitCount  int64
	CreatedAt   time.Time
}
