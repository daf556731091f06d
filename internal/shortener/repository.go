package shortener

import "context"

// Repository persists links. Insert is the authoritative uniqueness guard and
// IncrementVisit must be a single atomic operation.
type Repository interface {
	// Insert stores a new link, returning ErrDuplicateCode if the code exists.
	Insert(ctx context.Context, link *Link) error
	// FindByCode returns the link for code or ErrNotFound.
	FindByCode(ctx context.Context, code Code) (*Link, error)
	// FindByOwner returns the owner's links, newest first.
	FindByOwner(ctx context.Context, owner OwnerID) ([]*Link, error)
	// FindByOwnerAndHash returns the owner's link for a normalized URL hash or ErrNotFound.
	FindByOwnerAndHash(ctx context.Context, owner OwnerID, hash URLHash) (*Link, error)
	// IncrementVisit adds one to the visit count and returns the updated link.
	IncrementVisit(ctx context.Context, code Code) (*Link, error)
	// DeleteByOwner removes the link only if it belongs to owner, else ErrNotFound.
	DeleteByOwner(ctx context.Context, code Code, owner OwnerID) error
}
