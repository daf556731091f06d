package shortener

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const maxAttempts = 5

// ShortenRequest carries the inputs of a shorten operation.
type ShortenRequest struct {
	Owner      OwnerID
	URL        string
	CustomCode string
	Strategy   Strategy
}

// Availability is the answer to a code availability query.
type Availability struct {
	Code      Code
	Available bool
	Reason    string
}

// Service implements shortening, resolution and owner-scoped management of links.
type Service struct {
	store     Repository
	generator *Generator
	now       func() time.Time
}

// NewService creates a link service over store.
func NewService(store Repository, generator *Generator) *Service {
	return &Service{
		store:     store,
		generator: generator,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Shorten creates a link for the owner. The boolean result is false when the
// hash strategy returned an existing link instead of creating one.
func (s *Service) Shorten(ctx context.Context, req ShortenRequest) (*Link, bool, error) {
	if err := ValidateURL(req.URL); err != nil {
		return nil, false, err
	}

	strategy := req.Strategy
	if strategy == "" {
		strategy = StrategyToken
	}

	if !strategy.Valid() {
		return nil, false, fmt.Errorf("%w: strategy must be '%s' or '%s'", ErrInvalidFormat, StrategyToken, StrategyHash)
	}

	var urlHash URLHash

	if strategy == StrategyHash {
		normalized, err := NormalizeURL(req.URL)
		if err != nil {
			return nil, false, fmt.Errorf("%w: %w", ErrInvalidFormat, err)
		}

		urlHash = HashURL(normalized)

		existing, err := s.store.FindByOwnerAndHash(ctx, req.Owner, urlHash)
		if err == nil {
			return existing, false, nil
		}

		if !errors.Is(err, ErrNotFound) {
			return nil, false, err
		}
	}

	var (
		link *Link
		err  error
	)

	if req.CustomCode != "" {
		link, err = s.insertCustom(ctx, req, urlHash)
	} else {
		link, err = s.insertRandom(ctx, req, urlHash)
	}

	// A concurrent request of the same owner stored the URL first.
	if errors.Is(err, ErrDuplicateURL) {
		existing, findErr := s.store.FindByOwnerAndHash(ctx, req.Owner, urlHash)
		if findErr != nil {
			return nil, false, findErr
		}

		return existing, false, nil
	}

	if err != nil {
		return nil, false, err
	}

	return link, true, nil
}

func (s *Service) insertCustom(ctx context.Context, req ShortenRequest, urlHash URLHash) (*Link, error) {
	code, err := s.generator.Generate(req.CustomCode)
	if err != nil {
		return nil, err
	}

	if IsReserved(string(code)) {
		return nil, ErrCodeTaken
	}

	// Early rejection only; the insert below decides.
	if _, err = s.store.FindByCode(ctx, code); err == nil {
		return nil, ErrCodeTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	link := s.newLink(code, req, urlHash)

	if err = s.store.Insert(ctx, link); err != nil {
		if errors.Is(err, ErrDuplicateCode) {
			return nil, ErrCodeTaken
		}

		return nil, err
	}

	return link, nil
}

func (s *Service) insertRandom(ctx context.Context, req ShortenRequest, urlHash URLHash) (*Link, error) {
	for range maxAttempts {
		code, err := s.generator.Generate("")
		if err != nil {
			return nil, err
		}

		if IsReserved(string(code)) {
			continue
		}

		link := s.newLink(code, req, urlHash)

		err = s.store.Insert(ctx, link)
		if err == nil {
			return link, nil
		}

		if !errors.Is(err, ErrDuplicateCode) {
			return nil, err
		}
	}

	return nil, fmt.Errorf("%w: %d attempts collided", ErrExhaustedRetries, maxAttempts)
}

func (s *Service) newLink(code Code, req ShortenRequest, urlHash URLHash) *Link {
	return &Link{
		Code:        code,
		OriginalURL: req.URL,
		OwnerID:     req.Owner,
		URLHash:     urlHash,
		CreatedAt:   s.now(),
	}
}

// Resolve looks up code and records one visit in the same store operation.
// Malformed codes resolve to ErrNotFound without touching the store.
func (s *Service) Resolve(ctx context.Context, code Code) (*Link, error) {
	if err := ValidateCode(string(code)); err != nil {
		return nil, ErrNotFound
	}

	return s.store.IncrementVisit(ctx, code)
}

// Lookup returns the link for code without recording a visit.
func (s *Service) Lookup(ctx context.Context, code Code) (*Link, error) {
	if err := ValidateCode(string(code)); err != nil {
		return nil, ErrNotFound
	}

	return s.store.FindByCode(ctx, code)
}

// IsAvailable reports whether code could be claimed right now.
func (s *Service) IsAvailable(ctx context.Context, code Code) (*Availability, error) {
	result := &Availability{Code: code}

	if err := ValidateCode(string(code)); err != nil {
		result.Reason = err.Error()

		return result, nil
	}

	if IsReserved(string(code)) {
		result.Reason = ErrCodeTaken.Error()

		return result, nil
	}

	_, err := s.store.FindByCode(ctx, code)
	switch {
	case err == nil:
		result.Reason = ErrCodeTaken.Error()
	case errors.Is(err, ErrNotFound):
		result.Available = true
	default:
		return nil, err
	}

	return result, nil
}

// ListByOwner returns the owner's links, newest first.
func (s *Service) ListByOwner(ctx context.Context, owner OwnerID) ([]*Link, error) {
	return s.store.FindByOwner(ctx, owner)
}

// Delete removes the owner's link. Links of other owners are reported as not found.
func (s *Service) Delete(ctx context.Context, owner OwnerID, code Code) error {
	if err := ValidateCode(string(code)); err != nil {
		return ErrNotFound
	}

	return s.store.DeleteByOwner(ctx, code, owner)
}
