package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Service implements signup, login and account lookup.
type Service struct {
	users  UserRepository
	hasher *PasswordHasher
	tokens *TokenService
	now    func() time.Time
}

// NewService creates an account service.
func NewService(users UserRepository, hasher *PasswordHasher, tokens *TokenService) *Service {
	return &Service{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Signup registers a user and returns an access token for it.
func (s *Service) Signup(ctx context.Context, username, password string) (string, *User, error) {
	if err := ValidateUsername(username); err != nil {
		return "", nil, err
	}

	if err := ValidatePassword(password); err != nil {
		return "", nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return "", nil, err
	}

	user := &User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		return "", nil, err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

// Login checks credentials and returns a fresh access token.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", ErrInvalidCredentials
		}

		return "", fmt.Errorf("find user: %w", err)
	}

	if !s.hasher.Verify(user.PasswordHash, password) {
		return "", ErrInvalidCredentials
	}

	return s.tokens.Issue(user.ID)
}

// Authenticate resolves a bearer token to its user ID.
func (s *Service) Authenticate(token string) (string, error) {
	return s.tokens.Verify(token)
}

// Me returns the account behind id.
func (s *Service) Me(ctx context.Context, id string) (*User, error) {
	return s.users.FindByID(ctx, id)
}
