package store

import (
	"context"
	"strings"
	"sync"

	"github.com/serroba/shortlinks/internal/auth"
)

// UserMemoryStore is an in-memory implementation of auth.UserRepository.
type UserMemoryStore struct {
	mu         sync.RWMutex
	byID       map[string]*auth.User
	byUsername map[string]string
}

// NewUserMemoryStore creates a new in-memory account store.
func NewUserMemoryStore() *UserMemoryStore {
	return &UserMemoryStore{
		byID:       make(map[string]*auth.User),
		byUsername: make(map[string]string),
	}
}

func (s *UserMemoryStore) Create(_ context.Context, user *auth.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(user.Username)
	if _, ok := s.byUsername[key]; ok {
		return auth.ErrUsernameTaken
	}

	stored := *user
	s.byID[user.ID] = &stored
	s.byUsername[key] = user.ID

	return nil
}

func (s *UserMemoryStore) FindByUsername(_ context.Context, username string) (*auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byUsername[strings.ToLower(username)]
	if !ok {
		return nil, auth.ErrUserNotFound
	}

	found := *s.byID[id]

	return &found, nil
}

func (s *UserMemoryStore) FindByID(_ context.Context, id string) (*auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.byID[id]
	if !ok {
		return nil, auth.ErrUserNotFound
	}

	found := *user

	return &found, nil
}

var _ auth.UserRepository = (*UserMemoryStore)(nil)
