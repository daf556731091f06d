package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/shortlinks/internal/auth"
)

// UserPostgresStore is a PostgreSQL implementation of auth.UserRepository.
type UserPostgresStore struct {
	pool *pgxpool.Pool
}

// NewUserPostgresStore creates a new PostgreSQL-backed account store.
func NewUserPostgresStore(pool *pgxpool.Pool) *UserPostgresStore {
	return &UserPostgresStore{pool: pool}
}

func (s *UserPostgresStore) Create(ctx context.Context, user *auth.User) error {
	query := `
		INSERT INTO users (id, username, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := s.pool.Exec(ctx, query, user.ID, user.Username, user.PasswordHash, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return auth.ErrUsernameTaken
		}

		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

func (s *UserPostgresStore) FindByUsername(ctx context.Context, username string) (*auth.User, error) {
	query := `SELECT id, username, password_hash, created_at FROM users WHERE lower(username) = lower($1)`

	return s.queryUser(ctx, query, username)
}

func (s *UserPostgresStore) FindByID(ctx context.Context, id string) (*auth.User, error) {
	query := `SELECT id, username, password_hash, created_at FROM users WHERE id = $1`

	return s.queryUser(ctx, query, id)
}

func (s *UserPostgresStore) queryUser(ctx context.Context, query string, arg string) (*auth.User, error) {
	var user auth.User

	err := s.pool.QueryRow(ctx, query, arg).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrUserNotFound
		}

		return nil, fmt.Errorf("find user: %w", err)
	}

	user.CreatedAt = user.CreatedAt.UTC()

	return &user, nil
}

var _ auth.UserRepository = (*UserPostgresStore)(nil)
