package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/serroba/shortlinks/internal/auth"
	sqlite3 "modernc.org/sqlite/lib"
)

// UserSQLiteStore keeps accounts in the same SQLite database as the links.
type UserSQLiteStore struct {
	db *sql.DB
}

// NewUserSQLiteStore creates an account store sharing the links database.
func NewUserSQLiteStore(links *SQLiteStore) *UserSQLiteStore {
	return &UserSQLiteStore{db: links.db}
}

func (s *UserSQLiteStore) Create(ctx context.Context, user *auth.User) error {
	const query = `
		INSERT INTO users (id, username, username_key, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		user.ID,
		user.Username,
		strings.ToLower(user.Username),
		user.PasswordHash,
		user.CreatedAt.UnixNano(),
	)
	if err != nil {
		if sqliteCode(err) == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
			return auth.ErrUsernameTaken
		}

		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

func (s *UserSQLiteStore) FindByUsername(ctx context.Context, username string) (*auth.User, error) {
	return s.queryUser(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE username_key = ?`,
		strings.ToLower(username))
}

func (s *UserSQLiteStore) FindByID(ctx context.Context, id string) (*auth.User, error) {
	return s.queryUser(ctx, `SELECT id, username, password_hash, created_at FROM users WHERE id = ?`, id)
}

func (s *UserSQLiteStore) queryUser(ctx context.Context, query string, arg string) (*auth.User, error) {
	var (
		user      auth.User
		createdAt int64
	)

	err := s.db.QueryRowContext(ctx, query, arg).Scan(&user.ID, &user.Username, &user.PasswordHash, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, auth.ErrUserNotFound
		}

		return nil, fmt.Errorf("find user: %w", err)
	}

	user.CreatedAt = time.Unix(0, createdAt).UTC()

	return &user, nil
}

var _ auth.UserRepository = (*UserSQLiteStore)(nil)
