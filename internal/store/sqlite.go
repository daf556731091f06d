package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/serroba/shortlinks/internal/shortener"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// SQLiteStore is an embedded SQLite implementation of shortener.Repository.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (or creates) the database at path and applies the schema.
// Use ":memory:" for a throwaway database.
func OpenSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// A single connection serializes writers and keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{"PRAGMA busy_timeout = 5000"}
	if !strings.Contains(path, ":memory:") {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL")
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()

			return nil, fmt.Errorf("configure sqlite (%s): %w", pragma, err)
		}
	}

	if err := migrateSQLite(ctx, db); err != nil {
		_ = db.Close()

		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Insert(ctx context.Context, link *shortener.Link) error {
	const query = `
		INSERT INTO links (code, original_url, owner_id, url_hash, visit_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		string(link.Code),
		link.OriginalURL,
		string(link.OwnerID),
		nullableString(link.URLHash),
		link.VisitCount,
		link.CreatedAt.UnixNano(),
	)
	if err != nil {
		return linkInsertError(err)
	}

	return nil
}

// linkInsertError maps the key conflicts of the links table. Any other
// failure, other constraints included, is not worth retrying with a new code.
func linkInsertError(err error) error {
	switch sqliteCode(err) {
	case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return shortener.ErrDuplicateCode
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		return shortener.ErrDuplicateURL
	}

	return unavailable(err)
}

func (s *SQLiteStore) FindByCode(ctx context.Context, code shortener.Code) (*shortener.Link, error) {
	return s.queryLink(ctx, `SELECT `+linkColumns+` FROM links WHERE code = ?`, string(code))
}

func (s *SQLiteStore) FindByOwner(ctx context.Context, owner shortener.OwnerID) ([]*shortener.Link, error) {
	const query = `
		SELECT ` + linkColumns + `
		FROM links
		WHERE owner_id = ?
		ORDER BY created_at DESC, code ASC`

	rows, err := s.db.QueryContext(ctx, query, string(owner))
	if err != nil {
		return nil, unavailable(err)
	}
	defer rows.Close()

	links := make([]*shortener.Link, 0)

	for rows.Next() {
		link, err := scanSQLiteLink(rows)
		if err != nil {
			return nil, unavailable(err)
		}

		links = append(links, link)
	}

	if err := rows.Err(); err != nil {
		return nil, unavailable(err)
	}

	return links, nil
}

func (s *SQLiteStore) FindByOwnerAndHash(
	ctx context.Context, owner shortener.OwnerID, hash shortener.URLHash,
) (*shortener.Link, error) {
	const query = `
		SELECT ` + linkColumns + `
		FROM links
		WHERE owner_id = ? AND url_hash = ?
		ORDER BY created_at ASC
		LIMIT 1`

	return s.queryLink(ctx, query, string(owner), string(hash))
}

func (s *SQLiteStore) IncrementVisit(ctx context.Context, code shortener.Code) (*shortener.Link, error) {
	const query = `
		UPDATE links
		SET visit_count = visit_count + 1
		WHERE code = ?
		RETURNING ` + linkColumns

	return s.queryLink(ctx, query, string(code))
}

func (s *SQLiteStore) DeleteByOwner(ctx context.Context, code shortener.Code, owner shortener.OwnerID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM links WHERE code = ? AND owner_id = ?`,
		string(code), string(owner))
	if err != nil {
		return unavailable(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return unavailable(err)
	}

	if n == 0 {
		return shortener.ErrNotFound
	}

	return nil
}

// Ping checks the database handle.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Shutdown closes the database.
func (s *SQLiteStore) Shutdown() error {
	return s.db.Close()
}

func (s *SQLiteStore) queryLink(ctx context.Context, query string, args ...any) (*shortener.Link, error) {
	link, err := scanSQLiteLink(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shortener.ErrNotFound
		}

		return nil, unavailable(err)
	}

	return link, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteLink(row rowScanner) (*shortener.Link, error) {
	var (
		code, originalURL, owner string
		urlHash                  sql.NullString
		visits, createdAt        int64
	)

	if err := row.Scan(&code, &originalURL, &owner, &urlHash, &visits, &createdAt); err != nil {
		return nil, err
	}

	return &shortener.Link{
		Code:        shortener.Code(code),
		OriginalURL: originalURL,
		OwnerID:     shortener.OwnerID(owner),
		URLHash:     shortener.URLHash(urlHash.String),
		VisitCount:  visits,
		CreatedAt:   time.Unix(0, createdAt).UTC(),
	}, nil
}

// sqliteCode returns the extended result code of a driver error, or 0.
func sqliteCode(err error) int {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return 0
	}

	return sqliteErr.Code()
}

var _ shortener.Repository = (*SQLiteStore)(nil)
