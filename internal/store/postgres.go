package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/shortlinks/internal/shortener"
)

const (
	uniqueViolation = "23505"
	ownerHashIndex  = "idx_links_owner_url_hash"
)

const linkColumns = `code, original_url, owner_id, url_hash, visit_count, created_at`

// PostgresStore is a PostgreSQL implementation of shortener.Repository.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed link store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (p *PostgresStore) Insert(ctx context.Context, link *shortener.Link) error {
	query := `
		INSERT INTO links (code, original_url, owner_id, url_hash, visit_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := p.pool.Exec(ctx, query,
		string(link.Code),
		link.OriginalURL,
		string(link.OwnerID),
		nullableString(link.URLHash),
		link.VisitCount,
		link.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			if pgErr.ConstraintName == ownerHashIndex {
				return shortener.ErrDuplicateURL
			}

			return shortener.ErrDuplicateCode
		}

		return unavailable(err)
	}

	return nil
}

func (p *PostgresStore) FindByCode(ctx context.Context, code shortener.Code) (*shortener.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE code = $1`

	return p.queryLink(ctx, query, string(code))
}

func (p *PostgresStore) FindByOwner(ctx context.Context, owner shortener.OwnerID) ([]*shortener.Link, error) {
	query := `
		SELECT ` + linkColumns + `
		FROM links
		WHERE owner_id = $1
		ORDER BY created_at DESC, code ASC
	`

	rows, err := p.pool.Query(ctx, query, string(owner))
	if err != nil {
		return nil, unavailable(err)
	}
	defer rows.Close()

	links := make([]*shortener.Link, 0)

	for rows.Next() {
		link, err := scanLink(rows)
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

func (p *PostgresStore) FindByOwnerAndHash(
	ctx context.Context, owner shortener.OwnerID, hash shortener.URLHash,
) (*shortener.Link, error) {
	query := `
		SELECT ` + linkColumns + `
		FROM links
		WHERE owner_id = $1 AND url_hash = $2
		ORDER BY created_at ASC
		LIMIT 1
	`

	return p.queryLink(ctx, query, string(owner), string(hash))
}

func (p *PostgresStore) IncrementVisit(ctx context.Context, code shortener.Code) (*shortener.Link, error) {
	query := `
		UPDATE links
		SET visit_count = visit_count + 1
		WHERE code = $1
		RETURNING ` + linkColumns

	return p.queryLink(ctx, query, string(code))
}

func (p *PostgresStore) DeleteByOwner(ctx context.Context, code shortener.Code, owner shortener.OwnerID) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM links WHERE code = $1 AND owner_id = $2`,
		string(code), string(owner))
	if err != nil {
		return unavailable(err)
	}

	if tag.RowsAffected() == 0 {
		return shortener.ErrNotFound
	}

	return nil
}

func (p *PostgresStore) queryLink(ctx context.Context, query string, args ...any) (*shortener.Link, error) {
	link, err := scanLink(p.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shortener.ErrNotFound
		}

		return nil, unavailable(err)
	}

	return link, nil
}

func scanLink(row pgx.Row) (*shortener.Link, error) {
	var (
		link    shortener.Link
		urlHash *string
	)

	err := row.Scan(
		&link.Code,
		&link.OriginalURL,
		&link.OwnerID,
		&urlHash,
		&link.VisitCount,
		&link.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if urlHash != nil {
		link.URLHash = shortener.URLHash(*urlHash)
	}

	link.CreatedAt = link.CreatedAt.UTC()

	return &link, nil
}

func nullableString(s shortener.URLHash) *string {
	if s == "" {
		return nil
	}

	str := string(s)

	return &str
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func unavailable(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	return fmt.Errorf("%w: %w", shortener.ErrStoreUnavailable, err)
}

var _ shortener.Repository = (*PostgresStore)(nil)
