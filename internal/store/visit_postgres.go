package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/shortlinks/internal/visits"
)

// VisitPostgresStore is a PostgreSQL implementation of visits.Store.
type VisitPostgresStore struct {
	pool *pgxpool.Pool
}

// NewVisitPostgresStore creates a new PostgreSQL-backed visit store.
func NewVisitPostgresStore(pool *pgxpool.Pool) *VisitPostgresStore {
	return &VisitPostgresStore{pool: pool}
}

func (s *VisitPostgresStore) Record(ctx context.Context, visit *visits.Visit) error {
	query := `
		INSERT INTO visits (id, code, owner_id, visited_at, client_ip, referrer, browser, os, device, bot)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := s.pool.Exec(ctx, query,
		visit.ID,
		visit.Code,
		visit.OwnerID,
		visit.VisitedAt,
		visit.ClientIP,
		visit.Referrer,
		visit.Browser,
		visit.OS,
		visit.Device,
		visit.Bot,
	)
	if err != nil {
		return fmt.Errorf("insert visit: %w", err)
	}

	return nil
}

func (s *VisitPostgresStore) DailyVisits(ctx context.Context, owner string, since time.Time) ([]visits.DailyCount, error) {
	query := `
		SELECT date_trunc('day', visited_at AT TIME ZONE 'UTC') AS day, count(*)
		FROM visits
		WHERE owner_id = $1 AND visited_at >= $2
		GROUP BY day
		ORDER BY day ASC
	`

	rows, err := s.pool.Query(ctx, query, owner, since)
	if err != nil {
		return nil, fmt.Errorf("query daily visits: %w", err)
	}
	defer rows.Close()

	days := make([]visits.DailyCount, 0)

	for rows.Next() {
		var (
			day   time.Time
			count int64
		)

		if err := rows.Scan(&day, &count); err != nil {
			return nil, fmt.Errorf("scan daily visits: %w", err)
		}

		days = append(days, visits.DailyCount{
			Date:   time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC),
			Visits: count,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily visits: %w", err)
	}

	return days, nil
}

var _ visits.Store = (*VisitPostgresStore)(nil)
