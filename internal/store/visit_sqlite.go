package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/serroba/shortlinks/internal/visits"
)

// VisitSQLiteStore keeps the visit projection in the links database.
type VisitSQLiteStore struct {
	db *sql.DB
}

// NewVisitSQLiteStore creates a visit store sharing the links database.
func NewVisitSQLiteStore(links *SQLiteStore) *VisitSQLiteStore {
	return &VisitSQLiteStore{db: links.db}
}

func (s *VisitSQLiteStore) Record(ctx context.Context, visit *visits.Visit) error {
	const query = `
		INSERT INTO visits (id, code, owner_id, visited_at, client_ip, referrer, browser, os, device, bot)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING`

	_, err := s.db.ExecContext(ctx, query,
		visit.ID,
		visit.Code,
		visit.OwnerID,
		visit.VisitedAt.UnixNano(),
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

// DailyVisits buckets by whole days since the Unix epoch, which are UTC days.
func (s *VisitSQLiteStore) DailyVisits(ctx context.Context, owner string, since time.Time) ([]visits.DailyCount, error) {
	const query = `
		SELECT visited_at / ? AS day, count(*)
		FROM visits
		WHERE owner_id = ? AND visited_at >= ?
		GROUP BY day
		ORDER BY day ASC`

	day := int64(24 * time.Hour)

	rows, err := s.db.QueryContext(ctx, query, day, owner, since.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("query daily visits: %w", err)
	}
	defer rows.Close()

	days := make([]visits.DailyCount, 0)

	for rows.Next() {
		var bucket, count int64

		if err := rows.Scan(&bucket, &count); err != nil {
			return nil, fmt.Errorf("scan daily visits: %w", err)
		}

		days = append(days, visits.DailyCount{
			Date:   time.Unix(0, bucket*day).UTC(),
			Visits: count,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily visits: %w", err)
	}

	return days, nil
}

var _ visits.Store = (*VisitSQLiteStore)(nil)
