package visits

import (
	"context"
	"time"
)

// Visit is one recorded redirect with its classified client.
type Visit struct {
	ID        string
	Code      string
	OwnerID   string
	VisitedAt time.Time
	ClientIP  string
	Referrer  string
	Browser   string
	OS        string
	Device    string
	Bot       bool
}

// DailyCount is the number of visits on one UTC day.
type DailyCount struct {
	Date   time.Time
	Visits int64
}

// Store persists visits and answers per-day aggregates.
type Store interface {
	Record(ctx context.Context, visit *Visit) error
	// DailyVisits returns per-day counts for the owner's links from since on,
	// oldest day first, omitting days without visits.
	DailyVisits(ctx context.Context, owner string, since time.Time) ([]DailyCount, error)
}
