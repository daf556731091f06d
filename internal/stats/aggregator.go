// Package stats derives dashboard figures from an owner's links and visits.
package stats

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/serroba/shortlinks/internal/shortener"
	"github.com/serroba/shortlinks/internal/visits"
)

const (
	// ListLimit caps the recent and top link lists.
	ListLimit = 5
	// MaxDays bounds the daily visits window.
	MaxDays = 365
)

// Summary is the dashboard view of an owner's links.
type Summary struct {
	TotalLinks  int
	TotalVisits int64
	RecentLinks []*shortener.Link
	TopLinks    []*shortener.Link
}

// LinkLister is the read side of the link store the aggregator needs.
type LinkLister interface {
	FindByOwner(ctx context.Context, owner shortener.OwnerID) ([]*shortener.Link, error)
}

// Aggregator computes statistics without mutating anything.
type Aggregator struct {
	links  LinkLister
	visits visits.Store
	now    func() time.Time
}

// NewAggregator creates an aggregator. visitStore may be nil when no visit
// projection is configured; Daily then reports no data.
func NewAggregator(links LinkLister, visitStore visits.Store) *Aggregator {
	return &Aggregator{
		links:  links,
		visits: visitStore,
		now:    time.Now,
	}
}

// Summarize returns totals plus the five newest and five most visited links.
func (a *Aggregator) Summarize(ctx context.Context, owner shortener.OwnerID) (*Summary, error) {
	links, err := a.links.FindByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		TotalLinks:  len(links),
		RecentLinks: Recent(links, ListLimit),
		TopLinks:    Top(links, ListLimit),
	}

	for _, link := range links {
		summary.TotalVisits += link.VisitCount
	}

	return summary, nil
}

// TopLinks returns the owner's most visited links.
func (a *Aggregator) TopLinks(ctx context.Context, owner shortener.OwnerID) ([]*shortener.Link, error) {
	links, err := a.links.FindByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}

	return Top(links, ListLimit), nil
}

// Daily returns per-day visit counts for the last days days, today included.
func (a *Aggregator) Daily(ctx context.Context, owner shortener.OwnerID, days int) ([]visits.DailyCount, error) {
	if days < 1 || days > MaxDays {
		return nil, fmt.Errorf("%w: days must be between 1 and %d", shortener.ErrInvalidFormat, MaxDays)
	}

	if a.visits == nil {
		return []visits.DailyCount{}, nil
	}

	now := a.now().UTC()
	since := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -(days - 1))

	return a.visits.DailyVisits(ctx, string(owner), since)
}

// Recent returns up to limit links ordered by creation time, newest first.
func Recent(links []*shortener.Link, limit int) []*shortener.Link {
	sorted := sortedCopy(links, func(a, b *shortener.Link) bool {
		return newer(a, b)
	})

	return head(sorted, limit)
}

// Top returns up to limit links ordered by visit count, ties broken by newest first.
func Top(links []*shortener.Link, limit int) []*shortener.Link {
	sorted := sortedCopy(links, func(a, b *shortener.Link) bool {
		if a.VisitCount != b.VisitCount {
			return a.VisitCount > b.VisitCount
		}

		return newer(a, b)
	})

	return head(sorted, limit)
}

func newer(a, b *shortener.Link) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}

	return a.Code < b.Code
}

func sortedCopy(links []*shortener.Link, less func(a, b *shortener.Link) bool) []*shortener.Link {
	sorted := make([]*shortener.Link, len(links))
	copy(sorted, links)

	sort.SliceStable(sorted, func(i, j int) bool { return less(sorted[i], sorted[j]) })

	return sorted
}

func head(links []*shortener.Link, limit int) []*shortener.Link {
	if len(links) > limit {
		return links[:limit]
	}

	return links
}
